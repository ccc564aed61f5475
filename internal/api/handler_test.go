package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"catalog-service/internal/broker"
	"catalog-service/internal/catalog"
	"catalog-service/internal/models"
	"catalog-service/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	products []models.Product
}

func (s *stubSource) Products(context.Context) ([]models.Product, error) {
	return s.products, nil
}

func (s *stubSource) ProductsByCategory(_ context.Context, category string) ([]models.Product, error) {
	out := []models.Product{}
	for _, p := range s.products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubSource) Categories(context.Context) ([]string, error) {
	return []string{"kitchen", "home"}, nil
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	src := &stubSource{products: []models.Product{
		{ID: 1, Title: "Mug", Price: decimal.NewFromInt(10), Category: "kitchen"},
		{ID: 2, Title: "Lamp", Price: decimal.NewFromInt(20), Category: "home"},
		{ID: 3, Title: "Pan", Price: decimal.NewFromInt(15), Category: "kitchen"},
	}}
	sessions := session.NewManager(src, catalog.Config{
		PageSize:        2,
		DefaultMinPrice: decimal.Zero,
		DefaultMaxPrice: decimal.NewFromInt(1000),
	})

	router := gin.New()
	handler := NewHandler(sessions, broker.NewActivityPublisher(nil))
	handler.SetupRoutes(router)
	return router
}

func doRequest(router *gin.Engine, method, path, sessionID string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set("X-Session-ID", sessionID)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func newSession(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w := doRequest(router, http.MethodPost, "/api/v1/sessions", "", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	resp := decode(t, w)
	require.Equal(t, "ready", resp["status"])
	return resp["session_id"].(string)
}

func TestCreateSessionLoadsCatalog(t *testing.T) {
	router := setupRouter()
	id := newSession(t, router)

	w := doRequest(router, http.MethodGet, "/api/v1/catalog/products", id, nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode(t, w)
	assert.Equal(t, "ready", resp["status"])
	assert.Equal(t, float64(3), resp["total_filtered"])
	assert.Equal(t, float64(1), resp["page"])
	assert.Equal(t, float64(2), resp["page_size"])
	assert.Len(t, resp["products"], 2)
}

func TestUnknownSessionIs404(t *testing.T) {
	router := setupRouter()

	w := doRequest(router, http.MethodGet, "/api/v1/catalog/products", "nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(router, http.MethodGet, "/api/v1/catalog/products", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFilterUpdateAndClear(t *testing.T) {
	router := setupRouter()
	id := newSession(t, router)

	w := doRequest(router, http.MethodPut, "/api/v1/catalog/filters", id,
		map[string]interface{}{"category": "kitchen"})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode(t, w)
	assert.Equal(t, float64(2), resp["total_filtered"])
	assert.Equal(t, float64(1), resp["page"])

	w = doRequest(router, http.MethodDelete, "/api/v1/catalog/filters", id, nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp = decode(t, w)
	assert.Equal(t, float64(3), resp["total_filtered"])
}

func TestFilterRejectsUnknownSortKey(t *testing.T) {
	router := setupRouter()
	id := newSession(t, router)

	w := doRequest(router, http.MethodPut, "/api/v1/catalog/filters", id,
		map[string]interface{}{"sort_key": "chaos"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetPageBeyondEndYieldsEmptyPage(t *testing.T) {
	router := setupRouter()
	id := newSession(t, router)

	w := doRequest(router, http.MethodPut, "/api/v1/catalog/page", id,
		map[string]interface{}{"page": 99})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode(t, w)
	assert.Equal(t, float64(99), resp["page"])
	assert.Len(t, resp["products"], 0)
}

func TestRefreshByCategory(t *testing.T) {
	router := setupRouter()
	id := newSession(t, router)

	w := doRequest(router, http.MethodPost, "/api/v1/catalog/refresh", id,
		map[string]interface{}{"category": "home"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/api/v1/catalog/products", id, nil)
	resp := decode(t, w)
	assert.Equal(t, float64(1), resp["total_filtered"])
}

func TestGetCategories(t *testing.T) {
	router := setupRouter()
	id := newSession(t, router)

	w := doRequest(router, http.MethodGet, "/api/v1/catalog/categories", id, nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode(t, w)
	assert.Equal(t, []interface{}{"kitchen", "home"}, resp["categories"])
}

func TestCartLifecycle(t *testing.T) {
	router := setupRouter()
	id := newSession(t, router)

	// add 2 mugs, then 1 more via merge
	w := doRequest(router, http.MethodPost, "/api/v1/cart/items", id,
		map[string]interface{}{"product_id": 1, "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodPost, "/api/v1/cart/items", id,
		map[string]interface{}{"product_id": 1})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode(t, w)
	assert.Equal(t, float64(3), resp["total_items"])
	assert.Len(t, resp["items"], 1)
	assert.Equal(t, "30", resp["total_amount"])

	// exact quantity update
	w = doRequest(router, http.MethodPut, "/api/v1/cart/items/1", id,
		map[string]interface{}{"quantity": 1})
	resp = decode(t, w)
	assert.Equal(t, float64(1), resp["total_items"])

	// quantity zero removes
	w = doRequest(router, http.MethodPut, "/api/v1/cart/items/1", id,
		map[string]interface{}{"quantity": 0})
	resp = decode(t, w)
	assert.Len(t, resp["items"], 0)
	assert.Equal(t, float64(0), resp["total_items"])
}

func TestAddUnknownProductIs404(t *testing.T) {
	router := setupRouter()
	id := newSession(t, router)

	w := doRequest(router, http.MethodPost, "/api/v1/cart/items", id,
		map[string]interface{}{"product_id": 42})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestClearCart(t *testing.T) {
	router := setupRouter()
	id := newSession(t, router)

	doRequest(router, http.MethodPost, "/api/v1/cart/items", id,
		map[string]interface{}{"product_id": 1, "quantity": 2})
	doRequest(router, http.MethodPost, "/api/v1/cart/items", id,
		map[string]interface{}{"product_id": 2, "quantity": 1})

	w := doRequest(router, http.MethodDelete, "/api/v1/cart", id, nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode(t, w)
	assert.Len(t, resp["items"], 0)
	assert.Equal(t, float64(0), resp["total_items"])
	assert.Equal(t, "0", resp["total_amount"])
}

func TestCloseSession(t *testing.T) {
	router := setupRouter()
	id := newSession(t, router)

	w := doRequest(router, http.MethodDelete, "/api/v1/sessions/"+id, "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(router, http.MethodGet, "/api/v1/cart", id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
