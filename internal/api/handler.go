package api

import (
	"net/http"
	"strconv"
	"time"

	"catalog-service/internal/broker"
	"catalog-service/internal/models"
	"catalog-service/internal/session"
	"catalog-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	sessions  *session.Manager
	publisher *broker.ActivityPublisher
}

// NewHandler creates a new HTTP handler
func NewHandler(sessions *session.Manager, publisher *broker.ActivityPublisher) *Handler {
	return &Handler{
		sessions:  sessions,
		publisher: publisher,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/sessions", h.createSession)
		v1.DELETE("/sessions/:id", h.closeSession)

		v1.GET("/catalog/products", h.getProducts)
		v1.POST("/catalog/refresh", h.refreshCatalog)
		v1.GET("/catalog/categories", h.getCategories)
		v1.PUT("/catalog/filters", h.updateFilters)
		v1.DELETE("/catalog/filters", h.clearFilters)
		v1.PUT("/catalog/page", h.setPage)

		v1.GET("/cart", h.getCart)
		v1.POST("/cart/items", h.addCartItem)
		v1.PUT("/cart/items/:id", h.setCartItemQuantity)
		v1.DELETE("/cart/items/:id", h.removeCartItem)
		v1.DELETE("/cart", h.clearCart)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// sessionFrom resolves the caller's session from the X-Session-ID
// header or the session query param. Writes a 404 and returns false
// when the session is missing or unknown.
func (h *Handler) sessionFrom(c *gin.Context) (*session.Session, bool) {
	id := c.GetHeader("X-Session-ID")
	if id == "" {
		id = c.Query("session")
	}
	if id == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Missing session id"})
		return nil, false
	}

	s, ok := h.sessions.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown session"})
		return nil, false
	}
	return s, true
}

// createSession creates a browsing session and performs the initial
// product and category loads.
func (h *Handler) createSession(c *gin.Context) {
	s := h.sessions.Create()

	ctx := c.Request.Context()
	s.Catalog.LoadProducts(ctx)
	s.Catalog.LoadCategories(ctx)
	h.publishLoadResult(c, s)

	c.JSON(http.StatusCreated, gin.H{
		"session_id": s.ID,
		"status":     s.Catalog.Status(),
		"error":      s.Catalog.Err(),
	})
}

// closeSession disposes a session
func (h *Handler) closeSession(c *gin.Context) {
	h.sessions.Close(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// getProducts returns the visible page of the derived view plus
// pagination and lifecycle metadata.
func (h *Handler) getProducts(c *gin.Context) {
	s, ok := h.sessionFrom(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products":       s.Catalog.VisiblePage(),
		"status":         s.Catalog.Status(),
		"error":          s.Catalog.Err(),
		"filters":        s.Catalog.Filter(),
		"page":           s.Catalog.Page(),
		"page_size":      s.Catalog.PageSize(),
		"total_filtered": s.Catalog.FilteredCount(),
	})
}

type refreshRequest struct {
	Category string `json:"category"`
}

// refreshCatalog reloads the product collection; with a category in
// the body it uses the per-category load path.
func (h *Handler) refreshCatalog(c *gin.Context) {
	s, ok := h.sessionFrom(c)
	if !ok {
		return
	}

	var req refreshRequest
	_ = c.ShouldBindJSON(&req)

	ctx := c.Request.Context()
	if req.Category != "" {
		s.Catalog.LoadProductsByCategory(ctx, req.Category)
	} else {
		s.Catalog.LoadProducts(ctx)
	}
	h.publishLoadResult(c, s)

	c.JSON(http.StatusOK, gin.H{
		"status": s.Catalog.Status(),
		"error":  s.Catalog.Err(),
	})
}

// getCategories returns the distinct category list
func (h *Handler) getCategories(c *gin.Context) {
	s, ok := h.sessionFrom(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": s.Catalog.Categories()})
}

// updateFilters merges a partial filter update onto the active spec
func (h *Handler) updateFilters(c *gin.Context) {
	s, ok := h.sessionFrom(c)
	if !ok {
		return
	}

	var update models.FilterUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if update.SortKey != nil && !update.SortKey.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown sort key"})
		return
	}

	s.Catalog.UpdateFilter(update)

	c.JSON(http.StatusOK, gin.H{
		"filters":        s.Catalog.Filter(),
		"page":           s.Catalog.Page(),
		"total_filtered": s.Catalog.FilteredCount(),
	})
}

// clearFilters resets the filter spec to the session defaults
func (h *Handler) clearFilters(c *gin.Context) {
	s, ok := h.sessionFrom(c)
	if !ok {
		return
	}

	s.Catalog.ClearFilter()

	c.JSON(http.StatusOK, gin.H{
		"filters":        s.Catalog.Filter(),
		"page":           s.Catalog.Page(),
		"total_filtered": s.Catalog.FilteredCount(),
	})
}

type setPageRequest struct {
	Page int `json:"page" binding:"required,min=1"`
}

// setPage moves the pagination cursor
func (h *Handler) setPage(c *gin.Context) {
	s, ok := h.sessionFrom(c)
	if !ok {
		return
	}

	var req setPageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	s.Catalog.SetPage(req.Page)

	c.JSON(http.StatusOK, gin.H{
		"page":     s.Catalog.Page(),
		"products": s.Catalog.VisiblePage(),
	})
}

// getCart returns the ordered lines and totals
func (h *Handler) getCart(c *gin.Context) {
	s, ok := h.sessionFrom(c)
	if !ok {
		return
	}

	totals := s.Cart.Totals()
	c.JSON(http.StatusOK, gin.H{
		"items":        s.Cart.Lines(),
		"total_items":  totals.TotalItems,
		"total_amount": totals.TotalAmount,
	})
}

type addItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity"`
}

// addCartItem adds a product from the loaded catalog to the cart
func (h *Handler) addCartItem(c *gin.Context) {
	s, ok := h.sessionFrom(c)
	if !ok {
		return
	}

	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	product, found := s.Catalog.Lookup(req.ProductID)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not in catalog"})
		return
	}

	s.Cart.AddItem(product, req.Quantity)
	h.publishCartChange(c, s, models.CartActionAdd, req.ProductID, req.Quantity)

	c.JSON(http.StatusOK, h.cartResponse(s))
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// setCartItemQuantity sets a line's exact quantity; zero or less removes it
func (h *Handler) setCartItemQuantity(c *gin.Context) {
	s, ok := h.sessionFrom(c)
	if !ok {
		return
	}

	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	var req setQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	s.Cart.SetQuantity(productID, req.Quantity)
	h.publishCartChange(c, s, models.CartActionUpdate, productID, req.Quantity)

	c.JSON(http.StatusOK, h.cartResponse(s))
}

// removeCartItem deletes a line from the cart
func (h *Handler) removeCartItem(c *gin.Context) {
	s, ok := h.sessionFrom(c)
	if !ok {
		return
	}

	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	s.Cart.RemoveItem(productID)
	h.publishCartChange(c, s, models.CartActionRemove, productID, 0)

	c.JSON(http.StatusOK, h.cartResponse(s))
}

// clearCart removes every line
func (h *Handler) clearCart(c *gin.Context) {
	s, ok := h.sessionFrom(c)
	if !ok {
		return
	}

	s.Cart.Clear()
	h.publishCartChange(c, s, models.CartActionClear, 0, 0)

	c.JSON(http.StatusOK, h.cartResponse(s))
}

func (h *Handler) cartResponse(s *session.Session) gin.H {
	totals := s.Cart.Totals()
	return gin.H{
		"items":        s.Cart.Lines(),
		"total_items":  totals.TotalItems,
		"total_amount": totals.TotalAmount,
	}
}

func (h *Handler) publishLoadResult(c *gin.Context, s *session.Session) {
	ctx := c.Request.Context()
	if s.Catalog.Status() == models.CatalogFailed {
		h.publisher.CatalogLoadFailed(ctx, s.ID, s.Catalog.Err())
		return
	}
	h.publisher.CatalogLoaded(ctx, s.ID, s.Catalog.SourceCount())
}

func (h *Handler) publishCartChange(c *gin.Context, s *session.Session, action string, productID int64, quantity int) {
	h.publisher.CartChanged(c.Request.Context(), s.ID, action, productID, quantity, s.Cart.Totals())
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
