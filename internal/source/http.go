package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"catalog-service/internal/models"
	"catalog-service/internal/util"

	"go.uber.org/zap"
)

const defaultTimeout = 10 * time.Second

// HTTPSource fetches the catalog from the remote store API
// (fakestoreapi-shaped endpoints).
type HTTPSource struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

var _ Source = (*HTTPSource)(nil)

// NewHTTPSource creates a store API client. A zero timeout falls back
// to the 10s default.
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  util.GetLogger(),
	}
}

// Products fetches the full product collection.
func (s *HTTPSource) Products(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := s.getJSON(ctx, "/products", &products); err != nil {
		return nil, err
	}
	return products, nil
}

// ProductsByCategory fetches products for a single category.
func (s *HTTPSource) ProductsByCategory(ctx context.Context, category string) ([]models.Product, error) {
	var products []models.Product
	endpoint := "/products/category/" + url.PathEscape(category)
	if err := s.getJSON(ctx, endpoint, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Categories fetches the distinct category list.
func (s *HTTPSource) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := s.getJSON(ctx, "/products/categories", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *HTTPSource) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	ctx, span := util.StartSpan(ctx, "HTTPSource.GET "+endpoint)
	defer span.End()

	start := time.Now()
	defer func() {
		util.StoreFetchLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+endpoint, nil)
	if err != nil {
		return &NetworkError{Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		util.StoreFetchesFailedTotal.WithLabelValues(endpoint).Inc()
		s.logger.Warn("Store API request failed",
			zap.String("endpoint", endpoint),
			zap.Error(err))
		return &NetworkError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		util.StoreFetchesFailedTotal.WithLabelValues(endpoint).Inc()
		s.logger.Warn("Store API returned non-success status",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode))
		return &NetworkError{
			Endpoint: endpoint,
			Err:      fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		util.StoreFetchesFailedTotal.WithLabelValues(endpoint).Inc()
		return &NetworkError{
			Endpoint: endpoint,
			Err:      fmt.Errorf("decode response: %w", err),
		}
	}

	return nil
}
