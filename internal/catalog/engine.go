// Package catalog implements the derived-state engine for catalog
// browsing: it owns the source product collection, the active filter
// spec and the pagination cursor, and recomputes the filtered, sorted
// view whenever either input changes.
package catalog

import (
	"context"
	"sync"
	"time"

	"catalog-service/internal/models"
	"catalog-service/internal/source"
	"catalog-service/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Config holds the per-session browsing defaults.
type Config struct {
	PageSize        int
	DefaultMinPrice decimal.Decimal
	DefaultMaxPrice decimal.Decimal
}

// Engine owns one session's catalog state. Commands run to completion
// under the engine mutex, so a read never observes a partial recompute.
// The only suspending points are the Load* fetches, which release the
// mutex while the request is in flight.
type Engine struct {
	mu     sync.Mutex
	src    source.Source
	logger *zap.Logger

	products   []models.Product
	view       []models.Product
	categories []string

	filter   models.FilterSpec
	defaults models.FilterSpec
	page     int
	pageSize int

	status  models.CatalogStatus
	lastErr string

	// loadGen identifies the most recently issued product load. A load
	// whose generation is stale by the time its fetch settles has been
	// superseded and its result is discarded, so the newest issued load
	// always determines the final state.
	loadGen uint64
	closed  bool
}

// NewEngine creates an idle engine with the documented filter defaults:
// no category, the configured price range, name-ascending sort, empty
// search, page 1.
func NewEngine(src source.Source, cfg Config) *Engine {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 12
	}
	defaults := models.FilterSpec{
		Category:    "",
		MinPrice:    cfg.DefaultMinPrice,
		MaxPrice:    cfg.DefaultMaxPrice,
		SortKey:     models.SortNameAsc,
		SearchQuery: "",
	}
	return &Engine{
		src:      src,
		logger:   util.GetLogger(),
		filter:   defaults,
		defaults: defaults,
		page:     1,
		pageSize: cfg.PageSize,
		status:   models.CatalogIdle,
	}
}

// LoadProducts fetches the full product collection and replaces the
// source products on success. Failures are recorded in the status and
// error fields and leave the previous products intact; they are never
// returned to the caller.
func (e *Engine) LoadProducts(ctx context.Context) {
	e.load(ctx, func(ctx context.Context) ([]models.Product, error) {
		return e.src.Products(ctx)
	})
}

// LoadProductsByCategory is the alternative load path: it replaces the
// source products with a single category's products.
func (e *Engine) LoadProductsByCategory(ctx context.Context, category string) {
	e.load(ctx, func(ctx context.Context) ([]models.Product, error) {
		return e.src.ProductsByCategory(ctx, category)
	})
}

func (e *Engine) load(ctx context.Context, fetch func(context.Context) ([]models.Product, error)) {
	ctx, span := util.StartSpan(ctx, "CatalogEngine.Load")
	defer span.End()

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.loadGen++
	gen := e.loadGen
	e.status = models.CatalogLoading
	e.lastErr = ""
	e.mu.Unlock()

	products, err := fetch(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || gen != e.loadGen {
		util.CatalogLoadsDiscardedTotal.Inc()
		e.logger.Debug("Discarding superseded load result", zap.Uint64("generation", gen))
		return
	}

	if err != nil {
		e.status = models.CatalogFailed
		e.lastErr = err.Error()
		util.CatalogLoadsFailedTotal.WithLabelValues(failureReason(err)).Inc()
		e.logger.Warn("Product load failed", zap.Error(err))
		return
	}

	e.products = products
	e.status = models.CatalogReady
	e.recompute()
	util.CatalogLoadsTotal.Inc()
	e.logger.Info("Products loaded", zap.Int("count", len(products)))
}

// LoadCategories fills the distinct category list used by filter UI.
// It is independent of product loading: a failure here is logged but
// does not touch the catalog status.
func (e *Engine) LoadCategories(ctx context.Context) {
	ctx, span := util.StartSpan(ctx, "CatalogEngine.LoadCategories")
	defer span.End()

	categories, err := e.src.Categories(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	if err != nil {
		e.logger.Warn("Category load failed", zap.Error(err))
		return
	}
	e.categories = categories
}

// UpdateFilter merges the partial update onto the current spec, field
// by field: set fields overwrite, nil fields retain. The derived view
// is recomputed and the page resets to 1, even for an empty update.
func (e *Engine) UpdateFilter(u models.FilterUpdate) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if u.Category != nil {
		e.filter.Category = *u.Category
	}
	if u.MinPrice != nil {
		e.filter.MinPrice = *u.MinPrice
	}
	if u.MaxPrice != nil {
		e.filter.MaxPrice = *u.MaxPrice
	}
	if u.SortKey != nil {
		e.filter.SortKey = *u.SortKey
	}
	if u.SearchQuery != nil {
		e.filter.SearchQuery = *u.SearchQuery
	}

	e.recompute()
	e.page = 1
}

// ClearFilter resets the spec to the session defaults, recomputes and
// resets the page to 1.
func (e *Engine) ClearFilter() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.filter = e.defaults
	e.recompute()
	e.page = 1
}

// SetPage moves the pagination cursor. The page is not validated
// against the view length; an out-of-range page yields an empty slice
// from VisiblePage rather than an error. Values below 1 clamp to 1.
func (e *Engine) SetPage(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if n < 1 {
		n = 1
	}
	e.page = n
}

// Close marks the engine disposed. Any load still in flight is
// discarded when it settles; no result is ever written to a closed
// engine.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
}

// recompute rebuilds the derived view from scratch. Called with the
// mutex held whenever the source products or the filter spec change.
func (e *Engine) recompute() {
	start := time.Now()
	e.view = Apply(e.products, e.filter)
	util.CatalogRecomputeLatency.Observe(time.Since(start).Seconds())
}

// VisiblePage returns a copy of the current page of the derived view.
// A page past the end of the view yields an empty slice.
func (e *Engine) VisiblePage() []models.Product {
	e.mu.Lock()
	defer e.mu.Unlock()

	lo := (e.page - 1) * e.pageSize
	if lo >= len(e.view) {
		return []models.Product{}
	}
	hi := lo + e.pageSize
	if hi > len(e.view) {
		hi = len(e.view)
	}

	page := make([]models.Product, hi-lo)
	copy(page, e.view[lo:hi])
	return page
}

// Lookup finds a product by id in the source collection.
func (e *Engine) Lookup(productID int64) (models.Product, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, p := range e.products {
		if p.ID == productID {
			return p, true
		}
	}
	return models.Product{}, false
}

// Status returns the load lifecycle state.
func (e *Engine) Status() models.CatalogStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Err returns the last load error message, empty when none.
func (e *Engine) Err() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// Categories returns a copy of the category list.
func (e *Engine) Categories() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]string, len(e.categories))
	copy(out, e.categories)
	return out
}

// Filter returns the active filter spec.
func (e *Engine) Filter() models.FilterSpec {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.filter
}

// SourceCount returns the size of the source product collection.
func (e *Engine) SourceCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.products)
}

// FilteredCount returns the length of the derived view.
func (e *Engine) FilteredCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.view)
}

// Page returns the current 1-based page number.
func (e *Engine) Page() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.page
}

// PageSize returns the fixed per-session page size.
func (e *Engine) PageSize() int {
	return e.pageSize
}

func failureReason(err error) string {
	if source.IsNetworkError(err) {
		return "network"
	}
	return "other"
}
