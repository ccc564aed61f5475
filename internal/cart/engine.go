// Package cart implements the cart aggregation engine: an ordered set
// of line items keyed by product id, with totals recomputed from the
// lines on every mutation.
package cart

import (
	"sync"

	"catalog-service/internal/models"
	"catalog-service/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Engine owns one session's cart. Operations are total: invalid
// quantities are normalized (<= 0 removes the line) rather than
// rejected, and no operation performs I/O or returns an error.
type Engine struct {
	mu     sync.Mutex
	logger *zap.Logger

	// lines preserves insertion order for stable display; index maps
	// product id to its position in lines.
	lines  []models.CartLine
	index  map[int64]int
	totals models.Totals
}

// NewEngine creates an empty cart.
func NewEngine() *Engine {
	return &Engine{
		logger: util.GetLogger(),
		index:  make(map[int64]int),
		totals: models.Totals{TotalAmount: decimal.Zero},
	}
}

// AddItem merges quantity into an existing line for the product, or
// appends a new line with a snapshot of the product's display fields.
// Quantities below 1 are treated as 1.
func (e *Engine) AddItem(product models.Product, quantity int) {
	if quantity < 1 {
		quantity = 1
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if i, ok := e.index[product.ID]; ok {
		e.lines[i].Quantity += quantity
	} else {
		e.index[product.ID] = len(e.lines)
		e.lines = append(e.lines, models.CartLine{
			ProductID: product.ID,
			Product:   product,
			Quantity:  quantity,
		})
	}

	e.recompute()
	util.CartMutationsTotal.WithLabelValues(models.CartActionAdd).Inc()
	e.logger.Debug("Cart item added",
		zap.Int64("product_id", product.ID),
		zap.Int("quantity", quantity))
}

// SetQuantity sets a line's quantity to the exact value. A quantity of
// zero or less removes the line. Absent product ids are a no-op.
func (e *Engine) SetQuantity(productID int64, quantity int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	i, ok := e.index[productID]
	if !ok {
		return
	}

	if quantity <= 0 {
		e.removeAt(i)
	} else {
		e.lines[i].Quantity = quantity
	}

	e.recompute()
	util.CartMutationsTotal.WithLabelValues(models.CartActionUpdate).Inc()
}

// RemoveItem deletes the line for the product id; no-op if absent.
func (e *Engine) RemoveItem(productID int64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	i, ok := e.index[productID]
	if !ok {
		return
	}

	e.removeAt(i)
	e.recompute()
	util.CartMutationsTotal.WithLabelValues(models.CartActionRemove).Inc()
}

// Clear removes every line and zeroes the totals.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.lines = nil
	e.index = make(map[int64]int)
	e.recompute()
	util.CartMutationsTotal.WithLabelValues(models.CartActionClear).Inc()
}

// removeAt deletes the line at position i, preserving the order of the
// remaining lines. Called with the mutex held.
func (e *Engine) removeAt(i int) {
	id := e.lines[i].ProductID
	e.lines = append(e.lines[:i], e.lines[i+1:]...)
	delete(e.index, id)
	for j := i; j < len(e.lines); j++ {
		e.index[e.lines[j].ProductID] = j
	}
}

// recompute rebuilds the totals and line subtotals from the lines.
// Totals are never incremented in place, so they cannot drift from the
// lines. Called with the mutex held.
func (e *Engine) recompute() {
	items := 0
	amount := decimal.Zero
	for i := range e.lines {
		qty := decimal.NewFromInt(int64(e.lines[i].Quantity))
		e.lines[i].Subtotal = e.lines[i].Product.Price.Mul(qty)
		items += e.lines[i].Quantity
		amount = amount.Add(e.lines[i].Subtotal)
	}
	e.totals = models.Totals{TotalItems: items, TotalAmount: amount}
}

// Lines returns a copy of the cart lines in insertion order.
func (e *Engine) Lines() []models.CartLine {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]models.CartLine, len(e.lines))
	copy(out, e.lines)
	return out
}

// Totals returns the current aggregates, always consistent with the
// lines.
func (e *Engine) Totals() models.Totals {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.totals
}
