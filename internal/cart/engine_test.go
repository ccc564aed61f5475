package cart

import (
	"testing"

	"catalog-service/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id int64, title string, price float64) models.Product {
	return models.Product{
		ID:     id,
		Title:  title,
		Price:  decimal.NewFromFloat(price),
		Rating: models.Rating{Rate: 4.0, Count: 5},
	}
}

func lineIDs(lines []models.CartLine) []int64 {
	out := make([]int64, len(lines))
	for i, l := range lines {
		out[i] = l.ProductID
	}
	return out
}

// freshTotals recomputes totals directly from the lines, independently
// of the engine, to check for drift.
func freshTotals(lines []models.CartLine) models.Totals {
	items := 0
	amount := decimal.Zero
	for _, l := range lines {
		items += l.Quantity
		amount = amount.Add(l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return models.Totals{TotalItems: items, TotalAmount: amount}
}

func TestAddItemMergesSameProduct(t *testing.T) {
	e := NewEngine()

	e.AddItem(product(1, "Mug", 10), 1)
	e.AddItem(product(1, "Mug", 10), 1)

	lines := e.Lines()
	require.Len(t, lines, 1, "same product id must merge into one line")
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestAddItemScenario(t *testing.T) {
	e := NewEngine()

	e.AddItem(product(1, "Mug", 10), 2)
	e.AddItem(product(1, "Mug", 10), 1)

	lines := e.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.True(t, e.Totals().TotalAmount.Equal(decimal.NewFromInt(30)),
		"want 30.00, got %s", e.Totals().TotalAmount)
	assert.Equal(t, 3, e.Totals().TotalItems)
}

func TestAddItemNormalizesQuantity(t *testing.T) {
	e := NewEngine()

	e.AddItem(product(1, "Mug", 10), 0)
	e.AddItem(product(2, "Pen", 5), -3)

	lines := e.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, 1, lines[0].Quantity)
	assert.Equal(t, 1, lines[1].Quantity)
}

func TestSetQuantityIsExactNotAdditive(t *testing.T) {
	e := NewEngine()

	e.AddItem(product(1, "Mug", 10), 5)
	e.SetQuantity(1, 2)

	lines := e.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.True(t, e.Totals().TotalAmount.Equal(decimal.NewFromInt(20)))
}

func TestSetQuantityZeroRemovesLine(t *testing.T) {
	e := NewEngine()

	e.AddItem(product(1, "Mug", 10), 2)
	e.SetQuantity(1, 0)

	assert.Empty(t, e.Lines())
	assert.Equal(t, 0, e.Totals().TotalItems)
	assert.True(t, e.Totals().TotalAmount.IsZero())
}

func TestSetQuantityNegativeRemovesLine(t *testing.T) {
	e := NewEngine()

	e.AddItem(product(1, "Mug", 10), 2)
	e.SetQuantity(1, -4)

	assert.Empty(t, e.Lines())
}

func TestSetQuantityAbsentProductIsNoOp(t *testing.T) {
	e := NewEngine()

	e.AddItem(product(1, "Mug", 10), 2)
	e.SetQuantity(99, 0)
	e.SetQuantity(99, -1)

	require.Len(t, e.Lines(), 1)
	assert.Equal(t, 2, e.Lines()[0].Quantity)
}

func TestRemoveItem(t *testing.T) {
	e := NewEngine()

	e.AddItem(product(1, "Mug", 10), 1)
	e.AddItem(product(2, "Pen", 5), 1)
	e.RemoveItem(1)

	assert.Equal(t, []int64{2}, lineIDs(e.Lines()))

	// absent id is a no-op
	e.RemoveItem(99)
	assert.Equal(t, []int64{2}, lineIDs(e.Lines()))
}

func TestClear(t *testing.T) {
	e := NewEngine()

	e.AddItem(product(1, "Mug", 10), 2)
	e.AddItem(product(2, "Pen", 5), 3)
	e.Clear()

	assert.Empty(t, e.Lines())
	assert.Equal(t, 0, e.Totals().TotalItems)
	assert.True(t, e.Totals().TotalAmount.IsZero())
}

func TestInsertionOrderSurvivesRemoval(t *testing.T) {
	e := NewEngine()

	e.AddItem(product(1, "Mug", 10), 1)
	e.AddItem(product(2, "Pen", 5), 1)
	e.AddItem(product(3, "Desk", 120), 1)
	e.RemoveItem(2)
	e.AddItem(product(4, "Lamp", 40), 1)

	assert.Equal(t, []int64{1, 3, 4}, lineIDs(e.Lines()))

	// merging into an existing line does not move it
	e.AddItem(product(3, "Desk", 120), 2)
	assert.Equal(t, []int64{1, 3, 4}, lineIDs(e.Lines()))
}

func TestSnapshotKeptFromFirstAdd(t *testing.T) {
	e := NewEngine()

	e.AddItem(product(1, "Mug", 10), 1)

	// a later add for the same id carries a changed snapshot; the
	// original display fields stay
	changed := product(1, "Mug v2", 12)
	e.AddItem(changed, 1)

	lines := e.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "Mug", lines[0].Product.Title)
	assert.True(t, lines[0].Product.Price.Equal(decimal.NewFromInt(10)))
}

func TestTotalsNeverDrift(t *testing.T) {
	e := NewEngine()

	e.AddItem(product(1, "Mug", 10.99), 2)
	e.AddItem(product(2, "Pen", 5.25), 1)
	e.AddItem(product(1, "Mug", 10.99), 3)
	e.SetQuantity(2, 7)
	e.AddItem(product(3, "Desk", 120.10), 1)
	e.RemoveItem(1)
	e.SetQuantity(3, 0)
	e.AddItem(product(4, "Lamp", 0.99), 4)

	want := freshTotals(e.Lines())
	got := e.Totals()
	assert.Equal(t, want.TotalItems, got.TotalItems)
	assert.True(t, got.TotalAmount.Equal(want.TotalAmount),
		"want %s, got %s", want.TotalAmount, got.TotalAmount)
}

func TestLineSubtotals(t *testing.T) {
	e := NewEngine()

	e.AddItem(product(1, "Mug", 10.50), 3)

	lines := e.Lines()
	require.Len(t, lines, 1)
	assert.True(t, lines[0].Subtotal.Equal(decimal.NewFromFloat(31.5)))
}
