package catalog

import (
	"testing"

	"catalog-service/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id int64, title string, price float64, category string, rate float64) models.Product {
	return models.Product{
		ID:       id,
		Title:    title,
		Price:    decimal.NewFromFloat(price),
		Category: category,
		Rating:   models.Rating{Rate: rate, Count: 10},
	}
}

func baseSpec() models.FilterSpec {
	return models.FilterSpec{
		Category:    "",
		MinPrice:    decimal.Zero,
		MaxPrice:    decimal.NewFromInt(1000),
		SortKey:     models.SortNameAsc,
		SearchQuery: "",
	}
}

func ids(products []models.Product) []int64 {
	out := make([]int64, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func TestApplyCategoryFilter(t *testing.T) {
	products := []models.Product{
		product(1, "Mug", 10, "a", 4.9),
		product(2, "Lamp", 20, "b", 3.0),
	}

	spec := baseSpec()
	spec.Category = "a"

	view := Apply(products, spec)
	assert.Equal(t, []int64{1}, ids(view))
}

func TestApplyPriceRangeInclusive(t *testing.T) {
	products := []models.Product{
		product(1, "A", 5, "a", 4),
		product(2, "B", 10, "a", 4),
		product(3, "C", 20, "a", 4),
		product(4, "D", 20.01, "a", 4),
	}

	spec := baseSpec()
	spec.MinPrice = decimal.NewFromInt(5)
	spec.MaxPrice = decimal.NewFromInt(20)

	view := Apply(products, spec)
	assert.Equal(t, []int64{1, 2, 3}, ids(view))
}

func TestApplyMinGreaterThanMaxYieldsEmpty(t *testing.T) {
	products := []models.Product{
		product(1, "A", 5, "a", 4),
		product(2, "B", 10, "a", 4),
	}

	spec := baseSpec()
	spec.MinPrice = decimal.NewFromInt(100)
	spec.MaxPrice = decimal.NewFromInt(1)

	view := Apply(products, spec)
	assert.Empty(t, view)
}

func TestApplySearchMatchesTitleAndDescription(t *testing.T) {
	p1 := product(1, "Wireless Mouse", 25, "electronics", 4)
	p2 := product(2, "Keyboard", 45, "electronics", 4)
	p2.Description = "A WIRELESS mechanical keyboard"
	p3 := product(3, "Desk", 120, "furniture", 4)

	spec := baseSpec()
	spec.SearchQuery = "wireless"

	view := Apply([]models.Product{p1, p2, p3}, spec)
	assert.Equal(t, []int64{1, 2}, ids(view))
}

func TestApplySortKeys(t *testing.T) {
	products := []models.Product{
		product(1, "banana", 30, "a", 2.0),
		product(2, "Apple", 10, "a", 4.5),
		product(3, "cherry", 20, "a", 3.5),
	}

	tests := []struct {
		key  models.SortKey
		want []int64
	}{
		{models.SortNameAsc, []int64{2, 1, 3}},
		{models.SortPriceAsc, []int64{2, 3, 1}},
		{models.SortPriceDesc, []int64{1, 3, 2}},
		{models.SortRatingDesc, []int64{2, 3, 1}},
	}

	for _, tt := range tests {
		spec := baseSpec()
		spec.SortKey = tt.key
		view := Apply(products, spec)
		assert.Equal(t, tt.want, ids(view), "sort key %s", tt.key)
	}
}

func TestApplySortIsStable(t *testing.T) {
	// Equal prices: the filter-stage (input) order must survive the sort.
	products := []models.Product{
		product(1, "C", 10, "a", 4),
		product(2, "A", 10, "a", 4),
		product(3, "B", 10, "a", 4),
	}

	spec := baseSpec()
	spec.SortKey = models.SortPriceAsc

	view := Apply(products, spec)
	assert.Equal(t, []int64{1, 2, 3}, ids(view))
}

func TestApplyIsDeterministic(t *testing.T) {
	products := []models.Product{
		product(1, "banana", 30, "a", 2.0),
		product(2, "Apple", 10, "b", 4.5),
		product(3, "cherry", 20, "a", 3.5),
		product(4, "apricot", 10, "b", 4.5),
	}

	spec := baseSpec()
	spec.SortKey = models.SortRatingDesc
	spec.Category = "b"

	first := Apply(products, spec)
	for i := 0; i < 50; i++ {
		assert.Equal(t, ids(first), ids(Apply(products, spec)))
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	products := []models.Product{
		product(1, "b", 30, "a", 2.0),
		product(2, "a", 10, "a", 4.5),
	}

	spec := baseSpec()
	view := Apply(products, spec)

	require.Equal(t, []int64{2, 1}, ids(view))
	assert.Equal(t, []int64{1, 2}, ids(products))
}
