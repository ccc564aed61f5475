package catalog

import (
	"sort"
	"strings"

	"catalog-service/internal/models"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Apply recomputes the derived view: filter the source collection by
// spec, then order it by the sort key. It is a pure function of its
// inputs; the same (products, spec) always yields the same sequence.
// The input slice is never mutated.
func Apply(products []models.Product, spec models.FilterSpec) []models.Product {
	filtered := make([]models.Product, 0, len(products))

	query := strings.ToLower(spec.SearchQuery)
	for _, p := range products {
		if spec.Category != "" && p.Category != spec.Category {
			continue
		}
		if p.Price.Cmp(spec.MinPrice) < 0 || p.Price.Cmp(spec.MaxPrice) > 0 {
			continue
		}
		if query != "" && !matchesQuery(p, query) {
			continue
		}
		filtered = append(filtered, p)
	}

	sortView(filtered, spec.SortKey)
	return filtered
}

// matchesQuery reports whether the lowercased query occurs in the
// product title or description.
func matchesQuery(p models.Product, query string) bool {
	return strings.Contains(strings.ToLower(p.Title), query) ||
		strings.Contains(strings.ToLower(p.Description), query)
}

// sortView orders the filtered sequence in place. The sort is stable:
// products with equal keys keep their filter-stage order. Unknown keys
// leave the order untouched.
func sortView(view []models.Product, key models.SortKey) {
	switch key {
	case models.SortNameAsc:
		col := collate.New(language.English)
		sort.SliceStable(view, func(i, j int) bool {
			return col.CompareString(view[i].Title, view[j].Title) < 0
		})
	case models.SortPriceAsc:
		sort.SliceStable(view, func(i, j int) bool {
			return view[i].Price.Cmp(view[j].Price) < 0
		})
	case models.SortPriceDesc:
		sort.SliceStable(view, func(i, j int) bool {
			return view[i].Price.Cmp(view[j].Price) > 0
		})
	case models.SortRatingDesc:
		sort.SliceStable(view, func(i, j int) bool {
			return view[i].Rating.Rate > view[j].Rating.Rate
		})
	}
}
