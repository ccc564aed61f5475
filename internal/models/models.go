package models

import "github.com/shopspring/decimal"

// Product is a catalog item as delivered by the remote store API.
// The JSON shape (id, title, price, description, category, image,
// rating{rate,count}) is the upstream contract and must not drift.
// Products are immutable here; a refetch replaces the whole collection.
type Product struct {
	ID          int64           `db:"id" json:"id"`
	Title       string          `db:"title" json:"title"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Description string          `db:"description" json:"description"`
	Category    string          `db:"category" json:"category"`
	Image       string          `db:"image" json:"image"`
	Rating      Rating          `json:"rating"`
}

// Rating is the aggregate customer rating attached to a product.
type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// SortKey selects the ordering of the derived catalog view.
type SortKey string

const (
	SortNameAsc    SortKey = "name-asc"
	SortPriceAsc   SortKey = "price-asc"
	SortPriceDesc  SortKey = "price-desc"
	SortRatingDesc SortKey = "rating-desc"
)

// Valid reports whether k is one of the known sort keys.
func (k SortKey) Valid() bool {
	switch k {
	case SortNameAsc, SortPriceAsc, SortPriceDesc, SortRatingDesc:
		return true
	}
	return false
}

// FilterSpec is the complete set of constraints applied to the catalog.
// Every field is always defined; partial updates merge onto the previous
// complete spec via FilterUpdate.
type FilterSpec struct {
	Category    string          `json:"category"`
	MinPrice    decimal.Decimal `json:"min_price"`
	MaxPrice    decimal.Decimal `json:"max_price"`
	SortKey     SortKey         `json:"sort_key"`
	SearchQuery string          `json:"search_query"`
}

// FilterUpdate is a partial filter change. Nil fields retain the value
// from the current spec; set fields overwrite it.
type FilterUpdate struct {
	Category    *string          `json:"category,omitempty"`
	MinPrice    *decimal.Decimal `json:"min_price,omitempty"`
	MaxPrice    *decimal.Decimal `json:"max_price,omitempty"`
	SortKey     *SortKey         `json:"sort_key,omitempty"`
	SearchQuery *string          `json:"search_query,omitempty"`
}

// CartLine is one product's entry in a cart: the display snapshot captured
// at add time plus a positive quantity. Lines with quantity <= 0 never
// exist; they are removed instead.
type CartLine struct {
	ProductID int64           `json:"product_id"`
	Product   Product         `json:"product"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Totals are the cart aggregates, always recomputed from the lines.
type Totals struct {
	TotalItems  int             `json:"total_items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// CatalogStatus is the product-load lifecycle state.
type CatalogStatus string

const (
	CatalogIdle    CatalogStatus = "idle"
	CatalogLoading CatalogStatus = "loading"
	CatalogReady   CatalogStatus = "ready"
	CatalogFailed  CatalogStatus = "failed"
)
