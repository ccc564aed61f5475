package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types published to the activity stream
const (
	EventTypeCatalogLoaded     = "CatalogLoaded"
	EventTypeCatalogLoadFailed = "CatalogLoadFailed"
	EventTypeCartChanged       = "CartChanged"
)

// Cart actions carried by CartChangedEvent
const (
	CartActionAdd    = "add"
	CartActionUpdate = "update"
	CartActionRemove = "remove"
	CartActionClear  = "clear"
)

// BaseEvent contains common event fields
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
}

// CatalogLoadedEvent is published after a successful product load
type CatalogLoadedEvent struct {
	BaseEvent
	ProductCount int `json:"product_count"`
}

// CatalogLoadFailedEvent is published when a product load fails
type CatalogLoadFailedEvent struct {
	BaseEvent
	Reason string `json:"reason"`
}

// CartChangedEvent is published after any cart mutation
type CartChangedEvent struct {
	BaseEvent
	Action      string          `json:"action"`
	ProductID   int64           `json:"product_id,omitempty"`
	Quantity    int             `json:"quantity,omitempty"`
	TotalItems  int             `json:"total_items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}
