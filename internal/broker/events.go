package broker

import (
	"context"
	"time"

	"catalog-service/internal/models"
	"catalog-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ActivityPublisher publishes browsing activity to the analytics
// stream. Publishing is fire-and-forget from the caller's point of
// view: failures are logged, never propagated, so the engines stay
// free of broker concerns.
type ActivityPublisher struct {
	producer *Producer
	logger   *zap.Logger
}

// NewActivityPublisher creates a new activity publisher
func NewActivityPublisher(producer *Producer) *ActivityPublisher {
	return &ActivityPublisher{producer: producer, logger: util.GetLogger()}
}

func baseEvent(eventType, sessionID string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		SessionID: sessionID,
		Timestamp: time.Now(),
	}
}

// CatalogLoaded publishes a successful product load.
func (p *ActivityPublisher) CatalogLoaded(ctx context.Context, sessionID string, productCount int) {
	event := models.CatalogLoadedEvent{
		BaseEvent:    baseEvent(models.EventTypeCatalogLoaded, sessionID),
		ProductCount: productCount,
	}
	p.publish(ctx, sessionID, event)
}

// CatalogLoadFailed publishes a failed product load.
func (p *ActivityPublisher) CatalogLoadFailed(ctx context.Context, sessionID, reason string) {
	event := models.CatalogLoadFailedEvent{
		BaseEvent: baseEvent(models.EventTypeCatalogLoadFailed, sessionID),
		Reason:    reason,
	}
	p.publish(ctx, sessionID, event)
}

// CartChanged publishes a cart mutation together with the fresh totals.
func (p *ActivityPublisher) CartChanged(ctx context.Context, sessionID, action string, productID int64, quantity int, totals models.Totals) {
	event := models.CartChangedEvent{
		BaseEvent:   baseEvent(models.EventTypeCartChanged, sessionID),
		Action:      action,
		ProductID:   productID,
		Quantity:    quantity,
		TotalItems:  totals.TotalItems,
		TotalAmount: totals.TotalAmount,
	}
	p.publish(ctx, sessionID, event)
}

func (p *ActivityPublisher) publish(ctx context.Context, sessionID string, event interface{}) {
	if p == nil || p.producer == nil {
		return
	}
	if err := p.producer.PublishEvent(ctx, "session-"+sessionID, event); err != nil {
		p.logger.Warn("Failed to publish activity event",
			zap.String("session_id", sessionID),
			zap.Error(err))
	}
}
