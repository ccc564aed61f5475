// Package worker runs the analytics consumer: it reads browsing
// activity events off Kafka and turns them into metrics and log lines.
// No consumer ever mutates engine state.
package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"catalog-service/internal/broker"
	"catalog-service/internal/models"
	"catalog-service/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ActivityWorker consumes the activity topic in the background.
type ActivityWorker struct {
	consumer *broker.Consumer
	logger   *zap.Logger
}

// NewActivityWorker creates a new activity worker
func NewActivityWorker(consumer *broker.Consumer) *ActivityWorker {
	return &ActivityWorker{
		consumer: consumer,
		logger:   util.GetLogger(),
	}
}

// Start begins consuming until the context is cancelled.
func (w *ActivityWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting activity worker")
	return w.consumer.StartConsuming(ctx, w.handleMessage)
}

// Stop closes the underlying consumer.
func (w *ActivityWorker) Stop() {
	if err := w.consumer.Close(); err != nil {
		w.logger.Warn("Error closing activity consumer", zap.Error(err))
	}
}

func (w *ActivityWorker) handleMessage(ctx context.Context, msg kafka.Message) error {
	var base models.BaseEvent
	if err := json.Unmarshal(msg.Value, &base); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	util.ActivityEventsConsumedTotal.WithLabelValues(base.EventType).Inc()

	switch base.EventType {
	case models.EventTypeCatalogLoaded:
		var event models.CatalogLoadedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return fmt.Errorf("failed to unmarshal CatalogLoaded event: %w", err)
		}
		w.logger.Info("Catalog loaded",
			zap.String("session_id", event.SessionID),
			zap.Int("product_count", event.ProductCount))

	case models.EventTypeCatalogLoadFailed:
		var event models.CatalogLoadFailedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return fmt.Errorf("failed to unmarshal CatalogLoadFailed event: %w", err)
		}
		w.logger.Warn("Catalog load failed",
			zap.String("session_id", event.SessionID),
			zap.String("reason", event.Reason))

	case models.EventTypeCartChanged:
		var event models.CartChangedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return fmt.Errorf("failed to unmarshal CartChanged event: %w", err)
		}
		w.logger.Info("Cart changed",
			zap.String("session_id", event.SessionID),
			zap.String("action", event.Action),
			zap.Int64("product_id", event.ProductID),
			zap.Int("total_items", event.TotalItems))

	default:
		w.logger.Debug("Unhandled event type", zap.String("type", base.EventType))
	}

	return nil
}
