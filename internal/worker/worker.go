package worker

import (
	"context"
	"log"

	"shop-service/internal/broker"
	"shop-service/internal/models"
	"shop-service/internal/util"

	"go.uber.org/zap"
)

// AuditStore is the persistence surface the audit worker needs.
type AuditStore interface {
	IsEventRecorded(ctx context.Context, eventID string) (bool, error)
	RecordEvent(ctx context.Context, eventID, eventType string, orderID int64) error
}

// AuditWorker consumes order events and records them in the audit log.
// Events are recorded at most once, keyed by event id.
type AuditWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	store        AuditStore
	logger       *zap.Logger
}

// NewAuditWorker creates a new audit worker
func NewAuditWorker(consumer *broker.Consumer, store AuditStore) *AuditWorker {
	w := &AuditWorker{
		consumer: consumer,
		store:    store,
		logger:   util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnOrderCreated(func(ctx context.Context, event *models.OrderCreatedEvent) error {
		return w.record(ctx, event.BaseEvent, event.OrderID)
	})
	eventHandler.OnOrderStatusChanged(func(ctx context.Context, event *models.OrderStatusChangedEvent) error {
		return w.record(ctx, event.BaseEvent, event.OrderID)
	})
	eventHandler.OnOrderDeleted(func(ctx context.Context, event *models.OrderDeletedEvent) error {
		return w.record(ctx, event.BaseEvent, event.OrderID)
	})
	w.eventHandler = eventHandler

	return w
}

func (w *AuditWorker) record(ctx context.Context, base models.BaseEvent, orderID int64) error {
	recorded, err := w.store.IsEventRecorded(ctx, base.EventID)
	if err != nil {
		return err
	}
	if recorded {
		w.logger.Info("Event already recorded", zap.String("event_id", base.EventID))
		return nil
	}

	if err := w.store.RecordEvent(ctx, base.EventID, base.EventType, orderID); err != nil {
		return err
	}

	util.AuditEventsRecordedTotal.WithLabelValues(base.EventType).Inc()
	w.logger.Info("Order event recorded",
		zap.String("event_id", base.EventID),
		zap.String("event_type", base.EventType),
		zap.Int64("order_id", orderID))
	return nil
}

// Start starts the worker
func (w *AuditWorker) Start(ctx context.Context) error {
	log.Println("Starting audit worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *AuditWorker) Stop() error {
	log.Println("Stopping audit worker...")
	return w.consumer.Close()
}
