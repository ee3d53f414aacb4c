package worker

import (
	"context"
	"log"
	"time"

	"trade-service/internal/broker"
	"trade-service/internal/models"
	"trade-service/internal/redisclient"
)

// processedTTL bounds how long consumed event ids are remembered for
// idempotency.
const processedTTL = 7 * 24 * time.Hour

// AnalyticsWorker consumes the trade event stream and maintains the
// per-dealer counters behind dealer analytics. Handling is idempotent per
// event id.
type AnalyticsWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	redis        *redisclient.Client
}

// NewAnalyticsWorker creates a new analytics worker
func NewAnalyticsWorker(consumer *broker.Consumer, redis *redisclient.Client) *AnalyticsWorker {
	w := &AnalyticsWorker{
		consumer: consumer,
		redis:    redis,
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnTradeRequestCreated(w.handleCreated)
	eventHandler.OnInspectionStatusChanged(w.handleStatusChanged)
	eventHandler.OnInvoiceStatusChanged(w.handleInvoiceChanged)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *AnalyticsWorker) Start(ctx context.Context) error {
	log.Println("Starting analytics worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *AnalyticsWorker) Stop() error {
	log.Println("Stopping analytics worker...")
	return w.consumer.Close()
}

func (w *AnalyticsWorker) handleCreated(ctx context.Context, event *models.TradeRequestCreatedEvent) error {
	first, err := w.redis.MarkEventProcessed(ctx, event.EventID, processedTTL)
	if err != nil {
		return err
	}
	if !first {
		return nil
	}
	return w.redis.IncrDealerCounter(ctx, event.DealerID, "total", 1)
}

func (w *AnalyticsWorker) handleStatusChanged(ctx context.Context, event *models.InspectionStatusChangedEvent) error {
	first, err := w.redis.MarkEventProcessed(ctx, event.EventID, processedTTL)
	if err != nil {
		return err
	}
	if !first {
		return nil
	}

	var field string
	switch event.To {
	case models.InspectionFAWApproved:
		field = "approved"
	case models.InspectionFAWRejected, models.InspectionBARejected:
		field = "rejected"
	case models.InspectionReadyForSale:
		field = "readyForSale"
	case models.InspectionConsigned:
		field = "consigned"
	default:
		return nil
	}
	return w.redis.IncrDealerCounter(ctx, event.DealerID, field, 1)
}

func (w *AnalyticsWorker) handleInvoiceChanged(ctx context.Context, event *models.InvoiceStatusChangedEvent) error {
	first, err := w.redis.MarkEventProcessed(ctx, event.EventID, processedTTL)
	if err != nil {
		return err
	}
	if !first {
		return nil
	}

	switch event.Status {
	case models.InvoiceRequested:
		return w.redis.IncrDealerCounter(ctx, event.DealerID, "invoiced", 1)
	case models.InvoiceCompleted:
		return w.redis.IncrDealerCounter(ctx, event.DealerID, "completedInvoices", 1)
	}
	return nil
}
