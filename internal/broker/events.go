package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"trade-service/internal/models"

	"github.com/segmentio/kafka-go"
)

// Publisher is the minimal surface the services need to emit domain events.
type Publisher interface {
	PublishTradeRequestCreated(ctx context.Context, event *models.TradeRequestCreatedEvent) error
	PublishInspectionStatusChanged(ctx context.Context, event *models.InspectionStatusChangedEvent) error
	PublishInvoiceStatusChanged(ctx context.Context, event *models.InvoiceStatusChangedEvent) error
}

// EventPublisher handles publishing domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishTradeRequestCreated publishes TradeRequestCreated event
func (ep *EventPublisher) PublishTradeRequestCreated(ctx context.Context, event *models.TradeRequestCreatedEvent) error {
	return ep.producer.PublishEvent(ctx, requestEventKey(event.RequestID), event)
}

// PublishInspectionStatusChanged publishes InspectionStatusChanged event
func (ep *EventPublisher) PublishInspectionStatusChanged(ctx context.Context, event *models.InspectionStatusChangedEvent) error {
	return ep.producer.PublishEvent(ctx, requestEventKey(event.RequestID), event)
}

// PublishInvoiceStatusChanged publishes InvoiceStatusChanged event
func (ep *EventPublisher) PublishInvoiceStatusChanged(ctx context.Context, event *models.InvoiceStatusChangedEvent) error {
	return ep.producer.PublishEvent(ctx, requestEventKey(event.RequestID), event)
}

func requestEventKey(requestID string) string {
	return fmt.Sprintf("trade-request-%s", requestID)
}

// EventHandler routes incoming events to registered handlers
type EventHandler struct {
	onTradeRequestCreated     func(context.Context, *models.TradeRequestCreatedEvent) error
	onInspectionStatusChanged func(context.Context, *models.InspectionStatusChangedEvent) error
	onInvoiceStatusChanged    func(context.Context, *models.InvoiceStatusChangedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnTradeRequestCreated registers a handler for TradeRequestCreated events
func (eh *EventHandler) OnTradeRequestCreated(handler func(context.Context, *models.TradeRequestCreatedEvent) error) {
	eh.onTradeRequestCreated = handler
}

// OnInspectionStatusChanged registers a handler for InspectionStatusChanged events
func (eh *EventHandler) OnInspectionStatusChanged(handler func(context.Context, *models.InspectionStatusChangedEvent) error) {
	eh.onInspectionStatusChanged = handler
}

// OnInvoiceStatusChanged registers a handler for InvoiceStatusChanged events
func (eh *EventHandler) OnInvoiceStatusChanged(handler func(context.Context, *models.InvoiceStatusChangedEvent) error) {
	eh.onInvoiceStatusChanged = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	switch baseEvent.EventType {
	case models.EventTypeTradeRequestCreated:
		if eh.onTradeRequestCreated != nil {
			var event models.TradeRequestCreatedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal TradeRequestCreated event: %w", err)
			}
			return eh.onTradeRequestCreated(ctx, &event)
		}

	case models.EventTypeInspectionStatusChanged:
		if eh.onInspectionStatusChanged != nil {
			var event models.InspectionStatusChangedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal InspectionStatusChanged event: %w", err)
			}
			return eh.onInspectionStatusChanged(ctx, &event)
		}

	case models.EventTypeInvoiceStatusChanged:
		if eh.onInvoiceStatusChanged != nil {
			var event models.InvoiceStatusChangedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal InvoiceStatusChanged event: %w", err)
			}
			return eh.onInvoiceStatusChanged(ctx, &event)
		}

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}
