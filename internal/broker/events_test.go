package broker

import (
	"context"
	"encoding/json"
	"testing"

	"trade-service/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func message(t *testing.T, event any) kafka.Message {
	t.Helper()
	raw, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Value: raw}
}

func TestHandleMessageRoutesByEventType(t *testing.T) {
	eh := NewEventHandler()

	var gotCreated *models.TradeRequestCreatedEvent
	var gotStatus *models.InspectionStatusChangedEvent
	var gotInvoice *models.InvoiceStatusChangedEvent

	eh.OnTradeRequestCreated(func(ctx context.Context, e *models.TradeRequestCreatedEvent) error {
		gotCreated = e
		return nil
	})
	eh.OnInspectionStatusChanged(func(ctx context.Context, e *models.InspectionStatusChangedEvent) error {
		gotStatus = e
		return nil
	})
	eh.OnInvoiceStatusChanged(func(ctx context.Context, e *models.InvoiceStatusChangedEvent) error {
		gotInvoice = e
		return nil
	})

	ctx := context.Background()

	require.NoError(t, eh.HandleMessage(ctx, message(t, models.TradeRequestCreatedEvent{
		BaseEvent: models.BaseEvent{EventID: "e1", EventType: models.EventTypeTradeRequestCreated},
		RequestID: "req-1",
		DealerID:  "dealer-1",
		VIN:       "1HGCM82633A004352",
	})))
	require.NotNil(t, gotCreated)
	assert.Equal(t, "req-1", gotCreated.RequestID)

	require.NoError(t, eh.HandleMessage(ctx, message(t, models.InspectionStatusChangedEvent{
		BaseEvent: models.BaseEvent{EventID: "e2", EventType: models.EventTypeInspectionStatusChanged},
		RequestID: "req-1",
		From:      models.InspectionPending,
		To:        models.InspectionFAWApproved,
	})))
	require.NotNil(t, gotStatus)
	assert.Equal(t, models.InspectionFAWApproved, gotStatus.To)

	require.NoError(t, eh.HandleMessage(ctx, message(t, models.InvoiceStatusChangedEvent{
		BaseEvent: models.BaseEvent{EventID: "e3", EventType: models.EventTypeInvoiceStatusChanged},
		RequestID: "req-1",
		Status:    models.InvoiceRequested,
	})))
	require.NotNil(t, gotInvoice)
	assert.Equal(t, models.InvoiceRequested, gotInvoice.Status)
}

func TestHandleMessageIgnoresUnknownType(t *testing.T) {
	eh := NewEventHandler()
	eh.OnTradeRequestCreated(func(ctx context.Context, e *models.TradeRequestCreatedEvent) error {
		t.Fatal("handler should not fire for unknown event types")
		return nil
	})

	msg := kafka.Message{Value: []byte(`{"event_type":"SOMETHING_ELSE"}`)}
	assert.NoError(t, eh.HandleMessage(context.Background(), msg))
}

func TestHandleMessageRejectsMalformedPayload(t *testing.T) {
	eh := NewEventHandler()
	msg := kafka.Message{Value: []byte(`not-json`)}
	assert.Error(t, eh.HandleMessage(context.Background(), msg))
}
