package models

import "time"

// Event types
const (
	EventTypeTradeRequestCreated     = "TRADE_REQUEST_CREATED"
	EventTypeInspectionStatusChanged = "INSPECTION_STATUS_CHANGED"
	EventTypeInvoiceStatusChanged    = "INVOICE_STATUS_CHANGED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// TradeRequestCreatedEvent published when a trade request is created
type TradeRequestCreatedEvent struct {
	BaseEvent
	RequestID string    `json:"request_id"`
	DealerID  string    `json:"dealer_id"`
	TradeType TradeType `json:"trade_type"`
	VIN       string    `json:"vin"`
}

// InspectionStatusChangedEvent published after a lifecycle transition commits
type InspectionStatusChangedEvent struct {
	BaseEvent
	RequestID string           `json:"request_id"`
	DealerID  string           `json:"dealer_id"`
	From      InspectionStatus `json:"from"`
	To        InspectionStatus `json:"to"`
	Actor     string           `json:"actor,omitempty"`
}

// InvoiceStatusChangedEvent published after an invoice step commits
type InvoiceStatusChangedEvent struct {
	BaseEvent
	RequestID string        `json:"request_id"`
	DealerID  string        `json:"dealer_id"`
	Status    InvoiceStatus `json:"status"`
	Amount    int64         `json:"amount,omitempty"`
}
