package models

import "time"

// InspectionStatus is the lifecycle state of a vehicle inspection. It is the
// single source of truth for the vehicle's position in the trade pipeline.
type InspectionStatus string

const (
	InspectionPending      InspectionStatus = "pending"
	InspectionInProgress   InspectionStatus = "inProgress"
	InspectionCompleted    InspectionStatus = "completed"
	InspectionFailed       InspectionStatus = "failed"
	InspectionFAWApproved  InspectionStatus = "fawApproved"
	InspectionFAWRejected  InspectionStatus = "fawRejected"
	InspectionBAReceived   InspectionStatus = "baReceived"
	InspectionBAInspected  InspectionStatus = "baInspected"
	InspectionBAApproved   InspectionStatus = "baApproved"
	InspectionBARejected   InspectionStatus = "baRejected"
	InspectionReadyForSale InspectionStatus = "readyForSale"
	InspectionConsigned    InspectionStatus = "consigned"
)

func (s InspectionStatus) String() string { return string(s) }

// IsValid reports whether the status is a recognized enum member.
// inProgress, completed and failed are legacy values: valid members that no
// transition produces.
func (s InspectionStatus) IsValid() bool {
	switch s {
	case InspectionPending, InspectionInProgress, InspectionCompleted,
		InspectionFailed, InspectionFAWApproved, InspectionFAWRejected,
		InspectionBAReceived, InspectionBAInspected, InspectionBAApproved,
		InspectionBARejected, InspectionReadyForSale, InspectionConsigned:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition can leave the status.
func (s InspectionStatus) IsTerminal() bool {
	return s == InspectionFAWRejected || s == InspectionBARejected
}

// RequestStatus is the trade request's own status, kept in sync with the
// inspection status by the aggregate manager and never set independently.
type RequestStatus string

const (
	RequestDraft       RequestStatus = "draft"
	RequestPending     RequestStatus = "pending"
	RequestSubmitted   RequestStatus = "submitted"
	RequestUnderReview RequestStatus = "underReview"
	RequestApproved    RequestStatus = "approved"
	RequestRejected    RequestStatus = "rejected"
	RequestCompleted   RequestStatus = "completed"
)

// TradeType classifies how the vehicle entered the pipeline.
type TradeType string

const (
	TradeTypeTradeIn    TradeType = "Trade-In"
	TradeTypeDealerSale TradeType = "Dealer Sale"
	TradeTypeBuyBack    TradeType = "Buy Back"
)

func (t TradeType) IsValid() bool {
	switch t {
	case TradeTypeTradeIn, TradeTypeDealerSale, TradeTypeBuyBack:
		return true
	}
	return false
}

// SaleType is the sales channel for a ready-for-sale vehicle. CTP_LIVE is
// mutually exclusive with dealer-sale pricing.
type SaleType string

const (
	SaleTypeCash       SaleType = "Cash"
	SaleTypeFinance    SaleType = "Finance"
	SaleTypeDealerSale SaleType = "Dealer Sale"
	SaleTypeCTP        SaleType = "CTP"
	SaleTypeCTPLive    SaleType = "CTP_LIVE"
)

func (t SaleType) IsValid() bool {
	switch t {
	case SaleTypeCash, SaleTypeFinance, SaleTypeDealerSale, SaleTypeCTP, SaleTypeCTPLive:
		return true
	}
	return false
}

// InvoiceStatus is the linear invoice sub-workflow state.
type InvoiceStatus string

const (
	InvoiceNone      InvoiceStatus = ""
	InvoiceRequested InvoiceStatus = "requested"
	InvoiceReceived  InvoiceStatus = "invoiceReceived"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceCompleted InvoiceStatus = "completed"
)

// Inspection item result values.
const (
	ItemStatusPass       = "Pass"
	ItemStatusFail       = "Fail"
	ItemStatusNotChecked = "Not Checked"
)

// Dealer statuses.
const (
	DealerActive   = "Active"
	DealerInactive = "Inactive"
)

// Dealer represents a participating dealership. Referenced, not owned, by
// trade requests.
type Dealer struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Address       string    `json:"address"`
	City          string    `json:"city"`
	Province      string    `json:"province"`
	ContactPerson string    `json:"contact_person"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email"`
	Status        string    `json:"status"`
	ActiveSince   time.Time `json:"active_since"`
}

// VehicleInfo describes the traded vehicle. Value object owned by its
// trade request.
type VehicleInfo struct {
	VIN         string `json:"vin" validate:"required,min=17"`
	Make        string `json:"make" validate:"required"`
	Model       string `json:"model" validate:"required"`
	Year        int    `json:"year" validate:"required,min=1900"`
	RegNumber   string `json:"reg_number" validate:"required"`
	Mileage     int    `json:"mileage" validate:"min=0"`
	Color       string `json:"color" validate:"required"`
	EngineHours int    `json:"engine_hours,omitempty"`
}

// InspectionItem is one checklist entry. A Fail result must carry notes and
// a failure photo reference.
type InspectionItem struct {
	ID              string `json:"id"`
	Category        string `json:"category"`
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	Status          string `json:"status"`
	Notes           string `json:"notes,omitempty"`
	FailurePhotoURL string `json:"failure_photo_url,omitempty"`
}

// Inspection is the 1:1 owned inspection record of a trade request. Its
// Status field drives the whole lifecycle.
type Inspection struct {
	ID             string           `json:"id"`
	TradeRequestID string           `json:"trade_request_id"`
	CompletedBy    string           `json:"completed_by,omitempty"`
	CompletedAt    time.Time        `json:"completed_at"`
	Status         InspectionStatus `json:"status"`
	Items          []InspectionItem `json:"items"`
	Photos         []string         `json:"photos"`
	Notes          string           `json:"notes,omitempty"`

	FAWReviewedBy string     `json:"faw_reviewed_by,omitempty"`
	FAWReviewedAt *time.Time `json:"faw_reviewed_at,omitempty"`
	BAReceivedBy  string     `json:"ba_received_by,omitempty"`
	BAReceivedAt  *time.Time `json:"ba_received_at,omitempty"`
	BAReviewedBy  string     `json:"ba_reviewed_by,omitempty"`
	BAReviewedAt  *time.Time `json:"ba_reviewed_at,omitempty"`

	ConsignedDealerID   string     `json:"consigned_dealer_id,omitempty"`
	ConsignedDealerName string     `json:"consigned_dealer_name,omitempty"`
	ConsignedAt         *time.Time `json:"consigned_at,omitempty"`
}

// InvoiceDetails is populated incrementally as the invoice sub-workflow
// advances and is never rolled back.
type InvoiceDetails struct {
	RequestedAt         *time.Time `json:"requested_at,omitempty"`
	RequestedBy         string     `json:"requested_by,omitempty"`
	InvoiceNumber       string     `json:"invoice_number,omitempty"`
	Amount              int64      `json:"amount,omitempty"`
	InvoiceReceivedAt   *time.Time `json:"invoice_received_at,omitempty"`
	InvoiceDocumentURL  string     `json:"invoice_document_url,omitempty"`
	PaidAt              *time.Time `json:"paid_at,omitempty"`
	PaymentReference    string     `json:"payment_reference,omitempty"`
	PaymentProofURL     string     `json:"payment_proof_url,omitempty"`
	DocumentsReceivedAt *time.Time `json:"documents_received_at,omitempty"`
}

// TradeRequest is the root aggregate: one vehicle's whole journey from
// dealer submission to sale. All writes to the owned Inspection and
// InvoiceDetails go through it. Version is the optimistic-concurrency token
// checked by the store on every put.
type TradeRequest struct {
	ID       string `json:"id"`
	DealerID string `json:"dealer_id"`
	// DealerName is a snapshot of Dealer.Name at creation time; it is
	// intentionally not refreshed if the dealer is later renamed.
	DealerName     string          `json:"dealer_name"`
	VehicleInfo    VehicleInfo     `json:"vehicle_info"`
	TradeType      TradeType       `json:"trade_type"`
	Status         RequestStatus   `json:"status"`
	Inspection     Inspection      `json:"inspection"`
	SaleType       SaleType        `json:"sale_type,omitempty"`
	SellingPrice   int64           `json:"selling_price,omitempty"`
	InvoiceStatus  InvoiceStatus   `json:"invoice_status,omitempty"`
	InvoiceDetails *InvoiceDetails `json:"invoice_details,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	Version        int64           `json:"version"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// DealerAnalytics summarizes one dealer's trade activity, served from the
// counters the analytics worker maintains.
type DealerAnalytics struct {
	DealerID          string `json:"dealer_id"`
	TotalTrades       int64  `json:"total_trades"`
	ApprovedTrades    int64  `json:"approved_trades"`
	RejectedTrades    int64  `json:"rejected_trades"`
	ReadyForSale      int64  `json:"ready_for_sale"`
	ConsignedTrades   int64  `json:"consigned_trades"`
	InvoicedTrades    int64  `json:"invoiced_trades"`
	CompletedInvoices int64  `json:"completed_invoices"`
}
