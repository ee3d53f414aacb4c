package service

import (
	"context"
	"time"

	"trade-service/internal/broker"
	"trade-service/internal/models"
	"trade-service/internal/store"
	"trade-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InvoiceService runs the linear invoice sub-workflow:
// requested → invoiceReceived → paid → completed. Each step re-validates the
// current status; skipping stages is rejected. The workflow only opens once
// the vehicle is ready for sale or consigned (configurable guard).
type InvoiceService struct {
	requests  store.TradeRequestStore
	publisher broker.Publisher
	guards    Guards
	logger    *zap.Logger
	now       func() time.Time
}

// NewInvoiceService creates the invoice sub-workflow service. publisher may
// be nil.
func NewInvoiceService(requests store.TradeRequestStore, publisher broker.Publisher, guards Guards) *InvoiceService {
	return &InvoiceService{
		requests:  requests,
		publisher: publisher,
		guards:    guards,
		logger:    util.GetLogger(),
		now:       time.Now,
	}
}

// invoiceOrder maps each status to the one it must follow.
var invoiceOrder = map[models.InvoiceStatus]models.InvoiceStatus{
	models.InvoiceRequested: models.InvoiceNone,
	models.InvoiceReceived:  models.InvoiceRequested,
	models.InvoicePaid:      models.InvoiceReceived,
	models.InvoiceCompleted: models.InvoicePaid,
}

// InvoiceRequestInput starts the invoice workflow.
type InvoiceRequestInput struct {
	InvoiceNumber string `json:"invoice_number" binding:"required"`
	Amount        int64  `json:"amount" binding:"required"`
	RequestedBy   string `json:"requested_by,omitempty"`
}

// RequestInvoice moves the request into the requested state and stamps
// requestedAt/By.
func (s *InvoiceService) RequestInvoice(ctx context.Context, requestID string, in InvoiceRequestInput) (*models.TradeRequest, error) {
	ctx, span := util.StartSpan(ctx, "InvoiceService.RequestInvoice")
	defer span.End()

	verr := &models.ValidationError{}
	if in.InvoiceNumber == "" {
		verr.Add("invoice_number", "is required")
	}
	if in.Amount <= 0 {
		verr.Add("amount", "must be positive")
	}
	if err := verr.OrNil(); err != nil {
		util.InvoiceStepsRejectedTotal.WithLabelValues("invalid_input").Inc()
		return nil, err
	}

	return s.advance(ctx, requestID, models.InvoiceRequested, func(req *models.TradeRequest, now time.Time) {
		det := ensureDetails(req)
		det.InvoiceNumber = in.InvoiceNumber
		det.Amount = in.Amount
		det.RequestedAt = &now
		det.RequestedBy = in.RequestedBy
	})
}

// MarkInvoiceReceived records the received invoice document.
func (s *InvoiceService) MarkInvoiceReceived(ctx context.Context, requestID, documentURL string) (*models.TradeRequest, error) {
	ctx, span := util.StartSpan(ctx, "InvoiceService.MarkInvoiceReceived")
	defer span.End()

	if documentURL == "" {
		util.InvoiceStepsRejectedTotal.WithLabelValues("invalid_input").Inc()
		verr := &models.ValidationError{}
		return nil, verr.Add("document_url", "is required")
	}

	return s.advance(ctx, requestID, models.InvoiceReceived, func(req *models.TradeRequest, now time.Time) {
		det := ensureDetails(req)
		det.InvoiceDocumentURL = documentURL
		det.InvoiceReceivedAt = &now
	})
}

// RecordPayment records the payment reference and proof.
func (s *InvoiceService) RecordPayment(ctx context.Context, requestID, reference, proofURL string) (*models.TradeRequest, error) {
	ctx, span := util.StartSpan(ctx, "InvoiceService.RecordPayment")
	defer span.End()

	verr := &models.ValidationError{}
	if reference == "" {
		verr.Add("payment_reference", "is required")
	}
	if proofURL == "" {
		verr.Add("payment_proof_url", "is required")
	}
	if err := verr.OrNil(); err != nil {
		util.InvoiceStepsRejectedTotal.WithLabelValues("invalid_input").Inc()
		return nil, err
	}

	return s.advance(ctx, requestID, models.InvoicePaid, func(req *models.TradeRequest, now time.Time) {
		det := ensureDetails(req)
		det.PaymentReference = reference
		det.PaymentProofURL = proofURL
		det.PaidAt = &now
	})
}

// ConfirmDocuments completes the workflow. Terminal: no further transitions.
func (s *InvoiceService) ConfirmDocuments(ctx context.Context, requestID string) (*models.TradeRequest, error) {
	ctx, span := util.StartSpan(ctx, "InvoiceService.ConfirmDocuments")
	defer span.End()

	return s.advance(ctx, requestID, models.InvoiceCompleted, func(req *models.TradeRequest, now time.Time) {
		det := ensureDetails(req)
		det.DocumentsReceivedAt = &now
	})
}

// SetSaleType sets the sales channel. Runs in parallel with the invoice
// steps; CTP_LIVE clears the selling price since the two are mutually
// exclusive.
func (s *InvoiceService) SetSaleType(ctx context.Context, requestID string, saleType models.SaleType, sellingPrice *int64) (*models.TradeRequest, error) {
	ctx, span := util.StartSpan(ctx, "InvoiceService.SetSaleType")
	defer span.End()

	if !saleType.IsValid() {
		verr := &models.ValidationError{}
		return nil, verr.Add("sale_type", "unknown sale type "+string(saleType))
	}

	req, err := s.requests.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if err := s.checkReachable(req); err != nil {
		util.InvoiceStepsRejectedTotal.WithLabelValues("not_ready").Inc()
		return nil, err
	}

	req.SaleType = saleType
	if saleType == models.SaleTypeCTPLive {
		req.SellingPrice = 0
	} else if sellingPrice != nil {
		req.SellingPrice = *sellingPrice
	}
	req.UpdatedAt = s.now()

	if err := s.requests.Put(ctx, req); err != nil {
		if models.IsConflict(err) {
			util.WriteConflictsTotal.Inc()
		}
		return nil, err
	}

	s.logger.Info("Sale type set",
		zap.String("request_id", requestID),
		zap.String("sale_type", string(saleType)))
	return req, nil
}

// advance loads the aggregate, checks the reachability guard and the linear
// order, applies the mutation and persists in one versioned put.
func (s *InvoiceService) advance(ctx context.Context, requestID string, target models.InvoiceStatus, mutate func(*models.TradeRequest, time.Time)) (*models.TradeRequest, error) {
	req, err := s.requests.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if err := s.checkReachable(req); err != nil {
		util.InvoiceStepsRejectedTotal.WithLabelValues("not_ready").Inc()
		return nil, err
	}

	if req.InvoiceStatus != invoiceOrder[target] {
		util.InvoiceStepsRejectedTotal.WithLabelValues("out_of_order").Inc()
		return nil, &models.TransitionError{
			Current:   string(req.InvoiceStatus),
			Requested: string(target),
			Reason:    "invoice steps are strictly sequential",
		}
	}

	now := s.now()
	mutate(req, now)
	req.InvoiceStatus = target
	req.UpdatedAt = now

	if err := s.requests.Put(ctx, req); err != nil {
		if models.IsConflict(err) {
			util.WriteConflictsTotal.Inc()
		}
		return nil, err
	}

	util.InvoiceStepsTotal.WithLabelValues(string(target)).Inc()
	s.logger.Info("Invoice status advanced",
		zap.String("request_id", requestID),
		zap.String("status", string(target)))

	s.publishInvoiceChanged(ctx, req, target)
	return req, nil
}

// checkReachable enforces the ready-for-sale guard on the sub-workflow.
func (s *InvoiceService) checkReachable(req *models.TradeRequest) error {
	if !s.guards.RequireReadyForInvoice {
		return nil
	}
	switch req.Inspection.Status {
	case models.InspectionReadyForSale, models.InspectionConsigned:
		return nil
	}
	return &models.TransitionError{
		Current:   req.Inspection.Status.String(),
		Requested: models.InspectionReadyForSale.String(),
		Reason:    "invoicing requires a ready-for-sale or consigned vehicle",
	}
}

func (s *InvoiceService) publishInvoiceChanged(ctx context.Context, req *models.TradeRequest, status models.InvoiceStatus) {
	if s.publisher == nil {
		return
	}
	var amount int64
	if req.InvoiceDetails != nil {
		amount = req.InvoiceDetails.Amount
	}
	event := &models.InvoiceStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeInvoiceStatusChanged,
			Timestamp: s.now(),
		},
		RequestID: req.ID,
		DealerID:  req.DealerID,
		Status:    status,
		Amount:    amount,
	}
	if err := s.publisher.PublishInvoiceStatusChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish InvoiceStatusChanged event", zap.Error(err))
	}
}

func ensureDetails(req *models.TradeRequest) *models.InvoiceDetails {
	if req.InvoiceDetails == nil {
		req.InvoiceDetails = &models.InvoiceDetails{}
	}
	return req.InvoiceDetails
}
