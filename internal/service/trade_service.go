package service

import (
	"context"
	"time"

	"trade-service/internal/broker"
	"trade-service/internal/lifecycle"
	"trade-service/internal/models"
	"trade-service/internal/redisclient"
	"trade-service/internal/store"
	"trade-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const cacheTTL = 5 * time.Minute

// Guards holds the business rules that vary per deployment.
type Guards struct {
	// AllowConsignToOrigin permits consigning a vehicle back to the dealer
	// that traded it in.
	AllowConsignToOrigin bool
	// RequireReadyForInvoice blocks the invoice sub-workflow until the
	// vehicle is ready for sale or consigned.
	RequireReadyForInvoice bool
}

// TradeRequestService is the aggregate manager: it owns the TradeRequest
// aggregate and applies lifecycle transitions atomically. Inspection status,
// mirrored request status and timestamps change as one unit through a single
// versioned put, or not at all.
type TradeRequestService struct {
	requests  store.TradeRequestStore
	dealers   store.DealerStore
	cache     *redisclient.Client
	publisher broker.Publisher
	guards    Guards
	logger    *zap.Logger
	now       func() time.Time
}

// NewTradeRequestService creates the aggregate manager. cache and publisher
// may be nil; the service then runs store-only and event-less.
func NewTradeRequestService(
	requests store.TradeRequestStore,
	dealers store.DealerStore,
	cache *redisclient.Client,
	publisher broker.Publisher,
	guards Guards,
) *TradeRequestService {
	return &TradeRequestService{
		requests:  requests,
		dealers:   dealers,
		cache:     cache,
		publisher: publisher,
		guards:    guards,
		logger:    util.GetLogger(),
		now:       time.Now,
	}
}

// CreateTradeRequestInput is the caller's view of a new trade request.
type CreateTradeRequestInput struct {
	DealerID    string             `json:"dealer_id" binding:"required"`
	TradeType   models.TradeType   `json:"trade_type"`
	VehicleInfo models.VehicleInfo `json:"vehicle_info"`
	Notes       string             `json:"notes,omitempty"`
	// Draft keeps the request in draft instead of submitting it.
	Draft bool `json:"draft,omitempty"`
	// Inspection optionally supplies a pre-filled inspection; a fresh
	// pending one is created when absent.
	Inspection *models.Inspection `json:"inspection,omitempty"`
}

// CreateTradeRequest fills defaults, validates the vehicle schema, snapshots
// the dealer name and persists the new aggregate.
func (s *TradeRequestService) CreateTradeRequest(ctx context.Context, in *CreateTradeRequestInput) (*models.TradeRequest, error) {
	ctx, span := util.StartSpan(ctx, "TradeRequestService.CreateTradeRequest")
	defer span.End()

	if err := validateVehicleInfo(in.VehicleInfo); err != nil {
		util.TradeRequestsFailedTotal.WithLabelValues("invalid_vehicle").Inc()
		return nil, err
	}

	tradeType := in.TradeType
	if tradeType == "" {
		tradeType = models.TradeTypeTradeIn
	}
	if !tradeType.IsValid() {
		util.TradeRequestsFailedTotal.WithLabelValues("invalid_trade_type").Inc()
		verr := &models.ValidationError{}
		return nil, verr.Add("trade_type", "unknown trade type "+string(tradeType))
	}

	dealer, err := s.dealers.Get(ctx, in.DealerID)
	if err != nil {
		util.TradeRequestsFailedTotal.WithLabelValues("unknown_dealer").Inc()
		return nil, err
	}

	now := s.now()
	id := uuid.New().String()

	status := models.RequestSubmitted
	if in.Draft {
		status = models.RequestDraft
	}

	inspection := models.Inspection{
		ID:             uuid.New().String(),
		TradeRequestID: id,
		Status:         models.InspectionPending,
		CompletedAt:    now,
		Items:          []models.InspectionItem{},
		Photos:         []string{},
	}
	if in.Inspection != nil {
		if err := validateInspectionItems(in.Inspection.Items); err != nil {
			util.TradeRequestsFailedTotal.WithLabelValues("invalid_items").Inc()
			return nil, err
		}
		inspection = *in.Inspection
		inspection.TradeRequestID = id
		if inspection.ID == "" {
			inspection.ID = uuid.New().String()
		}
		inspection.Status = models.InspectionPending
	}

	req := &models.TradeRequest{
		ID:          id,
		DealerID:    dealer.ID,
		DealerName:  dealer.Name,
		VehicleInfo: in.VehicleInfo,
		TradeType:   tradeType,
		Status:      status,
		Inspection:  inspection,
		Notes:       in.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.requests.Put(ctx, req); err != nil {
		util.TradeRequestsFailedTotal.WithLabelValues("store_error").Inc()
		return nil, err
	}

	util.TradeRequestsCreatedTotal.Inc()
	s.logger.Info("Trade request created",
		zap.String("request_id", req.ID),
		zap.String("dealer_id", req.DealerID),
		zap.String("vin", req.VehicleInfo.VIN))

	s.publishCreated(ctx, req)
	s.cacheSet(ctx, req)

	return req, nil
}

// GetTradeRequestByID loads the aggregate, serving from cache when possible.
func (s *TradeRequestService) GetTradeRequestByID(ctx context.Context, id string) (*models.TradeRequest, error) {
	if s.cache != nil {
		cached, err := s.cache.GetCachedTradeRequest(ctx, id)
		if err != nil {
			s.logger.Warn("Cache read failed", zap.String("request_id", id), zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	req, err := s.requests.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, req)
	return req, nil
}

// GetTradeRequestsByDealerID lists one dealer's requests, newest first.
func (s *TradeRequestService) GetTradeRequestsByDealerID(ctx context.Context, dealerID string) ([]models.TradeRequest, error) {
	return s.requests.ListByDealer(ctx, dealerID)
}

// ListTradeRequests lists every request, newest first.
func (s *TradeRequestService) ListTradeRequests(ctx context.Context) ([]models.TradeRequest, error) {
	return s.requests.List(ctx)
}

// TransitionInput carries the caller-side facts for a lifecycle transition.
type TransitionInput struct {
	Actor string `json:"actor,omitempty"`
	// HasReceptionEvidence asserts at least one reception photo was
	// uploaded; the engine fails closed without it on entry to BA_RECEIVED.
	HasReceptionEvidence bool   `json:"has_reception_evidence,omitempty"`
	ConsigneeDealerID    string `json:"consignee_dealer_id,omitempty"`
	ConsigneeDealerName  string `json:"consignee_dealer_name,omitempty"`
}

// UpdateInspectionStatus runs one lifecycle transition. On success the
// inspection status, its derived fields and the mirrored request status are
// persisted as a single versioned put; on any failure the aggregate is left
// untouched and the typed error surfaces to the caller.
func (s *TradeRequestService) UpdateInspectionStatus(ctx context.Context, requestID string, target models.InspectionStatus, in TransitionInput) (*models.TradeRequest, error) {
	ctx, span := util.StartSpan(ctx, "TradeRequestService.UpdateInspectionStatus")
	defer span.End()

	start := time.Now()
	defer func() {
		util.TransitionLatency.Observe(time.Since(start).Seconds())
	}()

	req, err := s.requests.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}

	consigneeName := in.ConsigneeDealerName
	if target == models.InspectionConsigned && consigneeName == "" && in.ConsigneeDealerID != "" {
		if consignee, err := s.dealers.Get(ctx, in.ConsigneeDealerID); err == nil {
			consigneeName = consignee.Name
		}
	}

	tctx := lifecycle.Context{
		Actor:                in.Actor,
		Now:                  s.now(),
		HasReceptionEvidence: in.HasReceptionEvidence,
		ConsigneeDealerID:    in.ConsigneeDealerID,
		ConsigneeDealerName:  consigneeName,
		OriginDealerID:       req.DealerID,
		AllowConsignToOrigin: s.guards.AllowConsignToOrigin,
	}

	res, err := lifecycle.AttemptTransition(req.Inspection.Status, target, tctx)
	if err != nil {
		util.TransitionsRejectedTotal.WithLabelValues("illegal").Inc()
		s.logger.Warn("Transition rejected",
			zap.String("request_id", requestID),
			zap.String("current", req.Inspection.Status.String()),
			zap.String("requested", target.String()),
			zap.Error(err))
		return nil, err
	}

	from := req.Inspection.Status
	res.Apply(&req.Inspection)
	req.Status = lifecycle.MirrorRequestStatus(target, req.Status)
	req.UpdatedAt = res.At

	if err := s.requests.Put(ctx, req); err != nil {
		if models.IsConflict(err) {
			util.WriteConflictsTotal.Inc()
		}
		return nil, err
	}

	util.TransitionsAppliedTotal.WithLabelValues(target.String()).Inc()
	s.logger.Info("Inspection status changed",
		zap.String("request_id", requestID),
		zap.String("from", from.String()),
		zap.String("to", target.String()))

	s.publishStatusChanged(ctx, req, from, target, in.Actor)
	s.cacheSet(ctx, req)

	return req, nil
}

// UpdateTradeRequest merges a partial update into the aggregate. Sub-objects
// merge field by field; omitted keys survive. An empty patch is a no-op and
// returns the entity unchanged.
func (s *TradeRequestService) UpdateTradeRequest(ctx context.Context, requestID string, patch models.TradeRequestPatch) (*models.TradeRequest, error) {
	ctx, span := util.StartSpan(ctx, "TradeRequestService.UpdateTradeRequest")
	defer span.End()

	req, err := s.requests.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if patch.IsEmpty() {
		return req, nil
	}

	merged := patch.Apply(*req)

	if patch.VehicleInfo != nil {
		if err := validateVehicleInfo(merged.VehicleInfo); err != nil {
			return nil, err
		}
	}
	if patch.Inspection != nil && patch.Inspection.Items != nil {
		if err := validateInspectionItems(merged.Inspection.Items); err != nil {
			return nil, err
		}
	}

	merged.UpdatedAt = s.now()

	if err := s.requests.Put(ctx, &merged); err != nil {
		if models.IsConflict(err) {
			util.WriteConflictsTotal.Inc()
		}
		return nil, err
	}

	s.cacheSet(ctx, &merged)

	return &merged, nil
}

func (s *TradeRequestService) publishCreated(ctx context.Context, req *models.TradeRequest) {
	if s.publisher == nil {
		return
	}
	event := &models.TradeRequestCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeTradeRequestCreated,
			Timestamp: s.now(),
		},
		RequestID: req.ID,
		DealerID:  req.DealerID,
		TradeType: req.TradeType,
		VIN:       req.VehicleInfo.VIN,
	}
	if err := s.publisher.PublishTradeRequestCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish TradeRequestCreated event", zap.Error(err))
	}
}

func (s *TradeRequestService) publishStatusChanged(ctx context.Context, req *models.TradeRequest, from, to models.InspectionStatus, actor string) {
	if s.publisher == nil {
		return
	}
	event := &models.InspectionStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeInspectionStatusChanged,
			Timestamp: s.now(),
		},
		RequestID: req.ID,
		DealerID:  req.DealerID,
		From:      from,
		To:        to,
		Actor:     actor,
	}
	if err := s.publisher.PublishInspectionStatusChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish InspectionStatusChanged event", zap.Error(err))
	}
}

func (s *TradeRequestService) cacheSet(ctx context.Context, req *models.TradeRequest) {
	if s.cache == nil {
		return
	}
	if err := s.cache.CacheTradeRequest(ctx, req, cacheTTL); err != nil {
		s.logger.Warn("Cache write failed", zap.String("request_id", req.ID), zap.Error(err))
	}
}
