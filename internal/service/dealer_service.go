package service

import (
	"context"
	"time"

	"trade-service/internal/models"
	"trade-service/internal/redisclient"
	"trade-service/internal/store"
	"trade-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DealerService manages dealer records and serves the per-dealer trade
// analytics maintained by the background worker.
type DealerService struct {
	dealers store.DealerStore
	cache   *redisclient.Client
	logger  *zap.Logger
	now     func() time.Time
}

// NewDealerService creates a dealer service. cache may be nil; analytics
// then read as zero.
func NewDealerService(dealers store.DealerStore, cache *redisclient.Client) *DealerService {
	return &DealerService{
		dealers: dealers,
		cache:   cache,
		logger:  util.GetLogger(),
		now:     time.Now,
	}
}

// CreateDealerInput is the caller's view of a new dealer.
type CreateDealerInput struct {
	Name          string `json:"name" binding:"required"`
	Address       string `json:"address,omitempty"`
	City          string `json:"city,omitempty"`
	Province      string `json:"province,omitempty"`
	ContactPerson string `json:"contact_person,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Email         string `json:"email,omitempty"`
}

// CreateDealer registers a new active dealer.
func (s *DealerService) CreateDealer(ctx context.Context, in *CreateDealerInput) (*models.Dealer, error) {
	if in.Name == "" {
		verr := &models.ValidationError{}
		return nil, verr.Add("name", "is required")
	}

	dealer := &models.Dealer{
		ID:            uuid.New().String(),
		Name:          in.Name,
		Address:       in.Address,
		City:          in.City,
		Province:      in.Province,
		ContactPerson: in.ContactPerson,
		Phone:         in.Phone,
		Email:         in.Email,
		Status:        models.DealerActive,
		ActiveSince:   s.now(),
	}

	if err := s.dealers.Put(ctx, dealer); err != nil {
		return nil, err
	}

	s.logger.Info("Dealer created",
		zap.String("dealer_id", dealer.ID),
		zap.String("name", dealer.Name))
	return dealer, nil
}

// GetDealerByID retrieves a dealer by id.
func (s *DealerService) GetDealerByID(ctx context.Context, id string) (*models.Dealer, error) {
	return s.dealers.Get(ctx, id)
}

// GetDealers lists all dealers.
func (s *DealerService) GetDealers(ctx context.Context) ([]models.Dealer, error) {
	return s.dealers.List(ctx)
}

// GetDealerAnalytics returns the dealer's trade counters. The dealer must
// exist; a dealer with no recorded activity yields zero counters.
func (s *DealerService) GetDealerAnalytics(ctx context.Context, dealerID string) (*models.DealerAnalytics, error) {
	if _, err := s.dealers.Get(ctx, dealerID); err != nil {
		return nil, err
	}
	if s.cache == nil {
		return &models.DealerAnalytics{DealerID: dealerID}, nil
	}
	return s.cache.GetDealerAnalytics(ctx, dealerID)
}
