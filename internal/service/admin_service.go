package service

import (
	"context"

	"trade-service/internal/redisclient"
	"trade-service/internal/store"
	"trade-service/internal/util"

	"go.uber.org/zap"
)

// DangerousOperations is the isolated surface for destructive admin and
// test-reset actions. Workflow code never holds a reference to it.
type DangerousOperations interface {
	ClearTradeRequests(ctx context.Context) error
}

// AdminService implements DangerousOperations.
type AdminService struct {
	requests store.TradeRequestStore
	cache    *redisclient.Client
	logger   *zap.Logger
}

// NewAdminService creates the dangerous-operations service. cache may be nil.
func NewAdminService(requests store.TradeRequestStore, cache *redisclient.Client) *AdminService {
	return &AdminService{
		requests: requests,
		cache:    cache,
		logger:   util.GetLogger(),
	}
}

// ClearTradeRequests deletes every trade request. No confirmation happens at
// this level; that responsibility sits with the caller.
func (s *AdminService) ClearTradeRequests(ctx context.Context) error {
	requests, err := s.requests.List(ctx)
	if err != nil {
		return err
	}

	if err := s.requests.DeleteAll(ctx); err != nil {
		return err
	}

	if s.cache != nil {
		for _, req := range requests {
			if err := s.cache.InvalidateTradeRequest(ctx, req.ID); err != nil {
				s.logger.Warn("Cache invalidation failed during clear",
					zap.String("request_id", req.ID), zap.Error(err))
			}
		}
	}

	s.logger.Warn("All trade requests cleared", zap.Int("count", len(requests)))
	return nil
}
