package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"trade-service/internal/models"
)

// MemoryTradeRequestStore is a mutex-guarded in-memory implementation with
// the same versioning semantics as the Postgres store. Used by tests and as
// a local fallback when no database is configured.
type MemoryTradeRequestStore struct {
	mu   sync.RWMutex
	data map[string]models.TradeRequest
}

// NewMemoryTradeRequestStore creates an empty in-memory store.
func NewMemoryTradeRequestStore() *MemoryTradeRequestStore {
	return &MemoryTradeRequestStore{data: map[string]models.TradeRequest{}}
}

// Get retrieves a trade request by id.
func (s *MemoryTradeRequestStore) Get(ctx context.Context, id string) (*models.TradeRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req, ok := s.data[id]
	if !ok {
		return nil, &models.NotFoundError{Entity: "trade request", ID: id}
	}
	return cloneRequest(&req)
}

// List returns all trade requests ordered by creation time, newest first.
func (s *MemoryTradeRequestStore) List(ctx context.Context) ([]models.TradeRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.TradeRequest, 0, len(s.data))
	for _, req := range s.data {
		c, err := cloneRequest(&req)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ListByDealer returns all trade requests for one dealer, newest first.
func (s *MemoryTradeRequestStore) ListByDealer(ctx context.Context, dealerID string) ([]models.TradeRequest, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.TradeRequest, 0, len(all))
	for _, req := range all {
		if req.DealerID == dealerID {
			out = append(out, req)
		}
	}
	return out, nil
}

// Put stores the aggregate. Version 0 creates; otherwise the incoming
// version must match the stored one or a ConflictError is returned. On
// success the version is bumped and written back into req.
func (s *MemoryTradeRequestStore) Put(ctx context.Context, req *models.TradeRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.data[req.ID]
	if req.Version == 0 {
		if exists {
			return &models.ConflictError{Entity: "trade request", ID: req.ID, Expected: 0, Actual: stored.Version}
		}
	} else {
		if !exists {
			return &models.NotFoundError{Entity: "trade request", ID: req.ID}
		}
		if stored.Version != req.Version {
			return &models.ConflictError{Entity: "trade request", ID: req.ID, Expected: req.Version, Actual: stored.Version}
		}
	}

	req.Version++
	c, err := cloneRequest(req)
	if err != nil {
		req.Version--
		return err
	}
	s.data[req.ID] = *c
	return nil
}

// DeleteAll removes every trade request.
func (s *MemoryTradeRequestStore) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = map[string]models.TradeRequest{}
	return nil
}

// MemoryDealerStore is the in-memory dealer scope.
type MemoryDealerStore struct {
	mu   sync.RWMutex
	data map[string]models.Dealer
}

// NewMemoryDealerStore creates an empty in-memory dealer store.
func NewMemoryDealerStore() *MemoryDealerStore {
	return &MemoryDealerStore{data: map[string]models.Dealer{}}
}

// Get retrieves a dealer by id.
func (s *MemoryDealerStore) Get(ctx context.Context, id string) (*models.Dealer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.data[id]
	if !ok {
		return nil, &models.NotFoundError{Entity: "dealer", ID: id}
	}
	return &d, nil
}

// List returns all dealers sorted by name.
func (s *MemoryDealerStore) List(ctx context.Context) ([]models.Dealer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Dealer, 0, len(s.data))
	for _, d := range s.data {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Put stores a dealer record.
func (s *MemoryDealerStore) Put(ctx context.Context, dealer *models.Dealer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[dealer.ID] = *dealer
	return nil
}

// cloneRequest deep-copies an aggregate so callers never share slices or
// pointers with stored state.
func cloneRequest(req *models.TradeRequest) (*models.TradeRequest, error) {
	raw, err := json.Marshal(req)
	if err != nil {
		return nil, &models.StorageError{Op: "clone trade request", Err: err}
	}
	var out models.TradeRequest
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &models.StorageError{Op: "clone trade request", Err: err}
	}
	return &out, nil
}
