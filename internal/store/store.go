// Package store is the record store collaborator: per-entity-type scopes
// with get/list/put/delete-all operations. Put is a versioned
// compare-and-swap; no transactions are assumed across scopes.
package store

import (
	"context"

	"trade-service/internal/models"
)

// TradeRequestStore persists whole trade request aggregates. Put enforces
// optimistic concurrency: the incoming Version must match the stored one
// (zero means create), and on success the stored version is bumped and
// written back into the aggregate.
type TradeRequestStore interface {
	Get(ctx context.Context, id string) (*models.TradeRequest, error)
	List(ctx context.Context) ([]models.TradeRequest, error)
	ListByDealer(ctx context.Context, dealerID string) ([]models.TradeRequest, error)
	Put(ctx context.Context, req *models.TradeRequest) error
	DeleteAll(ctx context.Context) error
}

// DealerStore persists dealer records.
type DealerStore interface {
	Get(ctx context.Context, id string) (*models.Dealer, error)
	List(ctx context.Context) ([]models.Dealer, error)
	Put(ctx context.Context, dealer *models.Dealer) error
}
