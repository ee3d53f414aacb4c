package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"trade-service/internal/models"

	"github.com/go-redis/redis/v8"
)

// Client wraps Redis for the three duties the service gives it: a
// read-through aggregate cache, per-aggregate advisory locks, and the
// per-dealer analytics counters the worker maintains.
type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// CacheTradeRequest stores an aggregate snapshot with a TTL.
func (c *Client) CacheTradeRequest(ctx context.Context, req *models.TradeRequest, ttl time.Duration) error {
	raw, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal trade request: %w", err)
	}
	return c.rdb.Set(ctx, requestKey(req.ID), raw, ttl).Err()
}

// GetCachedTradeRequest returns the cached aggregate, or nil on a miss.
func (c *Client) GetCachedTradeRequest(ctx context.Context, id string) (*models.TradeRequest, error) {
	raw, err := c.rdb.Get(ctx, requestKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var req models.TradeRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached trade request: %w", err)
	}
	return &req, nil
}

// InvalidateTradeRequest drops the cached snapshot after a write.
func (c *Client) InvalidateTradeRequest(ctx context.Context, id string) error {
	return c.rdb.Del(ctx, requestKey(id)).Err()
}

// AcquireLock acquires an advisory per-aggregate lock
func (c *Client) AcquireLock(ctx context.Context, lockKey string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, fmt.Sprintf("lock:%s", lockKey), "1", ttl).Result()
}

// ReleaseLock releases an advisory lock
func (c *Client) ReleaseLock(ctx context.Context, lockKey string) error {
	return c.rdb.Del(ctx, fmt.Sprintf("lock:%s", lockKey)).Err()
}

// IncrDealerCounter bumps one field of a dealer's analytics hash.
func (c *Client) IncrDealerCounter(ctx context.Context, dealerID, field string, delta int64) error {
	return c.rdb.HIncrBy(ctx, analyticsKey(dealerID), field, delta).Err()
}

// GetDealerAnalytics reads the full analytics hash for a dealer. A dealer
// with no recorded activity yields all-zero counters.
func (c *Client) GetDealerAnalytics(ctx context.Context, dealerID string) (*models.DealerAnalytics, error) {
	fields, err := c.rdb.HGetAll(ctx, analyticsKey(dealerID)).Result()
	if err != nil {
		return nil, err
	}

	out := &models.DealerAnalytics{DealerID: dealerID}
	out.TotalTrades = parseCounter(fields, "total")
	out.ApprovedTrades = parseCounter(fields, "approved")
	out.RejectedTrades = parseCounter(fields, "rejected")
	out.ReadyForSale = parseCounter(fields, "readyForSale")
	out.ConsignedTrades = parseCounter(fields, "consigned")
	out.InvoicedTrades = parseCounter(fields, "invoiced")
	out.CompletedInvoices = parseCounter(fields, "completedInvoices")
	return out, nil
}

// MarkEventProcessed records an event id for consumer idempotency. Returns
// false if the event was already seen.
func (c *Client) MarkEventProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, fmt.Sprintf("event:%s", eventID), "1", ttl).Result()
}

func requestKey(id string) string {
	return fmt.Sprintf("traderequest:%s", id)
}

func analyticsKey(dealerID string) string {
	return fmt.Sprintf("analytics:dealer:%s", dealerID)
}

func parseCounter(fields map[string]string, name string) int64 {
	var v int64
	fmt.Sscanf(fields[name], "%d", &v)
	return v
}
