package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"trade-service/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PostgresStore persists aggregates as JSONB documents, one row per entity,
// with the version column enforcing compare-and-swap puts. No cross-scope
// transactions: the trade_requests and dealers tables are independent.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore connects and prepares the schema.
func NewPostgresStore(databaseURL string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &PostgresStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS trade_requests (
		id         TEXT PRIMARY KEY,
		dealer_id  TEXT NOT NULL,
		version    BIGINT NOT NULL,
		doc        JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_trade_requests_dealer ON trade_requests (dealer_id);

	CREATE TABLE IF NOT EXISTS dealers (
		id  TEXT PRIMARY KEY,
		doc JSONB NOT NULL
	);`

	if _, err := s.db.Exec(schema); err != nil {
		return &models.StorageError{Op: "migrate", Err: err}
	}
	return nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// TradeRequests returns the trade request scope.
func (s *PostgresStore) TradeRequests() TradeRequestStore {
	return &pgTradeRequestStore{db: s.db}
}

// Dealers returns the dealer scope.
func (s *PostgresStore) Dealers() DealerStore {
	return &pgDealerStore{db: s.db}
}

type pgTradeRequestStore struct {
	db *sqlx.DB
}

func (s *pgTradeRequestStore) Get(ctx context.Context, id string) (*models.TradeRequest, error) {
	var raw []byte
	err := s.db.GetContext(ctx, &raw, "SELECT doc FROM trade_requests WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Entity: "trade request", ID: id}
	}
	if err != nil {
		return nil, &models.StorageError{Op: "get trade request", Err: err}
	}
	return decodeRequest(raw)
}

func (s *pgTradeRequestStore) List(ctx context.Context) ([]models.TradeRequest, error) {
	var rows [][]byte
	err := s.db.SelectContext(ctx, &rows,
		"SELECT doc FROM trade_requests ORDER BY created_at DESC")
	if err != nil {
		return nil, &models.StorageError{Op: "list trade requests", Err: err}
	}
	return decodeRequests(rows)
}

func (s *pgTradeRequestStore) ListByDealer(ctx context.Context, dealerID string) ([]models.TradeRequest, error) {
	var rows [][]byte
	err := s.db.SelectContext(ctx, &rows,
		"SELECT doc FROM trade_requests WHERE dealer_id = $1 ORDER BY created_at DESC", dealerID)
	if err != nil {
		return nil, &models.StorageError{Op: "list trade requests by dealer", Err: err}
	}
	return decodeRequests(rows)
}

func (s *pgTradeRequestStore) Put(ctx context.Context, req *models.TradeRequest) error {
	expected := req.Version
	req.Version = expected + 1

	doc, err := json.Marshal(req)
	if err != nil {
		req.Version = expected
		return &models.StorageError{Op: "encode trade request", Err: err}
	}

	if expected == 0 {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO trade_requests (id, dealer_id, version, doc, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			req.ID, req.DealerID, req.Version, doc, req.CreatedAt, req.UpdatedAt)
		if err != nil {
			req.Version = expected
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
				return &models.ConflictError{Entity: "trade request", ID: req.ID, Expected: 0}
			}
			return &models.StorageError{Op: "insert trade request", Err: err}
		}
		return nil
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE trade_requests SET version = $1, doc = $2, updated_at = $3
		 WHERE id = $4 AND version = $5`,
		req.Version, doc, req.UpdatedAt, req.ID, expected)
	if err != nil {
		req.Version = expected
		return &models.StorageError{Op: "update trade request", Err: err}
	}

	n, err := res.RowsAffected()
	if err != nil {
		req.Version = expected
		return &models.StorageError{Op: "update trade request", Err: err}
	}
	if n == 0 {
		req.Version = expected
		var actual int64
		err := s.db.GetContext(ctx, &actual,
			"SELECT version FROM trade_requests WHERE id = $1", req.ID)
		if err == sql.ErrNoRows {
			return &models.NotFoundError{Entity: "trade request", ID: req.ID}
		}
		if err != nil {
			return &models.StorageError{Op: "update trade request", Err: err}
		}
		return &models.ConflictError{Entity: "trade request", ID: req.ID, Expected: expected, Actual: actual}
	}
	return nil
}

func (s *pgTradeRequestStore) DeleteAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM trade_requests"); err != nil {
		return &models.StorageError{Op: "delete all trade requests", Err: err}
	}
	return nil
}

type pgDealerStore struct {
	db *sqlx.DB
}

func (s *pgDealerStore) Get(ctx context.Context, id string) (*models.Dealer, error) {
	var raw []byte
	err := s.db.GetContext(ctx, &raw, "SELECT doc FROM dealers WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Entity: "dealer", ID: id}
	}
	if err != nil {
		return nil, &models.StorageError{Op: "get dealer", Err: err}
	}

	var dealer models.Dealer
	if err := json.Unmarshal(raw, &dealer); err != nil {
		return nil, &models.StorageError{Op: "decode dealer", Err: err}
	}
	return &dealer, nil
}

func (s *pgDealerStore) List(ctx context.Context) ([]models.Dealer, error) {
	var rows [][]byte
	err := s.db.SelectContext(ctx, &rows, "SELECT doc FROM dealers ORDER BY doc->>'name'")
	if err != nil {
		return nil, &models.StorageError{Op: "list dealers", Err: err}
	}

	out := make([]models.Dealer, 0, len(rows))
	for _, raw := range rows {
		var dealer models.Dealer
		if err := json.Unmarshal(raw, &dealer); err != nil {
			return nil, &models.StorageError{Op: "decode dealer", Err: err}
		}
		out = append(out, dealer)
	}
	return out, nil
}

func (s *pgDealerStore) Put(ctx context.Context, dealer *models.Dealer) error {
	doc, err := json.Marshal(dealer)
	if err != nil {
		return &models.StorageError{Op: "encode dealer", Err: err}
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO dealers (id, doc) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc`,
		dealer.ID, doc)
	if err != nil {
		return &models.StorageError{Op: "put dealer", Err: err}
	}
	return nil
}

func decodeRequest(raw []byte) (*models.TradeRequest, error) {
	var req models.TradeRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, &models.StorageError{Op: "decode trade request", Err: err}
	}
	return &req, nil
}

func decodeRequests(rows [][]byte) ([]models.TradeRequest, error) {
	out := make([]models.TradeRequest, 0, len(rows))
	for _, raw := range rows {
		req, err := decodeRequest(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, *req)
	}
	return out, nil
}
