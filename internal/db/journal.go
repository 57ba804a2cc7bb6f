package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/rsaviz/internal/dh"
	"github.com/udisondev/rsaviz/internal/rsakey"
)

// Key sources.
const (
	SourceWizard = "wizard"
	SourceMap    = "map"
)

// JournalRepository records derived keys and MITM exchanges.
type JournalRepository struct {
	pool *pgxpool.Pool
}

// NewJournalRepository creates a new JournalRepository.
func NewJournalRepository(pool *pgxpool.Pool) *JournalRepository {
	return &JournalRepository{pool: pool}
}

// KeyRow is a row of key_runs.
type KeyRow struct {
	ID        int64
	Source    string
	Key       rsakey.KeyMaterial
	CreatedAt time.Time
}

// ExchangeRow is a row of exchange_runs.
type ExchangeRow struct {
	ID        int64
	Public    dh.PublicValues
	Private   dh.PrivateValues
	AliceKey  int64
	BobKey    int64
	Success   bool
	CreatedAt time.Time
}

// RecordKey stores a derived key and returns its id.
func (r *JournalRepository) RecordKey(ctx context.Context, source string, k rsakey.KeyMaterial) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO key_runs (source, p, q, e, n, phi, d)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		source, k.P, k.Q, k.E, k.N, k.Phi, k.D,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("recording key n=%d: %w", k.N, err)
	}
	return id, nil
}

// RecentKeys returns up to limit keys, newest first.
func (r *JournalRepository) RecentKeys(ctx context.Context, limit int) ([]KeyRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, source, p, q, e, n, phi, d, created_at
		 FROM key_runs ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query key runs: %w", err)
	}
	defer rows.Close()

	var result []KeyRow
	for rows.Next() {
		var row KeyRow
		k := &row.Key
		if err := rows.Scan(&row.ID, &row.Source, &k.P, &k.Q, &k.E, &k.N, &k.Phi, &k.D, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan key run: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating key runs: %w", err)
	}
	return result, nil
}

// RecordExchange stores one MITM exchange and returns its id.
func (r *JournalRepository) RecordExchange(ctx context.Context, x dh.Exchange) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO exchange_runs (p, g, alice, bob, mallory_alice, mallory_bob, alice_key, bob_key, success)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		x.Public.P, x.Public.G, x.Private.A, x.Private.B, x.Private.C, x.Private.D,
		x.AliceFinal, x.BobFinal, x.Success(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("recording exchange p=%d g=%d: %w", x.Public.P, x.Public.G, err)
	}
	return id, nil
}

// RecentExchanges returns up to limit exchanges, newest first.
func (r *JournalRepository) RecentExchanges(ctx context.Context, limit int) ([]ExchangeRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, p, g, alice, bob, mallory_alice, mallory_bob, alice_key, bob_key, success, created_at
		 FROM exchange_runs ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query exchange runs: %w", err)
	}
	defer rows.Close()

	var result []ExchangeRow
	for rows.Next() {
		var row ExchangeRow
		if err := rows.Scan(&row.ID, &row.Public.P, &row.Public.G,
			&row.Private.A, &row.Private.B, &row.Private.C, &row.Private.D,
			&row.AliceKey, &row.BobKey, &row.Success, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan exchange run: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating exchange runs: %w", err)
	}
	return result, nil
}
