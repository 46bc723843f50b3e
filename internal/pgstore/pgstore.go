// Package pgstore implements the PostgresSnapshotStore: a durable,
// append-only supplement to a namespace's in-memory rollback history,
// queried directly over pgx/v5 with hand-written SQL. No code generator is
// used here — the teacher's sqlc-generated query layer is not something
// this module reconstructs; see DESIGN.md for why.
package pgstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema is the DDL a deployment must apply before using Store. It is not
// executed automatically: migrations are the operator's responsibility,
// matching the reference service's own migration-file convention.
const Schema = `
CREATE TABLE IF NOT EXISTS konditional_snapshots (
	id        BIGSERIAL PRIMARY KEY,
	namespace TEXT NOT NULL,
	version   BIGINT NOT NULL,
	source    TEXT NOT NULL DEFAULT '',
	loaded_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	raw_json  JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS konditional_snapshots_namespace_version_idx
	ON konditional_snapshots (namespace, version DESC);
`

// NewPool creates a connection pool sized for a single-service deployment,
// the same fixed-size pool settings the reference service's pool
// constructor uses.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pgstore: invalid DSN: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 1
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pgstore: failed to create connection pool: %w", err)
	}
	return pool, nil
}

// Record is one durably appended snapshot.
type Record struct {
	ID        int64
	Namespace string
	Version   int64
	Source    string
	LoadedAt  time.Time
	RawJSON   string
}

// Store is the durable, append-only supplement to a namespace's in-memory
// rollback history. It never replaces the registry's own bounded history —
// the registry stays purely in-memory and synchronous; Store exists so an
// operator can recover a snapshot after a process restart.
type Store struct {
	pool *pgxpool.Pool
}

// New wraps an existing pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Append durably records a loaded snapshot, assigning it the next version
// number for its namespace.
func (s *Store) Append(ctx context.Context, namespace, source, rawJSON string) (Record, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO konditional_snapshots (namespace, version, source, raw_json)
		 VALUES ($1, COALESCE((SELECT MAX(version) FROM konditional_snapshots WHERE namespace = $1), 0) + 1, $2, $3)
		 RETURNING id, namespace, version, source, loaded_at, raw_json`,
		namespace, source, rawJSON)

	var rec Record
	if err := row.Scan(&rec.ID, &rec.Namespace, &rec.Version, &rec.Source, &rec.LoadedAt, &rec.RawJSON); err != nil {
		return Record{}, fmt.Errorf("pgstore: append: %w", err)
	}
	return rec, nil
}

// Latest returns the most recently appended record for namespace.
func (s *Store) Latest(ctx context.Context, namespace string) (Record, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, namespace, version, source, loaded_at, raw_json FROM konditional_snapshots
		 WHERE namespace = $1 ORDER BY version DESC LIMIT 1`,
		namespace)

	var rec Record
	if err := row.Scan(&rec.ID, &rec.Namespace, &rec.Version, &rec.Source, &rec.LoadedAt, &rec.RawJSON); err != nil {
		return Record{}, fmt.Errorf("pgstore: no snapshot found for namespace %q: %w", namespace, err)
	}
	return rec, nil
}
