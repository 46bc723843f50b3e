// Package snapshotstore defines the SnapshotStore seam the reference HTTP
// transport persists loaded snapshots through, plus an in-memory
// implementation and a factory selecting between it and the
// Postgres-backed implementation in internal/pgstore.
package snapshotstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/konditional/konditional/internal/pgstore"
)

// Record is one durably appended snapshot.
type Record = pgstore.Record

// SnapshotStore is the durable, append-only supplement to a namespace's
// in-memory rollback history. Implementations must be safe for concurrent
// use.
type SnapshotStore interface {
	// Append durably records a loaded snapshot, assigning it the next
	// version number for its namespace.
	Append(ctx context.Context, namespace, source, rawJSON string) (Record, error)

	// Latest returns the most recently appended record for namespace.
	Latest(ctx context.Context, namespace string) (Record, error)

	// Close releases any resources held by the store.
	Close() error
}

var (
	_ SnapshotStore = (*pgstore.Store)(nil)
	_ SnapshotStore = (*MemoryStore)(nil)
)

// NewStore selects a SnapshotStore implementation by name.
//
// Supported kinds:
//   - "memory": in-memory store, data lost on restart
//   - "postgres": Postgres-backed store, persistent across restarts
func NewStore(ctx context.Context, kind, dbDSN string) (SnapshotStore, error) {
	switch kind {
	case "memory":
		return NewMemoryStore(), nil
	case "postgres":
		if dbDSN == "" {
			return nil, fmt.Errorf("snapshotstore: database DSN cannot be empty when using the postgres store")
		}
		pool, err := pgstore.NewPool(ctx, dbDSN)
		if err != nil {
			return nil, fmt.Errorf("snapshotstore: failed to create postgres pool: %w", err)
		}
		return pgstore.New(pool), nil
	default:
		return nil, fmt.Errorf("snapshotstore: unsupported store kind %q (must be 'memory' or 'postgres')", kind)
	}
}

// MemoryStore is an in-memory SnapshotStore, suitable for development,
// testing, or single-instance deployments where durability across restarts
// is not required.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string][]Record
	nextID  int64
}

// NewMemoryStore builds an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]Record)}
}

// Append appends rawJSON as the next version for namespace.
func (m *MemoryStore) Append(ctx context.Context, namespace, source, rawJSON string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing := m.records[namespace]
	m.nextID++
	rec := Record{
		ID:        m.nextID,
		Namespace: namespace,
		Version:   int64(len(existing)) + 1,
		Source:    source,
		LoadedAt:  time.Now().UTC(),
		RawJSON:   rawJSON,
	}
	m.records[namespace] = append(existing, rec)
	return rec, nil
}

// Latest returns the highest-versioned record for namespace.
func (m *MemoryStore) Latest(ctx context.Context, namespace string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing := m.records[namespace]
	if len(existing) == 0 {
		return Record{}, fmt.Errorf("snapshotstore: no snapshot found for namespace %q", namespace)
	}
	return existing[len(existing)-1], nil
}

// Close is a no-op: MemoryStore holds no external resources.
func (m *MemoryStore) Close() error {
	return nil
}
