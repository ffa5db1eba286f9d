// Package postgres persists the ledger document to PostgreSQL through pgx.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"workledger/internal/infra/persistence/memory"
	"workledger/internal/infra/persistence/sqlstate"
	"workledger/pkg/domain"
)

var _ domain.PersistentStore = (*Store)(nil)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/workledger?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Store runs transactions in memory and upserts each committed document into
// the postgres state table before it becomes visible.
type Store struct {
	*memory.Store
	db *sql.DB
}

// NewStore connects using dsn (a local default when empty), applies
// migrations and hydrates the in-memory state from the stored document.
func NewStore(ctx context.Context, dsn string, engine *domain.RulesEngine, opts ...memory.Option) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := sqlstate.Migrate(ctx, db, sqlstate.Postgres); err != nil {
		_ = db.Close()
		return nil, err
	}
	snapshot, err := sqlstate.Load(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	mem := memory.NewStore(engine, append(opts, memory.WithCommitHook(sqlstate.Hook(db, sqlstate.Postgres)))...)
	mem.ImportState(snapshot)
	return &Store{Store: mem, db: db}, nil
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Close releases the connection pool.
func (s *Store) Close() error { return s.db.Close() }

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
