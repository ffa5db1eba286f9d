// Package sqlite persists the ledger document to an embedded SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"workledger/internal/infra/persistence/memory"
	"workledger/internal/infra/persistence/sqlstate"
	"workledger/pkg/domain"
)

var _ domain.PersistentStore = (*Store)(nil)

// DefaultPath is used when no database path is configured.
const DefaultPath = "workledger.db"

// Store runs transactions in memory and writes every committed document to
// SQLite before it becomes visible. A failed write discards the transaction.
type Store struct {
	*memory.Store
	db   *sql.DB
	path string
}

// NewStore opens (creating when needed) the database at path, applies
// migrations and loads the stored document.
func NewStore(ctx context.Context, path string, engine *domain.RulesEngine, opts ...memory.Option) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer; the memory store already serialises commits
	db.SetMaxOpenConns(1)
	if err := sqlstate.Migrate(ctx, db, sqlstate.SQLite); err != nil {
		_ = db.Close()
		return nil, err
	}
	snapshot, err := sqlstate.Load(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	mem := memory.NewStore(engine, append(opts, memory.WithCommitHook(sqlstate.Hook(db, sqlstate.SQLite)))...)
	mem.ImportState(snapshot)
	return &Store{Store: mem, db: db, path: path}, nil
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }
