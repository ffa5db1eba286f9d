// Package sqlstate stores the ledger document in a SQL "state" table, one row
// per document bucket. The sqlite and postgres backends share it and differ
// only in dialect.
package sqlstate

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"

	"workledger/internal/infra/persistence/memory"
)

//go:embed migrations
var migrations embed.FS

// Dialect describes the SQL differences between supported databases.
type Dialect struct {
	Name   string // goose dialect name
	Dir    string // migrations directory inside the embedded FS
	Upsert string
}

var (
	// SQLite is the dialect of modernc.org/sqlite.
	SQLite = Dialect{
		Name:   "sqlite3",
		Dir:    "migrations/sqlite",
		Upsert: `INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`,
	}
	// Postgres is the dialect of pgx through database/sql.
	Postgres = Dialect{
		Name:   "postgres",
		Dir:    "migrations/postgres",
		Upsert: `INSERT INTO state(bucket,payload) VALUES($1,$2) ON CONFLICT(bucket) DO UPDATE SET payload=EXCLUDED.payload`,
	}
)

// goose keeps its dialect and filesystem in package globals.
var gooseMu sync.Mutex

// Migrate applies the embedded migrations for d.
func Migrate(ctx context.Context, db *sql.DB, d Dialect) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()
	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(d.Name); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, d.Dir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Load reads every bucket row into a snapshot. An empty table yields an empty
// snapshot at version zero.
func Load(ctx context.Context, db *sql.DB) (memory.Snapshot, error) {
	rows, err := db.QueryContext(ctx, `SELECT bucket, payload FROM state`)
	if err != nil {
		return memory.Snapshot{}, fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var snapshot memory.Snapshot
	targets := snapshot.BucketTargets()
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return memory.Snapshot{}, fmt.Errorf("scan state: %w", err)
		}
		if len(payload) == 0 {
			continue
		}
		if target, ok := targets[bucket]; ok {
			if err := json.Unmarshal(payload, target); err != nil {
				return memory.Snapshot{}, fmt.Errorf("decode %s: %w", bucket, err)
			}
		}
	}
	if err := rows.Err(); err != nil {
		return memory.Snapshot{}, fmt.Errorf("iterate state: %w", err)
	}
	return snapshot, nil
}

// Save upserts every bucket of snapshot in one SQL transaction.
func Save(ctx context.Context, db *sql.DB, d Dialect, snapshot memory.Snapshot) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	targets := snapshot.BucketTargets()
	for _, bucket := range memory.Buckets {
		data, err := json.Marshal(targets[bucket])
		if err != nil {
			return fmt.Errorf("encode %s: %w", bucket, err)
		}
		if _, err := tx.ExecContext(ctx, d.Upsert, bucket, data); err != nil {
			return fmt.Errorf("upsert %s: %w", bucket, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// Hook returns a memory commit hook that saves each committed document to db.
func Hook(db *sql.DB, d Dialect) memory.CommitHook {
	return func(ctx context.Context, _ uint64, snapshot memory.Snapshot) error {
		return Save(ctx, db, d, snapshot)
	}
}
