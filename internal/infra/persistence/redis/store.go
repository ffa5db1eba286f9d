// Package redis persists the ledger document as one JSON value in Redis and
// keeps the current-session user under a separate key.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"workledger/internal/infra/persistence/memory"
	"workledger/pkg/domain"
)

var _ domain.PersistentStore = (*Store)(nil)

// Default keys.
const (
	DefaultKey        = "workledger:document"
	DefaultSessionKey = "workledger:session"
)

// Options configures the Redis connection and keys.
type Options struct {
	Addr       string
	Password   string
	DB         int
	Key        string
	SessionKey string
}

// Store runs transactions in memory and writes each committed document with
// an optimistic compare-and-set on its version. A writer whose base version
// is stale fails with domain.ErrConflict, its transaction is discarded and
// the stored document is reloaded.
type Store struct {
	*memory.Store
	client     *goredis.Client
	key        string
	sessionKey string
}

// Open connects with redis.NewClient and loads the stored document.
func Open(ctx context.Context, opts Options, engine *domain.RulesEngine, memOpts ...memory.Option) (*Store, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	s, err := NewStore(ctx, client, opts.Key, opts.SessionKey, engine, memOpts...)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	return s, nil
}

// NewStore wraps an existing client. Empty keys fall back to the defaults.
func NewStore(ctx context.Context, client *goredis.Client, key, sessionKey string, engine *domain.RulesEngine, memOpts ...memory.Option) (*Store, error) {
	if key == "" {
		key = DefaultKey
	}
	if sessionKey == "" {
		sessionKey = DefaultSessionKey
	}
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	s := &Store{client: client, key: key, sessionKey: sessionKey}
	snapshot, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	s.Store = memory.NewStore(engine, append(memOpts, memory.WithCommitHook(s.write))...)
	s.Store.ImportState(snapshot)
	return s, nil
}

func (s *Store) load(ctx context.Context) (memory.Snapshot, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return memory.Snapshot{}, fmt.Errorf("load ledger document: %w", err)
	}
	return memory.DecodeSnapshot(data)
}

// Reload replaces the in-memory document with the one stored in Redis.
func (s *Store) Reload(ctx context.Context) error {
	snapshot, err := s.load(ctx)
	if err != nil {
		return err
	}
	s.Store.ImportState(snapshot)
	return nil
}

// RunInTransaction runs fn against the in-memory document. When another
// writer committed first the stored document is reloaded before the
// conflict is returned, so a retry starts from the newer version.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx domain.Transaction) error) (domain.Result, error) {
	res, err := s.Store.RunInTransaction(ctx, fn)
	if errors.Is(err, domain.ErrConflict) {
		if rerr := s.Reload(ctx); rerr != nil {
			return res, errors.Join(err, rerr)
		}
	}
	return res, err
}

// write stores snapshot only if the persisted version still equals base.
func (s *Store) write(ctx context.Context, base uint64, snapshot memory.Snapshot) error {
	data, err := memory.EncodeSnapshot(snapshot)
	if err != nil {
		return err
	}
	err = s.client.Watch(ctx, func(tx *goredis.Tx) error {
		current, err := tx.Get(ctx, s.key).Bytes()
		switch {
		case errors.Is(err, goredis.Nil):
		case err != nil:
			return fmt.Errorf("read ledger version: %w", err)
		default:
			stored, err := storedVersion(current)
			if err != nil {
				return err
			}
			if stored != base {
				return fmt.Errorf("stored version %d, writer based on %d: %w", stored, base, domain.ErrConflict)
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, s.key, data, 0)
			return nil
		})
		return err
	}, s.key)
	if errors.Is(err, goredis.TxFailedErr) {
		return fmt.Errorf("ledger document changed during write: %w", domain.ErrConflict)
	}
	return err
}

func storedVersion(data []byte) (uint64, error) {
	var head struct {
		Version uint64 `json:"version"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return 0, fmt.Errorf("decode ledger version: %w", err)
	}
	return head.Version, nil
}

// SaveSession records the signed-in user.
func (s *Store) SaveSession(ctx context.Context, user domain.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return s.client.Set(ctx, s.sessionKey, data, 0).Err()
}

// LoadSession returns the signed-in user, or false when there is none.
func (s *Store) LoadSession(ctx context.Context) (domain.User, bool, error) {
	data, err := s.client.Get(ctx, s.sessionKey).Bytes()
	if errors.Is(err, goredis.Nil) {
		return domain.User{}, false, nil
	}
	if err != nil {
		return domain.User{}, false, fmt.Errorf("load session: %w", err)
	}
	var user domain.User
	if err := json.Unmarshal(data, &user); err != nil {
		return domain.User{}, false, fmt.Errorf("decode session: %w", err)
	}
	return user, true, nil
}

// ClearSession forgets the signed-in user.
func (s *Store) ClearSession(ctx context.Context) error {
	return s.client.Del(ctx, s.sessionKey).Err()
}

// Client exposes the underlying client for tests.
func (s *Store) Client() *goredis.Client { return s.client }

// Close closes the Redis client.
func (s *Store) Close() error { return s.client.Close() }
