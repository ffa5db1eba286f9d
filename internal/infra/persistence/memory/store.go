// Package memory provides the in-memory transactional ledger store. Durable
// backends embed it and persist the whole document from a commit hook.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"workledger/pkg/domain"
)

// Compile-time contract assertion ensuring Store adheres to the domain persistence interface.
var _ domain.PersistentStore = (*Store)(nil)

// CommitHook runs under the store lock with the document about to be
// committed. base is the version the document was derived from; for a commit
// snapshot.Version is base+1, for a flush both are equal. Returning an error
// discards the transaction.
type CommitHook func(ctx context.Context, base uint64, snapshot Snapshot) error

// Option configures a Store.
type Option func(*Store)

// WithCommitHook installs a hook invoked before each commit becomes visible.
func WithCommitHook(hook CommitHook) Option {
	return func(s *Store) { s.hook = hook }
}

// WithClock overrides the clock used to stamp records.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.nowFn = now
		}
	}
}

// WithIDGenerator overrides record id generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.idFn = gen
		}
	}
}

// Store is an in-memory, transactional ledger. Transactions are serialised and
// operate on a cloned state that is swapped in only after rules pass and the
// commit hook succeeds.
type Store struct {
	mu      sync.RWMutex
	state   memoryState
	version uint64
	engine  *domain.RulesEngine
	nowFn   func() time.Time
	idFn    func() string
	hook    CommitHook
}

// NewStore constructs an empty store backed by the provided rules engine.
func NewStore(engine *domain.RulesEngine, opts ...Option) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	s := &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
		idFn:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetCommitHook replaces the commit hook.
func (s *Store) SetCommitHook(hook CommitHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hook = hook
}

// ExportState returns a copy of the committed document.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state, s.version)
}

// ImportState replaces the committed document without running rules or hooks.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(snapshot)
	s.version = snapshot.Version
}

// RulesEngine returns the engine evaluated on every commit.
func (s *Store) RulesEngine() *domain.RulesEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// NowFunc returns the clock used to stamp records.
func (s *Store) NowFunc() func() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nowFn
}

// Version returns the committed document version.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// RunInTransaction executes fn within a transactional copy of the store state.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx domain.Transaction) error) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{store: s, state: s.state.clone(), now: s.nowFn()}
	if err := fn(tx); err != nil {
		return domain.Result{}, err
	}

	var result domain.Result
	if s.engine != nil {
		res, err := s.engine.Evaluate(ctx, newTransactionView(&tx.state), tx.changes)
		if err != nil {
			return domain.Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}
	if len(tx.changes) == 0 {
		return result, nil
	}

	next := s.version + 1
	if s.hook != nil {
		if err := s.hook(ctx, s.version, snapshotFromMemoryState(tx.state, next)); err != nil {
			return result, err
		}
	}
	s.state = tx.state
	s.version = next
	return result, nil
}

// View runs fn against a read-only clone of the committed state.
func (s *Store) View(_ context.Context, fn func(domain.TransactionView) error) error {
	s.mu.RLock()
	snapshot := s.state.clone()
	s.mu.RUnlock()
	return fn(newTransactionView(&snapshot))
}

// Flush re-runs the commit hook against the committed state.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.hook == nil {
		return nil
	}
	return s.hook(ctx, s.version, snapshotFromMemoryState(s.state, s.version))
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error { return nil }
