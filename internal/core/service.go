package core

import (
	"context"
	"time"

	"workledger/internal/catalog"
	"workledger/internal/events"
	"workledger/internal/infra/persistence/memory"
	"workledger/pkg/domain"
)

// Service exposes the ledger's transactional mutations and derived reads.
// Every mutation runs in one store transaction together with its cascades and
// the lifecycle recompute, and publishes change events after commit.
type Service struct {
	store     domain.PersistentStore
	catalog   *catalog.Catalog
	clock     Clock
	location  *time.Location
	logger    Logger
	metrics   MetricsRecorder
	tracer    Tracer
	publisher events.Publisher
}

// ServiceOption configures optional service dependencies.
type ServiceOption func(*Service)

// WithClock overrides the clock used for "today" and event timestamps.
func WithClock(clock Clock) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLocation sets the time zone in which calendar dates are evaluated.
func WithLocation(loc *time.Location) ServiceOption {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithLogger installs a structured logger.
func WithLogger(logger Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetricsRecorder installs an operation metrics recorder.
func WithMetricsRecorder(recorder MetricsRecorder) ServiceOption {
	return func(s *Service) {
		if recorder != nil {
			s.metrics = recorder
		}
	}
}

// WithTracer installs a tracer.
func WithTracer(tracer Tracer) ServiceOption {
	return func(s *Service) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithPublisher installs the change event publisher.
func WithPublisher(publisher events.Publisher) ServiceOption {
	return func(s *Service) {
		if publisher != nil {
			s.publisher = publisher
		}
	}
}

// WithCatalog replaces the built-in catalog.
func WithCatalog(cat *catalog.Catalog) ServiceOption {
	return func(s *Service) {
		if cat != nil {
			s.catalog = cat
		}
	}
}

// NewService constructs a service backed by the supplied store.
func NewService(store domain.PersistentStore, opts ...ServiceOption) *Service {
	s := &Service{
		store:     store,
		catalog:   catalog.Default(),
		clock:     ClockFunc(time.Now),
		location:  time.UTC,
		logger:    noopLogger{},
		metrics:   noopMetrics{},
		tracer:    noopTracer{},
		publisher: events.Nop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewInMemoryService creates a service over a fresh in-memory store.
func NewInMemoryService(engine *domain.RulesEngine, opts ...ServiceOption) *Service {
	if engine == nil {
		engine = NewDefaultRulesEngine()
	}
	return NewService(memory.NewStore(engine), opts...)
}

// Store returns the underlying storage implementation.
func (s *Service) Store() domain.PersistentStore { return s.store }

// Catalog returns the catalog used for schedules and phase ordering.
func (s *Service) Catalog() *catalog.Catalog { return s.catalog }

// Today is the current calendar date in the service time zone.
func (s *Service) Today() domain.Date {
	return domain.DateOf(s.clock.Now().In(s.location))
}

func (s *Service) run(ctx context.Context, op string, fn func(tx domain.Transaction) error) (domain.Result, error) {
	ctx, span := s.tracer.Start(ctx, op)
	started := time.Now()
	var changes []domain.Change
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if err := fn(tx); err != nil {
			return err
		}
		changes = tx.Changes()
		return nil
	})
	s.metrics.Observe(ctx, op, err == nil, time.Since(started))
	span.End(err)

	for _, v := range res.Warnings() {
		s.logger.Warn("rule warning", "operation", op, "rule", v.Rule, "entity", v.Entity, "id", v.EntityID, "message", v.Message)
	}
	if err != nil {
		s.logger.Error("operation failed", "operation", op, "error", err)
		return res, err
	}
	if len(changes) > 0 {
		s.logger.Debug("operation committed", "operation", op, "changes", len(changes), "version", s.store.Version())
		s.publish(ctx, op, changes)
	}
	return res, nil
}

// publish never fails the committed operation; delivery errors are logged.
func (s *Service) publish(ctx context.Context, op string, changes []domain.Change) {
	version := s.store.Version()
	at := s.clock.Now().UTC()
	for _, c := range changes {
		ev := events.FromChange(c, version, at)
		if err := s.publisher.Publish(ctx, ev); err != nil {
			s.logger.Warn("publish change event failed", "operation", op, "type", ev.Type, "id", ev.EntityID, "error", err)
		}
	}
}

func (s *Service) view(ctx context.Context, fn func(domain.TransactionView)) {
	err := s.store.View(ctx, func(v domain.TransactionView) error {
		fn(v)
		return nil
	})
	if err != nil {
		s.logger.Error("read failed", "error", err)
	}
}

func requireWork(view domain.TransactionView, workID string) (domain.Work, error) {
	work, ok := view.FindWork(workID)
	if !ok {
		return domain.Work{}, domain.ErrNotFound{Entity: domain.EntityWork, ID: workID}
	}
	return work, nil
}
