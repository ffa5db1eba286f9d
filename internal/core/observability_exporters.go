package core

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// PrometheusMetricsRecorder exports service operation latency and outcome
// counts.
type PrometheusMetricsRecorder struct {
	duration *prometheus.HistogramVec
	total    *prometheus.CounterVec
}

// NewPrometheusMetricsRecorder registers the service collectors on reg,
// reusing collectors that are already registered.
func NewPrometheusMetricsRecorder(reg prometheus.Registerer) (*PrometheusMetricsRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "workledger",
		Subsystem: "service",
		Name:      "operation_duration_seconds",
		Help:      "Latency of ledger service operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "status"})
	total := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workledger",
		Subsystem: "service",
		Name:      "operations_total",
		Help:      "Ledger service operations by outcome.",
	}, []string{"operation", "status"})

	var err error
	if duration, err = registerOrReuse(reg, duration); err != nil {
		return nil, err
	}
	if total, err = registerOrReuse(reg, total); err != nil {
		return nil, err
	}
	return &PrometheusMetricsRecorder{duration: duration, total: total}, nil
}

func registerOrReuse[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Observe records one operation outcome.
func (r *PrometheusMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	r.duration.WithLabelValues(operation, status).Observe(duration.Seconds())
	r.total.WithLabelValues(operation, status).Inc()
}

// ZapLogger adapts a zap logger to Logger.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger wraps l; a nil logger yields a no-op zap logger.
func NewZapLogger(l *zap.Logger) *ZapLogger {
	if l == nil {
		l = zap.NewNop()
	}
	return &ZapLogger{sugar: l.Sugar()}
}

// NewZapBaseLogger builds the process logger for env: human readable with
// debug output in "dev", JSON at info level otherwise.
func NewZapBaseLogger(env string) (*zap.Logger, error) {
	if env == "dev" {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return cfg.Build()
	}
	return zap.NewProduction()
}

func (z *ZapLogger) Debug(msg string, kv ...any) { z.sugar.Debugw(msg, kv...) }
func (z *ZapLogger) Info(msg string, kv ...any)  { z.sugar.Infow(msg, kv...) }
func (z *ZapLogger) Warn(msg string, kv ...any)  { z.sugar.Warnw(msg, kv...) }
func (z *ZapLogger) Error(msg string, kv ...any) { z.sugar.Errorw(msg, kv...) }

// Sync flushes buffered log entries.
func (z *ZapLogger) Sync() error { return z.sugar.Sync() }

// LogTracer emits a debug line per finished span through a Logger.
type LogTracer struct {
	logger Logger
	now    func() time.Time
}

// NewLogTracer returns a tracer writing to logger.
func NewLogTracer(logger Logger) *LogTracer {
	if logger == nil {
		logger = noopLogger{}
	}
	return &LogTracer{logger: logger, now: time.Now}
}

// Start implements Tracer.
func (t *LogTracer) Start(ctx context.Context, operation string) (context.Context, TraceSpan) {
	return ctx, &logSpan{tracer: t, operation: operation, started: t.now()}
}

type logSpan struct {
	tracer    *LogTracer
	operation string
	started   time.Time
}

func (s *logSpan) End(err error) {
	elapsed := s.tracer.now().Sub(s.started)
	if err != nil {
		s.tracer.logger.Debug("span finished", "operation", s.operation, "status", "error", "duration", elapsed, "error", err)
		return
	}
	s.tracer.logger.Debug("span finished", "operation", s.operation, "status", "success", "duration", elapsed)
}
