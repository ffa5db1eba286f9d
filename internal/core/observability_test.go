package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestPrometheusMetricsRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusMetricsRecorder(reg)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	ctx := context.Background()
	rec.Observe(ctx, "add_step", true, 10*time.Millisecond)
	rec.Observe(ctx, "add_step", true, 20*time.Millisecond)
	rec.Observe(ctx, "add_step", false, time.Millisecond)
	rec.Observe(ctx, "", true, time.Millisecond)

	if got := testutil.ToFloat64(rec.total.WithLabelValues("add_step", "success")); got != 2 {
		t.Fatalf("expected 2 successes, got %v", got)
	}
	if got := testutil.ToFloat64(rec.total.WithLabelValues("add_step", "error")); got != 1 {
		t.Fatalf("expected 1 error, got %v", got)
	}
	if got := testutil.CollectAndCount(rec.total); got != 2 {
		t.Fatalf("expected 2 label sets, got %d", got)
	}

	again, err := NewPrometheusMetricsRecorder(reg)
	if err != nil {
		t.Fatalf("re-register: %v", err)
	}
	if again.total != rec.total {
		t.Fatalf("expected the registered collector to be reused")
	}
}

func TestRegisterOrReuseRejectsConflicts(t *testing.T) {
	reg := prometheus.NewRegistry()
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: "workledger_service_operations_total", Help: "x"})
	if err := reg.Register(gauge); err != nil {
		t.Fatal(err)
	}
	if _, err := NewPrometheusMetricsRecorder(reg); err == nil {
		t.Fatalf("expected a conflicting registration error")
	}
}

func TestZapLoggerWritesStructuredFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewZapLogger(zap.New(core))
	logger.Debug("operation committed", "operation", "add_step", "changes", 2)
	logger.Warn("rule warning", "rule", "budget_exceeded")
	logger.Error("operation failed", "error", errors.New("boom"))

	if logs.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", logs.Len())
	}
	warn := logs.FilterMessage("rule warning").All()
	if len(warn) != 1 || warn[0].Level != zapcore.WarnLevel || warn[0].ContextMap()["rule"] != "budget_exceeded" {
		t.Fatalf("unexpected warn entry %+v", warn)
	}
	if got := logs.FilterField(zap.String("operation", "add_step")).Len(); got != 1 {
		t.Fatalf("expected the operation field on the debug entry, got %d", got)
	}
	if err := NewZapLogger(nil).Sync(); err != nil {
		t.Fatalf("nop sync: %v", err)
	}
}

func TestServiceLogsThroughZap(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	svc := NewInMemoryService(nil, WithLogger(NewZapLogger(zap.New(core))))
	if _, err := svc.DeleteWork(context.Background(), "missing"); err == nil {
		t.Fatalf("expected not found")
	}
	entries := logs.FilterMessage("operation failed").All()
	if len(entries) != 1 || entries[0].ContextMap()["operation"] != "delete_work" {
		t.Fatalf("unexpected entries %+v", logs.All())
	}
}

func TestNewZapBaseLogger(t *testing.T) {
	for _, env := range []string{"dev", "prod"} {
		l, err := NewZapBaseLogger(env)
		if err != nil {
			t.Fatalf("%s: %v", env, err)
		}
		debug := l.Core().Enabled(zapcore.DebugLevel)
		if debug != (env == "dev") {
			t.Fatalf("%s: debug enabled = %v", env, debug)
		}
	}
}

type lineLogger struct{ lines []string }

func (l *lineLogger) Debug(msg string, kv ...any) {
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i+1 < len(kv); i += 2 {
		b.WriteString(" ")
		b.WriteString(kv[i].(string))
		b.WriteString("=")
		switch v := kv[i+1].(type) {
		case error:
			b.WriteString(v.Error())
		case string:
			b.WriteString(v)
		case time.Duration:
			b.WriteString(v.String())
		}
	}
	l.lines = append(l.lines, b.String())
}
func (l *lineLogger) Info(string, ...any)  {}
func (l *lineLogger) Warn(string, ...any)  {}
func (l *lineLogger) Error(string, ...any) {}

func TestLogTracer(t *testing.T) {
	logger := &lineLogger{}
	tracer := NewLogTracer(logger)
	base := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	calls := 0
	tracer.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Second)
	}

	_, span := tracer.Start(context.Background(), "add_expense")
	span.End(nil)
	_, span = tracer.Start(context.Background(), "delete_work")
	span.End(errors.New("boom"))

	want := []string{
		"span finished operation=add_expense status=success duration=1s",
		"span finished operation=delete_work status=error duration=1s error=boom",
	}
	if len(logger.lines) != len(want) {
		t.Fatalf("unexpected lines %q", logger.lines)
	}
	for i := range want {
		if logger.lines[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, logger.lines[i], want[i])
		}
	}
	NewLogTracer(nil).Start(context.Background(), "x")
}
