// Command workledger serves the work ledger HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"

	"workledger/internal/adapters/httpapi"
	"workledger/internal/catalog"
	"workledger/internal/config"
	"workledger/internal/core"
	"workledger/internal/events"
)

func main() {
	configPath := flag.String("config", os.Getenv("WORKLEDGER_CONFIG"), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	base, err := core.NewZapBaseLogger(cfg.App.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	logger := core.NewZapLogger(base)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("workledger stopped", "error", err)
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *core.ZapLogger) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	cat := catalog.Default()
	if cfg.Catalog.Path != "" {
		if cat, err = catalog.LoadYAML(cfg.Catalog.Path); err != nil {
			return err
		}
		logger.Info("catalog loaded", "path", cfg.Catalog.Path, "phases", len(cat.Phases))
	}

	store, err := core.OpenPersistentStore(ctx, cfg.Storage, core.NewDefaultRulesEngine())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("close store", "error", err)
		}
	}()
	logger.Info("store opened", "driver", cfg.Storage.Driver, "version", store.Version())

	publisher, err := openPublisher(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = publisher.Close() }()

	metrics, err := core.NewPrometheusMetricsRecorder(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	svc := core.NewService(store,
		core.WithCatalog(cat),
		core.WithLocation(loc),
		core.WithLogger(logger),
		core.WithMetricsRecorder(metrics),
		core.WithTracer(core.NewLogTracer(logger)),
		core.WithPublisher(publisher),
	)

	if cfg.App.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpapi.NewRouter(svc, logger, httpapi.RouterOptions{Metrics: cfg.Metrics.Enabled})
	srv := httpapi.NewServer(cfg.HTTP.Addr, router)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()
	logger.Info("http server started", "addr", cfg.HTTP.Addr, "metrics", cfg.Metrics.Enabled)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	if err := store.Flush(shutdownCtx); err != nil {
		logger.Error("flush store", "error", err)
	}
	logger.Info("graceful shutdown complete")
	return nil
}

func openPublisher(cfg config.Config) (events.Publisher, error) {
	switch cfg.Events.Driver {
	case "", "none":
		return events.Nop{}, nil
	case "amqp":
		p, err := events.DialAMQP(cfg.Events.AMQP.URL, cfg.Events.AMQP.Exchange)
		if err != nil {
			return nil, fmt.Errorf("dial amqp: %w", err)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown events driver %q", cfg.Events.Driver)
	}
}
