package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"workledger/internal/core"
)

// RouterOptions selects the optional endpoints mounted next to the API.
type RouterOptions struct {
	// Metrics mounts GET /metrics serving Gatherer.
	Metrics bool
	// Gatherer defaults to the default prometheus registry.
	Gatherer prometheus.Gatherer
}

// NewRouter builds the gin engine serving health, metrics and the /v1 API.
func NewRouter(svc *core.Service, logger core.Logger, opts RouterOptions) *gin.Engine {
	h := NewHandler(svc, logger)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(h.logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": svc.Store().Version()})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	if opts.Metrics {
		gatherer := opts.Gatherer
		if gatherer == nil {
			gatherer = prometheus.DefaultGatherer
		}
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	h.Register(r)
	return r
}

func requestLogger(logger core.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}
