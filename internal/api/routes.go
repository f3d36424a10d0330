package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/leadscan/internal/logger"
	"github.com/jonesrussell/north-cloud/leadscan/internal/sse"
	"github.com/jonesrussell/north-cloud/leadscan/internal/worker"
)

// PoolReporter exposes worker pool statistics for the health endpoint.
type PoolReporter interface {
	Stats() worker.PoolStats
}

// SnapshotCounter reports how many crawl snapshots are cached.
type SnapshotCounter interface {
	Len() int
}

// RouteDeps holds everything the routes serve. Broker, Metrics and
// Snapshots are optional.
type RouteDeps struct {
	Handlers  *Handlers
	Broker    *sse.Broker
	Metrics   http.Handler
	Pools     map[string]PoolReporter
	Snapshots SnapshotCounter
	Logger    logger.Logger
}

// RegisterRoutes mounts the API on router.
func RegisterRoutes(router *gin.Engine, deps RouteDeps) {
	started := time.Now()
	router.GET("/health", healthHandler(started, deps))
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics))
	}

	group := router.Group("/api")
	group.POST("/crawl", deps.Handlers.StartCrawl)
	group.POST("/scan", deps.Handlers.StartScan)
	group.GET("/assets", deps.Handlers.ListAssets)
	group.GET("/reports", deps.Handlers.ListReports)

	if deps.Broker != nil {
		group.GET("/stream-crawl-status", sse.Handler(deps.Broker, deps.Logger, sse.WithCrawlFilter()))
		group.GET("/stream-scan-status", sse.Handler(deps.Broker, deps.Logger, sse.WithScanFilter()))
	}
}

type poolHealth struct {
	State       string  `json:"state"`
	Busy        int     `json:"busy"`
	Queued      int     `json:"queued"`
	Processed   int64   `json:"processed"`
	Failed      int64   `json:"failed"`
	Utilization float64 `json:"utilization"`
}

func healthHandler(started time.Time, deps RouteDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "healthy"
		poolStates := make(map[string]poolHealth, len(deps.Pools))
		for name, p := range deps.Pools {
			s := p.Stats()
			if s.State != worker.PoolStateRunning {
				status = "degraded"
			}
			poolStates[name] = poolHealth{
				State:       s.State.String(),
				Busy:        s.BusyWorkers,
				Queued:      s.Queued,
				Processed:   s.JobsProcessed,
				Failed:      s.JobsFailed,
				Utilization: s.Utilization(),
			}
		}

		body := gin.H{
			"status":  status,
			"service": "leadscan",
			"uptime":  time.Since(started).Truncate(time.Second).String(),
			"pools":   poolStates,
		}
		if deps.Broker != nil {
			body["stream_clients"] = deps.Broker.ClientCount()
		}
		if deps.Snapshots != nil {
			body["cached_snapshots"] = deps.Snapshots.Len()
		}
		c.JSON(http.StatusOK, body)
	}
}
