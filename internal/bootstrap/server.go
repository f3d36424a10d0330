package bootstrap

import (
	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/leadscan/internal/api"
	"github.com/jonesrussell/north-cloud/leadscan/internal/metrics"
	"github.com/jonesrussell/north-cloud/leadscan/internal/storage"
)

// SetupHTTPServer creates the API server over the services.
func SetupHTTPServer(deps *Deps, services *Services, store storage.Store) *api.Server {
	handlers := api.NewHandlers(services.Crawler, services.Scans, store, deps.Logger)

	return api.NewServer(deps.Config.Server, deps.Logger, func(router *gin.Engine) {
		api.RegisterRoutes(router, api.RouteDeps{
			Handlers: handlers,
			Broker:   services.Broker,
			Metrics:  metrics.Handler(services.Registry),
			Pools: map[string]api.PoolReporter{
				"crawl": services.Crawler,
				"scan":  services.Scans,
			},
			Snapshots: services.Snapshots,
			Logger:    deps.Logger,
		})
	})
}
