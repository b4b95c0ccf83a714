package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/juju/loggo/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/Domenick1991/domora/api"
	"github.com/Domenick1991/domora/config"
	"github.com/Domenick1991/domora/docs"
	"github.com/Domenick1991/domora/internal/metrics"
)

var logger = loggo.GetLogger("domora.bootstrap")

const swaggerJSONPath = "/swagger/domora.swagger.json"

type Dependencies struct {
	Services api.Services
	Metrics  *metrics.Collector
	// Gatherer backs /metrics; prometheus.DefaultGatherer when nil.
	Gatherer prometheus.Gatherer
}

// Run serves the HTTP API and blocks until ctx is canceled or the server fails.
func Run(ctx context.Context, cfg *config.Config, deps Dependencies) error {
	srv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           NewHandler(cfg, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("http server listening on %s", cfg.HTTP.Address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		logger.Infof("http server stopped")
		return nil
	}
}

// NewHandler builds the gin engine: API routes under /api plus health,
// metrics and docs.
func NewHandler(cfg *config.Config, deps Dependencies) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), api.RequestLogger(), api.Instrument(deps.Metrics))

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	if cfg.HTTP.SwaggerDir != "" {
		engine.StaticFile(swaggerJSONPath, cfg.HTTP.SwaggerDir+"/domora.swagger.json")
	} else {
		engine.GET(swaggerJSONPath, func(c *gin.Context) {
			c.Data(http.StatusOK, "application/json", docs.Swagger)
		})
	}
	engine.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL(swaggerJSONPath))))

	api.Mount(engine, deps.Services)
	return engine
}
