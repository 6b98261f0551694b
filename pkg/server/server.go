// Package server exposes the asset catalog over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"assetcat/pkg/catalog"
	"assetcat/pkg/log"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const defaultShutdownTimeout = 10 * time.Second

// CatalogServer serves catalog queries and mutations.
type CatalogServer struct {
	store           *catalog.Store
	echo            *echo.Echo
	version         string
	shutdownTimeout time.Duration
	ingestDir       string
	logger          zerolog.Logger
}

// Option configures a CatalogServer.
type Option func(*CatalogServer)

// WithIngestDir allows POST /assets to catalog files below dir. Without it
// server-side ingest is refused.
func WithIngestDir(dir string) Option {
	return func(cs *CatalogServer) {
		cs.ingestDir = resolveIngestDir(dir)
	}
}

// NewCatalogServer creates a server backed by an open store.
func NewCatalogServer(store *catalog.Store, version string, shutdownTimeout time.Duration, opts ...Option) *CatalogServer {
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}

	cs := &CatalogServer{
		store:           store,
		echo:            echo.New(),
		version:         version,
		shutdownTimeout: shutdownTimeout,
		logger:          log.Component("server"),
	}
	for _, opt := range opts {
		opt(cs)
	}
	cs.setupRoutes()
	return cs
}

// Handler returns the HTTP handler with all routes installed.
func (cs *CatalogServer) Handler() http.Handler {
	return cs.echo
}

// Start serves on addr until SIGINT or SIGTERM, then shuts down gracefully.
func (cs *CatalogServer) Start(addr string) error {
	errCh := make(chan error, 1)

	go func() {
		cs.logger.Info().
			Str("addr", addr).
			Str("db_file", cs.store.DatabasePath()).
			Str("root_dir", cs.store.Root()).
			Str("ingest_dir", cs.ingestDir).
			Str("version", cs.version).
			Msg("Starting catalog server")

		if err := cs.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		cs.logger.Error().Err(err).Msg("Server startup failed")
		return err
	case <-quit:
	}

	return cs.Shutdown()
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (cs *CatalogServer) Shutdown() error {
	cs.logger.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cs.shutdownTimeout)
	defer cancel()

	if err := cs.echo.Shutdown(ctx); err != nil {
		cs.logger.Error().Err(err).Msg("Server shutdown failed")
		return err
	}

	cs.logger.Info().Msg("Server gracefully stopped")
	return nil
}

func (cs *CatalogServer) setupRoutes() {
	cs.echo.HideBanner = true
	cs.echo.HidePort = true

	cs.echo.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} ${status} ${method} ${uri} (${latency_human})\n",
	}))
	cs.echo.Use(middleware.Recover())
	cs.echo.Use(requestMetrics)

	cs.echo.GET("/healthz", cs.getHealth)
	cs.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	cs.echo.GET("/assets", cs.listAssets)
	cs.echo.POST("/assets", cs.insertAsset)
	cs.echo.PATCH("/assets", cs.updateAssets)
	cs.echo.POST("/assets/retire", cs.retireAssets)
	cs.echo.GET("/assets/:id", cs.getAsset)
	cs.echo.GET("/assets/:id/download", cs.downloadAsset)
}
