package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	domrepo "github.com/FabienAstre/crypto-bullrun-dashboard/internal/domain/repository"
	"github.com/FabienAstre/crypto-bullrun-dashboard/pkg/cache"
	"github.com/FabienAstre/crypto-bullrun-dashboard/pkg/config"
	xhttp "github.com/FabienAstre/crypto-bullrun-dashboard/pkg/http"
	applogger "github.com/FabienAstre/crypto-bullrun-dashboard/pkg/logger"
)

// App encapsulates the application lifecycle: the HTTP server plus the
// resources it owns (cache backend, optional signal publisher).
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	handler    xhttp.Handler
	store      cache.Service
	publisher  domrepo.SignalPublisher
	httpServer *xhttp.Server
}

// New creates an App with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	handler xhttp.Handler,
	store cache.Service,
	publisher domrepo.SignalPublisher,
) *App {
	return &App{
		cfg:       cfg,
		log:       log,
		handler:   handler,
		store:     store,
		publisher: publisher,
	}
}

// Run starts the HTTP server and blocks until interrupted.
func (a *App) Run() error {
	opts := []xhttp.ServerOption{
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(true),
	}
	if a.cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetricsPath(a.cfg.Metrics.Path))
	}
	a.httpServer = xhttp.NewServer(a.handler, opts...)

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("server started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("environment", a.cfg.Environment),
		applogger.String("primary", a.cfg.Assets.Primary),
		applogger.String("secondary", a.cfg.Assets.Secondary))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown gracefully stops the server and closes owned resources.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Warn("publisher close error", applogger.Error(err))
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("cache close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
