package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/pcbuildsite/pcbuild-backend/config"
	"github.com/pcbuildsite/pcbuild-backend/internal/bootstrap"
	"github.com/pcbuildsite/pcbuild-backend/internal/catalog"
	cronjob "github.com/pcbuildsite/pcbuild-backend/internal/catalog/cron"
	"github.com/pcbuildsite/pcbuild-backend/internal/drafts/service"
	"github.com/pcbuildsite/pcbuild-backend/internal/logger"
)

const serviceName = "pcbuild-backend"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg, err := logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		Encoding:    cfg.App.LogEncoding,
		Service:     serviceName,
		Version:     cfg.App.Version,
		Environment: cfg.App.Environment,
	})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := bootstrap.OpenDraftStore(ctx, bootstrap.StoreOptions{
		Backend:    cfg.Storage.Backend,
		DraftsPath: cfg.Storage.DraftsPath,
		Redis:      cfg.Redis,
	}, lg)
	if err != nil {
		lg.Fatal("failed to open draft store", zap.Error(err))
	}
	defer func() {
		if err := closeStore(); err != nil {
			lg.Warn("failed to close draft store", zap.Error(err))
		}
	}()

	cat := catalog.New(cfg.Catalog.Path, lg)
	if cfg.Catalog.RefreshSpec != "" {
		scheduler := cronjob.NewScheduler(cfg.Catalog.RefreshSpec, cat, lg)
		if err := scheduler.Start(); err != nil {
			lg.Fatal("failed to start catalog refresh", zap.Error(err))
		}
		defer scheduler.Stop()
	}

	drafts := service.NewDraftService(store, service.NewBuilder(nil), lg.With(zap.String("component", "drafts")))

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:    serviceName,
		Version:        cfg.App.Version,
		Logger:         lg,
		Catalog:        cat,
		Drafts:         drafts,
		CORSOrigins:    cfg.Server.CORSOrigins,
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
		StaticDir:      cfg.Server.StaticDir,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		lg.Info("listening", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	lg.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("graceful shutdown failed", zap.Error(err))
	}
}
