package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oggyb/wa-dispatch/internal/cache"
	"github.com/oggyb/wa-dispatch/internal/cache/redis"
	"github.com/oggyb/wa-dispatch/internal/config"
	"github.com/oggyb/wa-dispatch/internal/db/gormdb"
	"github.com/oggyb/wa-dispatch/internal/handler"
	"github.com/oggyb/wa-dispatch/internal/logger"
	"github.com/oggyb/wa-dispatch/internal/monitor"
	dispatchRepo "github.com/oggyb/wa-dispatch/internal/repository/gorm/dispatch"
	routes "github.com/oggyb/wa-dispatch/internal/router"
	"github.com/oggyb/wa-dispatch/internal/server"
	"github.com/oggyb/wa-dispatch/internal/service"
	"github.com/oggyb/wa-dispatch/internal/session"
	"github.com/oggyb/wa-dispatch/internal/upload"
	"github.com/oggyb/wa-dispatch/internal/whatsapp"
	"go.uber.org/zap"
)

func main() {
	// Base context for the whole application lifetime.
	rootCtx := context.Background()

	// Load configuration from environment/.env.
	cfg := config.New()

	log, err := logger.New(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	log = log.With(zap.String("app", cfg.App.Name))

	// Init cache. Session state and last-dispatch lookups degrade without it.
	var store cache.Cache
	rdb := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err := rdb.Ping(rootCtx); err != nil {
		log.Warn("redis unreachable, running without cache", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	} else {
		store = rdb
	}
	defer func() { _ = rdb.Close() }()

	// Init DB.
	db, err := gormdb.New(cfg.PostgresDSN())
	if err != nil {
		log.Fatal("failed to connect db", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	// Init WhatsApp gateway client. The session itself is started lazily.
	gateway := whatsapp.NewGatewayClient(cfg.Gateway.URL, cfg.Gateway.Token, log)
	if err := gateway.Health(rootCtx); err != nil {
		log.Warn("whatsapp gateway is not reachable yet", zap.String("url", cfg.Gateway.URL), zap.Error(err))
	}

	// Session events: login codes and status changes.
	bus := whatsapp.NewBus()
	events, unsubscribe := bus.Subscribe(32)
	defer unsubscribe()

	recorder := session.NewRecorder(store, log)
	go recorder.Run(rootCtx, events)

	gate := session.NewGate(gateway, bus, session.Options{
		SessionID: cfg.Session.Name,
		Start: whatsapp.StartOptions{
			Headless:       cfg.Session.Headless,
			DisableWelcome: cfg.Session.DisableWelcome,
			SessionDir:     cfg.Session.Dir,
			PollInterval:   cfg.Session.PollInterval,
		},
		StartTimeout: cfg.Session.StartTimeout,
		AutoStart:    cfg.Session.AutoStart,
	}, log)

	// Init repository and services.
	repo := dispatchRepo.NewRepository(db)
	dispatcher := service.NewDispatcher(cfg.Dispatch.ImageCaption, cfg.Dispatch.SendTimeout)
	dispatchSvc := service.NewDispatchService(gate, dispatcher, repo, store, log, cfg.Dispatch.FailOnTextError)

	uploads := upload.NewStore(cfg.Upload.Dir, cfg.UploadURLPrefix())

	// Session monitor. A probe may have to wait out a whole session start.
	mon := monitor.New(gate, cfg.Session.MonitorInterval, cfg.Session.StartTimeout+10*time.Second, log)

	// Handlers
	deps := routes.AppDeps{
		Home:      handler.NewHomeHandler(cfg.App.Name, cfg.Upload.MaxBytes, log),
		Dispatch:  handler.NewDispatchHandler(dispatchSvc, uploads, cfg.Upload.MaxBytes, log),
		Session:   handler.NewSessionHandler(gate, recorder, mon),
		PublicDir: cfg.Upload.PublicDir,
	}

	// Init Server
	addr := cfg.Addr()
	srv := server.New(addr, deps, log)

	// Create a context that is cancelled on SIGINT/SIGTERM (Ctrl+C, docker stop etc.).
	ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start the HTTP server in a separate goroutine so we can listen for signals.
	go func() {
		log.Info("HTTP server listening", zap.String("addr", addr))

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Start the monitor after everything is wired up.
	if err := mon.Start(); err != nil {
		log.Fatal("session monitor error", zap.Error(err))
	}
	log.Info("session monitor started", zap.Duration("interval", cfg.Session.MonitorInterval))

	// Block until we receive a shutdown signal.
	<-ctx.Done()
	log.Info("shutdown signal received, starting graceful shutdown")

	// Give components some time to shut down cleanly.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Gracefully shut down the HTTP server first so in-flight sends finish.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server graceful shutdown failed", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	// Stop the monitor. An in-flight probe may be waiting out a session
	// start, so give up once the shutdown window closes.
	switch err := monitor.StopContext(shutdownCtx, mon); {
	case errors.Is(err, context.DeadlineExceeded):
		log.Warn("session monitor still probing, exiting anyway")
	case err != nil:
		log.Error("session monitor could not be stopped", zap.Error(err))
	default:
		log.Info("session monitor stopped")
	}

	bus.Close()
	log.Info("shutdown complete")
}
