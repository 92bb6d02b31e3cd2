package main

import (
	"github.com/oggyb/wa-dispatch/internal/config"
	"github.com/oggyb/wa-dispatch/internal/db/gormdb"
	"github.com/oggyb/wa-dispatch/internal/logger"
	dispatchRepo "github.com/oggyb/wa-dispatch/internal/repository/gorm/dispatch"
	"go.uber.org/zap"
)

func main() {
	// Load application configuration (DB, Redis, etc.) from env/.env.
	cfg := config.New()

	log, err := logger.New(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	db, err := gormdb.New(cfg.PostgresDSN())
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	log.Info("connected to database", zap.String("db", cfg.DB.Name))

	if err := db.Migrate(&dispatchRepo.DispatchModel{}); err != nil {
		log.Fatal("auto migrate failed", zap.Error(err))
	}

	log.Info("dispatch_records table is up to date")
}
