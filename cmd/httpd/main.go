package main

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/rozpoctar/boq-classifier/internal/api"
	"github.com/rozpoctar/boq-classifier/internal/classifier"
	"github.com/rozpoctar/boq-classifier/internal/config"
	"github.com/rozpoctar/boq-classifier/internal/database"
	"github.com/rozpoctar/boq-classifier/internal/logger"
	"github.com/rozpoctar/boq-classifier/internal/logging"
	"github.com/rozpoctar/boq-classifier/internal/processor"
	"github.com/rozpoctar/boq-classifier/internal/server"
	"github.com/rozpoctar/boq-classifier/internal/telemetry"
)

func main() {
	cfg, err := config.Load(config.GetConfigPath("config.yml"))
	if err != nil {
		os.Stderr.WriteString("failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.Must(cfg.Logging)
	defer func() { _ = log.Sync() }()

	log.Info("Starting BOQ classifier service",
		logger.String("name", cfg.Service.Name),
		logger.String("version", cfg.Service.Version),
		logger.Int("port", cfg.Service.Port),
		logger.Bool("debug", cfg.Service.Debug),
	)

	adapter := logging.NewAdapter(log)
	tel := telemetry.NewProvider()

	ctx := context.Background()

	rules := classifier.DefaultWorkGroupRules
	var db *sqlx.DB
	var rulesRepo *database.RulesRepository
	if cfg.Database.Enabled {
		db, err = database.Connect(cfg.Database)
		if err != nil {
			log.Fatal("Failed to connect to rule store", logger.Error(err))
		}
		defer func() { _ = db.Close() }()

		rulesRepo = database.NewRulesRepository(db)
		if err = rulesRepo.EnsureSchema(ctx); err != nil {
			log.Fatal("Failed to ensure rule store schema", logger.Error(err))
		}
		if err = rulesRepo.SeedIfEmpty(ctx, classifier.DefaultWorkGroupRules); err != nil {
			log.Fatal("Failed to seed rule store", logger.Error(err))
		}

		rules, err = rulesRepo.List(ctx, true)
		if err != nil {
			log.Fatal("Failed to load rules from store", logger.Error(err))
		}
		log.Info("Rules loaded from store", logger.Int("count", len(rules)))
	} else {
		log.Info("Rule store disabled, using built-in rules", logger.Int("count", len(rules)))
	}
	tel.RecordRuleReload(len(rules))

	scorer := classifier.NewWorkGroupScorer(rules, adapter)
	orchestrator := classifier.NewOrchestrator(scorer, tel.Tracer, adapter)
	rows := classifier.NewRowClassifier(adapter)

	batch := processor.NewBatchProcessor(rows, orchestrator, cfg.Service.Concurrency, tel, adapter)
	limited := processor.NewRateLimitedProcessor(batch, cfg.Service.RatePerSecond, adapter)
	log.Info("Batch processor initialized",
		logger.Int("concurrency", batch.Concurrency()),
		logger.Int("rate_per_second", cfg.Service.RatePerSecond),
	)

	handler := api.NewHandler(rows, orchestrator, scorer, limited, rulesRepo, cfg.Classification, adapter)

	health := server.HealthOptions{
		ServiceName:    cfg.Service.Name,
		ServiceVersion: cfg.Service.Version,
	}
	if db != nil {
		health.Checks = map[string]server.HealthChecker{
			"database": server.DatabaseHealthChecker(db.Ping),
		}
	}

	srv := server.New(server.Config{
		ServiceName:     cfg.Service.Name,
		ServiceVersion:  cfg.Service.Version,
		Port:            cfg.Service.Port,
		Debug:           cfg.Service.Debug,
		ShutdownTimeout: cfg.Service.ShutdownTimeout,
	}, log, health, func(router *gin.Engine) {
		api.SetupServiceRoutes(router, handler, cfg.Auth.JWTSecret, tel.Handler())
	})

	if err := srv.Run(ctx); err != nil {
		log.Fatal("Server failed", logger.Error(err))
	}
}
