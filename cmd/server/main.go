package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/ot-assessment-server/internal/analysis"
	"github.com/ot-assessment-server/internal/api"
	"github.com/ot-assessment-server/internal/config"
	"github.com/ot-assessment-server/internal/database"
	"github.com/ot-assessment-server/internal/domain"
	"github.com/ot-assessment-server/internal/narrative"
	"github.com/ot-assessment-server/internal/report"
	"github.com/ot-assessment-server/internal/repository"
	"github.com/ot-assessment-server/internal/validation"
	"github.com/ot-assessment-server/pkg/llm"
)

func main() {
	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := newLogger(cfg.Logging)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	// Apply database migrations before opening the pool
	runner, err := database.NewMigrationRunner(database.URL(cfg.Database), cfg.Database.MigrationsPath, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create migration runner")
	}
	if err := runner.Up(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to apply migrations")
	}
	if err := runner.Close(); err != nil {
		logger.WithError(err).Warn("Failed to close migration runner")
	}

	// Connect to the database
	db, err := database.NewConnection(ctx, cfg.Database, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	assessments := repository.NewAssessmentRepository(db.Pool, logger)
	reports := repository.NewReportRepository(db.Pool, logger)

	// Build the completion client chain: HTTP transport, circuit breaker, cache
	var completer llm.Completer = llm.NewHTTPClient(cfg.LLM, logger)
	completer = llm.NewResilientClient(completer, logger)
	completer, err = llm.NewCachedClient(completer, cfg.Cache, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create completion cache")
	}

	orchestrator := report.NewOrchestrator(
		logger,
		completer,
		report.NewRegistry(logger),
		report.FileStorage{},
		cfg.Report,
		cfg.LLM.MaxTokens,
	)

	server := api.NewServer(
		cfg,
		logger,
		validation.NewEngine(logger, validation.TransfersTopic(), cfg.Validation),
		analysis.NewTransfersAgent(logger),
		narrative.NewFormatter(logger),
		narrative.NewGenerator(logger),
		orchestrator,
		assessments,
		reports,
	)

	logger.WithFields(logrus.Fields{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Starting OT assessment server")

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}

	logger.Info("Server stopped")
}

// newLogger builds the process logger from the logging configuration. Unknown
// levels fall back to info, unknown formats to JSON.
func newLogger(cfg domain.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	return logger
}
