// Package main provides the standalone report generator CLI.
// This version requires no external databases - it uses an in-memory completion
// cache and a local SQLite store.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ot-assessment-server/internal/config"
	"github.com/ot-assessment-server/internal/domain"
	"github.com/ot-assessment-server/internal/report"
	"github.com/ot-assessment-server/internal/store"
	"github.com/ot-assessment-server/internal/validation"
	"github.com/ot-assessment-server/pkg/llm"
)

const usage = `Usage:
  report-gen generate <assessment.json>   Generate a report from an assessment record
  report-gen export <output.json>         Export all stored assessments to JSON
  report-gen import <input.json>          Import assessments from a JSON export
`

func main() {
	if len(os.Args) < 3 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.LoadLiteConfig()
	logger := newLogger(cfg)

	if err := cfg.EnsureDataDir(); err != nil {
		logger.WithError(err).Fatal("Failed to create data directory")
	}

	db, err := store.NewSQLiteStore(cfg.StoreDBPath())
	if err != nil {
		logger.WithError(err).Fatal("Failed to open assessment store")
	}
	defer db.Close()

	// Handle shutdown signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	switch os.Args[1] {
	case "generate":
		err = runGenerate(ctx, cfg, logger, db, os.Args[2])
	case "export":
		err = runExport(ctx, logger, db, os.Args[2])
	case "import":
		err = runImport(ctx, logger, db, os.Args[2])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		logger.WithError(err).Error("Command failed")
		os.Exit(1)
	}
}

// runGenerate reads an assessment record from a JSON file, validates it, runs
// the report pipeline, and persists both the assessment and the report.
func runGenerate(ctx context.Context, cfg *config.LiteConfig, logger *logrus.Logger, db store.Store, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read assessment file: %w", err)
	}

	var rec domain.AssessmentRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("failed to parse assessment file: %w", err)
	}

	engine := validation.NewEngine(logger, validation.TransfersTopic(), domain.ValidationConfig{})
	result := engine.Validate(rec)
	if !result.IsValid {
		for _, msg := range result.Errors {
			logger.WithField("error", msg).Warn("Validation issue")
		}
		return fmt.Errorf("assessment record failed validation with %d errors", len(result.Errors))
	}

	var completer llm.Completer = llm.NewHTTPClient(domain.LLMConfig{
		BaseURL:   cfg.LLMBaseURL,
		APIKey:    cfg.LLMAPIKey,
		Model:     cfg.LLMModel,
		MaxTokens: cfg.LLMMaxTokens,
		Timeout:   cfg.LLMTimeout,
	}, logger)
	completer = llm.NewResilientClient(completer, logger)
	completer, err = llm.NewCachedClient(completer, domain.CacheConfig{
		MemoryEntries: cfg.CacheMaxItems,
		DefaultTTL:    cfg.CacheTTL,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create completion cache: %w", err)
	}

	orchestrator := report.NewOrchestrator(
		logger,
		completer,
		report.NewRegistry(logger),
		report.FileStorage{},
		domain.ReportConfig{
			OutputDir:    cfg.OutputDir,
			AssessorName: cfg.AssessorName,
			Credentials:  cfg.Credentials,
		},
		cfg.LLMMaxTokens,
	)

	assessmentID := uuid.NewString()
	if err := db.SaveAssessment(ctx, &domain.StoredAssessment{
		ID:     assessmentID,
		Record: rec,
	}); err != nil {
		return fmt.Errorf("failed to persist assessment: %w", err)
	}

	generated, err := orchestrator.GenerateReport(ctx, assessmentID, rec)
	if err != nil {
		return fmt.Errorf("report generation failed: %w", err)
	}

	if err := db.SaveReport(ctx, generated); err != nil {
		return fmt.Errorf("failed to persist report: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"assessment_id": assessmentID,
		"report_id":     generated.ID,
		"output_dir":    cfg.OutputDir,
	}).Info("Report generated")

	fmt.Println(generated.ID)
	return nil
}

func runExport(ctx context.Context, logger *logrus.Logger, db store.Store, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	if err := db.ExportJSON(ctx, f); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	logger.WithField("path", path).Info("Assessments exported")
	return nil
}

func runImport(ctx context.Context, logger *logrus.Logger, db store.Store, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()

	imported, skipped, err := db.ImportJSON(ctx, f)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"imported": imported,
		"skipped":  skipped,
	}).Info("Assessments imported")
	return nil
}

func newLogger(cfg *config.LiteConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{})
	}

	return logger
}
