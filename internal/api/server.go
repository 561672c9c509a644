// Package api exposes the assessment intake and report generation operations
// over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ot-assessment-server/internal/analysis"
	"github.com/ot-assessment-server/internal/domain"
	"github.com/ot-assessment-server/internal/middleware"
	"github.com/ot-assessment-server/internal/narrative"
	"github.com/ot-assessment-server/internal/validation"
)

// AssessmentStore persists incoming assessment records.
type AssessmentStore interface {
	Save(ctx context.Context, assessment *domain.StoredAssessment) error
}

// ReportStore persists and retrieves generated reports.
type ReportStore interface {
	Create(ctx context.Context, report *domain.GeneratedReport) error
	GetByID(ctx context.Context, id string) (*domain.GeneratedReport, error)
}

// ReportGenerator runs the full report pipeline for one assessment record.
type ReportGenerator interface {
	GenerateReport(ctx context.Context, assessmentID string, rec domain.AssessmentRecord) (*domain.GeneratedReport, error)
}

// Server represents the HTTP server
type Server struct {
	config *domain.Config
	logger *logrus.Logger
	router *gin.Engine
	server *http.Server

	validator   *validation.Engine
	agent       *analysis.TransfersAgent
	formatter   *narrative.Formatter
	generator   *narrative.Generator
	reports     ReportGenerator
	assessments AssessmentStore
	reportStore ReportStore
}

// NewServer creates a new HTTP server instance
func NewServer(
	config *domain.Config,
	logger *logrus.Logger,
	validator *validation.Engine,
	agent *analysis.TransfersAgent,
	formatter *narrative.Formatter,
	generator *narrative.Generator,
	reports ReportGenerator,
	assessments AssessmentStore,
	reportStore ReportStore,
) *Server {
	// Set Gin mode based on environment
	if config.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.AuditLogger())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestTimeout(config.Server.WriteTimeout))
	router.Use(middleware.RateLimit(50, 100))

	server := &Server{
		config:      config,
		logger:      logger,
		router:      router,
		validator:   validator,
		agent:       agent,
		formatter:   formatter,
		generator:   generator,
		reports:     reports,
		assessments: assessments,
		reportStore: reportStore,
	}

	// Setup routes
	server.setupRoutes()

	return server
}

// Start starts the HTTP server and blocks until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.config.Server
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// Router exposes the configured engine for handler tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.router.GET("/health", s.handleHealth)

	// API v1 routes
	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/assessments/validate", s.handleValidate)
		v1.POST("/assessments/analyze", s.handleAnalyze)
		v1.POST("/assessments/narrative", s.handleNarrative)
		v1.POST("/reports", s.handleGenerateReport)
		v1.GET("/reports/:id", s.handleGetReport)
	}
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now(),
		"version":   "1.0.0",
	})
}
