// Package store provides persistence for assessment records and generated
// reports. Two backends implement the same interface: SQLite for the standalone
// CLI and PostgreSQL for server mode.
package store

import (
	"context"
	"io"
	"time"

	"github.com/ot-assessment-server/internal/domain"
)

// Store defines the interface for assessment and report storage operations.
type Store interface {
	// SaveAssessment stores or updates an assessment record by ID.
	SaveAssessment(ctx context.Context, assessment *domain.StoredAssessment) error

	// GetAssessment retrieves an assessment by ID. A miss returns (nil, nil).
	GetAssessment(ctx context.Context, id string) (*domain.StoredAssessment, error)

	// ListAssessments returns stored assessments with pagination, newest first.
	ListAssessments(ctx context.Context, limit, offset int) ([]*domain.StoredAssessment, error)

	// CountAssessments returns the total number of stored assessments.
	CountAssessments(ctx context.Context) (int64, error)

	// DeleteAssessment removes an assessment by ID.
	DeleteAssessment(ctx context.Context, id string) error

	// SaveReport stores a generated report.
	SaveReport(ctx context.Context, report *domain.GeneratedReport) error

	// GetReport retrieves a generated report by ID. A miss returns (nil, nil).
	GetReport(ctx context.Context, id string) (*domain.GeneratedReport, error)

	// ListReports returns reports for an assessment, newest first. An empty
	// assessmentID lists across all assessments.
	ListReports(ctx context.Context, assessmentID string, limit, offset int) ([]*domain.GeneratedReport, error)

	// ExportJSON exports all stored assessments to a JSON writer.
	ExportJSON(ctx context.Context, writer io.Writer) error

	// ImportJSON imports assessments from a JSON reader.
	// Returns the number of imported and skipped entries.
	ImportJSON(ctx context.Context, reader io.Reader) (imported int, skipped int, err error)

	// Close closes the store and releases resources.
	Close() error
}

// AssessmentExport represents the JSON export format.
type AssessmentExport struct {
	Version     string                     `json:"version"`
	ExportedAt  time.Time                  `json:"exported_at"`
	Count       int                        `json:"count"`
	Assessments []*domain.StoredAssessment `json:"assessments"`
}
