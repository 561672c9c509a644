package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/ot-assessment-server/internal/domain"
)

// ReportRepository handles generated report persistence
type ReportRepository struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *pgxpool.Pool, logger *logrus.Logger) *ReportRepository {
	return &ReportRepository{
		db:  db,
		log: logger,
	}
}

// Create inserts a generated report
func (r *ReportRepository) Create(ctx context.Context, report *domain.GeneratedReport) error {
	query := `
		INSERT INTO reports (
			id, assessment_id, template_name, client_name, content, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)`

	_, err := r.db.Exec(ctx, query,
		report.ID,
		report.AssessmentID,
		report.TemplateName,
		report.ClientName,
		report.Content,
		report.CreatedAt,
	)

	if err != nil {
		r.log.WithFields(logrus.Fields{
			"report_id":     report.ID,
			"assessment_id": report.AssessmentID,
			"error":         err,
		}).Error("Failed to create report")
		return fmt.Errorf("creating report: %w", err)
	}

	r.log.WithFields(logrus.Fields{
		"report_id":     report.ID,
		"assessment_id": report.AssessmentID,
		"template":      report.TemplateName,
	}).Info("Report created successfully")

	return nil
}

// GetByID retrieves a generated report by its ID
func (r *ReportRepository) GetByID(ctx context.Context, id string) (*domain.GeneratedReport, error) {
	query := `
		SELECT id, assessment_id, template_name, client_name, content, created_at
		FROM reports
		WHERE id = $1`

	var report domain.GeneratedReport

	err := r.db.QueryRow(ctx, query, id).Scan(
		&report.ID,
		&report.AssessmentID,
		&report.TemplateName,
		&report.ClientName,
		&report.Content,
		&report.CreatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("report not found: %w", domain.ErrNotFound)
		}
		r.log.WithFields(logrus.Fields{
			"report_id": id,
			"error":     err,
		}).Error("Failed to get report by ID")
		return nil, fmt.Errorf("getting report by ID: %w", err)
	}

	return &report, nil
}

// ListByAssessment retrieves reports for one assessment, newest first
func (r *ReportRepository) ListByAssessment(ctx context.Context, assessmentID string, limit, offset int) ([]*domain.GeneratedReport, error) {
	query := `
		SELECT id, assessment_id, template_name, client_name, content, created_at
		FROM reports
		WHERE assessment_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, assessmentID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	defer rows.Close()

	var reports []*domain.GeneratedReport
	for rows.Next() {
		var report domain.GeneratedReport
		if err := rows.Scan(&report.ID, &report.AssessmentID, &report.TemplateName,
			&report.ClientName, &report.Content, &report.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning report: %w", err)
		}
		reports = append(reports, &report)
	}

	return reports, rows.Err()
}
