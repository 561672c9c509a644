package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"time"

	_ "github.com/lib/pq"

	"github.com/ot-assessment-server/internal/domain"
)

// PostgresStore implements the Store interface using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL assessment store.
// It expects the database and schema to already exist (created via migrations).
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	// Verify connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreFromURL creates a new PostgreSQL assessment store from a connection URL.
func NewPostgresStoreFromURL(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	store, err := NewPostgresStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// SaveAssessment stores or updates an assessment record by ID.
func (s *PostgresStore) SaveAssessment(ctx context.Context, assessment *domain.StoredAssessment) error {
	record, err := json.Marshal(assessment.Record)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	now := time.Now()

	query := `
		INSERT INTO assessments (id, record, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			record = EXCLUDED.record,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at
	`

	err = s.db.QueryRowContext(ctx, query,
		assessment.ID, string(record), now, now,
	).Scan(&assessment.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save assessment: %w", err)
	}

	assessment.UpdatedAt = now
	return nil
}

// GetAssessment retrieves an assessment by ID.
func (s *PostgresStore) GetAssessment(ctx context.Context, id string) (*domain.StoredAssessment, error) {
	query := `
		SELECT id, record, created_at, updated_at
		FROM assessments WHERE id = $1 LIMIT 1
	`

	var record string
	assessment := &domain.StoredAssessment{}

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&assessment.ID, &record, &assessment.CreatedAt, &assessment.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}

	if err := json.Unmarshal([]byte(record), &assessment.Record); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return assessment, nil
}

// ListAssessments returns stored assessments with pagination, newest first.
func (s *PostgresStore) ListAssessments(ctx context.Context, limit, offset int) ([]*domain.StoredAssessment, error) {
	query := `
		SELECT id, record, created_at, updated_at
		FROM assessments
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	var result []*domain.StoredAssessment
	for rows.Next() {
		var record string
		assessment := &domain.StoredAssessment{}
		if err := rows.Scan(&assessment.ID, &record, &assessment.CreatedAt, &assessment.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if err := json.Unmarshal([]byte(record), &assessment.Record); err != nil {
			return nil, fmt.Errorf("failed to decode record: %w", err)
		}
		result = append(result, assessment)
	}
	return result, rows.Err()
}

// CountAssessments returns the total number of stored assessments.
func (s *PostgresStore) CountAssessments(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM assessments").Scan(&count)
	return count, err
}

// DeleteAssessment removes an assessment by ID.
func (s *PostgresStore) DeleteAssessment(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM assessments WHERE id = $1", id)
	return err
}

// SaveReport stores a generated report.
func (s *PostgresStore) SaveReport(ctx context.Context, report *domain.GeneratedReport) error {
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO reports (id, assessment_id, template_name, client_name, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.db.ExecContext(ctx, query,
		report.ID, report.AssessmentID, report.TemplateName,
		report.ClientName, report.Content, report.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}
	return nil
}

// GetReport retrieves a generated report by ID.
func (s *PostgresStore) GetReport(ctx context.Context, id string) (*domain.GeneratedReport, error) {
	query := `
		SELECT id, assessment_id, template_name, client_name, content, created_at
		FROM reports WHERE id = $1 LIMIT 1
	`

	report := &domain.GeneratedReport{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&report.ID, &report.AssessmentID, &report.TemplateName,
		&report.ClientName, &report.Content, &report.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return report, nil
}

// ListReports returns reports for an assessment, newest first.
func (s *PostgresStore) ListReports(ctx context.Context, assessmentID string, limit, offset int) ([]*domain.GeneratedReport, error) {
	query := `
		SELECT id, assessment_id, template_name, client_name, content, created_at
		FROM reports
		WHERE ($1 = '' OR assessment_id = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.QueryContext(ctx, query, assessmentID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	var result []*domain.GeneratedReport
	for rows.Next() {
		report := &domain.GeneratedReport{}
		if err := rows.Scan(&report.ID, &report.AssessmentID, &report.TemplateName,
			&report.ClientName, &report.Content, &report.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, report)
	}
	return result, rows.Err()
}

// ExportJSON exports all stored assessments to a JSON writer.
func (s *PostgresStore) ExportJSON(ctx context.Context, writer io.Writer) error {
	all, err := s.ListAssessments(ctx, maxExportLimit, 0)
	if err != nil {
		return fmt.Errorf("failed to list assessments: %w", err)
	}

	export := &AssessmentExport{
		Version:     "1.0",
		ExportedAt:  time.Now(),
		Count:       len(all),
		Assessments: all,
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(export)
}

// ImportJSON imports assessments from a JSON reader.
func (s *PostgresStore) ImportJSON(ctx context.Context, reader io.Reader) (imported int, skipped int, err error) {
	var export AssessmentExport
	if err := json.NewDecoder(reader).Decode(&export); err != nil {
		return 0, 0, fmt.Errorf("failed to decode JSON: %w", err)
	}

	for _, assessment := range export.Assessments {
		existing, err := s.GetAssessment(ctx, assessment.ID)
		if err != nil {
			return imported, skipped, fmt.Errorf("failed to check existing: %w", err)
		}

		if existing != nil {
			skipped++
			continue
		}

		if err := s.SaveAssessment(ctx, assessment); err != nil {
			return imported, skipped, fmt.Errorf("failed to save: %w", err)
		}
		imported++
	}

	return imported, skipped, nil
}

// Close closes the store and releases resources.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
