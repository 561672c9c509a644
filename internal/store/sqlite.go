package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ot-assessment-server/internal/domain"
)

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates a new SQLite assessment store.
// It creates the database file and schema if they don't exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	// Open database
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	// Create schema
	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// createSchema creates the database tables and indexes.
func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS assessments (
		id TEXT PRIMARY KEY,
		record TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		assessment_id TEXT NOT NULL,
		template_name TEXT NOT NULL,
		client_name TEXT DEFAULT '',
		content TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_assessments_created_at ON assessments(created_at);
	CREATE INDEX IF NOT EXISTS idx_reports_assessment_id ON reports(assessment_id);
	CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at);
	`

	_, err := db.Exec(schema)
	return err
}

// SaveAssessment stores or updates an assessment record by ID.
func (s *SQLiteStore) SaveAssessment(ctx context.Context, assessment *domain.StoredAssessment) error {
	record, err := json.Marshal(assessment.Record)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	now := time.Now()

	var createdAt time.Time
	err = s.db.QueryRowContext(ctx,
		"SELECT created_at FROM assessments WHERE id = ?", assessment.ID,
	).Scan(&createdAt)

	if err == nil {
		assessment.CreatedAt = createdAt
		assessment.UpdatedAt = now

		_, err = s.db.ExecContext(ctx,
			"UPDATE assessments SET record = ?, updated_at = ? WHERE id = ?",
			string(record), now, assessment.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update assessment: %w", err)
		}
		return nil
	}

	if err != sql.ErrNoRows {
		return fmt.Errorf("failed to check existing: %w", err)
	}

	assessment.CreatedAt = now
	assessment.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO assessments (id, record, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`, assessment.ID, string(record), now, now)
	if err != nil {
		return fmt.Errorf("failed to insert assessment: %w", err)
	}

	return nil
}

// GetAssessment retrieves an assessment by ID.
func (s *SQLiteStore) GetAssessment(ctx context.Context, id string) (*domain.StoredAssessment, error) {
	var record string
	assessment := &domain.StoredAssessment{}

	err := s.db.QueryRowContext(ctx, `
		SELECT id, record, created_at, updated_at
		FROM assessments WHERE id = ? LIMIT 1
	`, id).Scan(&assessment.ID, &record, &assessment.CreatedAt, &assessment.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan: %w", err)
	}

	if err := json.Unmarshal([]byte(record), &assessment.Record); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return assessment, nil
}

// ListAssessments returns stored assessments with pagination, newest first.
func (s *SQLiteStore) ListAssessments(ctx context.Context, limit, offset int) ([]*domain.StoredAssessment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, record, created_at, updated_at
		FROM assessments
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
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
func (s *SQLiteStore) CountAssessments(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM assessments").Scan(&count)
	return count, err
}

// DeleteAssessment removes an assessment by ID.
func (s *SQLiteStore) DeleteAssessment(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM assessments WHERE id = ?", id)
	return err
}

// SaveReport stores a generated report.
func (s *SQLiteStore) SaveReport(ctx context.Context, report *domain.GeneratedReport) error {
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reports (id, assessment_id, template_name, client_name, content, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, report.ID, report.AssessmentID, report.TemplateName, report.ClientName, report.Content, report.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}
	return nil
}

// GetReport retrieves a generated report by ID.
func (s *SQLiteStore) GetReport(ctx context.Context, id string) (*domain.GeneratedReport, error) {
	report := &domain.GeneratedReport{}

	err := s.db.QueryRowContext(ctx, `
		SELECT id, assessment_id, template_name, client_name, content, created_at
		FROM reports WHERE id = ? LIMIT 1
	`, id).Scan(&report.ID, &report.AssessmentID, &report.TemplateName,
		&report.ClientName, &report.Content, &report.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan: %w", err)
	}
	return report, nil
}

// ListReports returns reports for an assessment, newest first.
func (s *SQLiteStore) ListReports(ctx context.Context, assessmentID string, limit, offset int) ([]*domain.GeneratedReport, error) {
	query := `
		SELECT id, assessment_id, template_name, client_name, content, created_at
		FROM reports
		WHERE (? = '' OR assessment_id = ?)
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`
	rows, err := s.db.QueryContext(ctx, query, assessmentID, assessmentID, limit, offset)
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

// maxExportLimit is the maximum number of entries to export at once.
const maxExportLimit = 1000000

// ExportJSON exports all stored assessments to a JSON writer.
func (s *SQLiteStore) ExportJSON(ctx context.Context, writer io.Writer) error {
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
func (s *SQLiteStore) ImportJSON(ctx context.Context, reader io.Reader) (imported int, skipped int, err error) {
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
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
