// Package repository provides pgx-backed persistence used by server mode.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/ot-assessment-server/internal/domain"
)

// AssessmentRepository handles assessment record persistence
type AssessmentRepository struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

// NewAssessmentRepository creates a new assessment repository
func NewAssessmentRepository(db *pgxpool.Pool, logger *logrus.Logger) *AssessmentRepository {
	return &AssessmentRepository{
		db:  db,
		log: logger,
	}
}

// Save upserts an assessment record by ID
func (r *AssessmentRepository) Save(ctx context.Context, assessment *domain.StoredAssessment) error {
	record, err := json.Marshal(assessment.Record)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}

	query := `
		INSERT INTO assessments (id, record, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			record = EXCLUDED.record,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at`

	now := time.Now()
	err = r.db.QueryRow(ctx, query, assessment.ID, record, now, now).Scan(&assessment.CreatedAt)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"assessment_id": assessment.ID,
			"error":         err,
		}).Error("Failed to save assessment")
		return fmt.Errorf("saving assessment: %w", err)
	}
	assessment.UpdatedAt = now

	r.log.WithFields(logrus.Fields{
		"assessment_id": assessment.ID,
	}).Info("Assessment saved successfully")

	return nil
}

// GetByID retrieves an assessment by its ID
func (r *AssessmentRepository) GetByID(ctx context.Context, id string) (*domain.StoredAssessment, error) {
	query := `
		SELECT id, record, created_at, updated_at
		FROM assessments
		WHERE id = $1`

	var assessment domain.StoredAssessment
	var record []byte

	err := r.db.QueryRow(ctx, query, id).Scan(
		&assessment.ID,
		&record,
		&assessment.CreatedAt,
		&assessment.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("assessment not found: %w", domain.ErrNotFound)
		}
		r.log.WithFields(logrus.Fields{
			"assessment_id": id,
			"error":         err,
		}).Error("Failed to get assessment by ID")
		return nil, fmt.Errorf("getting assessment by ID: %w", err)
	}

	if err := json.Unmarshal(record, &assessment.Record); err != nil {
		return nil, fmt.Errorf("decoding record: %w", err)
	}

	return &assessment, nil
}

// List retrieves stored assessments with pagination, newest first
func (r *AssessmentRepository) List(ctx context.Context, limit, offset int) ([]*domain.StoredAssessment, error) {
	query := `
		SELECT id, record, created_at, updated_at
		FROM assessments
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing assessments: %w", err)
	}
	defer rows.Close()

	var assessments []*domain.StoredAssessment
	for rows.Next() {
		var assessment domain.StoredAssessment
		var record []byte
		if err := rows.Scan(&assessment.ID, &record, &assessment.CreatedAt, &assessment.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning assessment: %w", err)
		}
		if err := json.Unmarshal(record, &assessment.Record); err != nil {
			return nil, fmt.Errorf("decoding record: %w", err)
		}
		assessments = append(assessments, &assessment)
	}

	return assessments, rows.Err()
}

// Delete removes an assessment by ID
func (r *AssessmentRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM assessments WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting assessment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("assessment not found: %w", domain.ErrNotFound)
	}

	r.log.WithField("assessment_id", id).Info("Assessment deleted")
	return nil
}
