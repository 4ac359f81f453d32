package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"learning-exam-service/internal/domain"
)

// AssessmentLoader loads assessment JSONB documents from Postgres.
type AssessmentLoader struct {
	pool *pgxpool.Pool
}

func NewAssessmentLoader(pool *pgxpool.Pool) *AssessmentLoader {
	return &AssessmentLoader{pool: pool}
}

func (l *AssessmentLoader) LoadAssessment(ctx context.Context, assessmentID string) (domain.Assessment, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM assessments WHERE id=$1`, assessmentID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Assessment{}, domain.ErrAssessmentNotFound
	}
	if err != nil {
		return domain.Assessment{}, fmt.Errorf("load assessment: %w", err)
	}
	var assessment domain.Assessment
	if err := json.Unmarshal(raw, &assessment); err != nil {
		return domain.Assessment{}, fmt.Errorf("unmarshal assessment: %w", err)
	}
	if assessment.ID == "" {
		assessment.ID = assessmentID
	}
	return assessment, nil
}

// SeedAssessment inserts an assessment document unless one with the same ID exists.
func (l *AssessmentLoader) SeedAssessment(ctx context.Context, assessment domain.Assessment) error {
	data, err := json.Marshal(assessment)
	if err != nil {
		return fmt.Errorf("marshal assessment: %w", err)
	}
	_, err = l.pool.Exec(ctx,
		`INSERT INTO assessments (id, data) VALUES ($1, $2::jsonb)
		 ON CONFLICT (id) DO NOTHING`,
		assessment.ID, string(data))
	if err != nil {
		return fmt.Errorf("seed assessment: %w", err)
	}
	return nil
}
