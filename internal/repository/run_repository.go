package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// RunRepository persists versioned timetable runs.
type RunRepository struct {
	db *sqlx.DB
}

// NewRunRepository constructs repository.
func NewRunRepository(db *sqlx.DB) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// CreateVersioned inserts a run assigning the next version for the dataset.
func (r *RunRepository) CreateVersioned(ctx context.Context, exec sqlx.ExtContext, run *models.TimetableRun) error {
	if run == nil {
		return fmt.Errorf("run payload is nil")
	}
	if run.DatasetID == "" {
		return fmt.Errorf("dataset_id is required")
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.Status == "" {
		run.Status = models.TimetableRunStatusDraft
	}
	if len(run.Meta) == 0 {
		run.Meta = types.JSONText(`{}`)
	}
	now := time.Now().UTC()
	if run.CreatedAt.IsZero() {
		run.CreatedAt = now
	}
	run.UpdatedAt = now

	target := r.exec(exec)

	const nextVersionQuery = `SELECT COALESCE(MAX(version), 0) + 1 FROM timetable_runs WHERE dataset_id = $1`
	if err := sqlx.GetContext(ctx, target, &run.Version, nextVersionQuery, run.DatasetID); err != nil {
		return fmt.Errorf("compute next timetable run version: %w", err)
	}

	const insertQuery = `
INSERT INTO timetable_runs (id, dataset_id, version, status, meta, created_at, updated_at)
VALUES (:id, :dataset_id, :version, :status, :meta, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, target, insertQuery, run); err != nil {
		return fmt.Errorf("insert timetable run: %w", err)
	}
	return nil
}

// ListByDataset returns all versions stored for the provided dataset digest.
func (r *RunRepository) ListByDataset(ctx context.Context, datasetID string) ([]models.TimetableRun, error) {
	const query = `SELECT id, dataset_id, version, status, meta, created_at, updated_at
FROM timetable_runs WHERE dataset_id = $1 ORDER BY version DESC`
	var runs []models.TimetableRun
	if err := r.db.SelectContext(ctx, &runs, query, datasetID); err != nil {
		return nil, fmt.Errorf("list timetable runs: %w", err)
	}
	return runs, nil
}

// List returns the most recent runs across all datasets.
func (r *RunRepository) List(ctx context.Context, limit int) ([]models.TimetableRun, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `SELECT id, dataset_id, version, status, meta, created_at, updated_at
FROM timetable_runs ORDER BY created_at DESC LIMIT $1`
	var runs []models.TimetableRun
	if err := r.db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, fmt.Errorf("list timetable runs: %w", err)
	}
	return runs, nil
}

// FindByID loads a run by its identifier.
func (r *RunRepository) FindByID(ctx context.Context, id string) (*models.TimetableRun, error) {
	const query = `SELECT id, dataset_id, version, status, meta, created_at, updated_at FROM timetable_runs WHERE id = $1`
	var run models.TimetableRun
	if err := r.db.GetContext(ctx, &run, query, id); err != nil {
		return nil, err
	}
	return &run, nil
}

// Delete removes a stored run. Entries cascade at the database level.
func (r *RunRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM timetable_runs WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete timetable run: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("timetable run rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateStatus updates the status (and optionally meta) of a run.
func (r *RunRepository) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.TimetableRunStatus, meta types.JSONText) error {
	target := r.exec(exec)
	now := time.Now().UTC()

	var (
		query string
		args  []interface{}
	)
	if len(meta) > 0 {
		query = `UPDATE timetable_runs SET status = $1, meta = $2, updated_at = $3 WHERE id = $4`
		args = []interface{}{status, meta, now, id}
	} else {
		query = `UPDATE timetable_runs SET status = $1, updated_at = $2 WHERE id = $3`
		args = []interface{}{status, now, id}
	}
	result, err := target.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update timetable run status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("timetable run status rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
