package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// EntryRepository persists the placements belonging to a timetable run.
type EntryRepository struct {
	db *sqlx.DB
}

// NewEntryRepository constructs repository.
func NewEntryRepository(db *sqlx.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

func (r *EntryRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// InsertBatch stores all entries of a run in a single named insert.
func (r *EntryRepository) InsertBatch(ctx context.Context, exec sqlx.ExtContext, entries []models.TimetableEntry) error {
	if len(entries) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range entries {
		if entries[i].ID == "" {
			entries[i].ID = uuid.NewString()
		}
		if entries[i].RunID == "" {
			return fmt.Errorf("entry %d is missing run_id", i)
		}
		if entries[i].CreatedAt.IsZero() {
			entries[i].CreatedAt = now
		}
	}

	const query = `
INSERT INTO timetable_entries
	(id, run_id, section, course_id, course_name, teacher_id, teacher_name, room_id, room_name, start_hour, students, created_at)
VALUES
	(:id, :run_id, :section, :course_id, :course_name, :teacher_id, :teacher_name, :room_id, :room_name, :start_hour, :students, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, entries); err != nil {
		return fmt.Errorf("insert timetable entries: %w", err)
	}
	return nil
}

// ListByRun returns a run's entries ordered for display.
func (r *EntryRepository) ListByRun(ctx context.Context, runID string) ([]models.TimetableEntry, error) {
	const query = `SELECT id, run_id, section, course_id, course_name, teacher_id, teacher_name, room_id, room_name, start_hour, students, created_at
FROM timetable_entries WHERE run_id = $1 ORDER BY section ASC, start_hour ASC`
	var entries []models.TimetableEntry
	if err := r.db.SelectContext(ctx, &entries, query, runID); err != nil {
		return nil, fmt.Errorf("list timetable entries: %w", err)
	}
	return entries, nil
}

// DeleteByRun removes all entries belonging to a run.
func (r *EntryRepository) DeleteByRun(ctx context.Context, exec sqlx.ExtContext, runID string) error {
	const query = `DELETE FROM timetable_entries WHERE run_id = $1`
	if _, err := r.exec(exec).ExecContext(ctx, query, runID); err != nil {
		return fmt.Errorf("delete timetable entries: %w", err)
	}
	return nil
}
