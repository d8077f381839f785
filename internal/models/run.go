package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// TimetableRunStatus represents lifecycle phases for persisted timetables.
type TimetableRunStatus string

const (
	TimetableRunStatusDraft     TimetableRunStatus = "DRAFT"
	TimetableRunStatusPublished TimetableRunStatus = "PUBLISHED"
	TimetableRunStatusArchived  TimetableRunStatus = "ARCHIVED"
)

// TimetableRun captures one versioned generation for a roster dataset. DatasetID
// is the digest of the roster the schedule was computed from.
type TimetableRun struct {
	ID        string             `db:"id" json:"id"`
	DatasetID string             `db:"dataset_id" json:"dataset_id"`
	Version   int                `db:"version" json:"version"`
	Status    TimetableRunStatus `db:"status" json:"status"`
	Meta      types.JSONText     `db:"meta" json:"meta"`
	CreatedAt time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt time.Time          `db:"updated_at" json:"updated_at"`
}

// TimetableEntry is one committed placement inside a stored run.
type TimetableEntry struct {
	ID          string         `db:"id" json:"id"`
	RunID       string         `db:"run_id" json:"run_id"`
	Section     string         `db:"section" json:"section"`
	CourseID    string         `db:"course_id" json:"course_id"`
	CourseName  string         `db:"course_name" json:"course_name"`
	TeacherID   string         `db:"teacher_id" json:"teacher_id"`
	TeacherName string         `db:"teacher_name" json:"teacher_name"`
	RoomID      string         `db:"room_id" json:"room_id"`
	RoomName    string         `db:"room_name" json:"room_name"`
	StartHour   int            `db:"start_hour" json:"start_hour"`
	Students    types.JSONText `db:"students" json:"students"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}
