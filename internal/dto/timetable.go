package dto

import (
	"time"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// StudentInput is one student row of the roster payload.
type StudentInput struct {
	ID      string   `json:"id" validate:"required"`
	Name    string   `json:"name"`
	Section string   `json:"section" validate:"required"`
	Courses []string `json:"courses"`
}

// CourseInput is one course row. TeacherID may reference an unknown teacher;
// such courses are silently left unscheduled.
type CourseInput struct {
	ID        string `json:"id" validate:"required"`
	Name      string `json:"name"`
	TeacherID string `json:"teacherId"`
	Duration  int    `json:"duration" validate:"omitempty,min=1"`
}

// TeacherInput is one teacher row.
type TeacherInput struct {
	ID      string   `json:"id" validate:"required"`
	Name    string   `json:"name"`
	Courses []string `json:"courses"`
}

// RoomInput is one room row.
type RoomInput struct {
	ID       string `json:"id" validate:"required"`
	Name     string `json:"name"`
	Type     string `json:"type" validate:"omitempty,oneof=normal lab specialized"`
	Capacity int    `json:"capacity" validate:"omitempty,min=1"`
}

// GenerateTimetableRequest carries a full roster for schedule generation.
type GenerateTimetableRequest struct {
	Students []StudentInput `json:"students" validate:"required,min=1,dive"`
	Courses  []CourseInput  `json:"courses" validate:"required,min=1,dive"`
	Teachers []TeacherInput `json:"teachers" validate:"dive"`
	Rooms    []RoomInput    `json:"rooms" validate:"required,min=1,dive"`
}

// TimetableStats summarises one generation pass.
type TimetableStats struct {
	Sections         int   `json:"sections"`
	ScheduledClasses int   `json:"scheduledClasses"`
	DurationMillis   int64 `json:"durationMillis"`
}

// GenerateTimetableResponse returns the generated schedule together with the
// proposal handle used to persist it.
type GenerateTimetableResponse struct {
	ProposalID string                 `json:"proposalId"`
	DatasetID  string                 `json:"datasetId"`
	Output     *models.ScheduleOutput `json:"output"`
	Stats      TimetableStats         `json:"stats"`
	Cached     bool                   `json:"cached"`
}

// SaveTimetableRequest persists a proposal as a versioned run.
type SaveTimetableRequest struct {
	ProposalID string `json:"proposalId" validate:"required"`
	Publish    bool   `json:"publish"`
}

// TimetableRunQuery filters stored runs by roster dataset.
type TimetableRunQuery struct {
	DatasetID string `form:"datasetId" json:"datasetId"`
}

// TimetableRunDetail bundles a stored run with its entries.
type TimetableRunDetail struct {
	Run     models.TimetableRun     `json:"run"`
	Entries []models.TimetableEntry `json:"entries"`
}

// RunMeta is the JSON meta payload stored alongside a run.
type RunMeta struct {
	Sections         int       `json:"sections"`
	ScheduledClasses int       `json:"scheduledClasses"`
	GeneratedAt      time.Time `json:"generatedAt"`
	Algorithm        string    `json:"algorithm"`
}
