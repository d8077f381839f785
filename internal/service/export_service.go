package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/export"
)

// ExportFormat selects an output encoding for schedule exports.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportResult holds a rendered document ready for download.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ExportService renders stored timetable runs as CSV or PDF documents.
type ExportService struct {
	runs    runRepository
	entries entryRepository
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	logger  *zap.Logger
}

// NewExportService wires the export dependencies.
func NewExportService(runs runRepository, entries entryRepository, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		runs:    runs,
		entries: entries,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		logger:  logger,
	}
}

// ExportRun renders the entries of a stored run in the requested format.
func (s *ExportService) ExportRun(ctx context.Context, runID string, format ExportFormat) (*ExportResult, error) {
	if runID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "run id is required")
	}

	run, err := s.runs.FindByID(ctx, runID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable run not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable run")
	}
	entries, err := s.entries.ListByRun(ctx, runID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetable entries")
	}
	if len(entries) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable run has no entries")
	}

	base := fmt.Sprintf("timetable-v%d", run.Version)
	switch format {
	case ExportFormatCSV:
		content, err := s.csv.Render(flatDataset(entries))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportResult{Content: content, ContentType: "text/csv", Filename: base + ".csv"}, nil
	case ExportFormatPDF:
		sections, order := sectionDatasets(entries)
		content, err := s.pdf.Render(fmt.Sprintf("Timetable v%d", run.Version), sections, order)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportResult{Content: content, ContentType: "application/pdf", Filename: base + ".pdf"}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

var exportHeaders = []string{"Section", "Time", "Course", "Teacher", "Room", "Students"}

func flatDataset(entries []models.TimetableEntry) export.Dataset {
	rows := make([]map[string]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, entryRow(entry, true))
	}
	return export.Dataset{Headers: exportHeaders, Rows: rows}
}

func sectionDatasets(entries []models.TimetableEntry) (map[string]export.Dataset, []string) {
	headers := exportHeaders[1:]
	datasets := make(map[string]export.Dataset)
	var order []string
	for _, entry := range entries {
		data, ok := datasets[entry.Section]
		if !ok {
			data = export.Dataset{Headers: headers}
			order = append(order, entry.Section)
		}
		data.Rows = append(data.Rows, entryRow(entry, false))
		datasets[entry.Section] = data
	}
	return datasets, order
}

func entryRow(entry models.TimetableEntry, withSection bool) map[string]string {
	row := map[string]string{
		"Time":     fmt.Sprintf("%d:00 - %d:00", entry.StartHour, entry.StartHour+1),
		"Course":   entry.CourseName,
		"Teacher":  entry.TeacherName,
		"Room":     entry.RoomName,
		"Students": studentSummary(entry.Students),
	}
	if withSection {
		row["Section"] = entry.Section
	}
	return row
}

func studentSummary(raw types.JSONText) string {
	var students []string
	if err := json.Unmarshal(raw, &students); err != nil {
		return ""
	}
	return strings.Join(students, "; ")
}
