// Package ingest parses roster spreadsheets exported as CSV into the typed
// collections the timetable engine consumes. Column contract per sheet:
//
//	Students: ID, Name, Section, Courses (comma-separated course IDs)
//	Courses:  ID, Name, TeacherID, Duration
//	Teachers: ID, Name, Courses (comma-separated course IDs)
//	Rooms:    ID, Name, Type (normal/lab/specialized), Capacity
//
// Rows with an empty primary identifier are dropped. Schema validation beyond
// that is intentionally lenient: missing columns yield zero values and bad
// numerics fall back to defaults.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

const (
	defaultDuration = 1
	defaultCapacity = 50
)

// ParseStudents reads the student sheet.
func ParseStudents(r io.Reader) ([]models.Student, error) {
	rows, err := readSheet(r, "students")
	if err != nil {
		return nil, err
	}
	students := make([]models.Student, 0, len(rows))
	for _, row := range rows {
		if row["id"] == "" {
			continue
		}
		students = append(students, models.Student{
			ID:      row["id"],
			Name:    row["name"],
			Section: row["section"],
			Courses: splitList(row["courses"]),
		})
	}
	return students, nil
}

// ParseCourses reads the course sheet keyed by course identifier.
func ParseCourses(r io.Reader) (map[string]models.Course, error) {
	rows, err := readSheet(r, "courses")
	if err != nil {
		return nil, err
	}
	courses := make(map[string]models.Course, len(rows))
	for _, row := range rows {
		if row["id"] == "" {
			continue
		}
		courses[row["id"]] = models.Course{
			ID:        row["id"],
			Name:      row["name"],
			TeacherID: row["teacherid"],
			Duration:  parseInt(row["duration"], defaultDuration),
		}
	}
	return courses, nil
}

// ParseTeachers reads the teacher sheet keyed by teacher identifier.
func ParseTeachers(r io.Reader) (map[string]models.Teacher, error) {
	rows, err := readSheet(r, "teachers")
	if err != nil {
		return nil, err
	}
	teachers := make(map[string]models.Teacher, len(rows))
	for _, row := range rows {
		if row["id"] == "" {
			continue
		}
		teachers[row["id"]] = models.Teacher{
			ID:      row["id"],
			Name:    row["name"],
			Courses: splitList(row["courses"]),
		}
	}
	return teachers, nil
}

// ParseRooms reads the room sheet.
func ParseRooms(r io.Reader) ([]models.Room, error) {
	rows, err := readSheet(r, "rooms")
	if err != nil {
		return nil, err
	}
	rooms := make([]models.Room, 0, len(rows))
	for _, row := range rows {
		if row["id"] == "" {
			continue
		}
		rooms = append(rooms, models.Room{
			ID:       row["id"],
			Name:     row["name"],
			Type:     parseRoomType(row["type"]),
			Capacity: parseInt(row["capacity"], defaultCapacity),
		})
	}
	return rooms, nil
}

// ParseRoster reads all four sheets and bundles them.
func ParseRoster(students, courses, teachers, rooms io.Reader) (models.Roster, error) {
	parsedStudents, err := ParseStudents(students)
	if err != nil {
		return models.Roster{}, err
	}
	parsedCourses, err := ParseCourses(courses)
	if err != nil {
		return models.Roster{}, err
	}
	parsedTeachers, err := ParseTeachers(teachers)
	if err != nil {
		return models.Roster{}, err
	}
	parsedRooms, err := ParseRooms(rooms)
	if err != nil {
		return models.Roster{}, err
	}
	return models.Roster{
		Students: parsedStudents,
		Courses:  parsedCourses,
		Teachers: parsedTeachers,
		Rooms:    parsedRooms,
	}, nil
}

// readSheet returns one map per data row, keyed by lowercased header name.
func readSheet(r io.Reader, sheet string) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s sheet: %w", sheet, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}

	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]string, len(headers))
		for i, header := range headers {
			if i < len(record) {
				row[header] = strings.TrimSpace(record[i])
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

func parseInt(raw string, fallback int) int {
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func parseRoomType(raw string) models.RoomType {
	switch models.RoomType(strings.ToLower(raw)) {
	case models.RoomTypeLab:
		return models.RoomTypeLab
	case models.RoomTypeSpecialized:
		return models.RoomTypeSpecialized
	default:
		return models.RoomTypeNormal
	}
}
