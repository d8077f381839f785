package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

func TestGenerateSingleCourseSection(t *testing.T) {
	roster := models.Roster{
		Students: []models.Student{
			{ID: "s1", Name: "Student One", Section: "A", Courses: []string{"C1"}},
			{ID: "s2", Name: "Student Two", Section: "A", Courses: []string{"C1"}},
		},
		Courses: map[string]models.Course{
			"C1": {ID: "C1", Name: "Mathematics", TeacherID: "T1", Duration: 1},
		},
		Teachers: map[string]models.Teacher{
			"T1": {ID: "T1", Name: "Teacher One", Courses: []string{"C1"}},
		},
		Rooms: []models.Room{
			{ID: "R1", Name: "Room 101", Type: models.RoomTypeNormal, Capacity: 30},
		},
	}

	out := Generate(roster)
	require.Len(t, out.SectionSchedules, 1)
	require.Len(t, out.SectionSchedules[0].Classes, 1)

	class := out.SectionSchedules[0].Classes[0]
	assert.Equal(t, 7, class.Hour, "first non-break hour")
	assert.Equal(t, "C1", class.CourseID)
	assert.Equal(t, "Teacher One", class.TeacherName)
	assert.Equal(t, "R1", class.RoomID)
	assert.Equal(t, []string{"s1", "s2"}, class.Students)
	assert.Equal(t, "A-C1-7", class.ID)
}

func TestGenerateRoomContentionFirstSeenOrder(t *testing.T) {
	roster := models.Roster{
		Students: []models.Student{
			{ID: "s1", Section: "A", Courses: []string{"C1"}},
			{ID: "s2", Section: "B", Courses: []string{"C2"}},
		},
		Courses: map[string]models.Course{
			"C1": {ID: "C1", Name: "Physics", TeacherID: "T1"},
			"C2": {ID: "C2", Name: "Biology", TeacherID: "T2"},
		},
		Teachers: map[string]models.Teacher{
			"T1": {ID: "T1", Name: "Teacher One"},
			"T2": {ID: "T2", Name: "Teacher Two"},
		},
		Rooms: []models.Room{
			{ID: "R1", Name: "Room 101"},
		},
	}

	out := Generate(roster)
	require.Len(t, out.SectionSchedules, 2)
	require.Len(t, out.SectionSchedules[0].Classes, 1)
	require.Len(t, out.SectionSchedules[1].Classes, 1)

	// Section A is seen first and wins hour 7; section B takes the next
	// hour the room is free.
	assert.Equal(t, "A", out.SectionSchedules[0].Section)
	assert.Equal(t, 7, out.SectionSchedules[0].Classes[0].Hour)
	assert.Equal(t, "B", out.SectionSchedules[1].Section)
	assert.Equal(t, 8, out.SectionSchedules[1].Classes[0].Hour)
}

func TestGenerateUnknownTeacherDropsCourse(t *testing.T) {
	roster := models.Roster{
		Students: []models.Student{
			{ID: "s1", Section: "A", Courses: []string{"C1", "C2"}},
		},
		Courses: map[string]models.Course{
			"C1": {ID: "C1", Name: "Chemistry", TeacherID: "missing"},
			"C2": {ID: "C2", Name: "History", TeacherID: "T1"},
		},
		Teachers: map[string]models.Teacher{
			"T1": {ID: "T1", Name: "Teacher One"},
		},
		Rooms: []models.Room{{ID: "R1", Name: "Room 101"}},
	}

	out := Generate(roster)
	require.Len(t, out.SectionSchedules, 1)
	require.Len(t, out.SectionSchedules[0].Classes, 1)
	assert.Equal(t, "C2", out.SectionSchedules[0].Classes[0].CourseID)

	for _, classes := range out.TeacherSchedules {
		for _, class := range classes {
			assert.NotEqual(t, "C1", class.CourseID)
		}
	}
	for _, classes := range out.RoomSchedules {
		for _, class := range classes {
			assert.NotEqual(t, "C1", class.CourseID)
		}
	}
}

func TestGenerateTeacherWindowSpreadsClasses(t *testing.T) {
	roster := models.Roster{
		Students: []models.Student{
			{ID: "s1", Section: "A", Courses: []string{"C1", "C2", "C3"}},
		},
		Courses: map[string]models.Course{
			"C1": {ID: "C1", Name: "Algebra", TeacherID: "T1"},
			"C2": {ID: "C2", Name: "Geometry", TeacherID: "T1"},
			"C3": {ID: "C3", Name: "Calculus", TeacherID: "T1"},
		},
		Teachers: map[string]models.Teacher{
			"T1": {ID: "T1", Name: "Teacher One"},
		},
		Rooms: []models.Room{
			{ID: "R1", Name: "Room 101"},
			{ID: "R2", Name: "Room 102"},
		},
	}

	out := Generate(roster)
	require.Len(t, out.SectionSchedules, 1)

	var hours []int
	for _, class := range out.SectionSchedules[0].Classes {
		hours = append(hours, class.Hour)
	}
	// Hour 9 is section A's recess; the third class lands at 10 because the
	// windowed count against 7 and 8 has dropped below the cap by then.
	assert.Equal(t, []int{7, 8, 10}, hours)
}

func TestGenerateNoDoubleBookingAcrossViews(t *testing.T) {
	out := Generate(denseRoster())

	type key struct {
		id   string
		hour int
	}
	counts := map[string]map[key]int{
		"teacher": {},
		"room":    {},
		"section": {},
	}
	for _, ss := range out.SectionSchedules {
		for _, class := range ss.Classes {
			counts["teacher"][key{class.TeacherID, class.Hour}]++
			counts["room"][key{class.RoomID, class.Hour}]++
			counts["section"][key{class.Section, class.Hour}]++
		}
	}
	for dimension, byKey := range counts {
		for k, n := range byKey {
			assert.LessOrEqual(t, n, 1, "%s %s double-booked at hour %d", dimension, k.id, k.hour)
		}
	}
}

func TestGenerateBreakExclusion(t *testing.T) {
	out := Generate(denseRoster())

	for i, ss := range out.SectionSchedules {
		offset := i % 2
		recess := dayStart + totalHours/3 + offset
		lunch := dayStart + totalHours*2/3 + offset
		for _, class := range ss.Classes {
			assert.NotEqual(t, recess, class.Hour, "section %s scheduled during recess", ss.Section)
			assert.NotEqual(t, lunch, class.Hour, "section %s scheduled during lunch", ss.Section)
		}
	}
}

func TestGenerateViewConsistency(t *testing.T) {
	out := Generate(denseRoster())

	fromSections := make(map[string]*models.ScheduledClass)
	for _, ss := range out.SectionSchedules {
		for _, class := range ss.Classes {
			fromSections[class.ID] = class
		}
	}

	teacherSeen := 0
	for teacherID, classes := range out.TeacherSchedules {
		for _, class := range classes {
			teacherSeen++
			require.Same(t, fromSections[class.ID], class)
			assert.Equal(t, teacherID, class.TeacherID)
		}
	}
	roomSeen := 0
	for roomID, classes := range out.RoomSchedules {
		for _, class := range classes {
			roomSeen++
			require.Same(t, fromSections[class.ID], class)
			assert.Equal(t, roomID, class.RoomID)
		}
	}
	assert.Equal(t, len(fromSections), teacherSeen)
	assert.Equal(t, len(fromSections), roomSeen)
}

func TestGenerateDeterministic(t *testing.T) {
	first := Generate(denseRoster())
	second := Generate(denseRoster())
	assert.Equal(t, first, second)
}

func TestGenerateEmptySectionCourses(t *testing.T) {
	roster := models.Roster{
		Students: []models.Student{{ID: "s1", Section: "A"}},
		Courses:  map[string]models.Course{},
		Teachers: map[string]models.Teacher{},
	}

	out := Generate(roster)
	require.Len(t, out.SectionSchedules, 1)
	assert.Empty(t, out.SectionSchedules[0].Classes)
}

// denseRoster exercises three sections competing for two rooms and three
// teachers, enough contention to make the invariant checks meaningful.
func denseRoster() models.Roster {
	return models.Roster{
		Students: []models.Student{
			{ID: "s1", Section: "A", Courses: []string{"C1", "C2", "C3"}},
			{ID: "s2", Section: "A", Courses: []string{"C1", "C2", "C3"}},
			{ID: "s3", Section: "B", Courses: []string{"C1", "C4", "C5"}},
			{ID: "s4", Section: "B", Courses: []string{"C4", "C5"}},
			{ID: "s5", Section: "C", Courses: []string{"C2", "C4", "C6"}},
		},
		Courses: map[string]models.Course{
			"C1": {ID: "C1", Name: "Mathematics", TeacherID: "T1"},
			"C2": {ID: "C2", Name: "Physics", TeacherID: "T2"},
			"C3": {ID: "C3", Name: "Chemistry", TeacherID: "T3"},
			"C4": {ID: "C4", Name: "Biology", TeacherID: "T1"},
			"C5": {ID: "C5", Name: "History", TeacherID: "T2"},
			"C6": {ID: "C6", Name: "Geography", TeacherID: "T3"},
		},
		Teachers: map[string]models.Teacher{
			"T1": {ID: "T1", Name: "Teacher One"},
			"T2": {ID: "T2", Name: "Teacher Two"},
			"T3": {ID: "T3", Name: "Teacher Three"},
		},
		Rooms: []models.Room{
			{ID: "R1", Name: "Room 101", Type: models.RoomTypeNormal, Capacity: 40},
			{ID: "R2", Name: "Lab 1", Type: models.RoomTypeLab, Capacity: 24},
		},
	}
}
