package models

// Student is one member of a section together with the courses they require.
type Student struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Section string   `json:"section"`
	Courses []string `json:"courses"`
}

// Course is a teachable unit. Duration is accepted from ingestion but the
// placement pass always books exactly one hour regardless of its value.
type Course struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	TeacherID string `json:"teacherId"`
	Duration  int    `json:"duration"`
}

// Teacher is the instructor roster entry. Courses is informational only; the
// engine resolves teachers through Course.TeacherID.
type Teacher struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Courses []string `json:"courses"`
}

// RoomType classifies rooms from the ingested roster.
type RoomType string

const (
	RoomTypeNormal      RoomType = "normal"
	RoomTypeLab         RoomType = "lab"
	RoomTypeSpecialized RoomType = "specialized"
)

// Room is a bookable space. Capacity is carried for presentation but does not
// constrain placement.
type Room struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Type     RoomType `json:"type"`
	Capacity int      `json:"capacity"`
}

// TimeSlot is one discrete hour of the operating day.
type TimeSlot struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Hour      int    `json:"hour"`
}

// ScheduledClass is a committed placement. Instances are created once by the
// assignment pass and shared by the section, teacher and room views.
type ScheduledClass struct {
	ID          string   `json:"id"`
	CourseID    string   `json:"courseId"`
	CourseName  string   `json:"courseName"`
	TeacherID   string   `json:"teacherId"`
	TeacherName string   `json:"teacherName"`
	RoomID      string   `json:"roomId"`
	RoomName    string   `json:"roomName"`
	Section     string   `json:"section"`
	StartTime   string   `json:"startTime"`
	EndTime     string   `json:"endTime"`
	Hour        int      `json:"hour"`
	Students    []string `json:"students"`
}

// BreakWindows holds the recess and lunch ranges attached to a section schedule.
type BreakWindows struct {
	Recess []TimeSlot `json:"recess"`
	Lunch  []TimeSlot `json:"lunch"`
}

// SectionSchedule is one section's ordered timetable plus its break windows.
type SectionSchedule struct {
	Section string            `json:"section"`
	Classes []*ScheduledClass `json:"schedule"`
	Breaks  BreakWindows      `json:"breaks"`
}

// ScheduleOutput aggregates the generated timetable. The teacher and room views
// reference the same ScheduledClass instances held by the section schedules.
type ScheduleOutput struct {
	SectionSchedules []SectionSchedule            `json:"sectionSchedules"`
	TeacherSchedules map[string][]*ScheduledClass `json:"teacherSchedules"`
	RoomSchedules    map[string][]*ScheduledClass `json:"roomSchedules"`
}

// Roster bundles the typed collections produced by ingestion.
type Roster struct {
	Students []Student          `json:"students"`
	Courses  map[string]Course  `json:"courses"`
	Teachers map[string]Teacher `json:"teachers"`
	Rooms    []Room             `json:"rooms"`
}
