// Command roster_preview runs the greedy scheduler against local CSV sheets
// and prints the resulting timetable, without needing the API or a database.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/noah-isme/sma-timetable-api/internal/ingest"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/timetable"
)

func main() {
	var (
		studentsPath string
		coursesPath  string
		teachersPath string
		roomsPath    string
		byTeacher    bool
	)

	flag.StringVar(&studentsPath, "students", "students.csv", "Path to students sheet")
	flag.StringVar(&coursesPath, "courses", "courses.csv", "Path to courses sheet")
	flag.StringVar(&teachersPath, "teachers", "teachers.csv", "Path to teachers sheet")
	flag.StringVar(&roomsPath, "rooms", "rooms.csv", "Path to rooms sheet")
	flag.BoolVar(&byTeacher, "by-teacher", false, "Also print the per-teacher view")
	flag.Parse()

	roster, err := loadRoster(studentsPath, coursesPath, teachersPath, roomsPath)
	if err != nil {
		log.Fatalf("failed to load roster: %v", err)
	}

	output := timetable.Generate(roster)
	printSections(output)
	if byTeacher {
		printTeachers(output)
	}

	total := 0
	for _, section := range output.SectionSchedules {
		total += len(section.Classes)
	}
	fmt.Printf("Sections: %d, Scheduled classes: %d\n", len(output.SectionSchedules), total)
}

func loadRoster(studentsPath, coursesPath, teachersPath, roomsPath string) (models.Roster, error) {
	files := make([]*os.File, 0, 4)
	defer func() {
		for _, f := range files {
			_ = f.Close()
		}
	}()

	open := func(path string) (*os.File, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
		return f, nil
	}

	students, err := open(studentsPath)
	if err != nil {
		return models.Roster{}, err
	}
	courses, err := open(coursesPath)
	if err != nil {
		return models.Roster{}, err
	}
	teachers, err := open(teachersPath)
	if err != nil {
		return models.Roster{}, err
	}
	rooms, err := open(roomsPath)
	if err != nil {
		return models.Roster{}, err
	}

	return ingest.ParseRoster(students, courses, teachers, rooms)
}

func printSections(output *models.ScheduleOutput) {
	fmt.Println("Timetable Preview")
	fmt.Println("=================")
	for _, section := range output.SectionSchedules {
		fmt.Printf("Section %s (recess %s, lunch %s)\n", section.Section, windowLabel(section.Breaks.Recess), windowLabel(section.Breaks.Lunch))
		for _, class := range section.Classes {
			fmt.Printf("  %s - %s  %-20s %-16s %s (%d students)\n",
				class.StartTime, class.EndTime, class.CourseName, class.TeacherName, class.RoomName, len(class.Students))
		}
	}
}

func printTeachers(output *models.ScheduleOutput) {
	fmt.Println("Teacher View")
	fmt.Println("============")
	ids := make([]string, 0, len(output.TeacherSchedules))
	for id := range output.TeacherSchedules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		classes := output.TeacherSchedules[id]
		if len(classes) == 0 {
			continue
		}
		fmt.Printf("%s (%s)\n", classes[0].TeacherName, id)
		for _, class := range classes {
			fmt.Printf("  %s - %s  %-20s section %s in %s\n",
				class.StartTime, class.EndTime, class.CourseName, class.Section, class.RoomName)
		}
	}
}

func windowLabel(slots []models.TimeSlot) string {
	labels := make([]string, 0, len(slots))
	for _, slot := range slots {
		labels = append(labels, slot.StartTime+" - "+slot.EndTime)
	}
	if len(labels) == 0 {
		return "none"
	}
	return strings.Join(labels, ", ")
}
