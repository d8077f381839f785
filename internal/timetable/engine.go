package timetable

import "github.com/noah-isme/sma-timetable-api/internal/models"

// Generate runs the single-pass greedy assignment over the roster and returns
// the aggregated schedule views. The computation is a pure function of its
// inputs: all booking state is freshly constructed per call, so independent
// invocations are safe to run concurrently.
//
// For each section (first-seen order) and each of its required courses
// (deduplicated, first-seen across the section's students) the engine scans
// hours from the start of day and rooms in roster order, committing the first
// combination where the section, the teacher and the room are all available.
// Courses whose teacher is unknown, or for which no free (hour, room) pair
// exists before the day ends, are silently left unscheduled.
func Generate(roster models.Roster) *models.ScheduleOutput {
	sectionBook := make(bookings)
	teacherBook := make(bookings)
	roomBook := make(bookings)

	for id := range roster.Teachers {
		teacherBook[id] = []*models.ScheduledClass{}
	}
	for _, room := range roster.Rooms {
		roomBook[room.ID] = []*models.ScheduledClass{}
	}

	var sections []string
	sectionStudents := make(map[string][]string)
	sectionCourses := make(map[string][]models.Course)
	seenCourse := make(map[string]map[string]bool)

	for _, student := range roster.Students {
		if _, ok := seenCourse[student.Section]; !ok {
			sections = append(sections, student.Section)
			seenCourse[student.Section] = make(map[string]bool)
			sectionBook[student.Section] = []*models.ScheduledClass{}
		}
		sectionStudents[student.Section] = append(sectionStudents[student.Section], student.ID)
		for _, courseID := range student.Courses {
			course, ok := roster.Courses[courseID]
			if !ok || seenCourse[student.Section][courseID] {
				continue
			}
			seenCourse[student.Section][courseID] = true
			sectionCourses[student.Section] = append(sectionCourses[student.Section], course)
		}
	}

	plans := PlanBreaks(sections)

	for _, section := range sections {
		breakHours := plans[section].Hours()
		studentIDs := sectionStudents[section]

		for _, course := range sectionCourses[section] {
			teacher, ok := roster.Teachers[course.TeacherID]
			if !ok {
				// Unknown teacher: the course is dropped for this
				// section, not retried.
				continue
			}
			placeCourse(section, course, teacher, roster.Rooms, breakHours, studentIDs,
				sectionBook, teacherBook, roomBook)
		}
	}

	return aggregate(sections, plans, sectionBook, teacherBook, roomBook)
}

// placeCourse books the first available (hour, room) pair for the course, or
// nothing when the day offers none. The triple append commits the placement
// to all three views at once so later scans observe a consistent state.
func placeCourse(
	section string,
	course models.Course,
	teacher models.Teacher,
	rooms []models.Room,
	breakHours []int,
	students []string,
	sectionBook, teacherBook, roomBook bookings,
) {
	for hour := dayStart; hour < dayEnd; hour++ {
		if containsHour(breakHours, hour) {
			continue
		}
		for _, room := range rooms {
			if !sectionFree(sectionBook, section, hour, breakHours) ||
				!teacherFree(teacherBook, course.TeacherID, hour, nil) ||
				!roomFree(roomBook, room.ID, hour) {
				continue
			}

			class := &models.ScheduledClass{
				ID:          classID(section, course.ID, hour),
				CourseID:    course.ID,
				CourseName:  course.Name,
				TeacherID:   course.TeacherID,
				TeacherName: teacher.Name,
				RoomID:      room.ID,
				RoomName:    room.Name,
				Section:     section,
				StartTime:   hourLabel(hour),
				EndTime:     hourLabel(hour + 1),
				Hour:        hour,
				Students:    append([]string(nil), students...),
			}

			sectionBook[section] = append(sectionBook[section], class)
			teacherBook[course.TeacherID] = append(teacherBook[course.TeacherID], class)
			roomBook[room.ID] = append(roomBook[room.ID], class)
			return
		}
	}
}
