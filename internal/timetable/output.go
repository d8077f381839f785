package timetable

import (
	"fmt"
	"sort"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// aggregate converts the working booking maps into the final output views.
// Section schedules keep first-seen section order with classes sorted by
// start hour; the teacher and room views expose the same ScheduledClass
// instances the engine committed, not copies.
func aggregate(
	sections []string,
	plans map[string]BreakPlan,
	sectionBook, teacherBook, roomBook bookings,
) *models.ScheduleOutput {
	out := &models.ScheduleOutput{
		SectionSchedules: make([]models.SectionSchedule, 0, len(sections)),
		TeacherSchedules: teacherBook,
		RoomSchedules:    roomBook,
	}

	for _, section := range sections {
		classes := sectionBook[section]
		sort.SliceStable(classes, func(i, j int) bool {
			return classes[i].Hour < classes[j].Hour
		})
		out.SectionSchedules = append(out.SectionSchedules, models.SectionSchedule{
			Section: section,
			Classes: classes,
			Breaks:  plans[section].Windows(),
		})
	}
	return out
}

func classID(section, courseID string, hour int) string {
	return fmt.Sprintf("%s-%s-%d", section, courseID, hour)
}
