package timetable

import "github.com/noah-isme/sma-timetable-api/internal/models"

// BreakPlan holds the recess and lunch hours assigned to one section.
type BreakPlan struct {
	RecessHours []int
	LunchHours  []int
}

// PlanBreaks staggers recess and lunch across sections so that not every
// section vacates at once: even-indexed sections take the base hours, odd
// ones shift by one. Section order is the first-seen order from the student
// list, which makes the plan a pure function of that order.
func PlanBreaks(sections []string) map[string]BreakPlan {
	recessBase := dayStart + totalHours/3
	lunchBase := dayStart + totalHours*2/3

	plans := make(map[string]BreakPlan, len(sections))
	for i, section := range sections {
		offset := i % 2
		plans[section] = BreakPlan{
			RecessHours: []int{recessBase + offset},
			LunchHours:  []int{lunchBase + offset},
		}
	}
	return plans
}

// Hours returns every hour blocked by the plan.
func (p BreakPlan) Hours() []int {
	hours := make([]int, 0, len(p.RecessHours)+len(p.LunchHours))
	hours = append(hours, p.RecessHours...)
	hours = append(hours, p.LunchHours...)
	return hours
}

// Windows renders the plan as display ranges: recess spans half an hour,
// lunch a full hour.
func (p BreakPlan) Windows() models.BreakWindows {
	windows := models.BreakWindows{
		Recess: make([]models.TimeSlot, 0, len(p.RecessHours)),
		Lunch:  make([]models.TimeSlot, 0, len(p.LunchHours)),
	}
	for _, hour := range p.RecessHours {
		windows.Recess = append(windows.Recess, models.TimeSlot{
			StartTime: hourLabel(hour),
			EndTime:   halfHourLabel(hour),
			Hour:      hour,
		})
	}
	for _, hour := range p.LunchHours {
		windows.Lunch = append(windows.Lunch, models.TimeSlot{
			StartTime: hourLabel(hour),
			EndTime:   hourLabel(hour + 1),
			Hour:      hour,
		})
	}
	return windows
}

func containsHour(hours []int, hour int) bool {
	for _, h := range hours {
		if h == hour {
			return true
		}
	}
	return false
}
