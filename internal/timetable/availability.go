package timetable

import "github.com/noah-isme/sma-timetable-api/internal/models"

// bookings tracks committed classes per entity identifier during one pass.
type bookings map[string][]*models.ScheduledClass

// teacherFree reports whether the teacher can take a class at hour. A teacher
// is blocked by an exact-hour collision or when the windowed booking count
// (|booked - hour| <= maxConsecutive) has already reached maxConsecutive.
// The engine always passes an empty break set here; sections carry the real
// break hours through sectionFree.
func teacherFree(b bookings, teacherID string, hour int, breakHours []int) bool {
	return entityFree(b[teacherID], hour, breakHours)
}

// sectionFree is the same predicate keyed by section, evaluated against the
// section's actual break hours.
func sectionFree(b bookings, section string, hour int, breakHours []int) bool {
	return entityFree(b[section], hour, breakHours)
}

// roomFree only rejects an exact-hour collision; rooms have no break hours
// and no consecutive-use limit.
func roomFree(b bookings, roomID string, hour int) bool {
	for _, class := range b[roomID] {
		if class.Hour == hour {
			return false
		}
	}
	return true
}

// entityFree applies the shared teacher/section availability shape. The
// window check counts bookings whose hour is within maxConsecutive of the
// candidate, not true run length: classes at 7, 9 and 11 still count against
// each other.
func entityFree(classes []*models.ScheduledClass, hour int, breakHours []int) bool {
	if containsHour(breakHours, hour) {
		return false
	}

	windowed := 0
	for _, class := range classes {
		if class.Hour == hour {
			return false
		}
		if abs(class.Hour-hour) <= maxConsecutive {
			windowed++
		}
	}
	return windowed < maxConsecutive
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
