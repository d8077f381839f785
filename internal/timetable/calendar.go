// Package timetable implements the daily schedule generator: a single
// deterministic greedy pass that books every section's required courses into
// one-hour slots without double-booking teachers, rooms or sections.
package timetable

import (
	"fmt"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

const (
	dayStart   = 7
	dayEnd     = 15
	totalHours = dayEnd - dayStart

	// maxConsecutive bounds the number of bookings inside a symmetric
	// ±maxConsecutive hour window around a candidate hour.
	maxConsecutive = 2
)

// Slots returns the ordered sequence of one-hour slots covering the operating day.
func Slots() []models.TimeSlot {
	slots := make([]models.TimeSlot, 0, totalHours)
	for hour := dayStart; hour < dayEnd; hour++ {
		slots = append(slots, models.TimeSlot{
			StartTime: hourLabel(hour),
			EndTime:   hourLabel(hour + 1),
			Hour:      hour,
		})
	}
	return slots
}

func hourLabel(hour int) string {
	return fmt.Sprintf("%d:00", hour)
}

func halfHourLabel(hour int) string {
	return fmt.Sprintf("%d:30", hour)
}
