package booking

import (
	"time"

	"hamrosewa/internal/models"
)

// DateWindow returns days consecutive calendar days starting with the day of
// now, in now's location. Index 0 is today.
func DateWindow(now time.Time, days int) []models.Day {
	if days <= 0 {
		days = models.BookingWindowDays
	}
	y, m, d := now.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	out := make([]models.Day, 0, days)
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i)
		out = append(out, models.Day{
			Index:   i,
			Date:    day.Format(models.DateLayout),
			Weekday: day.Format("Mon"),
			Label:   dayLabel(i, day),
		})
	}
	return out
}

func dayLabel(offset int, day time.Time) string {
	switch offset {
	case 0:
		return "Today"
	case 1:
		return "Tomorrow"
	default:
		return day.Format("Mon, Jan 2")
	}
}

// Slots returns the daily time grid labels in display order.
func Slots() []string {
	out := make([]string, len(models.TimeSlotLabels))
	copy(out, models.TimeSlotLabels)
	return out
}

// SlotIndex returns the grid position of label, or -1.
func SlotIndex(label string) int {
	for i, l := range models.TimeSlotLabels {
		if l == label {
			return i
		}
	}
	return -1
}
