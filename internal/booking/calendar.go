package booking

import "time"

// DateInfo pairs a bookable calendar date with its semester week number.
type DateInfo struct {
	Day  time.Time
	Week int
}

// WeekNumber computes the 1-based semester week that the given day falls in,
// relative to the injected semester start date. Days before the semester
// starts clamp to week 1.
func WeekNumber(day, semesterStart time.Time) int {
	days := int(NormalizeDay(day).Sub(NormalizeDay(semesterStart)).Hours() / 24)
	if days < 0 {
		return 1
	}
	return days/7 + 1
}

// UpcomingDates returns the bookable dates in the window starting at today:
// the next `window` calendar days, excluding Sundays, each annotated with its
// semester week number.
func UpcomingDates(today, semesterStart time.Time, window int) []DateInfo {
	out := make([]DateInfo, 0, window)
	day := NormalizeDay(today)
	for i := 0; i < window; i++ {
		current := day.AddDate(0, 0, i)
		if current.Weekday() == time.Sunday {
			continue
		}
		out = append(out, DateInfo{Day: current, Week: WeekNumber(current, semesterStart)})
	}
	return out
}
