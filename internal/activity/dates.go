package activity

import "time"

const dateLayout = "2006-01-02"

// DateKey returns the local calendar date of t, used to bucket records by day.
func DateKey(t time.Time) string {
	return t.Local().Format(dateLayout)
}

// ParseDateKey parses a key produced by DateKey in local time.
func ParseDateKey(key string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, key, time.Local)
}

// WeekStart returns Monday 00:00 local time of the week containing now.
// On a Sunday that is the Monday six days earlier.
func WeekStart(now time.Time) time.Time {
	now = now.Local()
	wd := int(now.Weekday())
	if wd == 0 {
		wd = 7
	}
	monday := now.AddDate(0, 0, -(wd - 1))
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, now.Location())
}

// NextMidnight returns the start of the day after now, local time.
func NextMidnight(now time.Time) time.Time {
	now = now.Local()
	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
}

// SameDay reports whether a and b fall on the same local calendar day.
func SameDay(a, b time.Time) bool {
	return DateKey(a) == DateKey(b)
}
