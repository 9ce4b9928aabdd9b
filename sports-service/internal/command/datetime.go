package command

import (
	"strings"
	"time"
)

const matchLength = 90 * time.Minute

// parseDate accepts YYYY-MM-DD or YYYY/MM/DD.
func parseDate(s string) (time.Time, error) {
	sep := ""
	switch {
	case strings.Contains(s, "-"):
		sep = "-"
	case strings.Contains(s, "/"):
		sep = "/"
	default:
		return time.Time{}, invalid("date must include either '-' or '/'")
	}

	parts := strings.Split(s, sep)
	if len(parts) != 3 || len(parts[0]) != 4 || len(parts[1]) != 2 || len(parts[2]) != 2 {
		return time.Time{}, invalid("invalid date format. YYYY-MM-DD or YYYY/MM/DD is required.")
	}
	d, err := time.ParseInLocation("2006-01-02", strings.Join(parts, "-"), time.UTC)
	if err != nil {
		return time.Time{}, invalid("invalid date format. YYYY-MM-DD or YYYY/MM/DD is required.")
	}
	return d, nil
}

// parseClock accepts HH:MM:SS, or MM:SS for a time within the first hour.
// It returns the offset from midnight.
func parseClock(s string) (time.Duration, error) {
	if !strings.Contains(s, ":") {
		return 0, invalid("time must include either ':'")
	}

	parts := strings.Split(s, ":")
	if len(parts) == 2 {
		parts = append([]string{"00"}, parts...)
	}
	if len(parts) != 3 || len(parts[1]) != 2 || len(parts[2]) != 2 {
		return 0, invalid("invalid time format. HH:MM:SS is required.")
	}
	t, err := time.Parse("15:04:05", strings.Join(parts, ":"))
	if err != nil {
		return 0, invalid("invalid time format. HH:MM:SS is required.")
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second, nil
}

// kickoff combines a day and a clock offset into the start and end times of
// a match.
func kickoff(day time.Time, clock time.Duration) (start, end time.Time) {
	start = day.Add(clock)
	return start, start.Add(matchLength)
}

// midnight truncates t to the start of its UTC day.
func midnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
