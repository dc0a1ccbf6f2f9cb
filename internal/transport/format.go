package transport

import "time"

const (
	dateLayout = "Jan 2, 2006"
	timeLayout = "03:04 PM"
)

// FormatDate renders t as e.g. "Mar 7, 2026" in loc.
func FormatDate(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(location(loc)).Format(dateLayout)
}

// FormatTime renders t as e.g. "09:41 PM" in loc.
func FormatTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(location(loc)).Format(timeLayout)
}

func location(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
