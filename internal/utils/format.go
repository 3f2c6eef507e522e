package utils

import (
	"fmt"
	"strings"
	"time"
)

const (
	layoutISODate  = "2006-01-02"
	layoutFormDate = "02/01/2006"
	layoutClock    = "15:04"
)

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// ParseDate parses YYYY-MM-DD in local timezone.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(layoutISODate, strings.TrimSpace(s), time.Local)
}

// ParseClock parses HH:MM (seconds tolerated) as a time-of-day.
func ParseClock(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) > 5 {
		s = s[:5]
	}
	return time.Parse(layoutClock, s)
}

// FormatISODate formats a date as YYYY-MM-DD for API payloads.
func FormatISODate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(layoutISODate)
}

// FormatDate renders DD/MM/YYYY as printed on the form, empty when absent.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(layoutFormDate)
}

// FormatTime renders HH:MM as printed on the form, empty when absent.
func FormatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(layoutClock)
}

// FormatPrice renders a monetary amount as "12.50 €", empty when absent.
// %.2f rounds half to even, which is what DECIMAL(10,2) storage expects.
func FormatPrice(p *float64) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%.2f €", *p)
}
