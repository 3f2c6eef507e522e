package utils

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-15")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if d.Year() != 2024 || d.Month() != time.March || d.Day() != 15 {
		t.Fatalf("wrong date parsed: %v", d)
	}

	if _, err := ParseDate("15/03/2024"); err == nil {
		t.Fatalf("expected error on DD/MM/YYYY input")
	}
}

func TestParseClock(t *testing.T) {
	c, err := ParseClock("08:30")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.Hour() != 8 || c.Minute() != 30 {
		t.Fatalf("wrong clock parsed: %v", c)
	}

	// MySQL TIME values carry seconds, they are tolerated.
	c, err = ParseClock("14:05:00")
	if err != nil {
		t.Fatalf("expected seconds tolerated, got %v", err)
	}
	if c.Hour() != 14 || c.Minute() != 5 {
		t.Fatalf("wrong clock parsed from seconds form: %v", c)
	}

	if _, err := ParseClock("25:00"); err == nil {
		t.Fatalf("expected error on hour 25")
	}
}

func TestFormatDateAndTime(t *testing.T) {
	d := time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local)
	if got := FormatDate(&d); got != "15/03/2024" {
		t.Fatalf("FormatDate = %q", got)
	}
	if got := FormatDate(nil); got != "" {
		t.Fatalf("FormatDate(nil) = %q", got)
	}

	c := time.Date(0, 1, 1, 8, 30, 0, 0, time.UTC)
	if got := FormatTime(&c); got != "08:30" {
		t.Fatalf("FormatTime = %q", got)
	}
	if got := FormatISODate(&d); got != "2024-03-15" {
		t.Fatalf("FormatISODate = %q", got)
	}
}

func TestFormatPrice(t *testing.T) {
	p := 12.5
	if got := FormatPrice(&p); got != "12.50 €" {
		t.Fatalf("FormatPrice = %q", got)
	}
	if got := FormatPrice(nil); got != "" {
		t.Fatalf("FormatPrice(nil) = %q", got)
	}
	half := 0.125
	if got := FormatPrice(&half); got != "0.12 €" {
		t.Fatalf("half-even rounding broken: %q", got)
	}
}

func TestSafeFilenamePart(t *testing.T) {
	if got := SafeFilenamePart("TC-2024-000042"); got != "TC-2024-000042" {
		t.Fatalf("reference mangled: %q", got)
	}
	if got := SafeFilenamePart("a b/c:d"); got != "a_b_c_d" {
		t.Fatalf("unsafe chars kept: %q", got)
	}
	if got := SafeFilenamePart("   "); got != "NA" {
		t.Fatalf("blank input should give NA, got %q", got)
	}
}
