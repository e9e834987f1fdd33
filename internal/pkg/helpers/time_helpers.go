package helpers

import (
	"fmt"
	"time"
)

// DateLayout is the wire format of calendar dates
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date as midnight UTC
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// ParseDateOr parses s, or returns fallback truncated to a date when s is empty
func ParseDateOr(s string, fallback time.Time) (time.Time, error) {
	if s == "" {
		return TruncateToDate(fallback), nil
	}
	return ParseDate(s)
}

// TruncateToDate drops the time of day, keeping the calendar date of t
func TruncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate formats t as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatMinorUnits renders an amount stored in minor units, e.g. 1234567 -> "12,345.67"
func FormatMinorUnits(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	whole, frac := amount/100, amount%100

	digits := fmt.Sprintf("%d", whole)
	grouped := make([]byte, 0, len(digits)+len(digits)/3)
	for i := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped = append(grouped, ',')
		}
		grouped = append(grouped, digits[i])
	}
	return fmt.Sprintf("%s%s.%02d", sign, grouped, frac)
}
