package models

import (
	"bytes"
	"fmt"
	"strconv"
	"time"
)

// DateLayout is the wire format of a calendar date.
const DateLayout = "2006-01-02"

var dateLayouts = []string{DateLayout, "2006-01-02T15:04:05", time.RFC3339Nano}

// Date is a calendar date without a time of day. The zero Date is 0001-01-01.
type Date struct {
	time.Time
}

// NewDate returns the date for the given year, month and day in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses s in any of the accepted layouts and truncates it to a day.
func ParseDate(s string) (Date, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			return NewDate(parsed.Year(), parsed.Month(), parsed.Day()), nil
		}
		lastErr = err
	}

	return Date{}, fmt.Errorf("failed to parse date %q: %w", s, lastErr)
}

// Equal reports whether both values describe the same calendar day.
func (d Date) Equal(other Date) bool {
	return d.Year() == other.Year() && d.YearDay() == other.YearDay()
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(d.String())), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	raw, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("date must be a JSON string: %w", err)
	}

	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed

	return nil
}
