package timeseries

import (
	"fmt"
	"strings"
	"time"
)

// dateFormats lists the accepted date label layouts, tried in order.
// JHU CSSE headers use the short US form ("1/22/20").
var dateFormats = []string{
	"2006-01-02",
	"1/2/06",
	"1/2/2006",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"02-Jan-2006",
}

// ParseDate parses a date label into a calendar date at UTC midnight.
func ParseDate(label string) (time.Time, error) {
	s := strings.TrimSpace(strings.Trim(label, "\""))
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date label %q", label)
}

// IsDateLabel reports whether label parses as a calendar date.
func IsDateLabel(label string) bool {
	_, err := ParseDate(label)
	return err == nil
}

// Day truncates t to its calendar date at UTC midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
