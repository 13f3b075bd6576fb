// Package dashboard holds the pure lead analysis used by the CRM dashboard:
// delay classification, date-range filtering, facet filtering and per-stage
// aggregation. Nothing here performs I/O, logs or returns errors; malformed
// input degrades to the most permissive answer.
package dashboard

import (
	"strings"
	"time"

	"github.com/jinzhu/now"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006-1-2",
	"2006/1/2",
	"1/2/2006",
}

// ParseDate parses a date-like string. Values without an explicit zone are
// read in loc (UTC when nil). The bool is false when nothing matched.
func ParseDate(value string, loc *time.Location) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseDay parses value and truncates it to midnight in loc.
func ParseDay(value string, loc *time.Location) (time.Time, bool) {
	t, ok := ParseDate(value, loc)
	if !ok {
		return time.Time{}, false
	}
	return startOfDay(t, loc), true
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return now.With(t.In(loc)).BeginningOfDay()
}
