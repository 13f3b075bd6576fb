package dashboard

import (
	"strings"
	"time"
)

// InRange reports whether dateStr falls inside the inclusive [from, to]
// calendar-day range, evaluated in UTC. Empty bounds mean no constraint and
// an unparsable dateStr is included.
func InRange(dateStr, from, to string) bool {
	return InRangeIn(dateStr, from, to, time.UTC)
}

// InRangeIn is InRange with day boundaries taken in loc.
func InRangeIn(dateStr, from, to string, loc *time.Location) bool {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if from == "" && to == "" {
		return true
	}
	day, ok := ParseDay(dateStr, loc)
	if !ok {
		return true
	}
	if lower, ok := ParseDay(from, loc); ok && day.Before(lower) {
		return false
	}
	if upper, ok := ParseDay(to, loc); ok && day.After(upper) {
		return false
	}
	return true
}
