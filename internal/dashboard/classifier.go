package dashboard

import (
	"math"
	"strings"
	"time"

	"github.com/leadops/lead-dashboard/internal/domain"
)

// DefaultThresholdDays is the inactivity window after which an active lead is delayed.
const DefaultThresholdDays = 7

var activeStatuses = map[domain.LeadStatus]struct{}{
	domain.LeadStatusNew:        {},
	domain.LeadStatusQualified:  {},
	domain.LeadStatusInProgress: {},
}

// IsActiveStatus reports whether status takes part in delay tracking.
func IsActiveStatus(status domain.LeadStatus) bool {
	_, ok := activeStatuses[domain.LeadStatus(strings.TrimSpace(string(status)))]
	return ok
}

// Classification is the derived, never persisted delay state of a lead.
type Classification struct {
	IsDelayed bool     `json:"isDelayed"`
	Category  Category `json:"category"`
	AgeDays   int      `json:"ageDays"`
}

// ClassifyDelay decides whether lead is delayed relative to nowInstant.
// Zone-less dates are read in nowInstant's location.
func ClassifyDelay(lead domain.Lead, thresholdDays int, nowInstant time.Time) Classification {
	if thresholdDays <= 0 {
		thresholdDays = DefaultThresholdDays
	}
	result := Classification{Category: Categorize(lead.Notes)}
	if !IsActiveStatus(lead.Status) {
		return result
	}

	loc := nowInstant.Location()
	last, ok := ParseDate(lead.LastContact, loc)
	if !ok {
		last, ok = ParseDate(lead.CreatedAt, loc)
	}
	if !ok {
		return result
	}

	result.AgeDays = ageInDays(nowInstant, last)
	result.IsDelayed = result.AgeDays > thresholdDays
	return result
}

func ageInDays(nowInstant, last time.Time) int {
	return int(math.Floor(nowInstant.Sub(last).Hours() / 24))
}
