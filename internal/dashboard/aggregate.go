package dashboard

import (
	"strings"

	"github.com/leadops/lead-dashboard/internal/domain"
)

// StageCounts maps every configured stage name to its lead count. Leads
// whose status matches no stage are only reflected in Unmatched.
type StageCounts struct {
	Counts    map[string]int `json:"counts"`
	Unmatched int            `json:"unmatched"`
}

// CountByStage counts leads per configured stage name. Every name starts at
// zero; a lead increments the first stage whose name equals its status
// case-insensitively.
func CountByStage(leads []domain.Lead, stageNames []string) StageCounts {
	result := StageCounts{Counts: make(map[string]int, len(stageNames))}
	for _, name := range stageNames {
		result.Counts[name] = 0
	}
	for _, lead := range leads {
		status := strings.TrimSpace(string(lead.Status))
		matched := false
		for _, name := range stageNames {
			if strings.EqualFold(name, status) {
				result.Counts[name]++
				matched = true
				break
			}
		}
		if !matched {
			result.Unmatched++
		}
	}
	return result
}

// StageCounts restricts leads to the [from, to] range before counting. Facet
// selections are deliberately not applied so badges show totals in range.
func (p Pipeline) StageCounts(leads []domain.Lead, stageNames []string, from, to string) StageCounts {
	return CountByStage(p.WithinDates(leads, from, to), stageNames)
}

// CategoryCounts counts delayed leads per category; every category is present.
func CategoryCounts(leads []AnnotatedLead) map[Category]int {
	counts := make(map[Category]int, len(Categories))
	for _, c := range Categories {
		counts[c] = 0
	}
	for _, lead := range leads {
		if lead.IsDelayed {
			counts[lead.Category]++
		}
	}
	return counts
}
