package dashboard

import (
	"strings"
	"time"

	"github.com/leadops/lead-dashboard/internal/domain"
)

// Stage keys understood by the stage facet. Any other key is compared with
// the lead status case-insensitively.
const (
	StageKeyNew       = "new"
	StageKeyPending   = "pending"
	StageKeyFollowUp  = "followup"
	StageKeyColdCalls = "coldcalls"
	StageKeyDuplicate = "duplicate"
	StageKeyDelayed   = "delayed"
)

// Facets narrows the visible lead set. Zero values impose no constraint.
type Facets struct {
	Employee    string
	StageKey    string
	DateFrom    string
	DateTo      string
	Category    Category
	DelayedOnly bool
}

// AnnotatedLead pairs a lead with its classification.
type AnnotatedLead struct {
	domain.Lead
	Classification
}

// Pipeline carries the settings shared by annotation and filtering.
type Pipeline struct {
	ThresholdDays int
	Location      *time.Location
}

func (p Pipeline) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

// Annotate classifies every lead, keeping input order.
func (p Pipeline) Annotate(leads []domain.Lead, nowInstant time.Time) []AnnotatedLead {
	nowInstant = nowInstant.In(p.location())
	out := make([]AnnotatedLead, 0, len(leads))
	for _, lead := range leads {
		out = append(out, AnnotatedLead{Lead: lead, Classification: ClassifyDelay(lead, p.ThresholdDays, nowInstant)})
	}
	return out
}

// Filter keeps the leads matching every facet, in input order.
func (p Pipeline) Filter(leads []AnnotatedLead, facets Facets) []AnnotatedLead {
	employee := strings.TrimSpace(facets.Employee)
	stageKey := strings.TrimSpace(facets.StageKey)
	loc := p.location()

	out := make([]AnnotatedLead, 0, len(leads))
	for _, lead := range leads {
		if employee != "" && lead.Owner() != employee {
			continue
		}
		if !InRangeIn(lead.RelevantDate(), facets.DateFrom, facets.DateTo, loc) {
			continue
		}
		if stageKey != "" && !matchesStageKey(lead, stageKey) {
			continue
		}
		if facets.Category != "" && lead.Category != facets.Category {
			continue
		}
		if facets.DelayedOnly && !lead.IsDelayed {
			continue
		}
		out = append(out, lead)
	}
	return out
}

// ClassifyAll annotates leads with the given threshold, reading zone-less
// dates in now's location.
func ClassifyAll(leads []domain.Lead, thresholdDays int, nowInstant time.Time) []AnnotatedLead {
	return Pipeline{ThresholdDays: thresholdDays, Location: nowInstant.Location()}.Annotate(leads, nowInstant)
}

// FilterLeads annotates and filters with the default pipeline settings.
func FilterLeads(leads []domain.Lead, facets Facets, nowInstant time.Time) []AnnotatedLead {
	p := Pipeline{ThresholdDays: DefaultThresholdDays, Location: nowInstant.Location()}
	return p.Filter(p.Annotate(leads, nowInstant), facets)
}

// WithinDates keeps raw leads whose relevant date falls inside [from, to].
func (p Pipeline) WithinDates(leads []domain.Lead, from, to string) []domain.Lead {
	loc := p.location()
	out := make([]domain.Lead, 0, len(leads))
	for _, lead := range leads {
		if InRangeIn(lead.RelevantDate(), from, to, loc) {
			out = append(out, lead)
		}
	}
	return out
}

func matchesStageKey(lead AnnotatedLead, key string) bool {
	status := strings.ToLower(strings.TrimSpace(string(lead.Status)))
	switch strings.ToLower(key) {
	case StageKeyNew:
		return status == string(domain.LeadStatusNew)
	case StageKeyPending:
		return status == string(domain.LeadStatusInProgress) || status == "pending"
	case StageKeyFollowUp:
		return status == string(domain.LeadStatusQualified) || status == "follow-up" || status == "followup"
	case StageKeyColdCalls:
		source := strings.ToLower(strings.TrimSpace(lead.Source))
		return source == "cold-call" || source == "direct"
	case StageKeyDuplicate:
		return lead.Duplicate()
	case StageKeyDelayed:
		return lead.IsDelayed
	default:
		return strings.EqualFold(status, key)
	}
}

// DelayedOnly returns the delayed subset of leads.
func DelayedOnly(leads []AnnotatedLead) []AnnotatedLead {
	out := make([]AnnotatedLead, 0, len(leads))
	for _, lead := range leads {
		if lead.IsDelayed {
			out = append(out, lead)
		}
	}
	return out
}
