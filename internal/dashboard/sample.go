package dashboard

import (
	"time"

	"github.com/leadops/lead-dashboard/internal/domain"
)

// SampleLeads returns the built-in demonstration data set with dates
// relative to nowInstant. It is presentation data, never real leads.
func SampleLeads(nowInstant time.Time) []domain.Lead {
	day := func(ago int) string {
		return nowInstant.AddDate(0, 0, -ago).Format(time.RFC3339)
	}
	return []domain.Lead{
		{ID: "sample-1", Name: "Sample Lead A", Status: domain.LeadStatusNew, CreatedAt: day(12), LastContact: day(10), Notes: "no answer on first call", Source: "cold-call", AssignedTo: "Sample Agent"},
		{ID: "sample-2", Name: "Sample Lead B", Status: domain.LeadStatusInProgress, CreatedAt: day(20), LastContact: day(9), Notes: "follow up after meeting", Source: "referral", AssignedTo: "Sample Agent"},
		{ID: "sample-3", Name: "Sample Lead C", Status: domain.LeadStatusQualified, CreatedAt: day(15), LastContact: day(8), Notes: "client asked to reschedule", Source: "direct", AssignedTo: "Sample Agent"},
		{ID: "sample-4", Name: "Sample Lead D", Status: domain.LeadStatusNew, CreatedAt: day(2), LastContact: day(1), Source: "referral", IsDuplicate: true, AssignedTo: "Sample Agent"},
		{ID: "sample-5", Name: "Sample Lead E", Status: domain.LeadStatusConverted, CreatedAt: day(40), LastContact: day(30), Source: "direct", AssignedTo: "Sample Agent"},
	}
}

// SampleIfEmpty returns filtered unchanged when it has results. Otherwise it
// applies the same facets to SampleLeads and reports isSample=true. Callers
// must label the result as demonstration data.
func (p Pipeline) SampleIfEmpty(filtered []AnnotatedLead, facets Facets, nowInstant time.Time) ([]AnnotatedLead, bool) {
	if len(filtered) > 0 {
		return filtered, false
	}
	return p.Filter(p.Annotate(SampleLeads(nowInstant), nowInstant), facets), true
}
