package dto

import (
	"time"

	"github.com/leadops/lead-dashboard/internal/dashboard"
	"github.com/leadops/lead-dashboard/internal/domain"
)

// DashboardQuery carries the facet query parameters shared by dashboard endpoints.
type DashboardQuery struct {
	Employee       string `query:"employee" validate:"max=128"`
	Stage          string `query:"stage" validate:"max=64"`
	DateFrom       string `query:"date_from" validate:"max=64"`
	DateTo         string `query:"date_to" validate:"max=64"`
	Category       string `query:"category" validate:"omitempty,lead_category"`
	ThresholdDays  int    `query:"threshold_days" validate:"min=0,max=3650"`
	SampleFallback *bool  `query:"sample_fallback"`
}

// Facets converts the query into filter facets.
func (q DashboardQuery) Facets() dashboard.Facets {
	return dashboard.Facets{
		Employee: q.Employee,
		StageKey: q.Stage,
		DateFrom: q.DateFrom,
		DateTo:   q.DateTo,
		Category: dashboard.Category(q.Category),
	}
}

// LeadItem is a lead with its delay annotation.
type LeadItem struct {
	domain.Lead
	OwnerName string             `json:"owner"`
	IsDelayed bool               `json:"is_delayed"`
	Category  dashboard.Category `json:"category"`
	AgeDays   int                `json:"age_days"`
}

// LeadListResponse is returned by the lead list endpoints.
type LeadListResponse struct {
	Items         []LeadItem                 `json:"items"`
	Total         int                        `json:"total"`
	IsSample      bool                       `json:"is_sample"`
	ThresholdDays int                        `json:"threshold_days"`
	GeneratedAt   time.Time                  `json:"generated_at"`
	Categories    map[dashboard.Category]int `json:"categories,omitempty"`
}

// StageCountsResponse carries stage badge counts.
type StageCountsResponse struct {
	Stages    []domain.PipelineStage `json:"stages"`
	Counts    map[string]int         `json:"counts"`
	Unmatched int                    `json:"unmatched"`
}

// SummaryResponse is the combined dashboard payload.
type SummaryResponse struct {
	StageCountsResponse
	DelayedByCategory map[dashboard.Category]int `json:"delayed_by_category"`
	TotalLeads        int                        `json:"total_leads"`
	VisibleLeads      int                        `json:"visible_leads"`
	DelayedLeads      int                        `json:"delayed_leads"`
	ThresholdDays     int                        `json:"threshold_days"`
	GeneratedAt       time.Time                  `json:"generated_at"`
}

// ReplaceStagesRequest replaces the pipeline stage configuration.
type ReplaceStagesRequest struct {
	Stages []domain.PipelineStage `json:"stages" validate:"required,min=1,dive"`
}

// ReplaceLeadsRequest replaces the primary lead collection.
type ReplaceLeadsRequest struct {
	Leads []domain.Lead `json:"leads" validate:"required"`
}

// NewLeadItems maps annotated leads to response items.
func NewLeadItems(leads []dashboard.AnnotatedLead) []LeadItem {
	items := make([]LeadItem, 0, len(leads))
	for _, l := range leads {
		items = append(items, LeadItem{
			Lead:      l.Lead,
			OwnerName: l.Owner(),
			IsDelayed: l.IsDelayed,
			Category:  l.Category,
			AgeDays:   l.AgeDays,
		})
	}
	return items
}
