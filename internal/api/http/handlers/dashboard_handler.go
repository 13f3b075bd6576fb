package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/leadops/lead-dashboard/internal/api/dto"
	"github.com/leadops/lead-dashboard/internal/auth"
	"github.com/leadops/lead-dashboard/internal/service"
	apperrors "github.com/leadops/lead-dashboard/pkg/util/errorutil"
)

// DashboardHandler serves the read-only lead analysis endpoints.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: dashboardService}
}

// Leads GET /dashboard/leads.
func (h *DashboardHandler) Leads(c *fiber.Ctx) error {
	query, err := parseLeadQuery(c)
	if err != nil {
		return err
	}
	view, err := h.service.Leads(c.UserContext(), query)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LeadListResponse{
		Items:         dto.NewLeadItems(view.Leads),
		Total:         view.Total,
		IsSample:      view.IsSample,
		ThresholdDays: view.ThresholdDays,
		GeneratedAt:   view.GeneratedAt,
	}})
}

// Delayed GET /dashboard/delayed.
func (h *DashboardHandler) Delayed(c *fiber.Ctx) error {
	query, err := parseLeadQuery(c)
	if err != nil {
		return err
	}
	view, err := h.service.DelayedLeads(c.UserContext(), query)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LeadListResponse{
		Items:         dto.NewLeadItems(view.Leads),
		Total:         view.Total,
		IsSample:      view.IsSample,
		ThresholdDays: view.ThresholdDays,
		GeneratedAt:   view.GeneratedAt,
		Categories:    view.Categories,
	}})
}

// StageCounts GET /dashboard/stage-counts.
func (h *DashboardHandler) StageCounts(c *fiber.Ctx) error {
	query, err := parseLeadQuery(c)
	if err != nil {
		return err
	}
	view, err := h.service.StageCounts(c.UserContext(), query.Facets.DateFrom, query.Facets.DateTo)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.StageCountsResponse{
		Stages:    view.Stages,
		Counts:    view.Counts.Counts,
		Unmatched: view.Counts.Unmatched,
	}})
}

// Summary GET /dashboard/summary.
func (h *DashboardHandler) Summary(c *fiber.Ctx) error {
	query, err := parseLeadQuery(c)
	if err != nil {
		return err
	}
	view, err := h.service.Summary(c.UserContext(), query)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SummaryResponse{
		StageCountsResponse: dto.StageCountsResponse{
			Stages:    view.Stages,
			Counts:    view.Counts.Counts,
			Unmatched: view.Counts.Unmatched,
		},
		DelayedByCategory: view.DelayedByCategory,
		TotalLeads:        view.TotalLeads,
		VisibleLeads:      view.VisibleLeads,
		DelayedLeads:      view.DelayedLeads,
		ThresholdDays:     view.ThresholdDays,
		GeneratedAt:       view.GeneratedAt,
	}})
}

func parseLeadQuery(c *fiber.Ctx) (service.LeadQuery, error) {
	var req dto.DashboardQuery
	if err := c.QueryParser(&req); err != nil {
		return service.LeadQuery{}, apperrors.NewValidationError("invalid query", nil)
	}
	if err := dto.Validate(req); err != nil {
		return service.LeadQuery{}, err
	}
	query := service.LeadQuery{
		Facets:         req.Facets(),
		ThresholdDays:  req.ThresholdDays,
		SampleFallback: req.SampleFallback,
	}
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Operator == nil {
		return service.LeadQuery{}, apperrors.NewUnauthorized("operator required")
	}
	return service.ScopeToOperator(query, principal.Operator), nil
}
