package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/leadops/lead-dashboard/internal/api/dto"
	"github.com/leadops/lead-dashboard/internal/service"
	apperrors "github.com/leadops/lead-dashboard/pkg/util/errorutil"
)

// CollectionsHandler reads and replaces the stored lead and stage collections.
type CollectionsHandler struct {
	service *service.DashboardService
}

// NewCollectionsHandler constructs handler.
func NewCollectionsHandler(dashboardService *service.DashboardService) *CollectionsHandler {
	return &CollectionsHandler{service: dashboardService}
}

// GetStages GET /stages.
func (h *CollectionsHandler) GetStages(c *fiber.Ctx) error {
	stages, err := h.service.Stages(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stages})
}

// ReplaceStages PUT /stages.
func (h *CollectionsHandler) ReplaceStages(c *fiber.Ctx) error {
	var req dto.ReplaceStagesRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	if err := h.service.ReplaceStages(c.UserContext(), req.Stages); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": req.Stages})
}

// ReplaceLeads PUT /leads.
func (h *CollectionsHandler) ReplaceLeads(c *fiber.Ctx) error {
	var req dto.ReplaceLeadsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	if err := h.service.ReplaceLeads(c.UserContext(), req.Leads); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"count": len(req.Leads)}})
}
