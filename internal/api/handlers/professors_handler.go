package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/bu-planner/backend/internal/ai"
	"github.com/bu-planner/backend/internal/professors"
	"github.com/bu-planner/backend/pkg/logger"
)

type ProfessorsHandler struct {
	svc *professors.Service
}

func NewProfessorsHandler(svc *professors.Service) *ProfessorsHandler {
	return &ProfessorsHandler{svc: svc}
}

// List serves GET /api/professors/ with an optional department filter.
func (h *ProfessorsHandler) List(c *fiber.Ctx) error {
	dept := c.Query("department")
	if dept != "" {
		matched := h.svc.Roster().ByDepartment(dept)
		return c.JSON(fiber.Map{
			"department": dept,
			"count":      len(matched),
			"professors": matched,
		})
	}

	all := h.svc.Roster().All()
	return c.JSON(fiber.Map{
		"count":      len(all),
		"professors": all,
	})
}

// Research serves GET /api/professors/:name. OpenAlex outages degrade to
// the bare roster entry inside the service, so the common failure here is
// an unknown name.
func (h *ProfessorsHandler) Research(c *fiber.Ctx) error {
	name := c.Params("name")
	research, err := h.svc.Research(c.Context(), name)
	if err != nil {
		if errors.Is(err, professors.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Professor not found",
			})
		}
		logger.Error("Professor research lookup failed",
			zap.String("name", name),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load research profile",
		})
	}
	return c.JSON(research)
}

// ColdEmail serves POST /api/professors/cold-email.
func (h *ProfessorsHandler) ColdEmail(c *fiber.Ctx) error {
	var req professors.ColdEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.ProfessorName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Professor name is required",
		})
	}

	email, err := h.svc.ColdEmail(c.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, professors.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Professor not found",
			})
		case errors.Is(err, professors.ErrNoOpenAlexID):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Professor has no research profile on record",
			})
		}
		if unavail, ok := ai.AsUnavailable(err); ok {
			logger.Warn("Cold email generation unavailable",
				zap.String("professor", req.ProfessorName),
				zap.String("kind", unavail.Kind.String()))
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "AI provider is currently unavailable",
				"kind":  unavail.Kind.String(),
			})
		}
		logger.Error("Cold email generation failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate email",
		})
	}

	return c.JSON(email)
}
