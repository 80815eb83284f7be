package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/bu-planner/backend/internal/advisor"
	"github.com/bu-planner/backend/internal/ai"
	"github.com/bu-planner/backend/internal/metrics"
	"github.com/bu-planner/backend/pkg/logger"
)

type AdvisorHandler struct {
	svc               *advisor.Service
	defaultMaxCourses int
}

func NewAdvisorHandler(svc *advisor.Service, defaultMaxCourses int) *AdvisorHandler {
	if defaultMaxCourses < 1 {
		defaultMaxCourses = 8
	}
	return &AdvisorHandler{svc: svc, defaultMaxCourses: defaultMaxCourses}
}

// Recommend serves POST /api/ai-advisor/. Preset career goals are answered
// by the deterministic scoring engine; free-form goals go through the AI
// gateway and surface provider failures as 502.
func (h *AdvisorHandler) Recommend(c *fiber.Ctx) error {
	var req struct {
		Career     string `json:"career"`
		CareerGoal string `json:"career_goal"`
		Major      string `json:"major"`
		MaxCourses int    `json:"max_courses"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	goal := req.Career
	if goal == "" {
		goal = req.CareerGoal
	}
	if goal == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Career goal is required",
		})
	}

	maxCourses := req.MaxCourses
	if maxCourses <= 0 {
		maxCourses = h.defaultMaxCourses
	}

	if h.svc.IsPreset(goal) {
		start := time.Now()
		plan, err := h.svc.Recommend(c.Context(), goal, maxCourses)
		if err != nil {
			if errors.Is(err, advisor.ErrInvalidInput) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": err.Error(),
				})
			}
			logger.Error("Advisor recommendation failed",
				zap.String("career", goal),
				zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to build recommendation",
			})
		}
		metrics.GatewayDuration.WithLabelValues("advisor-preset").Observe(time.Since(start).Seconds())
		return c.JSON(plan)
	}

	advice, err := h.svc.AIAdvice(c.Context(), goal, req.Major)
	if err != nil {
		if errors.Is(err, advisor.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		if unavail, ok := ai.AsUnavailable(err); ok {
			logger.Warn("AI advisor unavailable",
				zap.String("career_goal", goal),
				zap.String("kind", unavail.Kind.String()))
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "AI advisor is currently unavailable",
				"kind":  unavail.Kind.String(),
			})
		}
		logger.Error("AI advisor failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate advice",
		})
	}

	return c.Type("json").Send(advice)
}

// Careers serves GET /api/ai-advisor/careers with the preset career names.
func (h *AdvisorHandler) Careers(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"careers": h.svc.Careers(),
	})
}
