package handlers

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/bu-planner/backend/internal/advisor"
	"github.com/bu-planner/backend/internal/ai"
	"github.com/bu-planner/backend/internal/metrics"
	"github.com/bu-planner/backend/pkg/logger"
)

// GeminiHandler exposes the configured AI provider as a thin prompt proxy.
type GeminiHandler struct {
	gateway      ai.Gateway
	defaultModel string
}

func NewGeminiHandler(gateway ai.Gateway, defaultModel string) *GeminiHandler {
	return &GeminiHandler{gateway: gateway, defaultModel: defaultModel}
}

// Generate serves POST /api/gemini/. Any gateway failure maps to 502; the
// endpoint never retries and never falls back.
func (h *GeminiHandler) Generate(c *fiber.Ctx) error {
	var req struct {
		Prompt      string  `json:"prompt"`
		Model       string  `json:"model"`
		Temperature float32 `json:"temperature"`
		MaxTokens   int     `json:"max_tokens"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Prompt == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Prompt is required",
		})
	}

	start := time.Now()
	text, err := h.gateway.Generate(c.Context(), ai.Request{
		Prompt:      req.Prompt,
		Model:       req.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	metrics.GatewayDuration.WithLabelValues("gemini-proxy").Observe(time.Since(start).Seconds())
	if err != nil {
		if unavail, ok := ai.AsUnavailable(err); ok {
			logger.Warn("Gemini proxy unavailable",
				zap.String("provider", unavail.Provider),
				zap.String("kind", unavail.Kind.String()))
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "AI provider is currently unavailable",
				"kind":  unavail.Kind.String(),
			})
		}
		logger.Error("Gemini proxy failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Generation failed",
		})
	}

	// Model responses that carry a JSON object get returned as structured
	// JSON; everything else is wrapped verbatim.
	if extracted, ok := advisor.ExtractJSON(text); ok {
		var probe map[string]any
		if err := json.Unmarshal(extracted, &probe); err == nil {
			return c.Type("json").Send(extracted)
		}
	}

	return c.JSON(fiber.Map{
		"result":   text,
		"provider": h.gateway.Provider(),
	})
}

// Models serves GET /api/ai/models, a debug view of the configured backend.
func (h *GeminiHandler) Models(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"provider":  h.gateway.Provider(),
		"available": h.gateway.Available(),
		"models":    []string{h.defaultModel},
	})
}
