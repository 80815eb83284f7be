package validation

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var xssPattern = regexp.MustCompile(`(?i)(<script|<iframe|javascript:|onerror=|onload=|onclick=)`)

type Config struct {
	MaxMessageLength int
	MaxPromptLength  int
	Logger           *zap.Logger
}

// Middleware screens chat and proxy bodies before they reach a handler:
// required fields, length caps, and markup that has no business in a chat
// message.
func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxMessageLength == 0 {
		cfg.MaxMessageLength = 2000
	}
	if cfg.MaxPromptLength == 0 {
		cfg.MaxPromptLength = 8000
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost {
			return c.Next()
		}

		path := c.Path()
		switch {
		case strings.HasPrefix(path, "/api/chatbot"):
			return checkField(c, cfg, "message", cfg.MaxMessageLength)
		case strings.HasPrefix(path, "/api/gemini"):
			return checkField(c, cfg, "prompt", cfg.MaxPromptLength)
		}
		return c.Next()
	}
}

func checkField(c *fiber.Ctx, cfg Config, field string, maxLen int) error {
	var body map[string]interface{}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid JSON format",
		})
	}

	value, ok := body[field].(string)
	if !ok || strings.TrimSpace(value) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": capitalize(field) + " is required",
		})
	}

	if len(value) > maxLen {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": capitalize(field) + " exceeds maximum length",
		})
	}

	if xssPattern.MatchString(value) {
		cfg.Logger.Warn("Rejected request with markup in "+field,
			zap.String("ip", c.IP()),
			zap.String("path", c.Path()),
		)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid " + field + " content",
		})
	}

	return c.Next()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
