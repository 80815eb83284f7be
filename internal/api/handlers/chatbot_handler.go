package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bu-planner/backend/internal/chatbot"
	"github.com/bu-planner/backend/internal/storage/models"
	"github.com/bu-planner/backend/internal/storage/sqlite"
	"github.com/bu-planner/backend/pkg/logger"
)

type ChatbotHandler struct {
	bot      *chatbot.Bot
	sessions *chatbot.SessionManager
	db       *sqlite.Client
}

func NewChatbotHandler(bot *chatbot.Bot, sessions *chatbot.SessionManager, db *sqlite.Client) *ChatbotHandler {
	return &ChatbotHandler{
		bot:      bot,
		sessions: sessions,
		db:       db,
	}
}

// HandleMessage serves POST /api/chatbot/. The response is 200 with a
// fallback-sourced body even when the AI provider is down; only an internal
// invariant violation produces a 500.
func (h *ChatbotHandler) HandleMessage(c *fiber.Ctx) error {
	var req struct {
		Message   string            `json:"message"`
		SessionID string            `json:"session_id"`
		History   []chatbot.Message `json:"history"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse chatbot request", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Message is required",
		})
	}

	session := h.sessions.Get(req.SessionID)
	if len(req.History) > 0 && len(session.History()) == 0 {
		// Stateless client supplied its own transcript and the server has
		// no state for it (new session, or the old one expired); adopt the
		// transcript as the session's history.
		session.Seed(req.History)
	}

	start := time.Now()
	reply, err := h.bot.Handle(c.Context(), session, req.Message)
	if err != nil {
		logger.Error("Chatbot exchange failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Chatbot error",
		})
	}

	h.recordExchange(session.ID, req.Message, reply, time.Since(start))

	return c.JSON(fiber.Map{
		"text":       reply.Text,
		"source":     string(reply.Source),
		"session_id": session.ID,
	})
}

// GetHistory serves GET /api/chatbot/history from the telemetry store.
func (h *ChatbotHandler) GetHistory(c *fiber.Ctx) error {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "session_id is required",
		})
	}

	limit := c.QueryInt("limit", 50)
	records, err := h.db.GetChatExchanges(sessionID, limit)
	if err != nil {
		logger.Error("Failed to load chat history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load history",
		})
	}

	return c.JSON(fiber.Map{
		"session_id": sessionID,
		"exchanges":  records,
	})
}

func (h *ChatbotHandler) recordExchange(sessionID, message string, reply chatbot.Reply, elapsed time.Duration) {
	if h.db == nil {
		return
	}
	rec := &models.ChatExchange{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Message:   message,
		Response:  reply.Text,
		Source:    string(reply.Source),
		LatencyMS: int(elapsed.Milliseconds()),
		CreatedAt: time.Now(),
	}
	if err := h.db.InsertChatExchange(rec); err != nil {
		logger.Warn("Failed to record chat exchange", zap.Error(err))
	}
}
