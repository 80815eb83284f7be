package handlers

import (
	"context"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/bu-planner/backend/internal/chatbot"
	"github.com/bu-planner/backend/pkg/logger"
)

type WebSocketHandler struct {
	bot      *chatbot.Bot
	sessions *chatbot.SessionManager
}

func NewWebSocketHandler(bot *chatbot.Bot, sessions *chatbot.SessionManager) *WebSocketHandler {
	return &WebSocketHandler{
		bot:      bot,
		sessions: sessions,
	}
}

func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")

	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	for {
		var msg struct {
			Type      string `json:"type"`
			Content   string `json:"content"`
			SessionID string `json:"session_id"`
		}

		err := c.ReadJSON(&msg)
		if err != nil {
			logger.Error("Failed to read WebSocket message", zap.Error(err))
			break
		}

		if msg.Type != "chat" || msg.Content == "" {
			continue
		}

		logger.Info("Processing WebSocket chat message",
			zap.String("session_id", msg.SessionID))

		err = h.streamReply(c, msg.Content, msg.SessionID)
		if err != nil {
			logger.Error("Failed to stream reply", zap.Error(err))
			h.sendError(c, "Failed to process message")
		}
	}
}

func (h *WebSocketHandler) streamReply(c *websocket.Conn, message, sessionID string) error {
	ctx := context.Background()

	session := h.sessions.Get(sessionID)

	h.sendChunk(c, "status", "Thinking...")

	start := time.Now()
	reply, err := h.bot.Handle(ctx, session, message)
	if err != nil {
		return err
	}

	words := splitIntoWords(reply.Text)
	for i, word := range words {
		chunk := word
		if i < len(words)-1 {
			chunk += " "
		}

		err := h.sendChunk(c, "chunk", chunk)
		if err != nil {
			return err
		}
	}

	return h.sendComplete(c, session.ID, reply, time.Since(start))
}

func (h *WebSocketHandler) sendChunk(c *websocket.Conn, msgType, content string) error {
	msg := map[string]interface{}{
		"type":    msgType,
		"content": content,
	}

	return c.WriteJSON(msg)
}

func (h *WebSocketHandler) sendComplete(c *websocket.Conn, sessionID string, reply chatbot.Reply, elapsed time.Duration) error {
	msg := map[string]interface{}{
		"type":       "complete",
		"session_id": sessionID,
		"source":     string(reply.Source),
		"latency_ms": elapsed.Milliseconds(),
	}

	return c.WriteJSON(msg)
}

func (h *WebSocketHandler) sendError(c *websocket.Conn, errorMsg string) {
	msg := map[string]interface{}{
		"type":  "error",
		"error": errorMsg,
	}

	c.WriteJSON(msg)
}

func splitIntoWords(text string) []string {
	words := []string{}
	currentWord := ""

	for _, char := range text {
		if char == ' ' || char == '\n' {
			if currentWord != "" {
				words = append(words, currentWord)
				currentWord = ""
			}
			if char == '\n' {
				words = append(words, "\n")
			}
		} else {
			currentWord += string(char)
		}
	}

	if currentWord != "" {
		words = append(words, currentWord)
	}

	return words
}
