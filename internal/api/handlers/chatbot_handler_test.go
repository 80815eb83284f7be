package handlers

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/bu-planner/backend/internal/ai"
	"github.com/bu-planner/backend/internal/chatbot"
)

func testChatbotApp(t *testing.T) (*fiber.App, *chatbot.SessionManager) {
	t.Helper()

	gateway, err := ai.NewGateway(ai.Options{Provider: "gemini"})
	if err != nil {
		t.Fatalf("NewGateway: %v", err)
	}
	sessions := chatbot.NewSessionManager(10, time.Minute)
	t.Cleanup(sessions.Close)

	bot := chatbot.NewBot(gateway, chatbot.DefaultRules(), 2, 5)
	handler := NewChatbotHandler(bot, sessions, nil)

	app := fiber.New()
	app.Post("/api/chatbot/", handler.HandleMessage)
	return app, sessions
}

const seededTranscript = `[
	{"role": "user", "content": "how do I search for courses?"},
	{"role": "assistant", "content": "Use the search page."}
]`

func TestHandleMessageSeedsNewSession(t *testing.T) {
	app, sessions := testChatbotApp(t)

	status, body := postJSON(t, app, "/api/chatbot/",
		`{"message": "thanks", "history": `+seededTranscript+`}`)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}

	var reply struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal([]byte(body), &reply); err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	if reply.SessionID == "" {
		t.Fatalf("expected a generated session id")
	}

	history := sessions.Get(reply.SessionID).History()
	if len(history) != 4 {
		t.Fatalf("expected 2 seeded + 2 new turns, got %d", len(history))
	}
	if history[0].Text != "how do I search for courses?" {
		t.Fatalf("seeded transcript not adopted: %+v", history[0])
	}
}

func TestHandleMessageSeedsUnknownSessionID(t *testing.T) {
	app, sessions := testChatbotApp(t)

	// A client echoing a session id the server no longer knows (restart,
	// expiry) still gets its transcript adopted.
	status, body := postJSON(t, app, "/api/chatbot/",
		`{"message": "thanks", "session_id": "gone-after-restart", "history": `+seededTranscript+`}`)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}

	history := sessions.Get("gone-after-restart").History()
	if len(history) != 4 {
		t.Fatalf("expected 2 seeded + 2 new turns, got %d", len(history))
	}
	if history[0].Role != chatbot.RoleUser || history[0].Text != "how do I search for courses?" {
		t.Fatalf("seeded transcript not adopted: %+v", history[0])
	}
}

func TestHandleMessageDoesNotReseedLiveSession(t *testing.T) {
	app, sessions := testChatbotApp(t)

	status, body := postJSON(t, app, "/api/chatbot/",
		`{"message": "hello", "session_id": "live-1"}`)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}

	// The session already has turns; a stale client transcript must not
	// overwrite them.
	status, body = postJSON(t, app, "/api/chatbot/",
		`{"message": "thanks", "session_id": "live-1", "history": `+seededTranscript+`}`)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}

	history := sessions.Get("live-1").History()
	if len(history) != 4 {
		t.Fatalf("expected 4 turns from the two live exchanges, got %d", len(history))
	}
	if history[0].Text != "hello" {
		t.Fatalf("live history was overwritten: %+v", history[0])
	}
}
