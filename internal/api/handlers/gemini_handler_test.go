package handlers

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/bu-planner/backend/internal/ai"
)

func testGeminiApp(t *testing.T) *fiber.App {
	t.Helper()

	gateway, err := ai.NewGateway(ai.Options{Provider: "gemini"})
	if err != nil {
		t.Fatalf("NewGateway: %v", err)
	}
	handler := NewGeminiHandler(gateway, "gemini-1.5-flash")

	app := fiber.New()
	app.Post("/api/gemini/", handler.Generate)
	app.Get("/api/ai/models", handler.Models)
	return app
}

func TestModelsListing(t *testing.T) {
	app := testGeminiApp(t)

	req := httptest.NewRequest("GET", "/api/ai/models", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Provider  string   `json:"provider"`
		Available bool     `json:"available"`
		Models    []string `json:"models"`
	}
	data, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Provider != "gemini" {
		t.Fatalf("unexpected provider %q", body.Provider)
	}
	if body.Available {
		t.Fatalf("gateway without a credential must report unavailable")
	}
	if len(body.Models) != 1 || body.Models[0] != "gemini-1.5-flash" {
		t.Fatalf("unexpected models %v", body.Models)
	}
}

func TestGenerateDisabledGatewayMapsTo502(t *testing.T) {
	app := testGeminiApp(t)

	status, body := postJSON(t, app, "/api/gemini/", `{"prompt": "hello"}`)
	if status != fiber.StatusBadGateway {
		t.Fatalf("expected 502 from a credential-less gateway, got %d: %s", status, body)
	}

	var payload struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if payload.Kind != "missing_credential" {
		t.Fatalf("unexpected kind %q", payload.Kind)
	}
}
