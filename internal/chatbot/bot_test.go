package chatbot

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bu-planner/backend/internal/ai"
)

type fakeGateway struct {
	mu        sync.Mutex
	available bool
	reply     string
	err       error
	delay     time.Duration
	calls     int
}

func (g *fakeGateway) Provider() string { return "fake" }

func (g *fakeGateway) Available() bool { return g.available }

func (g *fakeGateway) Generate(ctx context.Context, req ai.Request) (string, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()

	if g.delay > 0 {
		select {
		case <-time.After(g.delay):
		case <-ctx.Done():
			return "", &ai.UnavailableError{Kind: ai.KindTimedOut, Provider: "fake", Err: ctx.Err()}
		}
	}
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

func (g *fakeGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func TestHandleUsesAIPathWhenAvailable(t *testing.T) {
	gw := &fakeGateway{available: true, reply: "Sure, head to the Explorer page."}
	bot := NewBot(gw, DefaultRules(), 100, 5)
	session := newSession("s1", 20)

	reply, err := bot.Handle(context.Background(), session, "how do I find courses?")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if reply.Source != SourceAI {
		t.Fatalf("expected AI source, got %s", reply.Source)
	}
	if reply.Text != gw.reply {
		t.Fatalf("unexpected reply text: %q", reply.Text)
	}

	history := session.History()
	if len(history) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(history))
	}
	if history[0].Role != RoleUser || history[1].Role != RoleAssistant {
		t.Fatalf("history roles out of order: %+v", history)
	}
}

func TestHandleFallsBackWhenGatewayUnavailable(t *testing.T) {
	gw := &fakeGateway{available: false}
	bot := NewBot(gw, DefaultRules(), 100, 5)
	session := newSession("s1", 20)

	reply, err := bot.Handle(context.Background(), session, "how do I search for a course?")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if reply.Source != SourceFallback {
		t.Fatalf("expected Fallback source, got %s", reply.Source)
	}
	if gw.callCount() != 0 {
		t.Fatalf("gateway called despite being unavailable")
	}
	if !strings.Contains(reply.Text, "Explorer") {
		t.Fatalf("expected the course-search rule response, got %q", reply.Text)
	}
}

func TestHandleDegradesOnGatewayError(t *testing.T) {
	gw := &fakeGateway{
		available: true,
		err:       &ai.UnavailableError{Kind: ai.KindProvider, Provider: "fake"},
	}
	bot := NewBot(gw, DefaultRules(), 100, 5)
	session := newSession("s1", 20)

	reply, err := bot.Handle(context.Background(), session, "can you recommend a career path?")
	if err != nil {
		t.Fatalf("Handle must not surface gateway errors, got %v", err)
	}
	if reply.Source != SourceFallback {
		t.Fatalf("expected degradation to Fallback, got %s", reply.Source)
	}
	if gw.callCount() != 1 {
		t.Fatalf("expected exactly one gateway attempt, got %d", gw.callCount())
	}
}

func TestHandleUnmatchedMessageGetsDefaultResponse(t *testing.T) {
	gw := &fakeGateway{available: false}
	bot := NewBot(gw, DefaultRules(), 100, 5)
	session := newSession("s1", 20)

	reply, err := bot.Handle(context.Background(), session, "what is the weather in Boston today")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if reply.Text != DefaultResponse {
		t.Fatalf("expected the default response verbatim, got %q", reply.Text)
	}
	if reply.Source != SourceFallback {
		t.Fatalf("expected Fallback source, got %s", reply.Source)
	}
}

func TestHandleNilSession(t *testing.T) {
	bot := NewBot(&fakeGateway{}, DefaultRules(), 100, 5)
	if _, err := bot.Handle(context.Background(), nil, "hello"); err == nil {
		t.Fatalf("expected error for nil session")
	}
}

func TestHandleSlowGatewayDegradesWithinDeadline(t *testing.T) {
	gw := &fakeGateway{available: true, delay: 5 * time.Second, reply: "too late"}
	bot := NewBot(gw, DefaultRules(), 100, 5)
	session := newSession("s1", 20)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	reply, err := bot.Handle(ctx, session, "plan my semester")
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if reply.Source != SourceFallback {
		t.Fatalf("expected timeout to degrade to Fallback, got %s", reply.Source)
	}
	if elapsed > 2*time.Second {
		t.Fatalf("degradation took too long: %v", elapsed)
	}
}

func TestBuildPromptIncludesHistoryAndQuestion(t *testing.T) {
	bot := NewBot(&fakeGateway{available: true}, DefaultRules(), 42, 5)
	history := []Message{
		{Role: RoleUser, Text: "hi"},
		{Role: RoleAssistant, Text: "hello!"},
	}

	prompt := bot.buildPrompt(history, "where is the planner?")
	for _, want := range []string{"hi", "hello!", "where is the planner?", "42"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}
