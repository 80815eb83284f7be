package chatbot

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestSessionAppendEvictsOldestFirst(t *testing.T) {
	s := newSession("s1", 3)

	for i := 0; i < 5; i++ {
		s.mu.Lock()
		s.append(Message{Role: RoleUser, Text: fmt.Sprintf("m%d", i)})
		s.mu.Unlock()
	}

	history := s.History()
	if len(history) != 3 {
		t.Fatalf("expected history capped at 3, got %d", len(history))
	}
	if history[0].Text != "m2" || history[2].Text != "m4" {
		t.Fatalf("wrong eviction order: %+v", history)
	}
}

func TestSessionSeedAppliesCap(t *testing.T) {
	s := newSession("s1", 2)

	s.Seed([]Message{
		{Role: RoleUser, Text: "one"},
		{Role: RoleAssistant, Text: "two"},
		{Role: RoleUser, Text: "three"},
	})

	history := s.History()
	if len(history) != 2 {
		t.Fatalf("expected seeded history capped at 2, got %d", len(history))
	}
	if history[0].Text != "two" {
		t.Fatalf("expected oldest entries dropped, got %+v", history)
	}
}

func TestSessionManagerCreatesAndReuses(t *testing.T) {
	m := NewSessionManager(10, time.Hour)
	defer m.Close()

	created := m.Get("")
	if created.ID == "" {
		t.Fatalf("expected a generated session ID")
	}

	again := m.Get(created.ID)
	if again != created {
		t.Fatalf("expected the same session for a known ID")
	}

	other := m.Get("")
	if other == created {
		t.Fatalf("expected a fresh session for an empty ID")
	}
}

func TestSessionManagerExpiresIdleSessions(t *testing.T) {
	m := NewSessionManager(10, time.Minute)
	defer m.Close()

	s := m.Get("idle")
	s.mu.Lock()
	s.lastActive = time.Now().Add(-10 * time.Minute)
	s.mu.Unlock()

	m.expire(time.Now())

	m.mu.RLock()
	_, stillThere := m.sessions["idle"]
	m.mu.RUnlock()
	if stillThere {
		t.Fatalf("expected idle session to be expired")
	}
}

func TestConcurrentExchangesStaySerialized(t *testing.T) {
	gw := &fakeGateway{available: false}
	bot := NewBot(gw, DefaultRules(), 100, 5)
	session := newSession("s1", 200)

	const goroutines = 20
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(i int) {
			defer wg.Done()
			if _, err := bot.Handle(context.Background(), session, fmt.Sprintf("hello %d", i)); err != nil {
				t.Errorf("Handle: %v", err)
			}
		}(i)
	}
	wg.Wait()

	history := session.History()
	if len(history) != goroutines*2 {
		t.Fatalf("expected %d history entries, got %d", goroutines*2, len(history))
	}
	// Each exchange appends its user and assistant turns atomically, so the
	// roles must alternate pairwise no matter how the goroutines interleave.
	for i := 0; i < len(history); i += 2 {
		if history[i].Role != RoleUser || history[i+1].Role != RoleAssistant {
			t.Fatalf("exchange interleaved at index %d: %+v", i, history[i:i+2])
		}
	}
}
