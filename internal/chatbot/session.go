package chatbot

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one conversation turn.
type Message struct {
	Role      string    `json:"role"`
	Text      string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session holds one client's bounded conversation history. All access goes
// through the session mutex so an exchange (classify, respond, append) always
// completes before the next one starts.
type Session struct {
	ID string

	mu         sync.Mutex
	messages   []Message
	cap        int
	lastActive time.Time
}

func newSession(id string, cap int) *Session {
	return &Session{
		ID:         id,
		cap:        cap,
		lastActive: time.Now(),
	}
}

// lock serializes exchanges within the session.
func (s *Session) lock() {
	s.mu.Lock()
	s.lastActive = time.Now()
}

func (s *Session) unlock() {
	s.mu.Unlock()
}

// append adds messages, evicting oldest-first past the cap. Callers must hold
// the session lock.
func (s *Session) append(msgs ...Message) {
	s.messages = append(s.messages, msgs...)
	if excess := len(s.messages) - s.cap; excess > 0 {
		s.messages = s.messages[excess:]
	}
}

// Seed replaces the history with client-supplied turns, applying the same
// cap. Used when a stateless client sends its own transcript.
func (s *Session) Seed(msgs []Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
	s.append(msgs...)
}

// History returns a copy of the messages, oldest first.
func (s *Session) History() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// lastN returns up to n most recent messages. Callers must hold the session
// lock.
func (s *Session) lastN(n int) []Message {
	if n <= 0 || len(s.messages) <= n {
		return s.messages
	}
	return s.messages[len(s.messages)-n:]
}

// SessionManager hands out per-client sessions and expires idle ones.
type SessionManager struct {
	mu         sync.RWMutex
	sessions   map[string]*Session
	historyCap int
	ttl        time.Duration
	done       chan struct{}
}

func NewSessionManager(historyCap int, ttl time.Duration) *SessionManager {
	if historyCap < 2 {
		historyCap = 2
	}
	if ttl <= 0 {
		ttl = time.Hour
	}

	m := &SessionManager{
		sessions:   make(map[string]*Session),
		historyCap: historyCap,
		ttl:        ttl,
		done:       make(chan struct{}),
	}
	go m.expireLoop()
	return m
}

// Get returns the session for id, creating one when id is empty or unknown.
func (m *SessionManager) Get(id string) *Session {
	if id != "" {
		m.mu.RLock()
		s, ok := m.sessions[id]
		m.mu.RUnlock()
		if ok {
			return s
		}
	}

	if id == "" {
		id = uuid.New().String()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s
	}
	s := newSession(id, m.historyCap)
	m.sessions[id] = s
	return s
}

func (m *SessionManager) Close() {
	close(m.done)
}

func (m *SessionManager) expireLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.expire(time.Now())
		}
	}
}

func (m *SessionManager) expire(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		s.mu.Lock()
		idle := now.Sub(s.lastActive)
		s.mu.Unlock()
		if idle > m.ttl {
			delete(m.sessions, id)
		}
	}
}
