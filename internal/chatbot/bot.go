package chatbot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bu-planner/backend/internal/ai"
	"github.com/bu-planner/backend/internal/metrics"
	"github.com/bu-planner/backend/pkg/logger"
)

// ErrInternal marks invariant violations; it is the only error Handle
// surfaces. AI failures never reach the caller.
var ErrInternal = errors.New("internal chatbot error")

// Source reports which path produced a reply.
type Source string

const (
	SourceAI       Source = "AI"
	SourceFallback Source = "Fallback"
)

type Reply struct {
	Text   string
	Source Source
}

// Bot is the chatbot decision layer. Per message it either builds a prompt
// for the AI gateway or answers from the rule table, degrading to the rules
// whenever the gateway is unavailable.
type Bot struct {
	gateway      ai.Gateway
	rules        []Rule
	courseCount  int
	condenseLast int
}

func NewBot(gateway ai.Gateway, rules []Rule, courseCount, condenseLast int) *Bot {
	if rules == nil {
		rules = DefaultRules()
	}
	if condenseLast <= 0 {
		condenseLast = 5
	}
	return &Bot{
		gateway:      gateway,
		rules:        rules,
		courseCount:  courseCount,
		condenseLast: condenseLast,
	}
}

// Handle runs one exchange to completion under the session lock: classify,
// respond, append. It never fails outward except on a broken invariant.
func (b *Bot) Handle(ctx context.Context, session *Session, message string) (Reply, error) {
	if session == nil {
		return Reply{}, fmt.Errorf("%w: nil session", ErrInternal)
	}

	session.lock()
	defer session.unlock()

	start := time.Now()

	var reply Reply
	if b.gateway != nil && b.gateway.Available() {
		reply = b.tryAIPath(ctx, session, message)
	} else {
		reply = b.fallback(message)
	}

	session.append(
		Message{Role: RoleUser, Text: message, Timestamp: start},
		Message{Role: RoleAssistant, Text: reply.Text, Timestamp: time.Now()},
	)

	metrics.ChatRequestsTotal.WithLabelValues(string(reply.Source)).Inc()

	logger.Debug("Chat exchange handled",
		zap.String("session_id", session.ID),
		zap.String("source", string(reply.Source)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return reply, nil
}

// tryAIPath calls the gateway and degrades to the rule table on any
// unavailability. Degradation is logged, not surfaced.
func (b *Bot) tryAIPath(ctx context.Context, session *Session, message string) Reply {
	prompt := b.buildPrompt(session.lastN(b.condenseLast), message)

	text, err := b.gateway.Generate(ctx, ai.Request{Prompt: prompt})
	if err == nil {
		return Reply{Text: text, Source: SourceAI}
	}

	fields := []zap.Field{
		zap.String("session_id", session.ID),
		zap.Error(err),
	}
	if ue, ok := ai.AsUnavailable(err); ok {
		fields = append(fields, zap.String("kind", ue.Kind.String()))
	}
	logger.Warn("AI path degraded to fallback", fields...)
	metrics.ChatDegradationsTotal.Inc()

	return b.fallback(message)
}

func (b *Bot) fallback(message string) Reply {
	if rule, ok := matchRule(b.rules, message); ok {
		return Reply{Text: rule.Response, Source: SourceFallback}
	}
	return Reply{Text: DefaultResponse, Source: SourceFallback}
}

// buildPrompt assembles system preamble, condensed history, and the current
// question into a single prompt for the gateway.
func (b *Bot) buildPrompt(history []Message, message string) string {
	var sb strings.Builder
	sb.WriteString(b.preamble())

	if len(history) > 0 {
		sb.WriteString("\nPrevious conversation:\n")
		for _, msg := range history {
			sb.WriteString(msg.Role)
			sb.WriteString(": ")
			sb.WriteString(msg.Text)
			sb.WriteByte('\n')
		}
	}

	sb.WriteString("\nCurrent user question: ")
	sb.WriteString(message)
	sb.WriteString(`

INSTRUCTIONS:
- Be helpful, friendly, and conversational
- Give specific navigation directions (e.g., "Click on 'Planner' in the top menu")
- Suggest relevant features based on user needs
- Keep responses concise but informative
- If asked about courses, mention specific course codes when relevant
- Guide users to the right page for their needs`)

	return sb.String()
}

func (b *Bot) preamble() string {
	return fmt.Sprintf(`You are an AI assistant for the BU Course Planner website. You help Boston University students with course planning and navigating the website.

WEBSITE STRUCTURE & NAVIGATION:
The site has 5 main sections in the top navigation bar:

1. HOME (/) - Landing page with quick links to every feature.
2. EXPLORER (/explorer) - Course catalog browser: search by name, code, or keyword; filter by department and level (Introductory, Intermediate, Advanced, Graduate); shows all %d courses; click a card for full details.
3. PLANNER (/planner) - Semester planning: drag-and-drop courses into semester boards, automatic prerequisite validation, "Export to PDF" button.
4. PROGRESS (/progress) - AI career advisor: browse preset career paths or enter any custom goal, see recommended courses and skill coverage percentage.
5. PROFESSORS (/professors) - Professor research: filter by department, view publications and research areas, generate AI cold emails.

HOW TO USE KEY FEATURES:
- To plan a semester: Planner -> Add Semester -> drag courses from the sidebar
- To search courses: Explorer -> search bar or filters
- To get career advice: Progress -> pick a career or enter a goal -> "Get Recommendations"
- To research professors: Professors -> click a professor name
- To export a plan: Planner -> "Export to PDF"
`, b.courseCount)
}
