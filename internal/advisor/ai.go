package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bu-planner/backend/internal/ai"
	"github.com/bu-planner/backend/internal/metrics"
	"github.com/bu-planner/backend/pkg/logger"
)

const catalogExcerptSize = 20

// AIAdvice asks the gateway for recommendations on a free-form career goal
// the preset table does not cover. The model is asked for JSON; whatever
// JSON object can be extracted from the completion is returned as-is.
// Gateway failures propagate: this caller has no fallback path.
func (s *Service) AIAdvice(ctx context.Context, careerGoal, major string) (json.RawMessage, error) {
	if strings.TrimSpace(careerGoal) == "" {
		return nil, fmt.Errorf("%w: career goal is required", ErrInvalidInput)
	}
	if major == "" {
		major = "Computer Science"
	}

	start := time.Now()
	prompt := s.advicePrompt(careerGoal, major)

	text, err := s.gateway.Generate(ctx, ai.Request{Prompt: prompt, Temperature: 0.4})
	metrics.GatewayDuration.WithLabelValues("ai-advisor").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.AdvisorRequestsTotal.WithLabelValues("ai_unavailable").Inc()
		return nil, err
	}

	blob, ok := ExtractJSON(text)
	if !ok {
		logger.Warn("AI advice response had no JSON object",
			zap.String("career_goal", careerGoal),
			zap.Int("length", len(text)),
		)
		raw, _ := json.Marshal(map[string]string{"raw_response": text})
		return raw, nil
	}

	metrics.AdvisorRequestsTotal.WithLabelValues("ok").Inc()
	return blob, nil
}

func (s *Service) advicePrompt(careerGoal, major string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are a career advisor helping a %s student plan their courses.\n\nCareer Goal: %s\n\nAvailable Courses:\n", major, careerGoal)

	for i, c := range s.store.All() {
		if i >= catalogExcerptSize {
			break
		}
		desc := truncateRunes(c.Description, 100)
		fmt.Fprintf(&sb, "- %s: %s (%s...)\n", c.Code, c.Title, desc)
	}

	sb.WriteString(`
Based on this career goal, please:
1. Identify 5-8 key skills needed for this career
2. Recommend 5-8 courses from the list that would best prepare the student
3. Explain how each recommended course contributes to the career goal
4. Estimate what percentage of required skills these courses would cover

Return your response in this JSON format:
{
  "career_analysis": "Brief analysis of the career path",
  "required_skills": ["skill1", "skill2"],
  "recommended_courses": [
    {
      "code": "COURSE CODE",
      "relevance": "How this course helps with the career goal",
      "skills_taught": ["skill1", "skill2"]
    }
  ],
  "skill_coverage_percentage": 85,
  "additional_advice": "Any additional recommendations"
}

Only return the JSON, no other text.
`)

	return sb.String()
}

// truncateRunes cuts s to at most n runes, never splitting a UTF-8 sequence.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	seen := 0
	for i := range s {
		if seen == n {
			return s[:i]
		}
		seen++
	}
	return s
}

// ExtractJSON pulls the first valid JSON object out of a completion that may
// wrap it in prose or code fences.
func ExtractJSON(text string) (json.RawMessage, bool) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return nil, false
	}

	candidate := []byte(text[start : end+1])
	if !json.Valid(candidate) {
		return nil, false
	}
	return json.RawMessage(candidate), true
}
