package chatbot

import (
	"strings"

	"github.com/jdkato/prose/v2"
)

// Rule maps a keyword set to a canned response. Rules are evaluated in slice
// order and the first match wins, so the table's ordering is its priority.
type Rule struct {
	Name     string
	Keywords []string
	Response string
}

// DefaultResponse is returned verbatim when no rule matches.
const DefaultResponse = "I can help you navigate the site! You can browse the course catalog in the " +
	"Explorer, plan semesters with drag-and-drop in the Planner, get AI career " +
	"recommendations under Progress, and research professors on the Professors page. " +
	"What would you like to do?"

// DefaultRules is the built-in fallback table, ordered by priority. It covers
// the site's main feature areas so the bot stays useful with no AI credential.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:     "course-search",
			Keywords: []string{"search", "find course", "find a course", "look up", "browse", "catalog", "explorer"},
			Response: "To search for courses, go to the Explorer page from the top menu. Use the search bar to " +
				"look up courses by name, code, or keyword, and narrow results with the department and level filters. " +
				"Click any course card to see its full details.",
		},
		{
			Name:     "planner",
			Keywords: []string{"plan", "planner", "semester", "schedule", "drag"},
			Response: "Semester planning lives on the Planner page. Click \"Add Semester\", then drag courses from " +
				"the catalog sidebar onto a semester board. Prerequisites are validated automatically as you go.",
		},
		{
			Name:     "export",
			Keywords: []string{"export", "pdf", "download", "print"},
			Response: "You can download your plan from the Planner page: build your semesters, then click the " +
				"\"Export to PDF\" button at the top of the board.",
		},
		{
			Name:     "career-advice",
			Keywords: []string{"career", "recommend", "recommendation", "advisor", "job", "skill"},
			Response: "For career advice, open the Progress page. Pick a preset career path or type any custom " +
				"career goal, then click \"Get Recommendations\" to see suggested courses and your skill coverage.",
		},
		{
			Name:     "prerequisites",
			Keywords: []string{"prerequisite", "prereq", "requirement", "required course"},
			Response: "Prerequisites are listed on each course's detail card in the Explorer, and the Planner " +
				"checks them automatically when you place a course into a semester.",
		},
		{
			Name:     "professors",
			Keywords: []string{"professor", "faculty", "research", "instructor", "email"},
			Response: "Professor information is on the Professors page. Filter by department, click a name to see " +
				"publications and research areas, or use the cold-email generator to draft an outreach message.",
		},
		{
			Name:     "greeting",
			Keywords: []string{"hello", "hi there", "hey", "good morning", "good afternoon"},
			Response: "Hi! I'm the course planner assistant. Ask me about finding courses, planning semesters, " +
				"career recommendations, or professor research.",
		},
		{
			Name:     "thanks",
			Keywords: []string{"thank", "thanks", "appreciate"},
			Response: "You're welcome! Let me know if there's anything else about course planning I can help with.",
		},
	}
}

// matchRule finds the first rule whose keyword set hits the message. Matching
// is case-insensitive; single-word keywords match on token equality, longer
// ones on substring.
func matchRule(rules []Rule, message string) (Rule, bool) {
	lower := strings.ToLower(message)
	tokens := tokenize(lower)

	for _, rule := range rules {
		for _, kw := range rule.Keywords {
			if strings.ContainsRune(kw, ' ') {
				if strings.Contains(lower, kw) {
					return rule, true
				}
				continue
			}
			if tokens[kw] || strings.Contains(lower, kw) {
				return rule, true
			}
		}
	}
	return Rule{}, false
}

// tokenize splits the message into a lowercase token set. prose handles
// punctuation and contractions; on tokenizer failure plain field splitting
// keeps the fallback path deterministic.
func tokenize(lower string) map[string]bool {
	tokens := make(map[string]bool)
	doc, err := prose.NewDocument(lower,
		prose.WithTagging(false),
		prose.WithExtraction(false),
	)
	if err == nil {
		for _, tok := range doc.Tokens() {
			tokens[strings.ToLower(tok.Text)] = true
		}
		return tokens
	}
	for _, f := range strings.Fields(lower) {
		tokens[strings.Trim(f, ".,!?;:")] = true
	}
	return tokens
}
