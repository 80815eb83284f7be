package professors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bu-planner/backend/internal/ai"
	"github.com/bu-planner/backend/internal/cache/redis"
	"github.com/bu-planner/backend/pkg/logger"
	"github.com/bu-planner/backend/pkg/utils"
)

var ErrNotFound = errors.New("professor not found")
var ErrNoOpenAlexID = errors.New("professor has no OpenAlex ID")

// Service wires the roster, OpenAlex, and the AI gateway together. Unlike
// the chatbot, gateway failures here surface to the caller: there is no
// sensible fallback for a generated email.
type Service struct {
	roster   *Roster
	openalex *OpenAlexClient
	gateway  ai.Gateway
	cache    *redis.Client
	cacheTTL time.Duration
	maxWorks int
}

type ResearchProfile struct {
	Professor Professor  `json:"professor"`
	Author    *Author    `json:"openalex_data,omitempty"`
	Works     []Work     `json:"recent_works,omitempty"`
	Coauthors []Coauthor `json:"coauthors,omitempty"`
	Summary   string     `json:"research_summary,omitempty"`
}

type ColdEmailRequest struct {
	ProfessorName    string `json:"professor_name"`
	StudentInterests string `json:"student_interests"`
	CourseContext    string `json:"course_context,omitempty"`
}

type ColdEmail struct {
	Email         string   `json:"email"`
	Professor     string   `json:"professor"`
	ResearchAreas []string `json:"research_areas"`
}

func NewService(roster *Roster, openalex *OpenAlexClient, gateway ai.Gateway, cache *redis.Client, cacheTTL time.Duration, maxWorks int) *Service {
	if maxWorks <= 0 {
		maxWorks = 10
	}
	return &Service{
		roster:   roster,
		openalex: openalex,
		gateway:  gateway,
		cache:    cache,
		cacheTTL: cacheTTL,
		maxWorks: maxWorks,
	}
}

func (s *Service) Roster() *Roster {
	return s.roster
}

// Research assembles a professor's research profile. OpenAlex outages
// degrade to the bare roster entry rather than failing the request.
func (s *Service) Research(ctx context.Context, name string) (*ResearchProfile, error) {
	professor, ok := s.roster.ByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	if s.cache != nil {
		var cached ResearchProfile
		hit, err := s.cache.GetResearch(ctx, utils.CacheKey(professor.OpenAlexID), &cached)
		if err != nil {
			logger.Warn("Research cache read failed", zap.Error(err))
		} else if hit {
			return &cached, nil
		}
	}

	profile := &ResearchProfile{Professor: professor}

	author, err := s.openalex.GetAuthor(ctx, professor.OpenAlexID)
	if err != nil {
		logger.Warn("OpenAlex author fetch failed",
			zap.String("professor", professor.Name),
			zap.Error(err),
		)
		return profile, nil
	}
	profile.Author = author

	works, err := s.openalex.GetWorks(ctx, professor.OpenAlexID, s.maxWorks)
	if err != nil {
		logger.Warn("OpenAlex works fetch failed",
			zap.String("professor", professor.Name),
			zap.Error(err),
		)
	}
	profile.Works = works
	profile.Coauthors = Coauthors(works, professor.OpenAlexID, 10)
	profile.Summary = researchSummary(author, works)

	if s.cache != nil {
		if err := s.cache.SetResearch(ctx, utils.CacheKey(professor.OpenAlexID), profile, s.cacheTTL); err != nil {
			logger.Warn("Research cache write failed", zap.Error(err))
		}
	}

	return profile, nil
}

// ColdEmail drafts an outreach email through the AI gateway. Gateway
// failures propagate as *ai.UnavailableError.
func (s *Service) ColdEmail(ctx context.Context, req ColdEmailRequest) (*ColdEmail, error) {
	professor, ok := s.roster.ByName(req.ProfessorName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, req.ProfessorName)
	}
	if professor.OpenAlexID == "" {
		return nil, ErrNoOpenAlexID
	}

	author, err := s.openalex.GetAuthor(ctx, professor.OpenAlexID)
	if err != nil {
		return nil, fmt.Errorf("could not fetch research data: %w", err)
	}
	works, err := s.openalex.GetWorks(ctx, professor.OpenAlexID, s.maxWorks)
	if err != nil {
		logger.Warn("OpenAlex works fetch failed for cold email", zap.Error(err))
	}

	prompt := coldEmailPrompt(professor.Name, researchSummary(author, works), req.StudentInterests, req.CourseContext)

	email, err := s.gateway.Generate(ctx, ai.Request{Prompt: prompt, MaxTokens: 512})
	if err != nil {
		return nil, err
	}

	areas := make([]string, 0, 5)
	for _, c := range author.Concepts {
		if len(areas) >= 5 {
			break
		}
		areas = append(areas, c.DisplayName)
	}

	logger.Info("Cold email generated", zap.String("professor", professor.Name))

	return &ColdEmail{
		Email:         email,
		Professor:     professor.Name,
		ResearchAreas: areas,
	}, nil
}

func researchSummary(author *Author, works []Work) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Professor %s has published %d works with %d total citations and an h-index of %d.\n\n",
		author.DisplayName, author.WorksCount, author.CitedByCount, author.SummaryStats.HIndex)

	if len(author.Concepts) > 0 {
		sb.WriteString("Primary research areas: ")
		for i, c := range author.Concepts {
			if i >= 5 {
				break
			}
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(c.DisplayName)
		}
		sb.WriteString("\n\n")
	}

	if len(works) > 0 {
		sb.WriteString("Recent notable publications:\n")
		for i, w := range works {
			if i >= 3 {
				break
			}
			title := w.Title
			if title == "" {
				title = "Untitled"
			}
			fmt.Fprintf(&sb, "- %s (%d) - %d citations\n", title, w.PublicationYear, w.CitedByCount)
		}
	}

	return sb.String()
}

func coldEmailPrompt(professorName, researchSummary, studentInterests, courseContext string) string {
	var courseLine string
	if courseContext != "" {
		courseLine = fmt.Sprintf("Course Context: The student is planning to take or has taken %s\n\n", courseContext)
	}

	return fmt.Sprintf(`Generate a professional, personalized cold email from a student to a professor expressing interest in research opportunities.

Professor: %s

Professor's Research:
%s

Student's Interests:
%s

%sGuidelines:
- Keep it concise (under 200 words)
- Show genuine interest in specific research areas based on the professor's actual work
- Mention relevant background/skills
- Professional but not overly formal
- Clear ask for meeting/research opportunity
- Include a subject line

Format as:
Subject: [subject line]

Dear Professor [Last Name],

[email body]

Best regards,
[Student Name]

Generate the email:`, professorName, researchSummary, studentInterests, courseLine)
}
