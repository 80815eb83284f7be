package professors

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bu-planner/backend/pkg/logger"
	"github.com/bu-planner/backend/pkg/retry"
)

// OpenAlexClient fetches author metadata from the OpenAlex REST API.
// Transient failures are retried with backoff; OpenAlex rate-limits
// aggressively enough that a single attempt is not reliable.
type OpenAlexClient struct {
	baseURL     string
	httpClient  *http.Client
	retryConfig retry.Config
}

type Author struct {
	ID           string `json:"id"`
	DisplayName  string `json:"display_name"`
	WorksCount   int    `json:"works_count"`
	CitedByCount int    `json:"cited_by_count"`
	SummaryStats struct {
		HIndex int `json:"h_index"`
	} `json:"summary_stats"`
	Concepts []Concept `json:"x_concepts"`
}

type Concept struct {
	DisplayName string  `json:"display_name"`
	Score       float64 `json:"score"`
}

type Work struct {
	Title           string `json:"title"`
	PublicationYear int    `json:"publication_year"`
	CitedByCount    int    `json:"cited_by_count"`
	Authorships     []struct {
		Author struct {
			ID          string `json:"id"`
			DisplayName string `json:"display_name"`
		} `json:"author"`
		Institutions []struct {
			DisplayName string `json:"display_name"`
		} `json:"institutions"`
	} `json:"authorships"`
}

type Coauthor struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Count        int      `json:"count"`
	Institutions []string `json:"institutions"`
}

func NewOpenAlexClient(baseURL string, timeout time.Duration) *OpenAlexClient {
	if baseURL == "" {
		baseURL = "https://api.openalex.org"
	}

	cfg := retry.DefaultConfig()
	cfg.Logger = logger.GetLogger()

	return &OpenAlexClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Timeout: timeout},
		retryConfig: cfg,
	}
}

// normalizeID strips a full OpenAlex URL down to the bare author ID.
func normalizeID(openalexID string) string {
	if strings.Contains(openalexID, "openalex.org") {
		parts := strings.Split(openalexID, "/")
		return parts[len(parts)-1]
	}
	return openalexID
}

func (c *OpenAlexClient) GetAuthor(ctx context.Context, openalexID string) (*Author, error) {
	endpoint := fmt.Sprintf("%s/authors/%s", c.baseURL, normalizeID(openalexID))

	author, err := retry.DoWithResult(ctx, c.retryConfig, func() (*Author, error) {
		var a Author
		if err := c.getJSON(ctx, endpoint, &a); err != nil {
			return nil, err
		}
		return &a, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch author %s: %w", openalexID, err)
	}

	return author, nil
}

func (c *OpenAlexClient) GetWorks(ctx context.Context, openalexID string, limit int) ([]Work, error) {
	params := url.Values{}
	params.Set("filter", "author.id:"+normalizeID(openalexID))
	params.Set("sort", "publication_date:desc")
	params.Set("per-page", fmt.Sprintf("%d", limit))
	endpoint := fmt.Sprintf("%s/works?%s", c.baseURL, params.Encode())

	works, err := retry.DoWithResult(ctx, c.retryConfig, func() ([]Work, error) {
		var resp struct {
			Results []Work `json:"results"`
		}
		if err := c.getJSON(ctx, endpoint, &resp); err != nil {
			return nil, err
		}
		return resp.Results, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch works for %s: %w", openalexID, err)
	}

	return works, nil
}

func (c *OpenAlexClient) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("openalex returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	logger.Debug("OpenAlex fetch completed", zap.String("endpoint", endpoint))
	return nil
}

// Coauthors tallies how often other authors appear in the given works,
// skipping the subject author, most frequent first.
func Coauthors(works []Work, selfID string, limit int) []Coauthor {
	self := normalizeID(selfID)
	counts := make(map[string]*Coauthor)
	order := make([]string, 0)

	for _, work := range works {
		for _, authorship := range work.Authorships {
			id := authorship.Author.ID
			if id == "" || strings.Contains(id, self) {
				continue
			}

			entry, ok := counts[id]
			if !ok {
				entry = &Coauthor{ID: id, Name: authorship.Author.DisplayName}
				counts[id] = entry
				order = append(order, id)
			}
			entry.Count++

			if len(authorship.Institutions) > 0 {
				inst := authorship.Institutions[0].DisplayName
				if inst != "" && !contains(entry.Institutions, inst) {
					entry.Institutions = append(entry.Institutions, inst)
				}
			}
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]].Count > counts[order[j]].Count
	})

	result := make([]Coauthor, 0, limit)
	for _, id := range order {
		if len(result) >= limit {
			break
		}
		result = append(result, *counts[id])
	}
	return result
}

func contains(values []string, v string) bool {
	for _, existing := range values {
		if existing == v {
			return true
		}
	}
	return false
}
