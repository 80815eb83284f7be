package professors

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGetAuthorRetriesTransientFailures(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"id": "https://openalex.org/A123", "display_name": "Ada Lovelace", "works_count": 12, "cited_by_count": 300, "summary_stats": {"h_index": 9}}`))
	}))
	defer srv.Close()

	client := NewOpenAlexClient(srv.URL, 5*time.Second)
	client.retryConfig.BaseDelay = time.Millisecond

	author, err := client.GetAuthor(context.Background(), "A123")
	if err != nil {
		t.Fatalf("GetAuthor: %v", err)
	}
	if author.DisplayName != "Ada Lovelace" || author.SummaryStats.HIndex != 9 {
		t.Fatalf("unexpected author: %+v", author)
	}
	if calls != 2 {
		t.Fatalf("expected one retry, got %d calls", calls)
	}
}

func TestGetWorksSendsAuthorFilter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("filter"); got != "author.id:A123" {
			t.Errorf("unexpected filter %q", got)
		}
		w.Write([]byte(`{"results": [{"title": "On Computable Numbers", "publication_year": 1936, "cited_by_count": 9000}]}`))
	}))
	defer srv.Close()

	client := NewOpenAlexClient(srv.URL, 5*time.Second)
	client.retryConfig.BaseDelay = time.Millisecond

	works, err := client.GetWorks(context.Background(), "https://openalex.org/A123", 5)
	if err != nil {
		t.Fatalf("GetWorks: %v", err)
	}
	if len(works) != 1 || works[0].Title != "On Computable Numbers" {
		t.Fatalf("unexpected works: %+v", works)
	}
}

func TestNormalizeID(t *testing.T) {
	cases := map[string]string{
		"A123":                          "A123",
		"https://openalex.org/A123":     "A123",
		"https://api.openalex.org/A456": "A456",
	}
	for in, want := range cases {
		if got := normalizeID(in); got != want {
			t.Fatalf("normalizeID(%q): got %q, want %q", in, got, want)
		}
	}
}

func coauthorWork(ids ...string) Work {
	var w Work
	for _, id := range ids {
		var a struct {
			Author struct {
				ID          string `json:"id"`
				DisplayName string `json:"display_name"`
			} `json:"author"`
			Institutions []struct {
				DisplayName string `json:"display_name"`
			} `json:"institutions"`
		}
		a.Author.ID = id
		a.Author.DisplayName = "Author " + id
		w.Authorships = append(w.Authorships, a)
	}
	return w
}

func TestCoauthorsTalliesAndSkipsSelf(t *testing.T) {
	works := []Work{
		coauthorWork("A1", "A2", "A3"),
		coauthorWork("A1", "A2"),
		coauthorWork("A1", "A3"),
	}

	coauthors := Coauthors(works, "https://openalex.org/A1", 10)
	if len(coauthors) != 2 {
		t.Fatalf("expected 2 coauthors, got %+v", coauthors)
	}
	for _, c := range coauthors {
		if c.ID == "A1" {
			t.Fatalf("self not skipped: %+v", coauthors)
		}
	}
	if coauthors[0].Count < coauthors[1].Count {
		t.Fatalf("coauthors not sorted by frequency: %+v", coauthors)
	}
}

func TestCoauthorsRespectsLimit(t *testing.T) {
	works := []Work{coauthorWork("A2", "A3", "A4", "A5")}
	coauthors := Coauthors(works, "A1", 2)
	if len(coauthors) != 2 {
		t.Fatalf("expected limit of 2, got %d", len(coauthors))
	}
}
