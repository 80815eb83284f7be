package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/bu-planner/backend/internal/storage/models"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := NewClient(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	if err := client.InitSchema(); err != nil {
		t.Fatalf("InitSchema: %v", err)
	}
	return client
}

func TestChatExchangeRoundTrip(t *testing.T) {
	client := newTestClient(t)

	base := time.Now()
	for i, source := range []string{"AI", "Fallback", "AI"} {
		rec := &models.ChatExchange{
			ID:        string(rune('a' + i)),
			SessionID: "s1",
			Message:   "question",
			Response:  "answer",
			Source:    source,
			LatencyMS: 12,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := client.InsertChatExchange(rec); err != nil {
			t.Fatalf("InsertChatExchange: %v", err)
		}
	}

	records, err := client.GetChatExchanges("s1", 10)
	if err != nil {
		t.Fatalf("GetChatExchanges: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	// Newest first.
	if records[0].CreatedAt.Before(records[2].CreatedAt) {
		t.Fatalf("records not sorted newest first: %+v", records)
	}

	limited, err := client.GetChatExchanges("s1", 1)
	if err != nil {
		t.Fatalf("GetChatExchanges limited: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("limit ignored, got %d records", len(limited))
	}

	other, err := client.GetChatExchanges("unknown", 10)
	if err != nil {
		t.Fatalf("GetChatExchanges unknown session: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected no records for unknown session, got %d", len(other))
	}
}

func TestInsertAdvisorRequest(t *testing.T) {
	client := newTestClient(t)

	rec := &models.AdvisorRequest{
		ID:              "r1",
		Career:          "Data Scientist",
		MaxCourses:      8,
		CoveragePercent: 85,
		CourseCount:     6,
		CacheHit:        true,
		LatencyMS:       3,
		CreatedAt:       time.Now(),
	}
	if err := client.InsertAdvisorRequest(rec); err != nil {
		t.Fatalf("InsertAdvisorRequest: %v", err)
	}

	if err := client.InsertAdvisorRequest(rec); err == nil {
		t.Fatalf("expected primary key violation on duplicate insert")
	}
}
