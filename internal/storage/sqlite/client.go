package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/bu-planner/backend/internal/storage/models"
	"github.com/bu-planner/backend/pkg/logger"
)

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS chat_exchanges (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		message TEXT NOT NULL,
		response TEXT NOT NULL,
		source TEXT NOT NULL,
		latency_ms INTEGER,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_exchanges_session ON chat_exchanges(session_id);
	CREATE INDEX IF NOT EXISTS idx_exchanges_created ON chat_exchanges(created_at);

	CREATE TABLE IF NOT EXISTS advisor_requests (
		id TEXT PRIMARY KEY,
		career TEXT NOT NULL,
		max_courses INTEGER NOT NULL,
		coverage_percent INTEGER,
		course_count INTEGER,
		cache_hit INTEGER DEFAULT 0,
		latency_ms INTEGER,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_advisor_career ON advisor_requests(career);
	CREATE INDEX IF NOT EXISTS idx_advisor_created ON advisor_requests(created_at);
	`

	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

func (c *Client) InsertChatExchange(rec *models.ChatExchange) error {
	query := `
		INSERT INTO chat_exchanges (id, session_id, message, response, source, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := c.db.Exec(
		query,
		rec.ID,
		rec.SessionID,
		rec.Message,
		rec.Response,
		rec.Source,
		rec.LatencyMS,
		rec.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert chat exchange: %w", err)
	}

	logger.Debug("Chat exchange recorded",
		zap.String("session_id", rec.SessionID),
		zap.String("source", rec.Source),
	)
	return nil
}

func (c *Client) GetChatExchanges(sessionID string, limit int) ([]models.ChatExchange, error) {
	query := `
		SELECT id, session_id, message, response, source, latency_ms, created_at
		FROM chat_exchanges
		WHERE session_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := c.db.Query(query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get chat exchanges: %w", err)
	}
	defer rows.Close()

	var records []models.ChatExchange
	for rows.Next() {
		var r models.ChatExchange
		var createdAt int64
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Message, &r.Response, &r.Source, &r.LatencyMS, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		r.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, r)
	}

	return records, rows.Err()
}

func (c *Client) InsertAdvisorRequest(rec *models.AdvisorRequest) error {
	query := `
		INSERT INTO advisor_requests (id, career, max_courses, coverage_percent, course_count, cache_hit, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	cacheHit := 0
	if rec.CacheHit {
		cacheHit = 1
	}

	_, err := c.db.Exec(
		query,
		rec.ID,
		rec.Career,
		rec.MaxCourses,
		rec.CoveragePercent,
		rec.CourseCount,
		cacheHit,
		rec.LatencyMS,
		rec.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert advisor request: %w", err)
	}

	return nil
}
