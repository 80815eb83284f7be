package models

import "time"

// ChatExchange is one recorded chatbot turn. Telemetry only; conversation
// state lives in the session, never here.
type ChatExchange struct {
	ID        string
	SessionID string
	Message   string
	Response  string
	Source    string
	LatencyMS int
	CreatedAt time.Time
}

// AdvisorRequest records one career-advisor call and its outcome.
type AdvisorRequest struct {
	ID              string
	Career          string
	MaxCourses      int
	CoveragePercent int
	CourseCount     int
	CacheHit        bool
	LatencyMS       int
	CreatedAt       time.Time
}
