package domain

import (
	"time"
)

// TypeStats aggregates a user's interviews of one type
type TypeStats struct {
	Count        int     `json:"count"`
	Completed    int     `json:"completed"`
	AverageScore float64 `json:"average_score"`
}

// AnalyticsSummary is the per-user aggregation served by the analytics
// endpoint. The payload is cached; a cache hit must be byte-identical to
// what a fresh aggregation would produce within the TTL window.
type AnalyticsSummary struct {
	UserID            string               `json:"user_id"`
	TotalInterviews   int                  `json:"total_interviews"`
	CompletedCount    int                  `json:"completed_count"`
	AverageScore      float64              `json:"average_score"`
	TotalVoiceMinutes int                  `json:"total_voice_minutes"`
	ByType            map[string]TypeStats `json:"by_type"`
	LastInterviewAt   *time.Time           `json:"last_interview_at,omitempty"`
	GeneratedAt       time.Time            `json:"generated_at"`
}
