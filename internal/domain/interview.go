package domain

import (
	"time"
)

// Interview types
const (
	InterviewTypeTechnical    = "technical"
	InterviewTypeBehavioral   = "behavioral"
	InterviewTypeSystemDesign = "system-design"
	InterviewTypeHR           = "hr"
)

// Interview difficulties
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Interview modes. Voice mode consumes wallet minutes; text mode is free.
const (
	ModeVoice = "voice"
	ModeText  = "text"
)

// Interview statuses
const (
	StatusCreated    = "created"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusAbandoned  = "abandoned"
)

// Interview represents a single mock-interview session
type Interview struct {
	ID              string      `json:"id"`
	UserID          string      `json:"user_id"`
	Type            string      `json:"type"`
	Difficulty      string      `json:"difficulty"`
	Topics          []string    `json:"topics"`
	Mode            string      `json:"mode"`
	Status          string      `json:"status"`
	DurationMinutes int         `json:"duration_minutes"`
	Transcript      string      `json:"transcript,omitempty"`
	Evaluation      *Evaluation `json:"evaluation,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	CompletedAt     *time.Time  `json:"completed_at,omitempty"`
}

// CreateInterviewRequest is the payload for starting a new interview
type CreateInterviewRequest struct {
	Type            string   `json:"type"`
	Difficulty      string   `json:"difficulty"`
	Topics          []string `json:"topics"`
	Mode            string   `json:"mode"`
	DurationMinutes int      `json:"duration_minutes"`
}

// CompleteInterviewRequest carries the transcript of a finished session
type CompleteInterviewRequest struct {
	Transcript     string `json:"transcript"`
	MinutesElapsed int    `json:"minutes_elapsed"`
}

// HistoryFilter narrows an interview history query. Zero values mean "all".
type HistoryFilter struct {
	Page   int    `json:"page"`
	Limit  int    `json:"limit"`
	Type   string `json:"type"`
	Status string `json:"status"`
}

// Normalize fills defaults and caps the page size
func (f *HistoryFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 10
	}
	if f.Limit > 50 {
		f.Limit = 50
	}
	if f.Type == "" {
		f.Type = "all"
	}
	if f.Status == "" {
		f.Status = "all"
	}
}

// HistoryPage is one page of a user's interview history
type HistoryPage struct {
	Interviews []Interview `json:"interviews"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	Total      int         `json:"total"`
	TotalPages int         `json:"total_pages"`
}

// ValidInterviewType reports whether t is a known interview type
func ValidInterviewType(t string) bool {
	switch t {
	case InterviewTypeTechnical, InterviewTypeBehavioral, InterviewTypeSystemDesign, InterviewTypeHR:
		return true
	}
	return false
}

// ValidDifficulty reports whether d is a known difficulty
func ValidDifficulty(d string) bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// ValidMode reports whether m is a known interview mode
func ValidMode(m string) bool {
	return m == ModeVoice || m == ModeText
}
