package domain

import (
	"sort"
	"time"
)

// Skill dimensions scored by the evaluator. Every evaluation carries exactly
// these six, each clamped to [0,100].
const (
	SkillCommunication   = "communication"
	SkillTechnical       = "technical_knowledge"
	SkillProblemSolving  = "problem_solving"
	SkillConfidence      = "confidence"
	SkillClarity         = "clarity"
	SkillProfessionalism = "professionalism"
)

// SkillDimensions lists the expected skill score keys in canonical order
var SkillDimensions = []string{
	SkillCommunication,
	SkillTechnical,
	SkillProblemSolving,
	SkillConfidence,
	SkillClarity,
	SkillProfessionalism,
}

// EvaluationSource distinguishes a real model evaluation from the
// deterministic fallback produced when the model is unavailable
type EvaluationSource string

const (
	SourceModel    EvaluationSource = "model"
	SourceFallback EvaluationSource = "fallback"
)

// FallbackModelIdentifier tags evaluations produced without a model call
const FallbackModelIdentifier = "fallback"

// EvaluationResult is the structured outcome of an interview evaluation.
// All numeric scores are clamped to [0,100] before the result is stored.
type EvaluationResult struct {
	OverallScore     int            `json:"overall_score"`
	SkillScores      map[string]int `json:"skill_scores"`
	Strengths        []string       `json:"strengths"`
	Weaknesses       []string       `json:"weaknesses"`
	Recommendations  []string       `json:"recommendations"`
	DetailedFeedback string         `json:"detailed_feedback"`
	Badges           []string       `json:"badges"`
	EvaluatedAt      time.Time      `json:"evaluated_at"`
	ModelIdentifier  string         `json:"model_identifier"`
}

// Evaluation is the tagged result returned by the orchestrator so callers
// and tests can tell degraded responses from genuine ones without string
// sniffing.
type Evaluation struct {
	Result         EvaluationResult `json:"result"`
	Source         EvaluationSource `json:"source"`
	FallbackReason string           `json:"fallback_reason,omitempty"`
}

// IsFallback reports whether the evaluation came from the degraded path
func (e *Evaluation) IsFallback() bool {
	return e.Source == SourceFallback
}

// ClampScore bounds a raw score to [0,100]
func ClampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Achievement badges and the score thresholds that earn them. Badges are
// always re-derived from the clamped scores, never taken from model output.
const (
	BadgeHighPerformer = "high_performer"
	BadgeCommunicator  = "strong_communicator"
	BadgeTechExpert    = "technical_expert"
	BadgeProblemSolver = "problem_solver"
	BadgeComposed      = "composed_under_pressure"
)

// DeriveBadges computes the badge set from already-clamped scores.
// The returned list is deduplicated and sorted for stable output.
func DeriveBadges(overall int, skills map[string]int) []string {
	earned := make(map[string]struct{})

	if overall >= 85 {
		earned[BadgeHighPerformer] = struct{}{}
	}
	if skills[SkillCommunication] >= 85 {
		earned[BadgeCommunicator] = struct{}{}
	}
	if skills[SkillTechnical] >= 85 {
		earned[BadgeTechExpert] = struct{}{}
	}
	if skills[SkillProblemSolving] >= 85 {
		earned[BadgeProblemSolver] = struct{}{}
	}
	if skills[SkillConfidence] >= 80 {
		earned[BadgeComposed] = struct{}{}
	}

	badges := make([]string, 0, len(earned))
	for b := range earned {
		badges = append(badges, b)
	}
	sort.Strings(badges)
	return badges
}

// EvaluateRequest is the payload for the standalone evaluation endpoint
type EvaluateRequest struct {
	Transcript string `json:"transcript"`
}

// EvaluateResponse always reports success; Degraded flags a fallback
// evaluation so the client can show an advisory note.
type EvaluateResponse struct {
	Success    bool             `json:"success"`
	Evaluation EvaluationResult `json:"evaluation"`
	Degraded   bool             `json:"degraded,omitempty"`
	Message    string           `json:"message,omitempty"`
}
