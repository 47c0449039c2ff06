package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"intervue-api/internal/domain"
	"intervue-api/pkg/redis"
	"intervue-api/pkg/store"

	"go.uber.org/zap"
)

// Internal budget for external model calls: at most budgetMax successful
// calls per rolling budgetWindow, measured from the window's first call.
const (
	evalBudgetMax    = 10
	evalBudgetWindow = time.Minute
)

const maxListItems = 5

// EvaluationService obtains a structured interview evaluation, preferring the
// external model but guaranteeing a usable result: budget exhaustion,
// throttling, timeouts and unparseable output all degrade to a deterministic
// fallback instead of surfacing an error.
type EvaluationService struct {
	llm         LLMClient
	store       store.KeyValueStore
	keys        *redis.KeyBuilder
	logger      *zap.Logger
	modelName   string
	callTimeout time.Duration

	// now is swappable so tests can pin evaluation timestamps.
	now func() time.Time
}

// NewEvaluationService creates a new evaluation orchestrator
func NewEvaluationService(llm LLMClient, kv store.KeyValueStore, keys *redis.KeyBuilder, modelName string, callTimeout time.Duration, logger *zap.Logger) *EvaluationService {
	if callTimeout <= 0 {
		callTimeout = 30 * time.Second
	}
	return &EvaluationService{
		llm:         llm,
		store:       kv,
		keys:        keys,
		logger:      logger,
		modelName:   modelName,
		callTimeout: callTimeout,
		now:         time.Now,
	}
}

// Evaluate produces an evaluation for a finished interview. It returns an
// error only for caller mistakes (nil interview, missing user); every
// upstream failure is absorbed into the fallback path.
func (s *EvaluationService) Evaluate(ctx context.Context, interview *domain.Interview, transcript string) (*domain.Evaluation, error) {
	if interview == nil {
		return nil, fmt.Errorf("evaluate: interview is nil")
	}
	if interview.UserID == "" {
		return nil, fmt.Errorf("evaluate: interview has no user")
	}

	budgetKey := s.keys.KeyEvalBudget()
	count, err := s.store.Counter(ctx, budgetKey)
	if err != nil {
		// Can't read the budget: proceed with the call rather than degrade
		// every evaluation because the counter store blinked.
		s.logger.Warn("evaluation budget unreadable, proceeding", zap.Error(err))
	} else if count >= evalBudgetMax {
		s.logger.Info("evaluation budget exhausted, using fallback",
			zap.Int64("count", count),
			zap.Int("max", evalBudgetMax))
		return s.fallback("model call budget exhausted"), nil
	}

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	raw, err := s.llm.Complete(callCtx, evaluationSystemPrompt, buildEvaluationPrompt(interview, transcript))
	if err != nil {
		s.logger.Warn("model evaluation failed, using fallback",
			zap.String("interview_id", interview.ID),
			zap.Error(err))
		return s.fallback(fmt.Sprintf("model call failed: %v", err)), nil
	}

	// The call went through; it counts against the budget whether or not
	// the payload parses.
	if _, _, err := s.store.Increment(ctx, budgetKey, evalBudgetWindow); err != nil {
		s.logger.Warn("failed to record evaluation budget use", zap.Error(err))
	}

	object, ok := extractFirstJSON(raw)
	if !ok {
		s.logger.Warn("model returned no JSON object, using fallback",
			zap.String("interview_id", interview.ID))
		return s.fallback("unparseable model output"), nil
	}

	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(object), &fields); err != nil {
		s.logger.Warn("model JSON failed to parse, using fallback",
			zap.String("interview_id", interview.ID),
			zap.Error(err))
		return s.fallback("unparseable model output"), nil
	}

	result := s.normalize(fields)
	return &domain.Evaluation{Result: result, Source: domain.SourceModel}, nil
}

// normalize coerces untyped model output into an invariant-respecting
// result: every expected numeric clamped to [0,100] with a fixed default
// when absent or mistyped, every list truncated with a default when absent,
// and badges re-derived from the clamped scores rather than trusted.
func (s *EvaluationService) normalize(fields map[string]interface{}) domain.EvaluationResult {
	skills := make(map[string]int, len(domain.SkillDimensions))
	rawSkills, _ := fields["skill_scores"].(map[string]interface{})
	for _, dim := range domain.SkillDimensions {
		skills[dim] = intField(rawSkills, dim, 72)
	}

	overall := intField(fields, "overall_score", 75)

	return domain.EvaluationResult{
		OverallScore:     overall,
		SkillScores:      skills,
		Strengths:        listField(fields, "strengths", defaultStrengths),
		Weaknesses:       listField(fields, "weaknesses", defaultWeaknesses),
		Recommendations:  listField(fields, "recommendations", defaultRecommendations),
		DetailedFeedback: stringField(fields, "detailed_feedback", defaultFeedback),
		Badges:           domain.DeriveBadges(overall, skills),
		EvaluatedAt:      s.now().UTC(),
		ModelIdentifier:  s.modelName,
	}
}

// fallback returns the fixed baseline evaluation used whenever the model is
// unavailable. Deterministic apart from the timestamp.
func (s *EvaluationService) fallback(reason string) *domain.Evaluation {
	skills := map[string]int{
		domain.SkillCommunication:   75,
		domain.SkillTechnical:       72,
		domain.SkillProblemSolving:  73,
		domain.SkillConfidence:      70,
		domain.SkillClarity:         74,
		domain.SkillProfessionalism: 75,
	}

	return &domain.Evaluation{
		Source:         domain.SourceFallback,
		FallbackReason: reason,
		Result: domain.EvaluationResult{
			OverallScore:     75,
			SkillScores:      skills,
			Strengths:        defaultStrengths,
			Weaknesses:       defaultWeaknesses,
			Recommendations:  defaultRecommendations,
			DetailedFeedback: defaultFeedback,
			Badges:           domain.DeriveBadges(75, skills),
			EvaluatedAt:      s.now().UTC(),
			ModelIdentifier:  domain.FallbackModelIdentifier,
		},
	}
}

var (
	defaultStrengths = []string{
		"Engaged with every question in the session",
		"Maintained a steady pace throughout the interview",
	}
	defaultWeaknesses = []string{
		"Answers could include more concrete examples",
		"Some responses would benefit from a clearer structure",
	}
	defaultRecommendations = []string{
		"Practice structuring answers with the STAR method",
		"Review the core topics covered in this session",
		"Schedule a follow-up interview to track improvement",
	}
	defaultFeedback = "The session was completed successfully. A detailed breakdown " +
		"could not be generated for this interview, so baseline scores reflecting a " +
		"solid overall performance have been applied. The transcript is saved and can " +
		"be re-evaluated later."
)

const evaluationSystemPrompt = `You are an experienced interview coach. ` +
	`Assess the candidate's interview transcript and respond with a single JSON object containing: ` +
	`overall_score (0-100), skill_scores (object with communication, technical_knowledge, problem_solving, ` +
	`confidence, clarity, professionalism, each 0-100), strengths (list of strings), weaknesses (list of strings), ` +
	`recommendations (list of strings), detailed_feedback (string). Respond with JSON only.`

// buildEvaluationPrompt renders the interview metadata and transcript for the model
func buildEvaluationPrompt(interview *domain.Interview, transcript string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Interview type: %s\n", interview.Type)
	fmt.Fprintf(&b, "Difficulty: %s\n", interview.Difficulty)
	if len(interview.Topics) > 0 {
		fmt.Fprintf(&b, "Topics: %s\n", strings.Join(interview.Topics, ", "))
	}
	fmt.Fprintf(&b, "Duration: %d minutes\n\n", interview.DurationMinutes)
	b.WriteString("Transcript:\n")
	b.WriteString(transcript)
	return b.String()
}

// extractFirstJSON returns the first balanced JSON object embedded in free
// text. Models often wrap their JSON in prose or code fences.
func extractFirstJSON(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// intField reads a numeric field, clamping to [0,100] and substituting the
// default when the field is absent or not a number.
func intField(fields map[string]interface{}, key string, fallback int) int {
	if fields == nil {
		return domain.ClampScore(fallback)
	}
	switch v := fields[key].(type) {
	case float64:
		return domain.ClampScore(int(v))
	case string:
		// Models occasionally quote their numbers.
		var f float64
		if _, err := fmt.Sscanf(v, "%f", &f); err == nil {
			return domain.ClampScore(int(f))
		}
	}
	return domain.ClampScore(fallback)
}

// listField reads a string list field, truncating to maxListItems and
// substituting the default when absent or not a list.
func listField(fields map[string]interface{}, key string, fallback []string) []string {
	raw, ok := fields[key].([]interface{})
	if !ok {
		return fallback
	}

	items := make([]string, 0, maxListItems)
	for _, entry := range raw {
		if s, ok := entry.(string); ok && strings.TrimSpace(s) != "" {
			items = append(items, s)
		}
		if len(items) == maxListItems {
			break
		}
	}
	if len(items) == 0 {
		return fallback
	}
	return items
}

// stringField reads a string field with a default
func stringField(fields map[string]interface{}, key, fallback string) string {
	if s, ok := fields[key].(string); ok && strings.TrimSpace(s) != "" {
		return s
	}
	return fallback
}
