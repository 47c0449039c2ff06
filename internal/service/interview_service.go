package service

import (
	"context"
	"fmt"

	"intervue-api/internal/domain"
	"intervue-api/internal/repository"
	apperrors "intervue-api/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InterviewService implements the interview lifecycle: creation (with the
// voice-mode balance gate), history and analytics reads behind the response
// cache, and completion, which runs the evaluation orchestrator, debits voice
// minutes and invalidates the user's cached reads.
type InterviewService struct {
	interviews repository.InterviewRepository
	ledger     *LedgerService
	evaluator  *EvaluationService
	cache      *CacheService
	logger     *zap.Logger
}

// NewInterviewService creates a new interview service
func NewInterviewService(interviews repository.InterviewRepository, ledger *LedgerService, evaluator *EvaluationService, cache *CacheService, logger *zap.Logger) *InterviewService {
	return &InterviewService{
		interviews: interviews,
		ledger:     ledger,
		evaluator:  evaluator,
		cache:      cache,
		logger:     logger,
	}
}

// Create starts a new interview session. Voice mode requires the wallet to
// cover the configured duration before the session is allowed to start.
func (s *InterviewService) Create(ctx context.Context, userID string, req *domain.CreateInterviewRequest) (*domain.Interview, error) {
	if err := validateCreateRequest(req); err != nil {
		return nil, err
	}

	if req.Mode == domain.ModeVoice {
		balance, err := s.ledger.GetBalance(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to check balance: %w", err)
		}
		if balance < req.DurationMinutes {
			return nil, apperrors.NewInsufficientBalanceError(
				fmt.Sprintf("voice interviews need %d minutes, balance is %d", req.DurationMinutes, balance))
		}
	}

	interview := &domain.Interview{
		ID:              uuid.NewString(),
		UserID:          userID,
		Type:            req.Type,
		Difficulty:      req.Difficulty,
		Topics:          req.Topics,
		Mode:            req.Mode,
		Status:          domain.StatusCreated,
		DurationMinutes: req.DurationMinutes,
	}

	if err := s.interviews.Create(ctx, interview); err != nil {
		return nil, err
	}

	// A new session changes the user's history and analytics.
	s.cache.InvalidateUser(ctx, userID)

	s.logger.Info("interview created",
		zap.String("interview_id", interview.ID),
		zap.String("user_id", userID),
		zap.String("type", interview.Type),
		zap.String("mode", interview.Mode))

	return interview, nil
}

// Get retrieves one of the user's interviews. Another user's interview is
// indistinguishable from a missing one.
func (s *InterviewService) Get(ctx context.Context, userID, interviewID string) (*domain.Interview, error) {
	interview, err := s.interviews.GetByID(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if interview == nil || interview.UserID != userID {
		return nil, apperrors.NewNotFoundError("interview not found")
	}
	return interview, nil
}

// History returns one page of the user's interview history through the
// response cache.
func (s *InterviewService) History(ctx context.Context, userID string, filter domain.HistoryFilter) (*domain.HistoryPage, error) {
	filter.Normalize()

	return s.cache.GetHistoryWithCache(ctx, userID, filter, func(ctx context.Context) (*domain.HistoryPage, error) {
		interviews, total, err := s.interviews.ListByUser(ctx, userID, filter)
		if err != nil {
			return nil, err
		}

		totalPages := (total + filter.Limit - 1) / filter.Limit
		return &domain.HistoryPage{
			Interviews: interviews,
			Page:       filter.Page,
			Limit:      filter.Limit,
			Total:      total,
			TotalPages: totalPages,
		}, nil
	})
}

// Analytics returns the user's aggregated statistics through the response
// cache.
func (s *InterviewService) Analytics(ctx context.Context, userID string) (*domain.AnalyticsSummary, error) {
	return s.cache.GetAnalyticsWithCache(ctx, userID, func(ctx context.Context) (*domain.AnalyticsSummary, error) {
		return s.interviews.Aggregate(ctx, userID)
	})
}

// Complete finishes a session: it stores the transcript, obtains an
// evaluation (real or fallback), debits voice minutes actually used and
// invalidates the user's cached reads.
func (s *InterviewService) Complete(ctx context.Context, userID, interviewID string, req *domain.CompleteInterviewRequest) (*domain.Interview, error) {
	interview, err := s.Get(ctx, userID, interviewID)
	if err != nil {
		return nil, err
	}
	if interview.Status == domain.StatusCompleted {
		return nil, apperrors.NewConflictError("interview is already completed")
	}

	evaluation, err := s.evaluator.Evaluate(ctx, interview, req.Transcript)
	if err != nil {
		return nil, err
	}

	if interview.Mode == domain.ModeVoice {
		minutes := req.MinutesElapsed
		if minutes <= 0 || minutes > interview.DurationMinutes {
			minutes = interview.DurationMinutes
		}
		_, err := s.ledger.AddDebit(ctx, userID, minutes, domain.CategoryInterviewUsage,
			fmt.Sprintf("%s interview session", interview.Type), interview.ID)
		if err != nil {
			// The balance was gated at creation; a failed debit here means
			// the wallet was drained mid-session. The session still blocks.
			return nil, err
		}
	}

	interview.Status = domain.StatusCompleted
	interview.Transcript = req.Transcript
	interview.Evaluation = evaluation

	if err := s.interviews.Complete(ctx, interview); err != nil {
		return nil, err
	}

	s.cache.InvalidateUser(ctx, userID)

	s.logger.Info("interview completed",
		zap.String("interview_id", interview.ID),
		zap.String("user_id", userID),
		zap.Bool("fallback_evaluation", evaluation.IsFallback()))

	return interview, nil
}

// Evaluate runs the orchestrator against a transcript without persisting,
// for the standalone evaluation endpoint. Always yields an evaluation.
func (s *InterviewService) Evaluate(ctx context.Context, userID, interviewID, transcript string) (*domain.Evaluation, error) {
	interview, err := s.Get(ctx, userID, interviewID)
	if err != nil {
		return nil, err
	}
	return s.evaluator.Evaluate(ctx, interview, transcript)
}

func validateCreateRequest(req *domain.CreateInterviewRequest) error {
	if req == nil {
		return apperrors.NewValidationError("request body is required", nil)
	}
	if !domain.ValidInterviewType(req.Type) {
		return apperrors.NewValidationError("invalid interview type", map[string]interface{}{
			"type": req.Type,
		})
	}
	if !domain.ValidDifficulty(req.Difficulty) {
		return apperrors.NewValidationError("invalid difficulty", map[string]interface{}{
			"difficulty": req.Difficulty,
		})
	}
	if !domain.ValidMode(req.Mode) {
		return apperrors.NewValidationError("invalid interview mode", map[string]interface{}{
			"mode": req.Mode,
		})
	}
	if len(req.Topics) > 10 {
		return apperrors.NewValidationError("at most 10 topics are allowed", nil)
	}
	if req.DurationMinutes == 0 {
		req.DurationMinutes = 15
	}
	if req.DurationMinutes < 5 || req.DurationMinutes > 60 {
		return apperrors.NewValidationError("duration must be between 5 and 60 minutes", map[string]interface{}{
			"duration_minutes": req.DurationMinutes,
		})
	}
	return nil
}
