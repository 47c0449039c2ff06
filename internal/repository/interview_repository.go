package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"intervue-api/internal/domain"
	"intervue-api/pkg/database"

	"github.com/jackc/pgx/v5"
)

type InterviewPGRepository struct {
	db *database.PostgresDB
}

func NewInterviewRepository(db *database.PostgresDB) *InterviewPGRepository {
	return &InterviewPGRepository{db: db}
}

// Create inserts a new interview session
func (r *InterviewPGRepository) Create(ctx context.Context, interview *domain.Interview) error {
	query := `
		INSERT INTO interviews (
			id, user_id, type, difficulty, topics, mode, status, duration_minutes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		interview.ID,
		interview.UserID,
		interview.Type,
		interview.Difficulty,
		interview.Topics,
		interview.Mode,
		interview.Status,
		interview.DurationMinutes,
	).Scan(&interview.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create interview: %w", err)
	}

	return nil
}

// GetByID retrieves an interview by ID
func (r *InterviewPGRepository) GetByID(ctx context.Context, id string) (*domain.Interview, error) {
	query := `
		SELECT id, user_id, type, difficulty, topics, mode, status,
		       duration_minutes, transcript, evaluation, created_at, completed_at
		FROM interviews
		WHERE id = $1
	`

	interview, err := scanInterview(r.db.Pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get interview: %w", err)
	}

	return interview, nil
}

// ListByUser returns one page of a user's history plus the total count.
// "all" filters are expanded in SQL so one query serves every variant.
func (r *InterviewPGRepository) ListByUser(ctx context.Context, userID string, filter domain.HistoryFilter) ([]domain.Interview, int, error) {
	filter.Normalize()
	offset := (filter.Page - 1) * filter.Limit

	query := `
		SELECT id, user_id, type, difficulty, topics, mode, status,
		       duration_minutes, transcript, evaluation, created_at, completed_at
		FROM interviews
		WHERE user_id = $1
		  AND ($2 = 'all' OR type = $2)
		  AND ($3 = 'all' OR status = $3)
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5
	`

	rows, err := r.db.Pool.Query(ctx, query, userID, filter.Type, filter.Status, filter.Limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list interviews: %w", err)
	}
	defer rows.Close()

	var interviews []domain.Interview
	for rows.Next() {
		interview, err := scanInterview(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan interview: %w", err)
		}
		interviews = append(interviews, *interview)
	}

	countQuery := `
		SELECT COUNT(*)
		FROM interviews
		WHERE user_id = $1
		  AND ($2 = 'all' OR type = $2)
		  AND ($3 = 'all' OR status = $3)
	`

	var total int
	if err := r.db.Pool.QueryRow(ctx, countQuery, userID, filter.Type, filter.Status).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count interviews: %w", err)
	}

	return interviews, total, nil
}

// Complete stores the transcript, evaluation and final status
func (r *InterviewPGRepository) Complete(ctx context.Context, interview *domain.Interview) error {
	evaluationJSON, err := json.Marshal(interview.Evaluation)
	if err != nil {
		return fmt.Errorf("failed to marshal evaluation: %w", err)
	}

	query := `
		UPDATE interviews
		SET status = $2, transcript = $3, evaluation = $4, completed_at = $5
		WHERE id = $1
	`

	now := time.Now().UTC()
	ct, err := r.db.Pool.Exec(ctx, query, interview.ID, interview.Status, interview.Transcript, evaluationJSON, now)
	if err != nil {
		return fmt.Errorf("failed to complete interview: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("interview %s not found", interview.ID)
	}

	interview.CompletedAt = &now
	return nil
}

// Aggregate computes the analytics summary for a user
func (r *InterviewPGRepository) Aggregate(ctx context.Context, userID string) (*domain.AnalyticsSummary, error) {
	summary := &domain.AnalyticsSummary{
		UserID:      userID,
		ByType:      make(map[string]domain.TypeStats),
		GeneratedAt: time.Now().UTC(),
	}

	query := `
		SELECT type,
		       COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'completed'),
		       COALESCE(AVG((evaluation -> 'result' ->> 'overall_score')::numeric) FILTER (WHERE status = 'completed'), 0),
		       COALESCE(SUM(duration_minutes) FILTER (WHERE mode = 'voice' AND status = 'completed'), 0),
		       MAX(created_at)
		FROM interviews
		WHERE user_id = $1
		GROUP BY type
	`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate interviews: %w", err)
	}
	defer rows.Close()

	var totalScore float64
	for rows.Next() {
		var (
			interviewType string
			stats         domain.TypeStats
			voiceMinutes  int
			lastAt        *time.Time
		)
		if err := rows.Scan(&interviewType, &stats.Count, &stats.Completed, &stats.AverageScore, &voiceMinutes, &lastAt); err != nil {
			return nil, fmt.Errorf("failed to scan aggregation row: %w", err)
		}

		summary.ByType[interviewType] = stats
		summary.TotalInterviews += stats.Count
		summary.CompletedCount += stats.Completed
		summary.TotalVoiceMinutes += voiceMinutes
		totalScore += stats.AverageScore * float64(stats.Completed)

		if lastAt != nil && (summary.LastInterviewAt == nil || lastAt.After(*summary.LastInterviewAt)) {
			summary.LastInterviewAt = lastAt
		}
	}

	if summary.CompletedCount > 0 {
		summary.AverageScore = totalScore / float64(summary.CompletedCount)
	}

	return summary, nil
}

// scanInterview reads one interview row, decoding the evaluation JSONB
func scanInterview(row pgx.Row) (*domain.Interview, error) {
	var (
		interview      domain.Interview
		transcript     *string
		evaluationJSON []byte
	)

	err := row.Scan(
		&interview.ID,
		&interview.UserID,
		&interview.Type,
		&interview.Difficulty,
		&interview.Topics,
		&interview.Mode,
		&interview.Status,
		&interview.DurationMinutes,
		&transcript,
		&evaluationJSON,
		&interview.CreatedAt,
		&interview.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	if transcript != nil {
		interview.Transcript = *transcript
	}
	if len(evaluationJSON) > 0 {
		var evaluation domain.Evaluation
		if err := json.Unmarshal(evaluationJSON, &evaluation); err != nil {
			return nil, fmt.Errorf("failed to decode evaluation: %w", err)
		}
		interview.Evaluation = &evaluation
	}

	return &interview, nil
}
