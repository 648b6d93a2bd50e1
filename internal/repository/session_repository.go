package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/bpadilla17/radladder-game/internal/constants"
	"github.com/bpadilla17/radladder-game/internal/models"
	"github.com/bpadilla17/radladder-game/pkg/database"

	"github.com/google/uuid"
)

type SessionRepository struct {
	db  *database.Client
	now func() time.Time
}

func NewSessionRepository(db *database.Client) *SessionRepository {
	return &SessionRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (r *SessionRepository) CreateSession(ctx context.Context, playerName string) (*models.GameSession, error) {
	session := &models.GameSession{
		ID:         uuid.NewString(),
		PlayerName: playerName,
		StartTime:  r.now(),
	}

	query := r.db.Rebind(`
		INSERT INTO game_sessions (id, player_name, start_time, final_rung, total_questions, correct_answers, wrong_answers, final_score, completed)
		VALUES (?, ?, ?, ?, 0, 0, 0, 0, ?)
	`)
	_, err := r.db.GetDB().ExecContext(ctx, query,
		session.ID,
		session.PlayerName,
		session.StartTime,
		constants.StartingRung,
		false,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create game session: %w", err)
	}
	return session, nil
}

func (r *SessionRepository) FinalizeSession(ctx context.Context, sessionID string, summary models.SessionSummary) error {
	query := r.db.Rebind(`
		UPDATE game_sessions
		SET end_time = ?, final_rung = ?, total_questions = ?, correct_answers = ?, wrong_answers = ?,
			total_time_seconds = ?, final_score = ?, completed = ?
		WHERE id = ?
	`)
	res, err := r.db.GetDB().ExecContext(ctx, query,
		summary.EndTime.UTC(),
		summary.FinalRung,
		summary.TotalQuestions,
		summary.CorrectAnswers,
		summary.WrongAnswers,
		summary.TotalTimeSeconds,
		summary.FinalScore,
		summary.Completed,
		sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to finalize game session %s: %w", sessionID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// GetSummary returns the stored summary of a session.
func (r *SessionRepository) GetSummary(ctx context.Context, sessionID string) (*models.SessionSummary, error) {
	query := r.db.Rebind(`
		SELECT final_rung, total_questions, correct_answers, wrong_answers, total_time_seconds, final_score, completed
		FROM game_sessions
		WHERE id = ?
	`)
	summary := &models.SessionSummary{}
	err := r.db.GetDB().QueryRowContext(ctx, query, sessionID).Scan(
		&summary.FinalRung,
		&summary.TotalQuestions,
		&summary.CorrectAnswers,
		&summary.WrongAnswers,
		&summary.TotalTimeSeconds,
		&summary.FinalScore,
		&summary.Completed,
	)
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// GetLeaderboard returns the fastest completed climbs. The week scope only
// considers sessions started in the last seven days.
func (r *SessionRepository) GetLeaderboard(ctx context.Context, scope string) ([]models.LeaderboardEntry, error) {
	query := `
		SELECT player_name, total_time_seconds, correct_answers, total_questions
		FROM game_sessions
		WHERE completed = ? AND final_rung = ?
	`
	args := []any{true, constants.MaxRung}

	switch scope {
	case constants.LeaderboardScopeAll:
	case constants.LeaderboardScopeWeek:
		query += ` AND start_time >= ?`
		args = append(args, r.now().AddDate(0, 0, -7))
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidScope, scope)
	}

	query += ` ORDER BY total_time_seconds ASC, start_time ASC LIMIT ?`
	args = append(args, constants.LeaderboardSize)

	rows, err := r.db.GetDB().QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []models.LeaderboardEntry{}
	for rows.Next() {
		entry := models.LeaderboardEntry{Rank: len(entries) + 1}
		if err := rows.Scan(&entry.PlayerName, &entry.TotalTimeSeconds, &entry.CorrectAnswers, &entry.TotalQuestions); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
