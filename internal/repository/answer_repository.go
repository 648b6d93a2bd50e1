package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bpadilla17/radladder-game/internal/constants"
	"github.com/bpadilla17/radladder-game/internal/models"
	"github.com/bpadilla17/radladder-game/pkg/database"
)

type AnswerRepository struct {
	db *database.Client
}

func NewAnswerRepository(db *database.Client) *AnswerRepository {
	return &AnswerRepository{db: db}
}

// RecordAnswer stores the answer and bumps the per-option statistics of its
// question. Timeouts are stored but not counted.
func (r *AnswerRepository) RecordAnswer(ctx context.Context, record models.AnswerRecord) error {
	tx, err := r.db.GetDB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	answeredAt := record.AnsweredAt.UTC()
	if record.AnsweredAt.IsZero() {
		answeredAt = time.Now().UTC()
	}

	insert := r.db.Rebind(`
		INSERT INTO game_answers (session_id, question_id, selected_option, is_correct, time_taken_seconds, rung_at_time, answered_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	_, err = tx.ExecContext(ctx, insert,
		record.SessionID,
		record.QuestionID,
		record.SelectedOption,
		record.IsCorrect,
		record.TimeTakenSeconds,
		record.RungAtTime,
		answeredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert answer: %w", err)
	}

	if counts, ok := optionCounts(record.SelectedOption); ok {
		upsert := r.db.Rebind(`
			INSERT INTO answer_statistics (question_id, option_a_count, option_b_count, option_c_count, option_d_count, total_attempts, updated_at)
			VALUES (?, ?, ?, ?, ?, 1, ?)
			ON CONFLICT (question_id) DO UPDATE SET
				option_a_count = answer_statistics.option_a_count + excluded.option_a_count,
				option_b_count = answer_statistics.option_b_count + excluded.option_b_count,
				option_c_count = answer_statistics.option_c_count + excluded.option_c_count,
				option_d_count = answer_statistics.option_d_count + excluded.option_d_count,
				total_attempts = answer_statistics.total_attempts + 1,
				updated_at = excluded.updated_at
		`)
		_, err = tx.ExecContext(ctx, upsert,
			record.QuestionID,
			counts[0],
			counts[1],
			counts[2],
			counts[3],
			answeredAt,
		)
		if err != nil {
			return fmt.Errorf("failed to update answer statistics: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit answer: %w", err)
	}
	return nil
}

// GetAudienceStats returns rounded per-option percentages, or nil when fewer
// than the minimum number of players have answered.
func (r *AnswerRepository) GetAudienceStats(ctx context.Context, questionID string) (*models.AudienceStats, error) {
	query := r.db.Rebind(`
		SELECT option_a_count, option_b_count, option_c_count, option_d_count, total_attempts
		FROM answer_statistics
		WHERE question_id = ?
	`)

	var counts [4]int
	var total int
	err := r.db.GetDB().QueryRowContext(ctx, query, questionID).Scan(&counts[0], &counts[1], &counts[2], &counts[3], &total)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get answer statistics for %s: %w", questionID, err)
	}

	return NewAudienceStats(counts, total), nil
}

// NewAudienceStats converts raw option counts into rounded percentages.
func NewAudienceStats(counts [4]int, total int) *models.AudienceStats {
	if total < constants.AudienceMinRespondents {
		return nil
	}
	stats := &models.AudienceStats{
		Percentages:      make(map[string]int, len(constants.OptionLabels)),
		TotalRespondents: total,
	}
	for i, label := range constants.OptionLabels {
		stats.Percentages[label] = (counts[i]*100 + total/2) / total
	}
	return stats
}

func optionCounts(selected string) ([4]int, bool) {
	var counts [4]int
	for i, label := range constants.OptionLabels {
		if label == selected {
			counts[i] = 1
			return counts, true
		}
	}
	return counts, false
}
