package repository

import (
	"context"
	"log"
	"time"

	"github.com/bpadilla17/radladder-game/internal/constants"
	"github.com/bpadilla17/radladder-game/internal/models"
	"github.com/bpadilla17/radladder-game/pkg/cache"
	"github.com/bpadilla17/radladder-game/pkg/database"
)

// Store is the SQL-backed persistence for game sessions, answers, questions
// and the leaderboard.
type Store struct {
	sessions  *SessionRepository
	questions *QuestionRepository
	answers   *AnswerRepository
	bank      *QuestionBank
	cache     Cache
	cacheTTL  time.Duration
}

// NewStore builds a Store on db. c may be nil.
func NewStore(db *database.Client, c Cache, cacheTTL time.Duration) *Store {
	questions := NewQuestionRepository(db)
	return &Store{
		sessions:  NewSessionRepository(db),
		questions: questions,
		answers:   NewAnswerRepository(db),
		bank:      NewQuestionBank(questions, c, cacheTTL),
		cache:     c,
		cacheTTL:  cacheTTL,
	}
}

func (s *Store) CreateSession(ctx context.Context, playerName string) (*models.GameSession, error) {
	return s.sessions.CreateSession(ctx, playerName)
}

func (s *Store) FetchQuestion(ctx context.Context, rung int, excludeIDs []string) (*models.Question, error) {
	return s.bank.FetchQuestion(ctx, rung, excludeIDs)
}

func (s *Store) RecordAnswer(ctx context.Context, record models.AnswerRecord) error {
	if err := s.answers.RecordAnswer(ctx, record); err != nil {
		return err
	}
	s.invalidate(ctx, cache.AudienceStatsKey(record.QuestionID))
	return nil
}

func (s *Store) FetchAudienceStats(ctx context.Context, questionID string) (*models.AudienceStats, error) {
	key := cache.AudienceStatsKey(questionID)

	if s.cache != nil {
		var stats models.AudienceStats
		found, err := s.cache.GetJSON(ctx, key, &stats)
		if err != nil {
			log.Printf("Failed to read audience cache for %s: %v", questionID, err)
		} else if found {
			return &stats, nil
		}
	}

	stats, err := s.answers.GetAudienceStats(ctx, questionID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && stats != nil {
		if err := s.cache.SetJSON(ctx, key, stats, s.cacheTTL); err != nil {
			log.Printf("Failed to cache audience stats for %s: %v", questionID, err)
		}
	}
	return stats, nil
}

func (s *Store) FinalizeSession(ctx context.Context, sessionID string, summary models.SessionSummary) error {
	if err := s.sessions.FinalizeSession(ctx, sessionID, summary); err != nil {
		return err
	}
	if summary.Completed {
		s.invalidate(ctx,
			cache.LeaderboardKey(constants.LeaderboardScopeAll),
			cache.LeaderboardKey(constants.LeaderboardScopeWeek),
		)
	}
	return nil
}

func (s *Store) FetchLeaderboard(ctx context.Context, scope string) ([]models.LeaderboardEntry, error) {
	key := cache.LeaderboardKey(scope)

	if s.cache != nil {
		var entries []models.LeaderboardEntry
		found, err := s.cache.GetJSON(ctx, key, &entries)
		if err != nil {
			log.Printf("Failed to read leaderboard cache for %s: %v", scope, err)
		} else if found {
			return entries, nil
		}
	}

	entries, err := s.sessions.GetLeaderboard(ctx, scope)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, entries, s.cacheTTL); err != nil {
			log.Printf("Failed to cache leaderboard for %s: %v", scope, err)
		}
	}
	return entries, nil
}

func (s *Store) CreateQuestion(ctx context.Context, q *models.Question) error {
	if err := s.questions.CreateQuestion(ctx, q); err != nil {
		return err
	}
	s.bank.Invalidate(ctx, q.Rung)
	return nil
}

func (s *Store) ListQuestions(ctx context.Context, rung int) ([]*models.Question, error) {
	return s.questions.ListQuestions(ctx, rung)
}

func (s *Store) GetQuestion(ctx context.Context, id string) (*models.Question, error) {
	return s.questions.GetQuestion(ctx, id)
}

func (s *Store) AddQuestionImage(ctx context.Context, id, ref string) (*models.Question, error) {
	q, err := s.questions.AddQuestionImage(ctx, id, ref)
	if err != nil {
		return nil, err
	}
	s.bank.Invalidate(ctx, q.Rung)
	return q, nil
}

func (s *Store) ImportQuestions(ctx context.Context, questions []*models.Question) (int, error) {
	added, err := s.questions.ImportQuestions(ctx, questions)
	if err != nil {
		return 0, err
	}
	for rung := constants.MinRung; rung <= constants.MaxRung; rung++ {
		s.bank.Invalidate(ctx, rung)
	}
	return added, nil
}

func (s *Store) invalidate(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		log.Printf("Failed to invalidate cache keys %v: %v", keys, err)
	}
}
