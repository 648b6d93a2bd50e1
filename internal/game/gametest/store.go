package gametest

import (
	"context"
	"fmt"
	"math/rand"
	"slices"
	"sync"
	"time"

	"github.com/bpadilla17/radladder-game/internal/models"
)

type FetchCall struct {
	Rung       int
	ExcludeIDs []string
}

// Store is an in-memory implementation of the game store.
type Store struct {
	mu sync.Mutex

	Questions map[int][]*models.Question
	Audience  map[string]*models.AudienceStats
	Answers   []models.AnswerRecord
	Finalized map[string]models.SessionSummary
	Sessions  []*models.GameSession

	FinalizeCalls int
	FetchCalls    []FetchCall

	CreateErr   error
	FetchErr    error
	RecordErr   error
	AudienceErr error
	FinalizeErr error

	rnd *rand.Rand
}

// NewStore seeds perRung questions on every rung 1–10. Question ids look like
// "r3-q1" and the correct option is always "A".
func NewStore(perRung int) *Store {
	s := &Store{
		Questions: make(map[int][]*models.Question),
		Audience:  make(map[string]*models.AudienceStats),
		Finalized: make(map[string]models.SessionSummary),
		rnd:       rand.New(rand.NewSource(1)),
	}
	for rung := 1; rung <= 10; rung++ {
		for i := 1; i <= perRung; i++ {
			s.Questions[rung] = append(s.Questions[rung], NewQuestion(fmt.Sprintf("r%d-q%d", rung, i), rung, "A"))
		}
	}
	return s
}

func NewQuestion(id string, rung int, correct string) *models.Question {
	return &models.Question{
		ID:       id,
		Rung:     rung,
		Scenario: "Scenario " + id,
		Options: []models.Option{
			{Label: "A", Text: "Option A"},
			{Label: "B", Text: "Option B"},
			{Label: "C", Text: "Option C"},
			{Label: "D", Text: "Option D"},
		},
		CorrectOption: correct,
		TeachingPoint: "Teaching point " + id,
	}
}

func (s *Store) CreateSession(ctx context.Context, playerName string) (*models.GameSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.CreateErr != nil {
		return nil, s.CreateErr
	}
	session := &models.GameSession{
		ID:         fmt.Sprintf("session-%d", len(s.Sessions)+1),
		PlayerName: playerName,
		StartTime:  time.Now(),
	}
	s.Sessions = append(s.Sessions, session)
	return session, nil
}

func (s *Store) FetchQuestion(ctx context.Context, rung int, excludeIDs []string) (*models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.FetchCalls = append(s.FetchCalls, FetchCall{Rung: rung, ExcludeIDs: slices.Clone(excludeIDs)})
	if s.FetchErr != nil {
		return nil, s.FetchErr
	}

	var pool []*models.Question
	for _, q := range s.Questions[rung] {
		if !slices.Contains(excludeIDs, q.ID) {
			pool = append(pool, q)
		}
	}
	if len(pool) == 0 {
		return nil, nil
	}
	q := *pool[s.rnd.Intn(len(pool))]
	return &q, nil
}

func (s *Store) RecordAnswer(ctx context.Context, record models.AnswerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.RecordErr != nil {
		return s.RecordErr
	}
	s.Answers = append(s.Answers, record)
	return nil
}

func (s *Store) FetchAudienceStats(ctx context.Context, questionID string) (*models.AudienceStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.AudienceErr != nil {
		return nil, s.AudienceErr
	}
	return s.Audience[questionID], nil
}

func (s *Store) FinalizeSession(ctx context.Context, sessionID string, summary models.SessionSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.FinalizeCalls++
	if s.FinalizeErr != nil {
		return s.FinalizeErr
	}
	s.Finalized[sessionID] = summary
	return nil
}

func (s *Store) AnswerRecords() []models.AnswerRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.Answers)
}

func (s *Store) Summary(sessionID string) (models.SessionSummary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	summary, ok := s.Finalized[sessionID]
	return summary, ok
}

// SyncDispatch runs best-effort tasks inline so tests can observe them.
func SyncDispatch(task func(ctx context.Context)) {
	task(context.Background())
}
