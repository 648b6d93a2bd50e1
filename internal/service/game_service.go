package service

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/bpadilla17/radladder-game/internal/constants"
	"github.com/bpadilla17/radladder-game/internal/game"
	"github.com/bpadilla17/radladder-game/internal/models"
	"github.com/bpadilla17/radladder-game/pkg/jwt"
	"github.com/bpadilla17/radladder-game/pkg/metrics"
	"github.com/bpadilla17/radladder-game/pkg/storage"
)

const maxPlayerNameLength = 50

// Publisher sends game events to the message broker.
type Publisher interface {
	PublishJSON(ctx context.Context, queueName string, payload any) error
}

// ImageResolver turns stored image refs into URLs a browser can load.
type ImageResolver interface {
	PresignedURL(ctx context.Context, objectName string) (string, error)
}

type Options struct {
	Clock       game.Clock
	Dispatch    game.Dispatcher
	JWTSecret   string
	TokenTTL    time.Duration
	IdleTimeout time.Duration
	Publisher   Publisher
	Images      ImageResolver
}

// GameService owns the live game sessions and fans their events out to
// listeners, metrics and the message broker.
type GameService struct {
	store game.Store
	opts  Options

	mu       sync.RWMutex
	sessions map[string]*game.Session

	listenersMu sync.RWMutex
	listeners   []game.Listener

	wg sync.WaitGroup
}

type StartResult struct {
	Snapshot game.Snapshot `json:"session"`
	Token    string        `json:"token"`
}

func NewGameService(store game.Store, opts Options) *GameService {
	if opts.Clock == nil {
		opts.Clock = game.SystemClock()
	}

	s := &GameService{
		store:    store,
		opts:     opts,
		sessions: make(map[string]*game.Session),
	}
	if s.opts.Dispatch == nil {
		s.opts.Dispatch = s.trackedDispatch
	}
	return s
}

// AddListener registers l for the events of every session. Listeners run
// while the emitting session is locked and must not call back into it.
func (s *GameService) AddListener(l game.Listener) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, l)
}

// StartGame creates a session for playerName and presents its first
// question.
func (s *GameService) StartGame(ctx context.Context, playerName string) (*StartResult, error) {
	playerName = strings.TrimSpace(playerName)
	if playerName == "" || utf8.RuneCountInString(playerName) > maxPlayerNameLength {
		return nil, ErrInvalidPlayerName
	}

	session := game.NewSession(playerName, s.store, game.Options{
		Clock:    s.opts.Clock,
		Dispatch: s.opts.Dispatch,
		Listener: s.handleEvent,
	})
	if err := session.Start(ctx); err != nil {
		metrics.GamesStarted.WithLabelValues("failed").Inc()
		return nil, err
	}
	metrics.GamesStarted.WithLabelValues("ok").Inc()

	token, err := jwt.GenerateSessionToken(session.ID(), playerName, s.opts.JWTSecret, s.opts.TokenTTL)
	if err != nil {
		if abErr := session.Abandon(ctx); abErr != nil {
			log.Printf("Failed to abandon session %s after token error: %v", session.ID(), abErr)
		}
		return nil, err
	}

	s.mu.Lock()
	s.sessions[session.ID()] = session
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	s.mu.Unlock()

	log.Printf("Game started: session=%s, player=%s", session.ID(), playerName)
	return &StartResult{
		Snapshot: s.Snapshot(ctx, session),
		Token:    token,
	}, nil
}

func (s *GameService) Session(sessionID string) (*game.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *GameService) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Snapshot returns the session state with image refs resolved.
func (s *GameService) Snapshot(ctx context.Context, session *game.Session) game.Snapshot {
	snap := session.Snapshot()
	if snap.Question != nil {
		q := *snap.Question
		q.ImageRefs = s.resolveImages(ctx, q.ImageRefs)
		snap.Question = &q
	}
	return snap
}

func (s *GameService) SubmitAnswer(ctx context.Context, sessionID, option string) (game.Feedback, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return game.Feedback{}, err
	}
	return session.SubmitAnswer(ctx, strings.ToUpper(strings.TrimSpace(option)))
}

func (s *GameService) Next(ctx context.Context, sessionID string) error {
	session, err := s.Session(sessionID)
	if err != nil {
		return err
	}
	return s.dropIfFatal(sessionID, session.Next(ctx))
}

func (s *GameService) UsePass(ctx context.Context, sessionID string) error {
	session, err := s.Session(sessionID)
	if err != nil {
		return err
	}
	return s.dropIfFatal(sessionID, session.UsePass(ctx))
}

func (s *GameService) UseAskAudience(ctx context.Context, sessionID string) (*models.AudienceStats, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return nil, err
	}
	return session.UseAskAudience(ctx)
}

func (s *GameService) ResumeAudience(sessionID string) error {
	session, err := s.Session(sessionID)
	if err != nil {
		return err
	}
	return session.ResumeAudience()
}

func (s *GameService) UseSafetyNet(sessionID string) error {
	session, err := s.Session(sessionID)
	if err != nil {
		return err
	}
	return session.UseSafetyNet()
}

// Abandon ends the session early and drops it from the registry.
func (s *GameService) Abandon(ctx context.Context, sessionID string) (game.Snapshot, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return game.Snapshot{}, err
	}
	if err := session.Abandon(ctx); err != nil {
		return game.Snapshot{}, err
	}
	s.remove(sessionID)
	return session.Snapshot(), nil
}

// Reap abandons sessions that have been idle longer than the configured
// timeout and drops finished ones. It returns how many sessions were removed.
func (s *GameService) Reap(ctx context.Context) int {
	if s.opts.IdleTimeout <= 0 {
		return 0
	}
	cutoff := s.opts.Clock.Now().Add(-s.opts.IdleTimeout)

	s.mu.RLock()
	live := make([]*game.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		live = append(live, session)
	}
	s.mu.RUnlock()

	removed := 0
	for _, session := range live {
		if session.LastActivity().After(cutoff) {
			continue
		}
		err := session.Abandon(ctx)
		if err != nil && !errors.Is(err, game.ErrInvalidState) {
			log.Printf("Failed to abandon idle session %s: %v", session.ID(), err)
		}
		s.remove(session.ID())
		removed++
	}
	if removed > 0 {
		log.Printf("Reaped %d idle game sessions", removed)
	}
	return removed
}

// RunReaper calls Reap every interval until ctx is done.
func (s *GameService) RunReaper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Reap(ctx)
		}
	}
}

// Shutdown abandons every live session and waits for pending background
// writes until ctx expires.
func (s *GameService) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	live := make([]*game.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		live = append(live, session)
	}
	s.mu.RUnlock()

	for _, session := range live {
		if err := session.Abandon(ctx); err != nil && !errors.Is(err, game.ErrInvalidState) {
			log.Printf("Failed to abandon session %s on shutdown: %v", session.ID(), err)
		}
		s.remove(session.ID())
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// dropIfFatal removes a session that can no longer be played.
func (s *GameService) dropIfFatal(sessionID string, err error) error {
	if err != nil && game.IsFatal(err) {
		log.Printf("Game session %s aborted: %v", sessionID, err)
		s.remove(sessionID)
	}
	return err
}

func (s *GameService) remove(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
}

func (s *GameService) trackedDispatch(task func(ctx context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		task(ctx)
	}()
}

// handleEvent runs under the emitting session's lock.
func (s *GameService) handleEvent(ev game.Event) {
	switch p := ev.Payload.(type) {
	case game.QuestionPayload:
		p.Question.ImageRefs = s.resolveImages(context.Background(), p.Question.ImageRefs)
		ev.Payload = p
	case game.Feedback:
		s.recordAnswerMetrics(p)
		s.publish(constants.QueueAnswerRecorded, AnswerRecordedMessage{
			SessionID:      ev.SessionID,
			QuestionID:     p.QuestionID,
			SelectedOption: p.SelectedOption,
			IsCorrect:      p.IsCorrect,
			OldRung:        p.OldRung,
			NewRung:        p.NewRung,
			TimeTaken:      p.TimeTaken,
			Points:         p.Points,
			Score:          p.Score,
			Timestamp:      s.opts.Clock.Now(),
		})
	}

	switch ev.Type {
	case game.EventPassUsed:
		metrics.LifelinesUsed.WithLabelValues("pass").Inc()
	case game.EventAudienceStats:
		metrics.LifelinesUsed.WithLabelValues("ask_audience").Inc()
	case game.EventSafetyNetArmed:
		metrics.LifelinesUsed.WithLabelValues("safety_net").Inc()
	case game.EventFinalized:
		if p, ok := ev.Payload.(game.CompletePayload); ok {
			s.sessionFinished(ev.SessionID, p)
		}
	}

	s.listenersMu.RLock()
	listeners := s.listeners
	s.listenersMu.RUnlock()
	for _, l := range listeners {
		l(ev)
	}
}

func (s *GameService) sessionFinished(sessionID string, p game.CompletePayload) {
	result := "abandoned"
	if p.Summary.Completed {
		result = "completed"
	}
	metrics.GamesFinished.WithLabelValues(result).Inc()

	s.publish(constants.QueueSessionFinished, SessionFinishedMessage{
		SessionID:        sessionID,
		PlayerName:       p.PlayerName,
		Completed:        p.Summary.Completed,
		FinalRung:        p.Summary.FinalRung,
		FinalScore:       p.Summary.FinalScore,
		TotalQuestions:   p.Summary.TotalQuestions,
		CorrectAnswers:   p.Summary.CorrectAnswers,
		TotalTimeSeconds: p.Summary.TotalTimeSeconds,
		EndTime:          p.Summary.EndTime,
	})
}

func (s *GameService) recordAnswerMetrics(fb game.Feedback) {
	result := "incorrect"
	switch {
	case fb.SelectedOption == constants.TimeoutMarker:
		result = "timeout"
	case fb.IsCorrect:
		result = "correct"
	}
	metrics.AnswersGraded.WithLabelValues(strconv.Itoa(fb.OldRung), result).Inc()
	metrics.AnswerSeconds.Observe(float64(fb.TimeTaken))
}

func (s *GameService) publish(queue string, payload any) {
	if s.opts.Publisher == nil {
		return
	}
	publisher := s.opts.Publisher
	s.opts.Dispatch(func(ctx context.Context) {
		if err := publisher.PublishJSON(ctx, queue, payload); err != nil {
			log.Printf("Failed to publish to %s: %v", queue, err)
		}
	})
}

// resolveImages swaps bucket object names for presigned URLs. Refs that are
// already URLs, or that fail to resolve, are passed through.
func (s *GameService) resolveImages(ctx context.Context, refs []string) []string {
	if s.opts.Images == nil || len(refs) == 0 {
		return refs
	}

	resolved := make([]string, len(refs))
	for i, ref := range refs {
		resolved[i] = ref
		if !storage.IsObjectRef(ref) {
			continue
		}
		u, err := s.opts.Images.PresignedURL(ctx, ref)
		if err != nil {
			log.Printf("Failed to resolve image %s: %v", ref, err)
			continue
		}
		resolved[i] = u
	}
	return resolved
}
