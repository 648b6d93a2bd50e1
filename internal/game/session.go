package game

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/bpadilla17/radladder-game/internal/constants"
	"github.com/bpadilla17/radladder-game/internal/models"
)

type State string

const (
	StateInitializing     State = "initializing"
	StateAwaitingQuestion State = "awaiting_question"
	StateQuestionActive   State = "question_active"
	StateGrading          State = "grading"
	StateFeedback         State = "feedback"
	StateComplete         State = "complete"
	StateAborted          State = "aborted"
)

// Store is what a session needs from persistence. CreateSession and the
// question fetches are blocking; the rest is best-effort.
type Store interface {
	CreateSession(ctx context.Context, playerName string) (*models.GameSession, error)
	// FetchQuestion returns a random question for rung whose id is not in
	// excludeIDs, or nil when there is none.
	FetchQuestion(ctx context.Context, rung int, excludeIDs []string) (*models.Question, error)
	RecordAnswer(ctx context.Context, record models.AnswerRecord) error
	FetchAudienceStats(ctx context.Context, questionID string) (*models.AudienceStats, error)
	FinalizeSession(ctx context.Context, sessionID string, summary models.SessionSummary) error
}

// Dispatcher runs best-effort work off the gameplay path.
type Dispatcher func(task func(ctx context.Context))

const backgroundTimeout = 10 * time.Second

func BackgroundDispatcher() Dispatcher {
	return func(task func(ctx context.Context)) {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), backgroundTimeout)
			defer cancel()
			task(ctx)
		}()
	}
}

type Options struct {
	Clock    Clock
	Dispatch Dispatcher
	Listener Listener
}

// Session is one player's single playthrough of the ladder. All methods are
// safe for concurrent use; events are applied one at a time.
type Session struct {
	mu sync.Mutex

	id         string
	playerName string
	store      Store
	clock      Clock
	dispatch   Dispatcher
	listener   Listener
	timer      *Timer

	state           State
	currentRung     int
	score           int
	totalQuestions  int
	correctAnswers  int
	wrongAnswers    int
	lifelines       Lifelines
	safetyNetActive bool
	askedIDs        map[string]struct{}
	askedOrder      []string

	question      *models.Question
	questionStart time.Time
	timeLimit     time.Duration
	paused        bool
	lastFeedback  *Feedback

	startTime    time.Time
	endTime      time.Time
	finalized    bool
	completed    bool
	lastActivity time.Time
}

func NewSession(playerName string, store Store, opts Options) *Session {
	if opts.Clock == nil {
		opts.Clock = SystemClock()
	}
	if opts.Dispatch == nil {
		opts.Dispatch = BackgroundDispatcher()
	}

	s := &Session{
		playerName:   playerName,
		store:        store,
		clock:        opts.Clock,
		dispatch:     opts.Dispatch,
		listener:     opts.Listener,
		state:        StateInitializing,
		currentRung:  constants.StartingRung,
		lifelines:    NewLifelines(),
		askedIDs:     make(map[string]struct{}),
		lastActivity: opts.Clock.Now(),
	}
	s.timer = NewTimer(opts.Clock, s.onTimerExpired, s.onTimerTick)
	return s
}

// Start creates the session record and presents the first question. Both
// steps are fatal on failure.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateInitializing {
		return ErrInvalidState
	}

	record, err := s.store.CreateSession(ctx, s.playerName)
	if err != nil {
		s.state = StateAborted
		return &SessionInitError{Stage: "create session", Err: err}
	}

	s.id = record.ID
	s.startTime = s.clock.Now()
	s.currentRung = constants.StartingRung
	s.state = StateAwaitingQuestion
	s.touch()

	if err := s.loadQuestion(ctx, s.currentRung); err != nil {
		s.timer.Stop()
		s.finalize()
		s.state = StateAborted
		return &SessionInitError{Stage: "load first question", Err: err}
	}
	return nil
}

func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

func (s *Session) PlayerName() string {
	return s.playerName
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// SubmitAnswer grades the selected option for the active question.
func (s *Session) SubmitAnswer(ctx context.Context, option string) (Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireActive(); err != nil {
		return Feedback{}, err
	}
	if !s.question.HasOption(option) {
		return Feedback{}, ErrInvalidOption
	}
	s.touch()
	return s.submit(option, option == s.question.CorrectOption), nil
}

// SubmitTimeout grades the active question as unanswered.
func (s *Session) SubmitTimeout(ctx context.Context) (Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireActive(); err != nil {
		return Feedback{}, err
	}
	s.touch()
	return s.submit(constants.TimeoutMarker, false), nil
}

// Next acknowledges the feedback screen and either presents the next question
// or moves a finished game to complete.
func (s *Session) Next(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateFeedback {
		return ErrInvalidState
	}
	s.touch()

	if s.finalized {
		s.state = StateComplete
		s.emit(EventGameComplete, CompletePayload{
			PlayerName: s.playerName,
			Summary:    s.summary(),
		})
		return nil
	}

	s.state = StateAwaitingQuestion
	if err := s.loadQuestion(ctx, s.currentRung); err != nil {
		s.abort(err)
		return err
	}
	return nil
}

// UsePass swaps the active question for another one at the same rung. It is
// not an answer and leaves the counters alone.
func (s *Session) UsePass(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireActive(); err != nil {
		return err
	}
	if err := s.lifelines.UsePass(); err != nil {
		return err
	}
	s.touch()

	s.timer.Stop()
	s.state = StateAwaitingQuestion
	s.emit(EventPassUsed, PassUsedPayload{PassesRemaining: s.lifelines.PassesRemaining})

	if err := s.loadQuestion(ctx, s.currentRung); err != nil {
		s.abort(err)
		return err
	}
	return nil
}

// UseAskAudience pauses the countdown and returns what earlier players chose.
// Stats are nil when too few players have answered the question.
func (s *Session) UseAskAudience(ctx context.Context) (*models.AudienceStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireActive(); err != nil {
		return nil, err
	}
	if err := s.lifelines.UseAskAudience(); err != nil {
		return nil, err
	}
	s.touch()

	s.timer.Stop()
	s.paused = true

	stats, err := s.store.FetchAudienceStats(ctx, s.question.ID)
	if err != nil {
		log.Printf("Failed to fetch audience stats for question %s: %v", s.question.ID, err)
		stats = nil
	}

	s.emit(EventAudienceStats, AudiencePayload{Available: stats != nil, Stats: stats})
	return stats, nil
}

// ResumeAudience closes the audience prompt and restarts the countdown with
// the time it had left.
func (s *Session) ResumeAudience() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateQuestionActive || !s.paused {
		return ErrInvalidState
	}
	s.touch()

	s.paused = false
	s.timer.Resume()
	s.emit(EventAudienceClosed, AudienceClosedPayload{RemainingSec: ceilSeconds(s.timer.Remaining())})
	return nil
}

// UseSafetyNet softens the penalty of the next graded answer. The countdown
// keeps running.
func (s *Session) UseSafetyNet() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireActive(); err != nil {
		return err
	}
	if err := s.lifelines.UseSafetyNet(); err != nil {
		return err
	}
	s.touch()

	s.safetyNetActive = true
	s.emit(EventSafetyNetArmed, SafetyNetPayload{Active: true})
	return nil
}

// Abandon ends the playthrough early. The session is finalized as not
// completed unless it already reached the top rung.
func (s *Session) Abandon(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateComplete, StateAborted:
		return ErrInvalidState
	case StateInitializing:
		s.state = StateAborted
		return nil
	}

	s.timer.Stop()
	s.finalize()
	if s.completed {
		s.state = StateComplete
		return nil
	}
	s.state = StateAborted
	s.emit(EventAborted, AbortedPayload{Reason: "abandoned"})
	return nil
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		SessionID:       s.id,
		PlayerName:      s.playerName,
		State:           s.state,
		CurrentRung:     s.currentRung,
		Score:           s.score,
		TotalQuestions:  s.totalQuestions,
		CorrectAnswers:  s.correctAnswers,
		WrongAnswers:    s.wrongAnswers,
		Lifelines:       s.lifelines,
		SafetyNetActive: s.safetyNetActive,
		Paused:          s.paused,
		StartTime:       s.startTime,
		Completed:       s.completed,
	}

	if s.state == StateQuestionActive && s.question != nil {
		q := NewPublicQuestion(s.question)
		snap.Question = &q
		snap.TimeLimitSec = int(s.timeLimit / time.Second)
		snap.TimeRemainingSec = ceilSeconds(s.timer.Remaining())
	}
	if s.state == StateFeedback && s.lastFeedback != nil {
		fb := *s.lastFeedback
		snap.Feedback = &fb
	}
	if s.finalized {
		end := s.endTime
		snap.EndTime = &end
	}
	return snap
}

func (s *Session) requireActive() error {
	if s.state != StateQuestionActive {
		return ErrInvalidState
	}
	if s.paused {
		return ErrPaused
	}
	return nil
}

// loadQuestion presents a question for rung, preferring one not yet asked in
// this session and falling back to repeats once the rung is exhausted.
func (s *Session) loadQuestion(ctx context.Context, rung int) error {
	q, err := s.store.FetchQuestion(ctx, rung, s.askedOrder)
	if err != nil {
		return &QuestionLoadError{Rung: rung, Err: err}
	}
	if q == nil {
		q, err = s.store.FetchQuestion(ctx, rung, nil)
		if err != nil {
			return &QuestionLoadError{Rung: rung, Repeat: true, Err: err}
		}
		if q == nil {
			return &QuestionUnavailableError{Rung: rung}
		}
	}

	if _, seen := s.askedIDs[q.ID]; !seen {
		s.askedIDs[q.ID] = struct{}{}
		s.askedOrder = append(s.askedOrder, q.ID)
	}

	s.question = q
	s.timeLimit = TimeLimitForRung(rung)
	s.questionStart = s.clock.Now()
	s.paused = false
	s.lastFeedback = nil
	s.timer.Start(s.timeLimit)
	s.state = StateQuestionActive

	s.emit(EventQuestion, QuestionPayload{
		Question:        NewPublicQuestion(q),
		QuestionNumber:  s.totalQuestions + 1,
		CurrentRung:     s.currentRung,
		TimeLimitSec:    int(s.timeLimit / time.Second),
		PassesRemaining: s.lifelines.PassesRemaining,
		ServerTime:      s.questionStart.UnixMilli(),
	})
	return nil
}

func (s *Session) submit(selected string, isCorrect bool) Feedback {
	s.timer.Stop()
	s.state = StateGrading

	elapsed := s.clock.Now().Sub(s.questionStart)
	timeTaken := min(max(int(elapsed/time.Second), 0), int(s.timeLimit/time.Second))

	return s.grade(selected, isCorrect, timeTaken)
}

func (s *Session) grade(selected string, isCorrect bool, timeTaken int) Feedback {
	oldRung := s.currentRung

	points := 0
	if isCorrect {
		points = ScoreForRung(oldRung)
		s.correctAnswers++
	} else {
		s.wrongAnswers++
	}
	s.score += points
	s.totalQuestions++

	newRung := NextRung(oldRung, isCorrect, s.safetyNetActive)
	s.safetyNetActive = false
	s.currentRung = newRung

	record := models.AnswerRecord{
		SessionID:        s.id,
		QuestionID:       s.question.ID,
		SelectedOption:   selected,
		IsCorrect:        isCorrect,
		TimeTakenSeconds: timeTaken,
		RungAtTime:       oldRung,
		AnsweredAt:       s.clock.Now(),
	}
	store := s.store
	s.dispatch(func(ctx context.Context) {
		if err := store.RecordAnswer(ctx, record); err != nil {
			log.Printf("Failed to record answer for session %s: %v", record.SessionID, err)
		}
	})

	s.state = StateFeedback
	if newRung == constants.MaxRung {
		s.finalize()
	}

	fb := Feedback{
		QuestionID:     s.question.ID,
		SelectedOption: selected,
		IsCorrect:      isCorrect,
		CorrectAnswer:  s.question.CorrectOption,
		TeachingPoint:  s.question.TeachingPoint,
		OldRung:        oldRung,
		NewRung:        newRung,
		TimeTaken:      timeTaken,
		Points:         points,
		Score:          s.score,
		Completed:      s.completed,
	}
	s.lastFeedback = &fb
	s.emit(EventAnswerResult, fb)
	return fb
}

// finalize closes the session record. It runs at most once.
func (s *Session) finalize() {
	if s.finalized || s.id == "" {
		return
	}
	s.finalized = true
	s.endTime = s.clock.Now()
	s.completed = s.currentRung == constants.MaxRung

	sessionID := s.id
	summary := s.summary()
	store := s.store
	s.dispatch(func(ctx context.Context) {
		if err := store.FinalizeSession(ctx, sessionID, summary); err != nil {
			log.Printf("Failed to finalize session %s: %v", sessionID, err)
		}
	})
	s.emit(EventFinalized, CompletePayload{PlayerName: s.playerName, Summary: summary})
}

func (s *Session) abort(cause error) {
	s.timer.Stop()
	s.finalize()
	s.state = StateAborted
	s.emit(EventAborted, AbortedPayload{Reason: cause.Error()})
}

func (s *Session) summary() models.SessionSummary {
	end := s.endTime
	if end.IsZero() {
		end = s.clock.Now()
	}
	return models.SessionSummary{
		EndTime:          end,
		FinalRung:        s.currentRung,
		TotalQuestions:   s.totalQuestions,
		CorrectAnswers:   s.correctAnswers,
		WrongAnswers:     s.wrongAnswers,
		TotalTimeSeconds: int(end.Sub(s.startTime) / time.Second),
		FinalScore:       s.score,
		Completed:        s.completed,
	}
}

func (s *Session) onTimerExpired(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.timer.Current(gen) || s.state != StateQuestionActive || s.paused {
		return
	}
	s.emit(EventTimeExpired, TimeExpiredPayload{QuestionID: s.question.ID})
	s.submit(constants.TimeoutMarker, false)
}

func (s *Session) onTimerTick(gen uint64, remainingSec int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.timer.Current(gen) || s.state != StateQuestionActive {
		return
	}
	s.emit(EventTick, TickPayload{RemainingSec: remainingSec})
}

func (s *Session) emit(eventType EventType, payload any) {
	if s.listener == nil {
		return
	}
	s.listener(Event{SessionID: s.id, Type: eventType, Payload: payload})
}

func (s *Session) touch() {
	s.lastActivity = s.clock.Now()
}

func ceilSeconds(d time.Duration) int {
	return int((d + time.Second - 1) / time.Second)
}
