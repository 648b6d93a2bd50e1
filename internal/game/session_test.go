package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bpadilla17/radladder-game/internal/game/gametest"
	"github.com/bpadilla17/radladder-game/internal/models"
)

type harness struct {
	store   *gametest.Store
	clock   *gametest.Clock
	session *Session
	events  []Event
}

func newHarness(t *testing.T, store *gametest.Store) *harness {
	t.Helper()
	h := &harness{
		store: store,
		clock: gametest.NewClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)),
	}
	h.session = NewSession("Dr. Grey", store, Options{
		Clock:    h.clock,
		Dispatch: gametest.SyncDispatch,
		Listener: func(ev Event) { h.events = append(h.events, ev) },
	})
	return h
}

func startedHarness(t *testing.T) *harness {
	t.Helper()
	h := newHarness(t, gametest.NewStore(3))
	if err := h.session.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	return h
}

func (h *harness) count(eventType EventType) int {
	n := 0
	for _, ev := range h.events {
		if ev.Type == eventType {
			n++
		}
	}
	return n
}

func (h *harness) answer(t *testing.T, correct bool) Feedback {
	t.Helper()
	option := "B"
	if correct {
		option = "A"
	}
	fb, err := h.session.SubmitAnswer(context.Background(), option)
	if err != nil {
		t.Fatalf("SubmitAnswer failed: %v", err)
	}
	return fb
}

func (h *harness) next(t *testing.T) {
	t.Helper()
	if err := h.session.Next(context.Background()); err != nil {
		t.Fatalf("Next failed: %v", err)
	}
}

func TestStartPresentsFirstQuestionAtRungThree(t *testing.T) {
	h := startedHarness(t)
	snap := h.session.Snapshot()

	if snap.State != StateQuestionActive {
		t.Fatalf("Expected state %s, got %s", StateQuestionActive, snap.State)
	}
	if snap.CurrentRung != 3 {
		t.Errorf("Expected rung 3, got %d", snap.CurrentRung)
	}
	if snap.Lifelines.PassesRemaining != 2 {
		t.Errorf("Expected 2 passes, got %d", snap.Lifelines.PassesRemaining)
	}
	if snap.Question == nil || snap.Question.Rung != 3 {
		t.Fatalf("Expected a rung 3 question, got %+v", snap.Question)
	}
	if snap.TimeLimitSec != 30 || snap.TimeRemainingSec != 30 {
		t.Errorf("Expected 30s limit and remaining, got %d/%d", snap.TimeLimitSec, snap.TimeRemainingSec)
	}
	if snap.SessionID != "session-1" {
		t.Errorf("Expected session id from store, got %q", snap.SessionID)
	}
	if h.count(EventQuestion) != 1 {
		t.Errorf("Expected one question event, got %d", h.count(EventQuestion))
	}
	if calls := h.store.FetchCalls; len(calls) != 1 || len(calls[0].ExcludeIDs) != 0 {
		t.Errorf("Expected a single fetch without exclusions, got %+v", calls)
	}
}

func TestStartFailsWhenSessionCannotBeCreated(t *testing.T) {
	store := gametest.NewStore(1)
	store.CreateErr = errors.New("connection refused")
	h := newHarness(t, store)

	err := h.session.Start(context.Background())

	var initErr *SessionInitError
	if !errors.As(err, &initErr) {
		t.Fatalf("Expected SessionInitError, got %v", err)
	}
	if !IsFatal(err) {
		t.Error("Expected init error to be fatal")
	}
	if h.session.State() != StateAborted {
		t.Errorf("Expected aborted state, got %s", h.session.State())
	}
	if store.FinalizeCalls != 0 {
		t.Errorf("Expected no finalize without a record, got %d", store.FinalizeCalls)
	}
}

func TestStartFailsWhenFirstRungIsEmpty(t *testing.T) {
	store := gametest.NewStore(1)
	delete(store.Questions, 3)
	h := newHarness(t, store)

	err := h.session.Start(context.Background())

	var unavailable *QuestionUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("Expected QuestionUnavailableError inside init error, got %v", err)
	}
	if unavailable.Rung != 3 {
		t.Errorf("Expected rung 3, got %d", unavailable.Rung)
	}
	if h.session.State() != StateAborted {
		t.Errorf("Expected aborted state, got %s", h.session.State())
	}
	summary, ok := store.Summary("session-1")
	if !ok || summary.Completed || summary.FinalRung != 3 || summary.EndTime.IsZero() {
		t.Errorf("Expected the created record to be closed, got %+v (found=%v)", summary, ok)
	}
	if store.FinalizeCalls != 1 {
		t.Errorf("Expected one finalize call, got %d", store.FinalizeCalls)
	}
}

func TestSevenCorrectAnswersCompleteTheLadder(t *testing.T) {
	h := startedHarness(t)

	var fb Feedback
	for i := 0; i < 7; i++ {
		fb = h.answer(t, true)
		if i < 6 {
			h.next(t)
		}
	}

	if fb.NewRung != 10 || !fb.Completed {
		t.Fatalf("Expected completion at rung 10, got %+v", fb)
	}

	summary, ok := h.store.Summary("session-1")
	if !ok {
		t.Fatal("Expected session to be finalized on reaching rung 10")
	}
	if !summary.Completed || summary.FinalRung != 10 {
		t.Errorf("Expected completed summary at rung 10, got %+v", summary)
	}
	if summary.TotalQuestions != 7 || summary.CorrectAnswers != 7 || summary.WrongAnswers != 0 {
		t.Errorf("Unexpected counters: %+v", summary)
	}
	// 10 + 25*3 + 50*2 + 100
	if summary.FinalScore != 285 {
		t.Errorf("Expected final score 285, got %d", summary.FinalScore)
	}

	h.next(t)
	if h.session.State() != StateComplete {
		t.Errorf("Expected complete state, got %s", h.session.State())
	}
	if h.count(EventGameComplete) != 1 {
		t.Errorf("Expected one game_complete event, got %d", h.count(EventGameComplete))
	}
	if h.store.FinalizeCalls != 1 {
		t.Errorf("Expected a single finalize call, got %d", h.store.FinalizeCalls)
	}
	if err := h.session.Next(context.Background()); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState after completion, got %v", err)
	}
}

func TestIncorrectAnswerAtBottomStaysOnRungOne(t *testing.T) {
	h := startedHarness(t)

	fb := h.answer(t, false)
	if fb.NewRung != 1 {
		t.Fatalf("Expected drop from 3 to 1, got %d", fb.NewRung)
	}
	h.next(t)

	fb = h.answer(t, false)
	if fb.OldRung != 1 || fb.NewRung != 1 {
		t.Errorf("Expected to stay on rung 1, got %d -> %d", fb.OldRung, fb.NewRung)
	}
	if fb.Points != 0 {
		t.Errorf("Expected no points for a wrong answer, got %d", fb.Points)
	}
}

func TestSafetyNetHalvesPenaltyOnce(t *testing.T) {
	h := startedHarness(t)

	h.answer(t, true) // 3 -> 4
	h.next(t)

	if err := h.session.UseSafetyNet(); err != nil {
		t.Fatalf("UseSafetyNet failed: %v", err)
	}
	if !h.session.Snapshot().SafetyNetActive {
		t.Fatal("Expected safety net to be active")
	}

	fb := h.answer(t, false)
	if fb.NewRung != 3 {
		t.Errorf("Expected safety net drop from 4 to 3, got %d", fb.NewRung)
	}
	if h.session.Snapshot().SafetyNetActive {
		t.Error("Expected safety net to clear after grading")
	}

	h.next(t)
	if err := h.session.UseSafetyNet(); !errors.Is(err, ErrLifelineUsed) {
		t.Errorf("Expected ErrLifelineUsed, got %v", err)
	}
	fb = h.answer(t, false)
	if fb.NewRung != 1 {
		t.Errorf("Expected full drop from 3 to 1, got %d", fb.NewRung)
	}
}

func TestSafetyNetClearsAfterCorrectAnswer(t *testing.T) {
	h := startedHarness(t)

	if err := h.session.UseSafetyNet(); err != nil {
		t.Fatalf("UseSafetyNet failed: %v", err)
	}
	h.answer(t, true)

	if h.session.Snapshot().SafetyNetActive {
		t.Error("Expected safety net to clear after a correct answer")
	}
}

func TestPassLimit(t *testing.T) {
	h := startedHarness(t)
	first := h.session.Snapshot().Question.ID

	for i := 0; i < 2; i++ {
		if err := h.session.UsePass(context.Background()); err != nil {
			t.Fatalf("pass %d failed: %v", i+1, err)
		}
	}
	err := h.session.UsePass(context.Background())
	if !errors.Is(err, ErrNoPassesRemaining) {
		t.Fatalf("Expected ErrNoPassesRemaining, got %v", err)
	}

	snap := h.session.Snapshot()
	if snap.Lifelines.PassesRemaining != 0 {
		t.Errorf("Expected 0 passes, got %d", snap.Lifelines.PassesRemaining)
	}
	if snap.TotalQuestions != 0 {
		t.Errorf("Expected passes not to count as questions, got %d", snap.TotalQuestions)
	}
	if snap.CurrentRung != 3 {
		t.Errorf("Expected rung unchanged at 3, got %d", snap.CurrentRung)
	}
	if snap.State != StateQuestionActive {
		t.Errorf("Expected question still active, got %s", snap.State)
	}
	if snap.Question.ID == first {
		t.Error("Expected pass to replace the question")
	}
	if len(h.store.AnswerRecords()) != 0 {
		t.Error("Expected no answer records for passes")
	}
	if h.count(EventPassUsed) != 2 {
		t.Errorf("Expected 2 pass events, got %d", h.count(EventPassUsed))
	}
}

func TestLoadQuestionFallsBackToRepeats(t *testing.T) {
	store := gametest.NewStore(1)
	h := newHarness(t, store)
	if err := h.session.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if err := h.session.UsePass(context.Background()); err != nil {
		t.Fatalf("UsePass failed: %v", err)
	}

	calls := store.FetchCalls
	if len(calls) != 3 {
		t.Fatalf("Expected 3 fetches (first, excluded, repeat), got %d", len(calls))
	}
	if len(calls[1].ExcludeIDs) != 1 || calls[1].ExcludeIDs[0] != "r3-q1" {
		t.Errorf("Expected second fetch to exclude r3-q1, got %v", calls[1].ExcludeIDs)
	}
	if calls[2].ExcludeIDs != nil {
		t.Errorf("Expected repeat fetch without exclusions, got %v", calls[2].ExcludeIDs)
	}
	if got := h.session.Snapshot().Question.ID; got != "r3-q1" {
		t.Errorf("Expected repeated question r3-q1, got %s", got)
	}
}

func TestLoadQuestionNeverRepeatsWhilePoolLasts(t *testing.T) {
	h := startedHarness(t)
	seen := map[string]bool{h.session.Snapshot().Question.ID: true}

	for i := 0; i < 2; i++ {
		if err := h.session.UsePass(context.Background()); err != nil {
			t.Fatalf("UsePass failed: %v", err)
		}
		id := h.session.Snapshot().Question.ID
		if seen[id] {
			t.Fatalf("Question %s repeated before rung pool was exhausted", id)
		}
		seen[id] = true
	}
}

func TestAskAudienceOnce(t *testing.T) {
	h := startedHarness(t)
	qid := h.session.Snapshot().Question.ID
	h.store.Audience[qid] = &models.AudienceStats{
		Percentages:      map[string]int{"A": 60, "B": 20, "C": 10, "D": 10},
		TotalRespondents: 25,
	}

	stats, err := h.session.UseAskAudience(context.Background())
	if err != nil {
		t.Fatalf("UseAskAudience failed: %v", err)
	}
	if stats == nil || stats.TotalRespondents != 25 {
		t.Fatalf("Unexpected stats: %+v", stats)
	}
	if err := h.session.ResumeAudience(); err != nil {
		t.Fatalf("ResumeAudience failed: %v", err)
	}

	if _, err := h.session.UseAskAudience(context.Background()); !errors.Is(err, ErrLifelineUsed) {
		t.Errorf("Expected ErrLifelineUsed, got %v", err)
	}
	if !h.session.Snapshot().Lifelines.AskAudienceUsed {
		t.Error("Expected ask audience to remain used")
	}
}

func TestAskAudiencePausesAndPreservesTime(t *testing.T) {
	h := startedHarness(t)

	h.clock.Advance(10 * time.Second)
	stats, err := h.session.UseAskAudience(context.Background())
	if err != nil {
		t.Fatalf("UseAskAudience failed: %v", err)
	}
	if stats != nil {
		t.Errorf("Expected no stats for an unanswered question, got %+v", stats)
	}

	if _, err := h.session.SubmitAnswer(context.Background(), "A"); !errors.Is(err, ErrPaused) {
		t.Errorf("Expected ErrPaused while audience prompt is open, got %v", err)
	}

	h.clock.Advance(2 * time.Minute)
	if h.session.State() != StateQuestionActive {
		t.Fatalf("Expected paused question to stay active, got %s", h.session.State())
	}

	if err := h.session.ResumeAudience(); err != nil {
		t.Fatalf("ResumeAudience failed: %v", err)
	}
	if got := h.session.Snapshot().TimeRemainingSec; got != 20 {
		t.Errorf("Expected 20s remaining after resume, got %d", got)
	}

	h.clock.Advance(19 * time.Second)
	if h.session.State() != StateQuestionActive {
		t.Fatal("Timed out before the preserved time ran out")
	}
	h.clock.Advance(time.Second)
	if h.session.State() != StateFeedback {
		t.Errorf("Expected timeout after preserved time, got %s", h.session.State())
	}
}

func TestAskAudienceToleratesStatsFailure(t *testing.T) {
	h := startedHarness(t)
	h.store.AudienceErr = errors.New("timeout")

	stats, err := h.session.UseAskAudience(context.Background())
	if err != nil {
		t.Fatalf("Expected stats failure to be recoverable, got %v", err)
	}
	if stats != nil {
		t.Errorf("Expected nil stats, got %+v", stats)
	}
	if !h.session.Snapshot().Paused {
		t.Error("Expected session to be paused")
	}
}

func TestTimeoutGradesAsIncorrect(t *testing.T) {
	h := startedHarness(t)

	h.clock.Advance(30 * time.Second)

	snap := h.session.Snapshot()
	if snap.State != StateFeedback {
		t.Fatalf("Expected feedback after timeout, got %s", snap.State)
	}
	if snap.CurrentRung != 1 {
		t.Errorf("Expected standard drop to rung 1, got %d", snap.CurrentRung)
	}
	if snap.Feedback == nil || snap.Feedback.IsCorrect || snap.Feedback.TimeTaken != 30 {
		t.Errorf("Unexpected feedback: %+v", snap.Feedback)
	}

	records := h.store.AnswerRecords()
	if len(records) != 1 {
		t.Fatalf("Expected one answer record, got %d", len(records))
	}
	rec := records[0]
	if rec.SelectedOption != "T" || rec.IsCorrect || rec.RungAtTime != 3 {
		t.Errorf("Unexpected timeout record: %+v", rec)
	}
	if h.count(EventTimeExpired) != 1 {
		t.Errorf("Expected one time_expired event, got %d", h.count(EventTimeExpired))
	}
	if h.count(EventTick) != 29 {
		t.Errorf("Expected 29 ticks, got %d", h.count(EventTick))
	}
}

func TestSubmitBeatsTimerExpiry(t *testing.T) {
	h := startedHarness(t)

	h.clock.Advance(29*time.Second + 900*time.Millisecond)
	fb := h.answer(t, true)
	h.clock.Advance(time.Minute)

	if fb.TimeTaken != 29 {
		t.Errorf("Expected 29s taken, got %d", fb.TimeTaken)
	}
	if got := h.session.Snapshot().TotalQuestions; got != 1 {
		t.Errorf("Expected a single graded answer, got %d", got)
	}
	if h.count(EventTimeExpired) != 0 {
		t.Error("Expected no expiry after a manual submit")
	}
	if h.clock.Pending() != 0 {
		t.Errorf("Expected timer callbacks to be cancelled, got %d pending", h.clock.Pending())
	}
}

func TestSubmitRejectedOutsideActiveQuestion(t *testing.T) {
	h := startedHarness(t)
	h.answer(t, true)
	before := h.session.Snapshot()

	if _, err := h.session.SubmitAnswer(context.Background(), "A"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState, got %v", err)
	}
	if _, err := h.session.SubmitTimeout(context.Background()); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState, got %v", err)
	}
	if err := h.session.UsePass(context.Background()); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState, got %v", err)
	}
	if err := h.session.UseSafetyNet(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState, got %v", err)
	}

	after := h.session.Snapshot()
	if after.Score != before.Score || after.TotalQuestions != before.TotalQuestions || after.CurrentRung != before.CurrentRung {
		t.Errorf("Rejected actions changed state: %+v -> %+v", before, after)
	}
	if after.Lifelines != before.Lifelines {
		t.Errorf("Rejected actions consumed lifelines: %+v -> %+v", before.Lifelines, after.Lifelines)
	}
}

func TestSubmitRejectsUnknownOption(t *testing.T) {
	h := startedHarness(t)

	if _, err := h.session.SubmitAnswer(context.Background(), "E"); !errors.Is(err, ErrInvalidOption) {
		t.Errorf("Expected ErrInvalidOption, got %v", err)
	}
	if h.session.State() != StateQuestionActive {
		t.Errorf("Expected question to stay active, got %s", h.session.State())
	}
}

func TestTimeTakenIsFlooredSeconds(t *testing.T) {
	h := startedHarness(t)

	h.clock.Advance(12*time.Second + 700*time.Millisecond)
	fb := h.answer(t, true)

	if fb.TimeTaken != 12 {
		t.Errorf("Expected 12s, got %d", fb.TimeTaken)
	}
	if rec := h.store.AnswerRecords()[0]; rec.TimeTakenSeconds != 12 || rec.SelectedOption != "A" || !rec.IsCorrect {
		t.Errorf("Unexpected record: %+v", rec)
	}
}

func TestRecordFailureDoesNotBlockGameplay(t *testing.T) {
	h := startedHarness(t)
	h.store.RecordErr = errors.New("insert failed")

	fb := h.answer(t, true)
	if fb.NewRung != 4 {
		t.Errorf("Expected climb to rung 4, got %d", fb.NewRung)
	}
	h.next(t)
	if h.session.State() != StateQuestionActive {
		t.Errorf("Expected next question despite record failure, got %s", h.session.State())
	}
}

func TestNextAbortsWhenRungHasNoQuestions(t *testing.T) {
	store := gametest.NewStore(2)
	delete(store.Questions, 1)
	h := newHarness(t, store)
	if err := h.session.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	h.answer(t, false) // 3 -> 1
	err := h.session.Next(context.Background())

	var unavailable *QuestionUnavailableError
	if !errors.As(err, &unavailable) || unavailable.Rung != 1 {
		t.Fatalf("Expected QuestionUnavailableError for rung 1, got %v", err)
	}
	if h.session.State() != StateAborted {
		t.Errorf("Expected aborted state, got %s", h.session.State())
	}
	summary, ok := store.Summary("session-1")
	if !ok || summary.Completed {
		t.Errorf("Expected a not-completed summary, got %+v (found=%v)", summary, ok)
	}
	if h.count(EventAborted) != 1 {
		t.Errorf("Expected one aborted event, got %d", h.count(EventAborted))
	}
}

func TestStoreFailureMidGameIsFatal(t *testing.T) {
	tests := []struct {
		name string
		move func(t *testing.T, h *harness) error
	}{
		{"next", func(t *testing.T, h *harness) error {
			h.answer(t, true)
			return h.session.Next(context.Background())
		}},
		{"pass", func(t *testing.T, h *harness) error {
			return h.session.UsePass(context.Background())
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := startedHarness(t)
			cause := errors.New("connection reset")
			h.store.FetchErr = cause

			err := tt.move(t, h)

			var loadErr *QuestionLoadError
			if !errors.As(err, &loadErr) {
				t.Fatalf("Expected QuestionLoadError, got %v", err)
			}
			if !IsFatal(err) || !errors.Is(err, cause) {
				t.Errorf("Expected a fatal error wrapping the cause, got %v", err)
			}
			if h.session.State() != StateAborted {
				t.Errorf("Expected aborted state, got %s", h.session.State())
			}
			if _, ok := h.store.Summary("session-1"); !ok {
				t.Error("Expected the session to be finalized")
			}
			if h.count(EventAborted) != 1 {
				t.Errorf("Expected one aborted event, got %d", h.count(EventAborted))
			}
		})
	}
}

func TestAbandonFinalizesOnce(t *testing.T) {
	h := startedHarness(t)
	h.answer(t, true)
	h.next(t)

	h.clock.Advance(5 * time.Second)
	if err := h.session.Abandon(context.Background()); err != nil {
		t.Fatalf("Abandon failed: %v", err)
	}

	summary, ok := h.store.Summary("session-1")
	if !ok {
		t.Fatal("Expected abandon to finalize the session")
	}
	if summary.Completed || summary.FinalRung != 4 || summary.FinalScore != 10 || summary.TotalTimeSeconds != 5 {
		t.Errorf("Unexpected summary: %+v", summary)
	}
	if h.session.State() != StateAborted {
		t.Errorf("Expected aborted state, got %s", h.session.State())
	}
	if err := h.session.Abandon(context.Background()); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Expected second abandon to be rejected, got %v", err)
	}
	if h.store.FinalizeCalls != 1 || h.count(EventFinalized) != 1 {
		t.Errorf("Expected one finalize call and event, got %d/%d", h.store.FinalizeCalls, h.count(EventFinalized))
	}
	if h.clock.Pending() != 0 {
		t.Errorf("Expected timer to be stopped, got %d pending", h.clock.Pending())
	}
}
