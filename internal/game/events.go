package game

import (
	"time"

	"github.com/bpadilla17/radladder-game/internal/models"
)

type EventType string

const (
	EventQuestion       EventType = "question"
	EventTick           EventType = "tick"
	EventTimeExpired    EventType = "time_expired"
	EventAnswerResult   EventType = "answer_result"
	EventPassUsed       EventType = "pass_used"
	EventAudienceStats  EventType = "audience_stats"
	EventAudienceClosed EventType = "audience_closed"
	EventSafetyNetArmed EventType = "safety_net_armed"
	EventGameComplete   EventType = "game_complete"
	EventAborted        EventType = "aborted"
	// EventFinalized is emitted once, when the session summary is persisted.
	EventFinalized EventType = "finalized"
)

// Event is emitted to the presentation layer on every lifecycle step.
type Event struct {
	SessionID string
	Type      EventType
	Payload   any
}

// Listener receives events while the session lock is held. It must not call
// back into the session.
type Listener func(Event)

// PublicQuestion is a question as shown to the player, without the answer.
type PublicQuestion struct {
	ID        string          `json:"id"`
	Rung      int             `json:"rung"`
	Scenario  string          `json:"scenario"`
	Options   []models.Option `json:"options"`
	ImageRefs []string        `json:"image_refs,omitempty"`
}

func NewPublicQuestion(q *models.Question) PublicQuestion {
	return PublicQuestion{
		ID:        q.ID,
		Rung:      q.Rung,
		Scenario:  q.Scenario,
		Options:   q.Options,
		ImageRefs: q.ImageRefs,
	}
}

type QuestionPayload struct {
	Question        PublicQuestion `json:"question"`
	QuestionNumber  int            `json:"question_number"`
	CurrentRung     int            `json:"current_rung"`
	TimeLimitSec    int            `json:"time_limit_sec"`
	PassesRemaining int            `json:"passes_remaining"`
	ServerTime      int64          `json:"server_time"`
}

type TickPayload struct {
	RemainingSec int `json:"remaining_sec"`
}

type TimeExpiredPayload struct {
	QuestionID string `json:"question_id"`
}

// Feedback is the result of grading one answer.
type Feedback struct {
	QuestionID     string `json:"question_id"`
	SelectedOption string `json:"selected_option"`
	IsCorrect      bool   `json:"is_correct"`
	CorrectAnswer  string `json:"correct_answer"`
	TeachingPoint  string `json:"teaching_point"`
	OldRung        int    `json:"old_rung"`
	NewRung        int    `json:"new_rung"`
	TimeTaken      int    `json:"time_taken"`
	Points         int    `json:"points"`
	Score          int    `json:"score"`
	Completed      bool   `json:"completed"`
}

type PassUsedPayload struct {
	PassesRemaining int `json:"passes_remaining"`
}

type AudiencePayload struct {
	Available bool                  `json:"available"`
	Stats     *models.AudienceStats `json:"stats,omitempty"`
}

type AudienceClosedPayload struct {
	RemainingSec int `json:"remaining_sec"`
}

type SafetyNetPayload struct {
	Active bool `json:"active"`
}

type CompletePayload struct {
	PlayerName string                `json:"player_name"`
	Summary    models.SessionSummary `json:"summary"`
}

type AbortedPayload struct {
	Reason string `json:"reason"`
}

// Snapshot is a read-only copy of the session's public state.
type Snapshot struct {
	SessionID        string          `json:"session_id"`
	PlayerName       string          `json:"player_name"`
	State            State           `json:"state"`
	CurrentRung      int             `json:"current_rung"`
	Score            int             `json:"score"`
	TotalQuestions   int             `json:"total_questions"`
	CorrectAnswers   int             `json:"correct_answers"`
	WrongAnswers     int             `json:"wrong_answers"`
	Lifelines        Lifelines       `json:"lifelines"`
	SafetyNetActive  bool            `json:"safety_net_active"`
	Paused           bool            `json:"paused"`
	Question         *PublicQuestion `json:"question,omitempty"`
	TimeLimitSec     int             `json:"time_limit_sec,omitempty"`
	TimeRemainingSec int             `json:"time_remaining_sec,omitempty"`
	Feedback         *Feedback       `json:"feedback,omitempty"`
	StartTime        time.Time       `json:"start_time"`
	EndTime          *time.Time      `json:"end_time,omitempty"`
	Completed        bool            `json:"completed"`
}
