package service

import "time"

// AnswerRecordedMessage is published for every graded answer.
type AnswerRecordedMessage struct {
	SessionID      string    `json:"session_id"`
	QuestionID     string    `json:"question_id"`
	SelectedOption string    `json:"selected_option"`
	IsCorrect      bool      `json:"is_correct"`
	OldRung        int       `json:"old_rung"`
	NewRung        int       `json:"new_rung"`
	TimeTaken      int       `json:"time_taken"`
	Points         int       `json:"points"`
	Score          int       `json:"score"`
	Timestamp      time.Time `json:"timestamp"`
}

// SessionFinishedMessage is published once per session when it is finalized.
type SessionFinishedMessage struct {
	SessionID        string    `json:"session_id"`
	PlayerName       string    `json:"player_name"`
	Completed        bool      `json:"completed"`
	FinalRung        int       `json:"final_rung"`
	FinalScore       int       `json:"final_score"`
	TotalQuestions   int       `json:"total_questions"`
	CorrectAnswers   int       `json:"correct_answers"`
	TotalTimeSeconds int       `json:"total_time_seconds"`
	EndTime          time.Time `json:"end_time"`
}
