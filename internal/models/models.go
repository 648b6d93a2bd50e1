package models

import (
	"time"
)

type GameSession struct {
	ID         string    `json:"id"`
	PlayerName string    `json:"player_name"`
	StartTime  time.Time `json:"start_time"`
}

type Option struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Question is immutable once fetched from the bank.
type Question struct {
	ID            string   `json:"id"`
	Rung          int      `json:"rung"`
	Scenario      string   `json:"scenario"`
	Options       []Option `json:"options"`
	CorrectOption string   `json:"correct_option"`
	TeachingPoint string   `json:"teaching_point"`
	ImageRefs     []string `json:"image_refs,omitempty"`
}

func (q *Question) HasOption(label string) bool {
	for _, o := range q.Options {
		if o.Label == label {
			return true
		}
	}
	return false
}

type AnswerRecord struct {
	SessionID        string    `json:"session_id"`
	QuestionID       string    `json:"question_id"`
	SelectedOption   string    `json:"selected_option"`
	IsCorrect        bool      `json:"is_correct"`
	TimeTakenSeconds int       `json:"time_taken_seconds"`
	RungAtTime       int       `json:"rung_at_time"`
	AnsweredAt       time.Time `json:"answered_at"`
}

type AudienceStats struct {
	Percentages      map[string]int `json:"percentages"`
	TotalRespondents int            `json:"total_respondents"`
}

type SessionSummary struct {
	EndTime          time.Time `json:"end_time"`
	FinalRung        int       `json:"final_rung"`
	TotalQuestions   int       `json:"total_questions"`
	CorrectAnswers   int       `json:"correct_answers"`
	WrongAnswers     int       `json:"wrong_answers"`
	TotalTimeSeconds int       `json:"total_time_seconds"`
	FinalScore       int       `json:"final_score"`
	Completed        bool      `json:"completed"`
}

type LeaderboardEntry struct {
	Rank             int    `json:"rank"`
	PlayerName       string `json:"player_name"`
	TotalTimeSeconds int    `json:"total_time_seconds"`
	CorrectAnswers   int    `json:"correct_answers"`
	TotalQuestions   int    `json:"total_questions"`
}
