package repository

import "errors"

var (
	ErrQuestionNotFound = errors.New("question not found")
	ErrSessionNotFound  = errors.New("game session not found")
	ErrInvalidQuestion  = errors.New("invalid question")
	ErrInvalidScope     = errors.New("invalid leaderboard scope")
)
