package service

import "errors"

var (
	ErrSessionNotFound   = errors.New("game session not found")
	ErrInvalidPlayerName = errors.New("player name must be 1 to 50 characters")
)
