package game

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidState      = errors.New("action not allowed in current game state")
	ErrPaused            = errors.New("game is paused")
	ErrInvalidOption     = errors.New("unknown answer option")
	ErrNoPassesRemaining = errors.New("no passes remaining")
	ErrLifelineUsed      = errors.New("lifeline already used")
)

// SessionInitError reports a failure to create the session record or to load
// its first question. The session cannot be played.
type SessionInitError struct {
	Stage string
	Err   error
}

func (e *SessionInitError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Stage, e.Err)
}

func (e *SessionInitError) Unwrap() error {
	return e.Err
}

// QuestionUnavailableError means the rung has no questions at all, even with
// repeats allowed.
type QuestionUnavailableError struct {
	Rung int
}

func (e *QuestionUnavailableError) Error() string {
	return fmt.Sprintf("no questions available for rung %d", e.Rung)
}

// QuestionLoadError wraps a question store failure while moving to a new
// question. The session is aborted when it happens.
type QuestionLoadError struct {
	Rung   int
	Repeat bool
	Err    error
}

func (e *QuestionLoadError) Error() string {
	if e.Repeat {
		return fmt.Sprintf("failed to fetch repeat question for rung %d: %v", e.Rung, e.Err)
	}
	return fmt.Sprintf("failed to fetch question for rung %d: %v", e.Rung, e.Err)
}

func (e *QuestionLoadError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err ends the session.
func IsFatal(err error) bool {
	var initErr *SessionInitError
	var unavailable *QuestionUnavailableError
	var loadErr *QuestionLoadError
	return errors.As(err, &initErr) || errors.As(err, &unavailable) || errors.As(err, &loadErr)
}
