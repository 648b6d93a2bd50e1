package game

import (
	"time"

	"github.com/bpadilla17/radladder-game/internal/constants"
)

// ScoreForRung returns the points awarded for a correct answer given at rung r.
func ScoreForRung(r int) int {
	switch {
	case r <= 3:
		return 10
	case r <= 6:
		return 25
	case r <= 8:
		return 50
	default:
		return 100
	}
}

// NextRung computes the rung after grading. A correct answer climbs one rung,
// an incorrect one drops two, or one while the safety net is active. The
// result is clamped to the ladder.
func NextRung(r int, correct, safetyNetActive bool) int {
	if correct {
		return min(r+1, constants.MaxRung)
	}
	drop := 2
	if safetyNetActive {
		drop = 1
	}
	return max(r-drop, constants.MinRung)
}

func TimeLimitForRung(r int) time.Duration {
	switch {
	case r <= 3:
		return 30 * time.Second
	case r <= 6:
		return 25 * time.Second
	default:
		return 20 * time.Second
	}
}
