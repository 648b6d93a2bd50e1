package game

import (
	"testing"
	"time"
)

func TestNextRungCorrect(t *testing.T) {
	for r := 1; r <= 10; r++ {
		for _, safetyNet := range []bool{false, true} {
			want := min(r+1, 10)
			if got := NextRung(r, true, safetyNet); got != want {
				t.Errorf("NextRung(%d, true, %v) = %d, want %d", r, safetyNet, got, want)
			}
		}
	}
}

func TestNextRungIncorrect(t *testing.T) {
	for r := 1; r <= 10; r++ {
		if got, want := NextRung(r, false, false), max(r-2, 1); got != want {
			t.Errorf("NextRung(%d, false, false) = %d, want %d", r, got, want)
		}
		if got, want := NextRung(r, false, true), max(r-1, 1); got != want {
			t.Errorf("NextRung(%d, false, true) = %d, want %d", r, got, want)
		}
	}
}

func TestScoreForRung(t *testing.T) {
	testCases := []struct {
		rung int
		want int
	}{
		{1, 10}, {2, 10}, {3, 10},
		{4, 25}, {5, 25}, {6, 25},
		{7, 50}, {8, 50},
		{9, 100}, {10, 100},
	}

	for _, tc := range testCases {
		if got := ScoreForRung(tc.rung); got != tc.want {
			t.Errorf("ScoreForRung(%d) = %d, want %d", tc.rung, got, tc.want)
		}
	}
}

func TestTimeLimitForRung(t *testing.T) {
	testCases := []struct {
		rung int
		want time.Duration
	}{
		{1, 30 * time.Second}, {3, 30 * time.Second},
		{4, 25 * time.Second}, {6, 25 * time.Second},
		{7, 20 * time.Second}, {10, 20 * time.Second},
	}

	for _, tc := range testCases {
		if got := TimeLimitForRung(tc.rung); got != tc.want {
			t.Errorf("TimeLimitForRung(%d) = %v, want %v", tc.rung, got, tc.want)
		}
	}
}
