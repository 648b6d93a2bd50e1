package game

import "github.com/bpadilla17/radladder-game/internal/constants"

// Lifelines tracks the limited-use aids of one playthrough. Ask-audience and
// safety-net flip to used exactly once; passes only count down.
type Lifelines struct {
	PassesRemaining int  `json:"passes_remaining"`
	AskAudienceUsed bool `json:"ask_audience_used"`
	SafetyNetUsed   bool `json:"safety_net_used"`
}

func NewLifelines() Lifelines {
	return Lifelines{PassesRemaining: constants.StartingPasses}
}

func (l *Lifelines) UsePass() error {
	if l.PassesRemaining <= 0 {
		return ErrNoPassesRemaining
	}
	l.PassesRemaining--
	return nil
}

func (l *Lifelines) UseAskAudience() error {
	if l.AskAudienceUsed {
		return ErrLifelineUsed
	}
	l.AskAudienceUsed = true
	return nil
}

func (l *Lifelines) UseSafetyNet() error {
	if l.SafetyNetUsed {
		return ErrLifelineUsed
	}
	l.SafetyNetUsed = true
	return nil
}
