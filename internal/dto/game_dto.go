package dto

import (
	"github.com/bpadilla17/radladder-game/internal/game"
	"github.com/bpadilla17/radladder-game/internal/models"
)

type StartGameRequest struct {
	PlayerName string `json:"player_name" binding:"required"`
}

type StartGameResponse struct {
	Token   string        `json:"token"`
	Session game.Snapshot `json:"session"`
}

type AnswerRequest struct {
	Option string `json:"option" binding:"required"`
}

type AudienceResponse struct {
	Available bool                  `json:"available"`
	Stats     *models.AudienceStats `json:"stats,omitempty"`
}

type LeaderboardResponse struct {
	Scope   string                    `json:"scope"`
	Entries []models.LeaderboardEntry `json:"entries"`
}
