package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/bpadilla17/radladder-game/internal/constants"
	"github.com/bpadilla17/radladder-game/internal/dto"
	"github.com/bpadilla17/radladder-game/internal/models"
	"github.com/bpadilla17/radladder-game/internal/repository"

	"github.com/gin-gonic/gin"
)

type LeaderboardSource interface {
	FetchLeaderboard(ctx context.Context, scope string) ([]models.LeaderboardEntry, error)
}

type LeaderboardHandler struct {
	source LeaderboardSource
}

func NewLeaderboardHandler(source LeaderboardSource) *LeaderboardHandler {
	return &LeaderboardHandler{
		source: source,
	}
}

func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	scope := c.DefaultQuery("scope", constants.LeaderboardScopeAll)

	entries, err := h.source.FetchLeaderboard(c.Request.Context(), scope)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidScope) {
			dto.JsonError(c, http.StatusBadRequest, "scope must be all or week")
			return
		}
		log.Printf("Failed to fetch leaderboard: %v", err)
		dto.JsonError(c, http.StatusInternalServerError, "Failed to fetch leaderboard")
		return
	}

	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}
	c.JSON(http.StatusOK, dto.LeaderboardResponse{
		Scope:   scope,
		Entries: entries,
	})
}
