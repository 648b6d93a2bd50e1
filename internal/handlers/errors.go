package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/bpadilla17/radladder-game/internal/dto"
	"github.com/bpadilla17/radladder-game/internal/service"
	ws "github.com/bpadilla17/radladder-game/internal/websocket"

	"github.com/gin-gonic/gin"
)

var codeStatus = map[string]int{
	"not_found":           http.StatusNotFound,
	"invalid_option":      http.StatusBadRequest,
	"invalid_state":       http.StatusConflict,
	"paused":              http.StatusConflict,
	"no_passes_remaining": http.StatusConflict,
	"lifeline_used":       http.StatusConflict,
	"unavailable":         http.StatusServiceUnavailable,
}

func writeGameError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrInvalidPlayerName) {
		dto.JsonErrorCode(c, http.StatusBadRequest, "invalid_player_name", err.Error())
		return
	}

	code := ws.ErrorCode(err)
	status, ok := codeStatus[code]
	if !ok {
		log.Printf("Game request failed: %v", err)
		dto.JsonErrorCode(c, http.StatusInternalServerError, code, "Internal error")
		return
	}
	dto.JsonErrorCode(c, status, code, err.Error())
}
