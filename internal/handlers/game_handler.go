package handlers

import (
	"net/http"

	"github.com/bpadilla17/radladder-game/internal/dto"
	"github.com/bpadilla17/radladder-game/internal/middleware"
	"github.com/bpadilla17/radladder-game/internal/service"

	"github.com/gin-gonic/gin"
)

type GameHandler struct {
	games *service.GameService
}

func NewGameHandler(games *service.GameService) *GameHandler {
	return &GameHandler{
		games: games,
	}
}

// RegisterRoutes mounts the game API. Every route below /api/games/:id needs
// that session's token.
func (h *GameHandler) RegisterRoutes(r gin.IRouter, jwtSecret string) {
	r.POST("/api/games", h.StartGame)

	g := r.Group("/api/games/:id", middleware.SessionAuth(jwtSecret))
	g.GET("", h.GetState)
	g.POST("/answer", h.SubmitAnswer)
	g.POST("/pass", h.UsePass)
	g.POST("/ask-audience", h.AskAudience)
	g.POST("/ask-audience/close", h.CloseAudience)
	g.POST("/safety-net", h.UseSafetyNet)
	g.POST("/next", h.Next)
	g.POST("/abandon", h.Abandon)
}

func (h *GameHandler) StartGame(c *gin.Context) {
	var req dto.StartGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.JsonError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.games.StartGame(c.Request.Context(), req.PlayerName)
	if err != nil {
		writeGameError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.StartGameResponse{
		Token:   result.Token,
		Session: result.Snapshot,
	})
}

func (h *GameHandler) GetState(c *gin.Context) {
	h.respondState(c, c.Param("id"))
}

func (h *GameHandler) SubmitAnswer(c *gin.Context) {
	var req dto.AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.JsonError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	feedback, err := h.games.SubmitAnswer(c.Request.Context(), c.Param("id"), req.Option)
	if err != nil {
		writeGameError(c, err)
		return
	}
	c.JSON(http.StatusOK, feedback)
}

func (h *GameHandler) UsePass(c *gin.Context) {
	sessionID := c.Param("id")
	if err := h.games.UsePass(c.Request.Context(), sessionID); err != nil {
		writeGameError(c, err)
		return
	}
	h.respondState(c, sessionID)
}

func (h *GameHandler) AskAudience(c *gin.Context) {
	stats, err := h.games.UseAskAudience(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeGameError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.AudienceResponse{
		Available: stats != nil,
		Stats:     stats,
	})
}

func (h *GameHandler) CloseAudience(c *gin.Context) {
	sessionID := c.Param("id")
	if err := h.games.ResumeAudience(sessionID); err != nil {
		writeGameError(c, err)
		return
	}
	h.respondState(c, sessionID)
}

func (h *GameHandler) UseSafetyNet(c *gin.Context) {
	sessionID := c.Param("id")
	if err := h.games.UseSafetyNet(sessionID); err != nil {
		writeGameError(c, err)
		return
	}
	h.respondState(c, sessionID)
}

func (h *GameHandler) Next(c *gin.Context) {
	sessionID := c.Param("id")
	if err := h.games.Next(c.Request.Context(), sessionID); err != nil {
		writeGameError(c, err)
		return
	}
	h.respondState(c, sessionID)
}

func (h *GameHandler) Abandon(c *gin.Context) {
	snapshot, err := h.games.Abandon(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeGameError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (h *GameHandler) respondState(c *gin.Context, sessionID string) {
	session, err := h.games.Session(sessionID)
	if err != nil {
		writeGameError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.games.Snapshot(c.Request.Context(), session))
}
