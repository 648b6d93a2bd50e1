package handlers

import (
	"github.com/bpadilla17/radladder-game/internal/middleware"

	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	JWTSecret      string
	AdminKey       string
	AllowedOrigins []string
}

// NewRouter builds the HTTP API around the given handlers.
func NewRouter(cfg RouterConfig, health *HealthHandler, games *GameHandler, leaderboard *LeaderboardHandler, questions *QuestionHandler, wsHandler *WebSocketHandler) *gin.Engine {
	router := gin.New()

	router.Use(gin.Logger())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	health.RegisterRoutes(router)
	games.RegisterRoutes(router, cfg.JWTSecret)

	router.GET("/api/leaderboard", leaderboard.GetLeaderboard)

	admin := router.Group("/api/admin/questions", middleware.AdminKey(cfg.AdminKey))
	{
		admin.GET("", questions.ListQuestions)
		admin.POST("", questions.CreateQuestion)
		admin.GET("/:id", questions.GetQuestion)
		admin.POST("/:id/images", questions.UploadImage)
	}

	router.GET("/ws", middleware.SessionAuth(cfg.JWTSecret), wsHandler.HandleWebSocket)

	return router
}
