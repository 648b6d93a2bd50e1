package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bpadilla17/radladder-game/config"
	"github.com/bpadilla17/radladder-game/internal/constants"
	"github.com/bpadilla17/radladder-game/internal/game"
	"github.com/bpadilla17/radladder-game/internal/handlers"
	"github.com/bpadilla17/radladder-game/internal/repository"
	"github.com/bpadilla17/radladder-game/internal/service"
	ws "github.com/bpadilla17/radladder-game/internal/websocket"
	"github.com/bpadilla17/radladder-game/pkg/cache"
	"github.com/bpadilla17/radladder-game/pkg/database"
	"github.com/bpadilla17/radladder-game/pkg/messaging"
	"github.com/bpadilla17/radladder-game/pkg/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()
	log.Println("Configuration loaded")

	dbClient, err := database.Open(&cfg.DB)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Printf("Connected to %s database", dbClient.Driver())
	defer dbClient.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := dbClient.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to initialize database schema: %v", err)
	}
	log.Println("Database schema initialized")
	cancel()

	var storeCache repository.Cache
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Printf("Warning: Failed to connect to Redis: %v", err)
		} else {
			log.Println("Connected to Redis")
			defer redisClient.Close()
			storeCache = redisClient
		}
	}

	store := repository.NewStore(dbClient, storeCache, cfg.Redis.TTL)

	if path := cfg.Game.QuestionsSeedFile; path != "" {
		if err := seedQuestions(store, path); err != nil {
			log.Printf("Warning: Failed to import questions from %s: %v", path, err)
		}
	}

	opts := service.Options{
		Clock:       game.SystemClock(),
		JWTSecret:   cfg.JWT.Secret,
		TokenTTL:    cfg.JWT.TokenTTL,
		IdleTimeout: cfg.Game.SessionIdleTimeout,
	}

	if cfg.RabbitMQ.Enabled {
		rabbitClient, err := messaging.NewRabbitMQClient(&cfg.RabbitMQ, constants.QueueAnswerRecorded, constants.QueueSessionFinished)
		if err != nil {
			log.Printf("Warning: Failed to connect to RabbitMQ: %v", err)
		} else {
			log.Println("Connected to RabbitMQ")
			defer rabbitClient.Close()
			opts.Publisher = rabbitClient
		}
	}

	var uploader handlers.ImageUploader
	if cfg.S3.Enabled {
		s3Client, err := storage.NewS3Client(&cfg.S3)
		if err != nil {
			log.Printf("Warning: Failed to create S3 client: %v", err)
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := s3Client.EnsureBucket(ctx); err != nil {
				log.Printf("Warning: Failed to ensure S3 bucket: %v", err)
			}
			cancel()
			log.Println("S3 storage configured")
			opts.Images = s3Client
			uploader = s3Client
		}
	}

	gameService := service.NewGameService(store, opts)

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()

	hub := ws.NewHub(gameService)
	gameService.AddListener(hub.PublishEvent)
	go hub.Run(hubCtx)
	log.Println("WebSocket hub started")

	go gameService.RunReaper(hubCtx, cfg.Game.ReapInterval)

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handlers.NewRouter(
		handlers.RouterConfig{
			JWTSecret:      cfg.JWT.Secret,
			AdminKey:       cfg.Server.AdminKey,
			AllowedOrigins: cfg.Server.AllowedOrigins,
		},
		handlers.NewHealthHandler(dbClient),
		handlers.NewGameHandler(gameService),
		handlers.NewLeaderboardHandler(store),
		handlers.NewQuestionHandler(store, uploader),
		handlers.NewWebSocketHandler(hub, gameService, cfg.Server.AllowedOrigins),
	)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("RadLadder HTTP server starting on port %s...", cfg.Server.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
	if err := gameService.Shutdown(shutdownCtx); err != nil {
		log.Printf("Game service shutdown error: %v", err)
	}
	stopHub()

	log.Println("RadLadder stopped")
}

func seedQuestions(store *repository.Store, path string) error {
	questions, err := repository.LoadSeedFile(path)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	added, err := store.ImportQuestions(ctx, questions)
	if err != nil {
		return err
	}
	log.Printf("Imported %d of %d seed questions", added, len(questions))
	return nil
}
