package main

import (
	"alcyxob/gym-app/internal/api"
	"alcyxob/gym-app/internal/config"
	"alcyxob/gym-app/internal/events"
	"alcyxob/gym-app/internal/logger"
	"alcyxob/gym-app/internal/repository/mongo"
	"alcyxob/gym-app/internal/service"
	"alcyxob/gym-app/internal/storage"
	"alcyxob/gym-app/internal/tracing"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // check-in timezone must resolve in slim containers

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// @title Gym API
// @version 1.0
// @description Members, activities, sessions, check-ins, tutorials and forum of a gym.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("Could not read .env file")
	}

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load config")
	}
	logger.Init(cfg.Log.Level, cfg.Log.Pretty)
	log.Info().Str("address", cfg.Server.Address).Str("database", cfg.Database.Name).Msg("Starting Gym API server")

	shutdownTracing, err := tracing.InitTracerProvider(cfg.Tracing.ServiceName, cfg.Tracing.Endpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize tracing")
	}

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not connect to MongoDB")
	}
	defer func() {
		log.Info().Msg("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Error().Err(err).Msg("Failed to disconnect MongoDB")
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Info().Msg("Database connection established")

	// --- Ensure Indexes ---
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		if err := mongo.EnsureIndexes(ctx, appDB); err != nil {
			log.Error().Err(err).Msg("Index creation failed")
			return
		}
		log.Info().Msg("Index creation process completed")
	}()

	// --- Initialize Storage ---
	fileStorage, err := storage.NewS3Storage(context.Background(), cfg.S3)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize S3 storage")
	}

	// --- Event publisher ---
	var publisher events.EventPublisher = events.NoopPublisher{}
	if cfg.NATS.URL != "" {
		natsPublisher, err := events.NewNatsPublisher(cfg.NATS.URL)
		if err != nil {
			log.Fatal().Err(err).Str("url", cfg.NATS.URL).Msg("Failed to connect to NATS")
		}
		publisher = natsPublisher
		log.Info().Str("url", cfg.NATS.URL).Msg("Publishing events to NATS")
	}
	defer publisher.Close()

	checkInLocation, err := cfg.CheckIn.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid check-in timezone")
	}

	// --- Initialize Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	tokenRepo := mongo.NewMongoTokenRepository(appDB)
	activityRepo := mongo.NewMongoActivityRepository(appDB)
	sessionRepo := mongo.NewMongoSessionRepository(appDB)
	checkInRepo := mongo.NewMongoCheckInRepository(appDB)
	tutorialRepo := mongo.NewMongoTutorialRepository(appDB)
	postRepo := mongo.NewMongoForumPostRepository(appDB)
	commentRepo := mongo.NewMongoForumCommentRepository(appDB)
	likeRepo := mongo.NewMongoForumLikeRepository(appDB)
	uploadRepo := mongo.NewMongoUploadRepository(appDB)
	tx := mongo.NewTransactor(dbClient)

	// --- Initialize Services ---
	services := api.Services{
		Auth:     service.NewAuthService(userRepo, tokenRepo, cfg.JWT.Secret, cfg.JWT.Expiration),
		User:     service.NewUserService(userRepo),
		Activity: service.NewActivityService(activityRepo, sessionRepo, tx),
		Session:  service.NewSessionService(sessionRepo, activityRepo, userRepo, tx, publisher),
		CheckIn:  service.NewCheckInService(checkInRepo, userRepo, tx, publisher, cfg.CheckIn.CodePrefix, checkInLocation),
		Tutorial: service.NewTutorialService(tutorialRepo),
		Forum:    service.NewForumService(postRepo, commentRepo, likeRepo, userRepo, tx, publisher),
		Media:    service.NewMediaService(uploadRepo, fileStorage, cfg.S3.MaxUploadBytes),
	}

	// --- Initialize Gin Engine ---
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	api.SetupRoutes(router, services, cfg.S3.MaxUploadBytes)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      otelhttp.NewHandler(router, "gym-api"),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("address", cfg.Server.Address).Msg("Server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe error")
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := shutdownTracing(ctxShutdown); err != nil {
		log.Error().Err(err).Msg("Failed to shut down tracing")
	}

	log.Info().Msg("Server exiting")
}
