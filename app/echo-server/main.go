package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cineMatch/app/echo-server/router"
	"cineMatch/business/genres"
	"cineMatch/business/movies"
	"cineMatch/business/recommendation"
	"cineMatch/internal/events"
	"cineMatch/internal/middleware"
	psqlRepo "cineMatch/internal/repository/postgres"
	"cineMatch/internal/repository/rediscache"
	"cineMatch/internal/repository/tmdb"
	"cineMatch/internal/rest"
	"cineMatch/pkg/config"
	"cineMatch/pkg/database"
	redisdb "cineMatch/pkg/database/redis"
	"cineMatch/pkg/logger"
	"cineMatch/pkg/metrics"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting cineMatch", "version", cfg.App.Version)

	metrics.Init()

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	logger.Info("Database connected successfully")

	redisClient, err := redisdb.NewRedisClient(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to redis", "error", err)
	}
	defer redisdb.CloseRedisClient(redisClient)

	// Init validate
	validate := validator.New()

	// Init repo
	recommendationRepo := psqlRepo.NewRecommendationRepository(db)
	cacheStore := rediscache.NewStore(redisClient)
	catalog := tmdb.NewTmdbRepository(tmdb.TmdbConfig{
		BaseURL:      cfg.Tmdb.BaseURL,
		ImageBaseURL: cfg.Tmdb.ImageBaseURL,
		APIKey:       cfg.Tmdb.APIKey,
		Timeout:      cfg.Tmdb.Timeout,
	})

	// Init service
	genreService := genres.NewGenreService(catalog, cacheStore, cfg.Recommendation.ReferenceTTL)
	recommendationService := recommendation.NewService(
		recommendationRepo,
		catalog,
		cacheStore,
		genreService,
		recommendation.Config{
			MinVoteCount:   cfg.Recommendation.MinVoteCount,
			MinPopularity:  cfg.Recommendation.MinPopularity,
			ExcludeCountry: cfg.Recommendation.ExcludeCountry,
			CategoryLimit:  cfg.Recommendation.CategoryLimit,
			SimilarPages:   cfg.Recommendation.SimilarPages,
			DiscoverPages:  cfg.Recommendation.DiscoverPages,
			FanoutWorkers:  cfg.Recommendation.FanoutWorkers,
			FanoutTimeout:  cfg.Recommendation.FanoutTimeout,
			SubQueryTTL:    cfg.Recommendation.SubQueryTTL,
			ResultTTL:      cfg.Recommendation.ResultTTL,
		},
		nil,
	)
	movieService := movies.NewMovieService(catalog, cacheStore, movies.Config{
		MinVoteCount:  cfg.Recommendation.MinVoteCount,
		MinPopularity: cfg.Recommendation.MinPopularity,
		SearchTTL:     cfg.Recommendation.SubQueryTTL,
		ReferenceTTL:  cfg.Recommendation.ReferenceTTL,
	})

	// Init event transport
	subscriber, err := events.NewNatsSubscriber(cfg.Nats)
	if err != nil {
		logger.Fatal("Failed to create nats subscriber", "error", err)
	}
	publisher, err := events.NewNatsPublisher(cfg.Nats)
	if err != nil {
		logger.Fatal("Failed to create nats publisher", "error", err)
	}

	consumer := events.NewConsumer(subscriber, recommendationService, validate, cfg.Nats.PreferencesTopic)
	preferencesPublisher := events.NewPublisher(publisher, cfg.Nats.PreferencesTopic)

	// Init handler
	recommendationHandler := rest.NewRecommendationHandler(recommendationService, preferencesPublisher)
	movieHandler := rest.NewMovieHandler(movieService, genreService)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Setup routes
	api := e.Group("/api/v1")
	router.SetupRecommendationRoutes(api, recommendationHandler)
	router.SetupMovieRoutes(api, movieHandler)

	// Consume preference events
	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	go func() {
		if err := consumer.Run(consumerCtx); err != nil {
			logger.Error("Event consumer stopped", err)
		}
	}()

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server listening", "addr", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	stopConsumer()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shut down server", err)
	}

	if err := subscriber.Close(); err != nil {
		logger.Error("Failed to close subscriber", err)
	}
	if err := publisher.Close(); err != nil {
		logger.Error("Failed to close publisher", err)
	}
}
