package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"session-planner/internal/app"
	"session-planner/internal/cache"
	"session-planner/internal/config"
	"session-planner/internal/logger"
	"session-planner/internal/server"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zlog, err := logger.New(&cfg.Log)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zlog.Sync()

	if err := app.RunMigrations(cfg.Database.URL, zlog); err != nil {
		zlog.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		zlog.Fatal("failed to connect to db", zap.Error(err))
	}
	defer pool.Close()

	var suggestionCache *cache.SuggestionCache
	if cfg.Redis.Addr != "" {
		suggestionCache, err = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.SuggestionTTL, zlog)
		if err != nil {
			zlog.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer suggestionCache.Close()
	} else {
		zlog.Info("suggestion cache disabled (no redis addr)")
	}

	appInstance := &app.App{DB: pool, Log: zlog, Cache: suggestionCache, Cfg: cfg}

	router := gin.Default()

	// OAuth2 callback (must be before auth middleware)
	router.GET("/oauth2callback", appInstance.GoogleOAuth2CallbackHandler)

	router.Use(app.AuthMiddleware(&cfg.Auth))

	api := router.Group("/api")
	{
		types := api.Group("/session-types")
		{
			types.POST("", appInstance.CreateSessionTypeHandler)
			types.GET("", appInstance.ListSessionTypesHandler)
			types.GET("/:id", appInstance.GetSessionTypeHandler)
			types.PUT("/:id", appInstance.UpdateSessionTypeHandler)
			types.DELETE("/:id", appInstance.DeleteSessionTypeHandler)
		}

		availability := api.Group("/availability")
		{
			availability.POST("", appInstance.CreateAvailabilityHandler)
			availability.GET("", appInstance.ListAvailabilityHandler)
			availability.PUT("/:id", appInstance.UpdateAvailabilityHandler)
			availability.DELETE("/:id", appInstance.DeleteAvailabilityHandler)
		}

		sessions := api.Group("/sessions")
		{
			sessions.POST("", appInstance.CreateSessionHandler)
			sessions.GET("", appInstance.ListSessionsHandler)
			sessions.GET("/:id", appInstance.GetSessionHandler)
			sessions.PUT("/:id", appInstance.UpdateSessionHandler)
			sessions.POST("/:id/complete", appInstance.CompleteSessionHandler)
			sessions.DELETE("/:id", appInstance.DeleteSessionHandler)
		}

		api.GET("/suggestions", appInstance.GetSuggestionsHandler)
		api.GET("/suggestions/top", appInstance.GetTopSuggestionsHandler)
		api.GET("/stats/progress", appInstance.GetProgressStatsHandler)

		calendar := api.Group("/calendar")
		{
			calendar.GET("/auth", appInstance.GoogleAuthHandler)
			calendar.GET("/events", appInstance.GetGoogleCalendarEvents)
			calendar.GET("/calendars", appInstance.GetGoogleCalendarList)
		}
	}

	server.Run(router, cfg.Server.Addr(), zlog)
}
