package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"spontimeet/config"
	_ "spontimeet/docs"
	"spontimeet/internal/adapters/auth"
	"spontimeet/internal/adapters/email"
	httpdelivery "spontimeet/internal/delivery/http"
	"spontimeet/internal/delivery/http/controllers"
	"spontimeet/internal/delivery/http/middleware"
	"spontimeet/internal/delivery/ws"
	"spontimeet/internal/geo"
	"spontimeet/internal/relay"
	"spontimeet/internal/repository/postgres"
	"spontimeet/internal/services"
)

// @title Spontimeet API
// @version 1.0
// @description Spontaneous location-bound meetup coordination backend.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("could not open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("could not reach database", "err", err)
		os.Exit(1)
	}

	activityRepo := postgres.NewActivityRepository(db)
	messageRepo := postgres.NewMessageRepository(db)
	userRepo := postgres.NewUserRepository(db)

	// The geo index lives in memory; warm it from the active activities so
	// discovery works across restarts.
	geoIndex := geo.NewIndex()
	warmCtx, cancelWarm := context.WithTimeout(context.Background(), 30*time.Second)
	active, err := activityRepo.ListActive(warmCtx)
	cancelWarm()
	if err != nil {
		logger.Error("could not warm geo index", "err", err)
		os.Exit(1)
	}
	for _, a := range active {
		geoIndex.Insert(a.ID, a.Location.Lng(), a.Location.Lat())
	}
	logger.Info("geo index warmed", "activities", geoIndex.Len())

	mailer, err := email.NewMailer(cfg.Email, logger)
	if err != nil {
		logger.Error("could not create mailer", "err", err)
		os.Exit(1)
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer())

	registry := relay.NewRegistry(logger)
	activityService := services.NewActivityService(activityRepo, userRepo, geoIndex, emailService, logger)
	chatService := services.NewChatService(messageRepo, activityRepo, userRepo, registry, logger)

	verifier := auth.NewJWTVerifier(cfg.JWTSecret)
	requireAuth := middleware.RequireAuth(verifier, logger)

	activityController := controllers.NewActivityController(logger, activityService)
	notificationController := controllers.NewNotificationController(logger, activityService)
	chatController := controllers.NewChatController(logger, chatService)
	wsHandler := ws.NewHandler(logger, chatService, registry, cfg.AllowedOrigins)

	mux := httpdelivery.NewRouter(activityController, notificationController, chatController, wsHandler, requireAuth)
	handler := middleware.CORS(cfg.AllowedOrigins, middleware.LoggingMiddleware(logger, mux))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // websocket connections are long-lived
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
}
