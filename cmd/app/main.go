package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"simsync/internal/api/v1/router"
	"simsync/internal/config"
	"simsync/internal/logger"
	"simsync/internal/service"

	"github.com/joho/godotenv"
)

func main() {
	// godotenv before logger.New so ENV and LOG_LEVEL from .env apply
	envErr := godotenv.Load()
	logger := logger.New()
	if envErr != nil {
		logger.Warn().Msg("Warning: no .env file found")
	}

	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Msgf("Error loading config: %v", err)
	}
	logger.Info().Str("environment", cfg.Environment).Msg("App environment loaded")

	ctx := context.Background()

	// 2. Connect document and object stores
	repos, err := openRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("document_store", cfg.DocumentStore).Msg("Failed to open document store")
	}
	defer repos.close()

	store, err := openObjectStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("object_store", cfg.ObjectStore).Msg("Failed to open object store")
	}

	// 3. Build services
	verifier, err := service.NewTokenVerifier(cfg.IdentityProvider, service.JWTVerifierOptions{
		Key:        cfg.IdentityKey,
		Issuer:     cfg.IdentityIssuer,
		Audience:   cfg.IdentityAudience,
		RetryDelay: cfg.TokenRetryDelay,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to build token verifier")
	}

	subscriptions := service.NewSubscriptionService(repos.users, logger)
	if cfg.StripeWebhookSecret == "" {
		logger.Warn().Msg("STRIPE_WEBHOOK_SECRET not set, webhook signatures are not verified")
	}

	handler := router.New(cfg, router.Services{
		Verifier:      verifier,
		Subscriptions: subscriptions,
		Files:         service.NewFileService(repos.files, repos.users, subscriptions, store, logger),
		Community:     service.NewCommunityService(repos.files, repos.sharedFiles, repos.users, subscriptions, store, logger),
		Stripe:        service.NewStripeService(cfg, subscriptions, logger),
	}, logger)

	// 4. Create HTTP server. Uploads can be large, so the read timeout is generous.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Start server in a goroutine
	go func() {
		logger.Info().Msgf("🚀 Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Msgf("Listen: %s\n", err)
		}
	}()

	// 6. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("Shutdown signal received, exiting...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
		return
	}
	logger.Info().Msg("Server shut down gracefully")
}
