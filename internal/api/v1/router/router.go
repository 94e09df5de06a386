package router

import (
	"net/http"

	"simsync/internal/api/v1/handler"
	"simsync/internal/config"
	"simsync/internal/middleware"
	"simsync/internal/service"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// Services are the collaborators the HTTP layer depends on.
type Services struct {
	Verifier      service.TokenVerifier
	Subscriptions service.SubscriptionService
	Files         service.FileService
	Community     service.CommunityService
	Stripe        *service.StripeService
}

// New builds the HTTP handler serving the banner, health probe and /api.
func New(cfg *config.Config, svc Services, logger zerolog.Logger) http.Handler {
	authHandler := handler.NewAuthHandler(svc.Subscriptions, logger)
	fileHandler := handler.NewFileHandler(svc.Files, cfg.MaxUploadMB, logger)
	communityHandler := handler.NewCommunityHandler(svc.Community, logger)
	paymentHandler := handler.NewPaymentHandler(svc.Stripe, logger)

	authMiddleware := middleware.AuthMiddleware(svc.Verifier, logger)

	apiRouter, api := SetupHumaAPI(cfg, authMiddleware, fileHandler, paymentHandler, logger)
	RegisterRoutes(api, authHandler, fileHandler, communityHandler, logger)

	root := chi.NewRouter()
	root.Use(chimiddleware.RequestID)
	root.Use(chimiddleware.Recoverer)
	root.Use(middleware.LoggerMiddleware(logger))

	root.Get("/", handler.Root)
	root.Get("/health", handler.Health)
	root.Mount("/api", http.StripPrefix("/api", apiRouter))

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	logger.Info().Strs("cors_origins", cfg.CORSAllowedOrigins).Msg("Router initialized")
	return c.Handler(root)
}
