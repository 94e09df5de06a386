package router

import (
	"net/http"
	"strings"

	"simsync/internal/api/v1/handler"
	"simsync/internal/config"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// publicPaths are served without a bearer token. Paths are relative to /api.
var publicPaths = map[string]bool{
	"/openapi.json":                     true,
	"/openapi.yaml":                     true,
	"/docs":                             true,
	"/auth/test":                        true,
	"/community/files":                  true,
	"/payments/create-checkout-session": true,
	"/payments/webhook":                 true,
}

func isPublic(path string) bool {
	return publicPaths[path] || strings.HasPrefix(path, "/schemas")
}

// SetupHumaAPI creates a Huma API instance on a chi router that requires
// authentication everywhere except publicPaths.
func SetupHumaAPI(
	cfg *config.Config,
	authMiddleware func(http.Handler) http.Handler,
	fileHandler *handler.FileHandler,
	paymentHandler *handler.PaymentHandler,
	logger zerolog.Logger,
) (*chi.Mux, huma.API) {
	chiRouter := chi.NewRouter()

	chiRouter.Use(func(next http.Handler) http.Handler {
		authed := authMiddleware(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublic(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			authed.ServeHTTP(w, r)
		})
	})

	humaConfig := huma.DefaultConfig("SimSync API", handler.Version)
	humaConfig.Info.Description = "File backup and community sharing API"
	humaConfig.Servers = []*huma.Server{{URL: cfg.APIBaseURL}}

	api := humachi.New(chiRouter, humaConfig)

	// Multipart upload and Stripe endpoints need direct access to the request body
	chiRouter.Post("/files/upload", fileHandler.UploadFile)
	chiRouter.Post("/payments/create-checkout-session", paymentHandler.CreateCheckoutSession)
	chiRouter.Post("/payments/webhook", paymentHandler.Webhook)

	logger.Info().Str("version", handler.Version).Msg("Huma API initialized for /api")
	return chiRouter, api
}

// RegisterRoutes registers all Huma operations
func RegisterRoutes(
	api huma.API,
	authHandler *handler.AuthHandler,
	fileHandler *handler.FileHandler,
	communityHandler *handler.CommunityHandler,
	logger zerolog.Logger,
) {
	logger.Info().Msg("Registering routes")

	// ========== AUTH OPERATIONS ==========
	huma.Register(api, huma.Operation{
		OperationID: "verifyUser",
		Method:      http.MethodGet,
		Path:        "/auth/verify",
		Summary:     "Verify token",
		Description: "Verifies the bearer token and returns the caller's profile, creating it on first sign-in",
		Tags:        []string{"auth"},
	}, authHandler.Verify)

	huma.Register(api, huma.Operation{
		OperationID: "getUserInfo",
		Method:      http.MethodGet,
		Path:        "/auth/user/{userId}",
		Summary:     "Get user profile",
		Description: "Returns the stored profile of the authenticated user",
		Tags:        []string{"auth"},
	}, authHandler.GetUserInfo)

	huma.Register(api, huma.Operation{
		OperationID: "upgradeSubscription",
		Method:      http.MethodPost,
		Path:        "/auth/upgrade-subscription/{userId}",
		Summary:     "Upgrade to premium",
		Description: "Moves the authenticated user onto the premium tier",
		Tags:        []string{"auth"},
	}, authHandler.UpgradeSubscription)

	huma.Register(api, huma.Operation{
		OperationID: "authTest",
		Method:      http.MethodGet,
		Path:        "/auth/test",
		Summary:     "Connectivity check",
		Tags:        []string{"auth"},
	}, authHandler.Test)

	// ========== FILE OPERATIONS ==========
	huma.Register(api, huma.Operation{
		OperationID: "listFiles",
		Method:      http.MethodGet,
		Path:        "/files/list",
		Summary:     "List files",
		Description: "Lists the authenticated user's files with fresh download URLs",
		Tags:        []string{"files"},
	}, fileHandler.ListFiles)

	huma.Register(api, huma.Operation{
		OperationID: "deleteFile",
		Method:      http.MethodDelete,
		Path:        "/files/delete/{fileId}",
		Summary:     "Delete a file",
		Description: "Deletes one of the authenticated user's files and its stored blob",
		Tags:        []string{"files"},
	}, fileHandler.DeleteFile)

	// ========== COMMUNITY OPERATIONS ==========
	huma.Register(api, huma.Operation{
		OperationID: "shareFile",
		Method:      http.MethodPost,
		Path:        "/community/share",
		Summary:     "Share a file",
		Description: "Publishes one of the authenticated user's files to the community listing",
		Tags:        []string{"community"},
	}, communityHandler.ShareFile)

	huma.Register(api, huma.Operation{
		OperationID: "listCommunityFiles",
		Method:      http.MethodGet,
		Path:        "/community/files",
		Summary:     "List community files",
		Description: "Lists active shares, newest first",
		Tags:        []string{"community"},
	}, communityHandler.ListCommunityFiles)

	huma.Register(api, huma.Operation{
		OperationID: "downloadCommunityFile",
		Method:      http.MethodPost,
		Path:        "/community/{id}/download",
		Summary:     "Download a community file",
		Description: "Returns a signed download URL. Basic users are limited to 10 downloads per day",
		Tags:        []string{"community"},
	}, communityHandler.DownloadCommunityFile)

	huma.Register(api, huma.Operation{
		OperationID: "rateCommunityFile",
		Method:      http.MethodPost,
		Path:        "/community/{id}/rate",
		Summary:     "Rate a community file",
		Description: "Records a 1 to 5 star rating, replacing the caller's earlier rating",
		Tags:        []string{"community"},
	}, communityHandler.RateCommunityFile)

	huma.Register(api, huma.Operation{
		OperationID: "unshareFile",
		Method:      http.MethodDelete,
		Path:        "/community/{id}",
		Summary:     "Unshare a file",
		Description: "Removes one of the caller's shares from the listing",
		Tags:        []string{"community"},
	}, communityHandler.UnshareFile)
}
