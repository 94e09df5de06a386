package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"simsync/internal/model"
	"simsync/internal/service"

	"github.com/rs/zerolog"
)

// Injected key type to avoid context collisions
type contextKey string

const IdentityContextKey = contextKey("identity")

// IdentityFromContext returns the caller placed in ctx by AuthMiddleware.
func IdentityFromContext(ctx context.Context) (*model.Identity, bool) {
	id, ok := ctx.Value(IdentityContextKey).(*model.Identity)
	return id, ok && id != nil && id.UID != ""
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id *model.Identity) context.Context {
	return context.WithValue(ctx, IdentityContextKey, id)
}

// AuthMiddleware requires a bearer token and stores the verified caller in the request context.
func AuthMiddleware(verifier service.TokenVerifier, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Debug().Str("path", r.URL.Path).Msg("Authorization header missing")
				writeDetail(w, http.StatusUnauthorized, "Not authenticated")
				return
			}
			scheme, token, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				logger.Debug().Str("path", r.URL.Path).Msg("Invalid authorization header")
				writeDetail(w, http.StatusUnauthorized, "Invalid authorization header")
				return
			}
			id, err := verifier.Verify(r.Context(), token)
			if err != nil {
				writeDetail(w, http.StatusUnauthorized, service.Message(err, "Authentication failed"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
