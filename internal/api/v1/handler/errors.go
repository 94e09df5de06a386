package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"simsync/internal/api/v1/dto"
	"simsync/internal/service"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog"
)

// APIError is the error body every endpoint answers with.
type APIError struct {
	Status int    `json:"-"`
	Detail string `json:"detail"`
}

func (e *APIError) Error() string { return e.Detail }

func (e *APIError) GetStatus() int { return e.Status }

// NewAPIError replaces huma's problem+json errors so huma operations and raw
// handlers share the {"detail"} shape. Validation details are appended.
func NewAPIError(status int, msg string, errs ...error) huma.StatusError {
	detail := msg
	for _, err := range errs {
		if err == nil {
			continue
		}
		detail += ": " + err.Error()
		break
	}
	return &APIError{Status: status, Detail: detail}
}

// Huma errors share the {"detail"} body of the raw handlers.
func init() {
	huma.NewError = NewAPIError
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, service.ErrStorageLimitExceeded):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// toAPIError converts a service failure into the response error. Unexpected
// failures are logged and reported with fallback.
func toAPIError(logger zerolog.Logger, err error, fallback string) error {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error().Err(err).Msg(fallback)
		return &APIError{Status: status, Detail: fallback}
	}
	return &APIError{Status: status, Detail: service.Message(err, fallback)}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, dto.ErrorResponseDTO{Detail: detail})
}

func writeServiceError(w http.ResponseWriter, logger zerolog.Logger, err error, fallback string) {
	var apiErr *APIError
	errors.As(toAPIError(logger, err, fallback), &apiErr)
	writeError(w, apiErr.Status, apiErr.Detail)
}
