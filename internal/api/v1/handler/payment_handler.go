package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"simsync/internal/api/v1/dto"
	"simsync/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// maxWebhookBody bounds the Stripe event payload.
const maxWebhookBody = 65536

// PaymentHandler handles the Stripe checkout and webhook endpoints.
// Both are raw handlers: the webhook needs the unparsed body to check the signature.
type PaymentHandler struct {
	stripeSvc *service.StripeService
	validate  *validator.Validate
	logger    zerolog.Logger
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(stripeSvc *service.StripeService, logger zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{
		stripeSvc: stripeSvc,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		logger:    logger,
	}
}

// CreateCheckoutSession starts a premium checkout and returns the hosted page URL.
func (h *PaymentHandler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var req dto.CheckoutSessionRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			writeError(w, http.StatusBadRequest, "Invalid field: "+verrs[0].Field())
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	url, err := h.stripeSvc.CreateCheckoutSession(r.Context(), req.UserID, req.SuccessURL, req.CancelURL)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to create checkout session")
		return
	}
	writeJSON(w, http.StatusOK, dto.CheckoutSessionResponseDTO{URL: url})
}

// Webhook applies a Stripe event. The signature is checked against
// STRIPE_WEBHOOK_SECRET when one is configured.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to read webhook body")
		writeError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if err := h.stripeSvc.HandleWebhookEvent(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		writeServiceError(w, h.logger, err, "Webhook error")
		return
	}
	writeJSON(w, http.StatusOK, dto.WebhookResponseDTO{Status: "success"})
}
