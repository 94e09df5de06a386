package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"simsync/internal/config"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v82"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"
)

// StripeService manages Stripe integration
type StripeService struct {
	cfg           *config.Config
	subscriptions SubscriptionService
	newSession    func(*stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	logger        zerolog.Logger
}

// NewStripeService initializes Stripe key and returns service with a scoped logger
func NewStripeService(cfg *config.Config, subscriptions SubscriptionService, logger zerolog.Logger) *StripeService {
	stripe.Key = cfg.StripeSecretKey
	return &StripeService{
		cfg:           cfg,
		subscriptions: subscriptions,
		newSession:    checkoutsession.New,
		logger:        logger.With().Str("service", "StripeService").Logger(),
	}
}

// CreateCheckoutSession starts a premium subscription checkout for userID and
// returns the hosted checkout URL.
func (s *StripeService) CreateCheckoutSession(_ context.Context, userID, successURL, cancelURL string) (string, error) {
	if s.cfg.StripePriceID == "" {
		s.logger.Error().Msg("Stripe price ID not configured")
		return "", newError(ErrInvalidArgument, "Stripe price ID not configured")
	}
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          []*stripe.CheckoutSessionLineItemParams{{Price: stripe.String(s.cfg.StripePriceID), Quantity: stripe.Int64(1)}},
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL:         stripe.String(successURL),
		CancelURL:          stripe.String(cancelURL),
		ClientReferenceID:  stripe.String(userID),
		Metadata:           map[string]string{"user_id": userID},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{"user_id": userID},
		},
	}

	sess, err := s.newSession(params)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to create Stripe checkout session")
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			return "", newError(ErrInvalidArgument, "Stripe error: %s", stripeErr.Msg)
		}
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	s.logger.Info().Str("user_id", userID).Str("session_id", sess.ID).Msg("Checkout session created")
	return sess.URL, nil
}

// HandleWebhookEvent applies a Stripe event. Only a malformed or unverifiable
// payload is an error; failures to update the subscription are logged and
// swallowed so Stripe does not keep retrying.
func (s *StripeService) HandleWebhookEvent(ctx context.Context, payload []byte, signature string) error {
	event, err := s.parseEvent(payload, signature)
	if err != nil {
		s.logger.Error().Err(err).Msg("Invalid Stripe webhook payload")
		return newError(ErrInvalidArgument, "Webhook error: %v", err)
	}
	s.logger.Info().Str("event_type", string(event.Type)).Msg("Stripe webhook received")

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			s.logger.Error().Err(err).Msg("Invalid checkout.session data")
			return newError(ErrInvalidArgument, "Webhook error: invalid checkout.session data")
		}
		userID := cs.ClientReferenceID
		if userID == "" {
			userID = cs.Metadata["user_id"]
		}
		if userID == "" {
			s.logger.Warn().Str("session_id", cs.ID).Msg("Checkout session has no user reference, ignoring")
			return nil
		}
		if _, err := s.subscriptions.Upgrade(ctx, userID); err != nil {
			s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to upgrade subscription on checkout.session.completed")
			return nil
		}
		s.logger.Info().Str("user_id", userID).Msg("Payment successful, user upgraded")

	case stripe.EventTypeCustomerSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			s.logger.Error().Err(err).Msg("Invalid customer.subscription.deleted payload")
			return newError(ErrInvalidArgument, "Webhook error: invalid subscription data")
		}
		userID := sub.Metadata["user_id"]
		if userID == "" {
			s.logger.Warn().Str("subscription_id", sub.ID).Msg("Subscription has no user_id metadata, ignoring")
			return nil
		}
		if _, err := s.subscriptions.Cancel(ctx, userID); err != nil {
			s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to cancel subscription on customer.subscription.deleted")
			return nil
		}
		s.logger.Info().Str("user_id", userID).Msg("Subscription cancelled, user downgraded")

	default:
		s.logger.Debug().Str("event_type", string(event.Type)).Msg("Ignoring Stripe event")
	}
	return nil
}

// parseEvent verifies the signature when a webhook secret is configured and
// otherwise decodes the payload as is.
func (s *StripeService) parseEvent(payload []byte, signature string) (stripe.Event, error) {
	if s.cfg.StripeWebhookSecret != "" {
		return webhook.ConstructEventWithOptions(payload, signature, s.cfg.StripeWebhookSecret,
			webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	}
	var event stripe.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return event, err
	}
	if event.Type == "" || event.Data == nil || len(event.Data.Raw) == 0 {
		return event, errors.New("missing event type or data")
	}
	return event, nil
}
