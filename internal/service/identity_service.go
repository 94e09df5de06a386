package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"simsync/internal/model"
	"simsync/internal/util"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"google.golang.org/api/idtoken"
)

// TokenVerifier turns a bearer token into a verified caller.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*model.Identity, error)
}

// JWTVerifierOptions configures JWTVerifier.
type JWTVerifierOptions struct {
	// Key is an HMAC secret or a PEM public key, depending on the token's alg.
	Key        string
	Issuer     string
	Audience   string
	RetryDelay time.Duration
}

// JWTVerifier validates locally signed or provider-issued JWTs.
type JWTVerifier struct {
	key        string
	parserOpts []jwt.ParserOption
	retryDelay time.Duration
	validate   func(token, key string, opts ...jwt.ParserOption) (*util.Claims, error)
	logger     zerolog.Logger
}

func NewJWTVerifier(opts JWTVerifierOptions, logger zerolog.Logger) *JWTVerifier {
	var parserOpts []jwt.ParserOption
	if opts.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(opts.Issuer))
	}
	if opts.Audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(opts.Audience))
	}
	return &JWTVerifier{
		key:        opts.Key,
		parserOpts: parserOpts,
		retryDelay: opts.RetryDelay,
		validate:   util.ValidateJWT,
		logger:     logger.With().Str("service", "JWTVerifier").Logger(),
	}
}

// usedTooEarly reports a token whose iat or nbf is ahead of our clock.
func usedTooEarly(err error) bool {
	return errors.Is(err, jwt.ErrTokenUsedBeforeIssued) || errors.Is(err, jwt.ErrTokenNotValidYet)
}

// Verify retries exactly once, after RetryDelay, when the token is rejected
// only because the issuer's clock runs ahead of ours.
func (v *JWTVerifier) Verify(ctx context.Context, token string) (*model.Identity, error) {
	claims, err := v.validate(token, v.key, v.parserOpts...)
	if err != nil && usedTooEarly(err) {
		v.logger.Warn().Dur("retry_delay", v.retryDelay).Msg("Clock skew detected, retrying token verification")
		if werr := wait(ctx, v.retryDelay); werr != nil {
			return nil, newError(ErrUnauthenticated, "Authentication failed")
		}
		claims, err = v.validate(token, v.key, v.parserOpts...)
	}
	if err != nil {
		v.logger.Error().Err(err).Msg("Token verification failed")
		return nil, newError(ErrUnauthenticated, "Authentication failed")
	}
	return &model.Identity{UID: claims.UID(), Email: claims.Email, Name: claims.Name}, nil
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// GoogleVerifier validates Google-signed ID tokens.
type GoogleVerifier struct {
	audience string
	validate func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
	logger   zerolog.Logger
}

func NewGoogleVerifier(audience string, logger zerolog.Logger) *GoogleVerifier {
	return &GoogleVerifier{
		audience: audience,
		validate: idtoken.Validate,
		logger:   logger.With().Str("service", "GoogleVerifier").Logger(),
	}
}

func (v *GoogleVerifier) Verify(ctx context.Context, token string) (*model.Identity, error) {
	payload, err := v.validate(ctx, token, v.audience)
	if err != nil {
		v.logger.Error().Err(err).Msg("Token verification failed")
		return nil, newError(ErrUnauthenticated, "Authentication failed")
	}
	if payload.Subject == "" {
		return nil, newError(ErrUnauthenticated, "Authentication failed")
	}
	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	return &model.Identity{UID: payload.Subject, Email: email, Name: name}, nil
}

// NewTokenVerifier builds the verifier for provider ("jwt" or "google").
func NewTokenVerifier(provider string, opts JWTVerifierOptions, logger zerolog.Logger) (TokenVerifier, error) {
	switch provider {
	case "", "jwt":
		return NewJWTVerifier(opts, logger), nil
	case "google":
		return NewGoogleVerifier(opts.Audience, logger), nil
	default:
		return nil, fmt.Errorf("unknown identity provider: %s", provider)
	}
}
