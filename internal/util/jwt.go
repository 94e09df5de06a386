package util

import (
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carried by identity tokens.
type Claims struct {
	Email  string `json:"email"`
	Name   string `json:"name"`
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// UID returns the subject, falling back to the user_id claim.
func (c *Claims) UID() string {
	if c.Subject != "" {
		return c.Subject
	}
	return c.UserID
}

func parsePublicKey(pemKey string) (interface{}, error) {
	block, _ := pem.Decode([]byte(pemKey))
	if block == nil {
		return nil, errors.New("failed to decode PEM block containing public key")
	}
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}
	return pub, nil
}

// ParseRSAPublicKey parses a PEM-encoded RSA public key
func ParseRSAPublicKey(pemKey string) (*rsa.PublicKey, error) {
	pub, err := parsePublicKey(pemKey)
	if err != nil {
		return nil, err
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("public key is not RSA")
	}
	return rsaPub, nil
}

// ParseECDSAPublicKey parses a PEM-encoded ECDSA public key
func ParseECDSAPublicKey(pemKey string) (*ecdsa.PublicKey, error) {
	pub, err := parsePublicKey(pemKey)
	if err != nil {
		return nil, err
	}
	ecdsaPub, ok := pub.(*ecdsa.PublicKey)
	if !ok {
		return nil, errors.New("public key is not ECDSA")
	}
	return ecdsaPub, nil
}

// keyFuncFor picks the verification key for alg. HMAC algorithms use
// keyMaterial as the shared secret, RSA and ECDSA parse it as a PEM public key.
func keyFuncFor(alg, keyMaterial string) (jwt.Keyfunc, error) {
	var key interface{}
	var check func(jwt.SigningMethod) bool

	switch alg {
	case "HS256", "HS384", "HS512":
		key = []byte(keyMaterial)
		check = func(m jwt.SigningMethod) bool { _, ok := m.(*jwt.SigningMethodHMAC); return ok }
	case "RS256", "RS384", "RS512":
		pub, err := ParseRSAPublicKey(keyMaterial)
		if err != nil {
			return nil, fmt.Errorf("failed to parse RSA public key: %w", err)
		}
		key = pub
		check = func(m jwt.SigningMethod) bool { _, ok := m.(*jwt.SigningMethodRSA); return ok }
	case "ES256", "ES384", "ES512":
		pub, err := ParseECDSAPublicKey(keyMaterial)
		if err != nil {
			return nil, fmt.Errorf("failed to parse ECDSA public key: %w", err)
		}
		key = pub
		check = func(m jwt.SigningMethod) bool { _, ok := m.(*jwt.SigningMethodECDSA); return ok }
	default:
		return nil, fmt.Errorf("unsupported signing algorithm: %s", alg)
	}

	return func(token *jwt.Token) (interface{}, error) {
		if !check(token.Method) {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return key, nil
	}, nil
}

// ValidateJWT verifies tokenString against keyMaterial and returns its claims.
// The signing algorithm is read from the token header. Errors wrap the
// jwt package sentinels, so callers can test for jwt.ErrTokenUsedBeforeIssued
// and friends with errors.Is.
func ValidateJWT(tokenString, keyMaterial string, opts ...jwt.ParserOption) (*Claims, error) {
	unverified, _, err := jwt.NewParser().ParseUnverified(tokenString, &Claims{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token header: %w", err)
	}
	alg, ok := unverified.Header["alg"].(string)
	if !ok {
		return nil, errors.New("token header missing 'alg' field")
	}

	keyFunc, err := keyFuncFor(alg, keyMaterial)
	if err != nil {
		return nil, err
	}

	claims := &Claims{}
	opts = append([]jwt.ParserOption{jwt.WithIssuedAt()}, opts...)
	token, err := jwt.ParseWithClaims(tokenString, claims, keyFunc, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to validate token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.UID() == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}
