package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMissingCredential is returned when the Authorization header is absent or not a bearer token.
	ErrMissingCredential = errors.New("missing or invalid Authorization header")
	// ErrInvalidToken is returned when a bearer token fails verification.
	ErrInvalidToken = errors.New("invalid token")
)

// Identity is the authenticated caller as asserted by the identity provider.
type Identity struct {
	UID           string `json:"uid"`
	Email         string `json:"email,omitempty"`
	Name          string `json:"name,omitempty"`
	EmailVerified bool   `json:"emailVerified"`
}

// Claims mirrors the claim set of a provider-issued ID token.
type Claims struct {
	Email         string `json:"email,omitempty"`
	Name          string `json:"name,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
	jwt.RegisteredClaims
}

// Verifier turns a bearer credential into an Identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header value.
func BearerToken(header string) (string, error) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", ErrMissingCredential
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if token == "" {
		return "", ErrMissingCredential
	}
	return token, nil
}

type Config struct {
	// Secret enables HS256 verification with a shared key.
	Secret string
	// PublicKeyPEM enables RS256 verification against the provider's key and takes precedence over Secret.
	PublicKeyPEM []byte
	Issuer       string
	Audience     string
}

// JWTVerifier verifies provider-issued ID tokens locally.
type JWTVerifier struct {
	key     any
	options []jwt.ParserOption
}

func NewJWTVerifier(cfg Config) (*JWTVerifier, error) {
	v := &JWTVerifier{}
	switch {
	case len(cfg.PublicKeyPEM) > 0:
		key, err := jwt.ParseRSAPublicKeyFromPEM(cfg.PublicKeyPEM)
		if err != nil {
			return nil, fmt.Errorf("parse provider public key: %w", err)
		}
		v.key = key
		v.options = append(v.options, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
	case cfg.Secret != "":
		v.key = []byte(cfg.Secret)
		v.options = append(v.options, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	default:
		return nil, errors.New("identity: either a secret or a public key is required")
	}

	v.options = append(v.options, jwt.WithExpirationRequired())
	if cfg.Issuer != "" {
		v.options = append(v.options, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		v.options = append(v.options, jwt.WithAudience(cfg.Audience))
	}
	return v, nil
}

func (v *JWTVerifier) Verify(_ context.Context, token string) (Identity, error) {
	t, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		return v.key, nil
	}, v.options...)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return Identity{}, ErrInvalidToken
	}
	if claims.Subject == "" {
		return Identity{}, fmt.Errorf("%w: empty subject", ErrInvalidToken)
	}
	return Identity{
		UID:           claims.Subject,
		Email:         claims.Email,
		Name:          claims.Name,
		EmailVerified: claims.EmailVerified,
	}, nil
}

// GenerateToken signs an HS256 ID token for id. Used by tests and local development.
func GenerateToken(secret string, id Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	c := Claims{
		Email:         id.Email,
		Name:          id.Name,
		EmailVerified: id.EmailVerified,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return t.SignedString([]byte(secret))
}
