// Package auth0 provides the TokenVerifier adapter backed by an Auth0
// tenant's JWKS endpoint.
package auth0

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"github.com/hochfrequenz/transformerbee-mcp/internal/domain/auth"
)

const (
	// DefaultDomain is the Auth0 tenant used when none is configured.
	DefaultDomain = "hochfrequenz.eu.auth0.com"

	// DefaultAudience is the API audience tokens must carry.
	DefaultAudience = "https://transformer.bee"
)

// Verifier validates RS256 bearer tokens against the tenant's JWKS. The key
// set is fetched once at construction and refreshed in the background by the
// keyfunc client, so per-request verification never blocks on the network
// for a known key ID.
type Verifier struct {
	keys     keyfunc.Keyfunc
	audience string
	issuer   string
	logger   *slog.Logger
}

// Option is a functional option for configuring Verifier.
type Option func(*settings)

type settings struct {
	jwksURL string
}

// WithJWKSURL overrides the JWKS endpoint derived from the domain.
// Primarily for pointing tests at a local key server.
func WithJWKSURL(url string) Option {
	return func(s *settings) {
		s.jwksURL = url
	}
}

// NewVerifier creates a verifier for the given Auth0 domain and audience.
// ctx bounds the initial JWKS fetch and the background refresh loop: cancel
// it to stop the refresher.
func NewVerifier(ctx context.Context, domain, audience string, logger *slog.Logger, opts ...Option) (*Verifier, error) {
	if domain == "" {
		domain = DefaultDomain
	}
	if audience == "" {
		audience = DefaultAudience
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := settings{
		jwksURL: fmt.Sprintf("https://%s/.well-known/jwks.json", domain),
	}
	for _, opt := range opts {
		opt(&s)
	}

	keys, err := keyfunc.NewDefaultCtx(ctx, []string{s.jwksURL})
	if err != nil {
		return nil, fmt.Errorf("fetch JWKS from %s: %w", s.jwksURL, err)
	}

	logger.Info("token verifier initialized", "jwks_url", s.jwksURL, "audience", audience)

	return &Verifier{
		keys:     keys,
		audience: audience,
		issuer:   fmt.Sprintf("https://%s/", domain),
		logger:   logger,
	}, nil
}

// Verify parses and validates a raw bearer token. Signature, algorithm,
// audience, issuer and expiry are all enforced; any failure collapses into
// *auth.InvalidTokenError so callers cannot leak verification internals.
func (v *Verifier) Verify(ctx context.Context, rawToken string) (*auth.Claims, error) {
	registered := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(rawToken, registered, v.keys.Keyfunc,
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithAudience(v.audience),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		v.logger.Debug("token rejected", "reason", err)
		return nil, &auth.InvalidTokenError{Reason: err.Error()}
	}
	if !token.Valid {
		return nil, &auth.InvalidTokenError{Reason: "token is not valid"}
	}

	claims := &auth.Claims{
		Subject:  registered.Subject,
		Audience: registered.Audience,
		Issuer:   registered.Issuer,
	}
	if registered.ExpiresAt != nil {
		claims.ExpiresAt = registered.ExpiresAt.Time
	}
	if registered.IssuedAt != nil {
		claims.IssuedAt = registered.IssuedAt.Time
	}
	return claims, nil
}

// Compile-time interface verification.
var _ auth.TokenVerifier = (*Verifier)(nil)
