// Package auth provides bearer-token verification domain types.
package auth

import "time"

// AnonymousIdentity is used when a verified token carries no subject claim.
// All such callers share one rate-limit bucket.
const AnonymousIdentity = "anonymous"

// Claims is the decoded payload of a verified bearer token.
// Produced fresh per request; never cached or mutated.
type Claims struct {
	// Subject is the token's "sub" claim (the user ID).
	Subject string

	// Audience is the token's "aud" claim.
	Audience []string

	// Issuer is the token's "iss" claim.
	Issuer string

	// ExpiresAt is the token's "exp" claim.
	ExpiresAt time.Time

	// IssuedAt is the token's "iat" claim.
	IssuedAt time.Time
}

// Identity returns the rate-limiting key for these claims: the subject,
// or AnonymousIdentity when the token has none.
func (c *Claims) Identity() string {
	if c.Subject == "" {
		return AnonymousIdentity
	}
	return c.Subject
}
