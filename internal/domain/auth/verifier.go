package auth

import "context"

// TokenVerifier validates raw bearer tokens against a remote signing-key set.
//
// Verification is synchronous and stateless per call; implementations hold a
// single cached key-set client constructed once at startup and safe for
// concurrent use. Any validation failure is returned as an *InvalidTokenError.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (*Claims, error)
}
