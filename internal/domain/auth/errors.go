package auth

import (
	"errors"
	"fmt"
)

// ErrInvalidToken is the sentinel all verification failures wrap.
// Use errors.Is(err, ErrInvalidToken) to map to an unauthorized response.
var ErrInvalidToken = errors.New("invalid token")

// InvalidTokenError carries the underlying reason a token was rejected.
// Bad signature, wrong audience, wrong issuer, expired, malformed: all of
// these collapse into this one kind so callers cannot probe which check
// failed, while the reason text stays available for logs and the 401 detail.
type InvalidTokenError struct {
	Reason string
}

func (e *InvalidTokenError) Error() string {
	return fmt.Sprintf("invalid token: %s", e.Reason)
}

func (e *InvalidTokenError) Unwrap() error {
	return ErrInvalidToken
}
