package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMissingUsername        = errors.New("missing username")
	ErrMissingCredentials     = errors.New("missing ubisoft credentials")
	ErrPlayerNotFound         = errors.New("player not found")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrTwoFactorRequired      = errors.New("two-factor authentication is required, please disable 2FA on the Ubisoft account")
	ErrTemporarilyUnavailable = errors.New("temporarily unavailable")
)

// ExternalServiceError wraps a failure from the stats service that is not one of the
// expected outcomes (missing input, player not found)
type ExternalServiceError struct {
	Op  string
	Err error
}

func (e *ExternalServiceError) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err.Error())
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}
