package errors

import (
	"errors"
	"fmt"
)

// Common error types for the badstats credential core
var (
	// Configuration errors
	ErrConfiguration = errors.New("missing configuration value")

	// Token lifecycle errors
	ErrTokenRequest = errors.New("token request failed")
	ErrTokenRefresh = errors.New("token refresh failed")
	ErrNotPersisted = errors.New("token has no persisted identity")

	// Handshake errors
	ErrInvalidCSRF  = errors.New("invalid csrf token")
	ErrInvalidState = errors.New("invalid state parameter")

	// Session errors
	ErrSessionExpired   = errors.New("session expired")
	ErrSessionInvalid   = errors.New("session invalid")
	ErrNotAuthenticated = errors.New("no user token for session")

	// Upstream errors
	ErrUpstreamAPI = errors.New("upstream api error")

	// General errors
	ErrNotFound = errors.New("not found")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
