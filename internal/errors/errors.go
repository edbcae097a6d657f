package errors

import (
	"errors"
	"fmt"
)

// Common error types for the session gateway
var (
	// Credential errors
	ErrMissingCredentials = errors.New("email and password are required")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Identity-exchange errors
	ErrNotRegistered = errors.New("user not registered")

	// Token errors
	ErrNoAuthToken    = errors.New("no authentication token found")
	ErrTokenExpired   = errors.New("token expired")
	ErrRefreshFailed  = errors.New("failed to refresh token")
	ErrMissingRefresh = errors.New("refresh token is required")
	ErrMalformedToken = errors.New("malformed token")

	// Provider errors
	ErrUnknownProvider = errors.New("unknown identity provider")
	ErrInvalidState    = errors.New("invalid state parameter")
	ErrInvalidNonce    = errors.New("invalid nonce")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")

	// Backend errors
	ErrBackendRejected    = errors.New("backend rejected request")
	ErrBackendUnavailable = errors.New("backend unavailable")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
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
