package agriconnect

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// ErrNoActiveUser is returned when a profile operation runs without a signed
// in user. No network write happens in that case.
var ErrNoActiveUser = errors.New("no user logged in", errors.CategoryAuth).
	WithTextCode("NO_ACTIVE_USER")

// ErrStoreClosed is returned when an operation hits a torn down store
var ErrStoreClosed = errors.New("session store is closed", errors.CategoryOperation).
	WithTextCode("STORE_CLOSED")

// ErrAlreadyBootstrapped guards the one-shot startup sequence
var ErrAlreadyBootstrapped = errors.New("session store already bootstrapped", errors.CategoryOperation).
	WithTextCode("ALREADY_BOOTSTRAPPED")

// ErrProfileNotFound is the error adapters return for missing profile rows
var ErrProfileNotFound = errors.New("profile not found", errors.CategoryNotFound).
	WithTextCode("PROFILE_NOT_FOUND")

// ErrInvalidCredentials is the error adapters return for rejected logins
var ErrInvalidCredentials = errors.New("invalid login credentials", errors.CategoryAuth).
	WithTextCode("INVALID_CREDENTIALS")

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsCredentialsError will check for rejected-credential errors coming back
// from either provider adapter.
func IsCredentialsError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.TextCode == "INVALID_CREDENTIALS"
	}
	return strings.Contains(err.Error(), "invalid login credentials")
}
