package identity

import (
	"errors"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New("identity not found")

// ErrNoEmptyString rejects empty required string inputs
var ErrNoEmptyString = errors.New("value must not be an empty string")

// ErrMismatchedHashAndPassword is returned when credentials do not match
var ErrMismatchedHashAndPassword = errors.New("credentials do not match")

// ErrTooManyLoginAttempts is returned when a user exceeds the attempt limit
var ErrTooManyLoginAttempts = errors.New("too many login attempts")

// ErrUserDeactivated is returned when a locked out user tries to authenticate
var ErrUserDeactivated = errors.New("user account is deactivated")

// ErrSigningKeyMissing is returned when the codec is asked to issue a token
// without a configured signing key. Distinct from malformed-input failures.
var ErrSigningKeyMissing = goerrors.New("token signing key is not configured", goerrors.CategoryInternal).
	WithTextCode("SIGNING_KEY_MISSING")

// ErrTokenExpired is returned by Validate for tokens past their expiration
var ErrTokenExpired = goerrors.New("authentication token has expired", goerrors.CategoryAuth).
	WithTextCode("TOKEN_EXPIRED").
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed is returned by Validate for tokens we cannot parse
var ErrTokenMalformed = goerrors.New("authentication token is malformed", goerrors.CategoryAuth).
	WithTextCode("TOKEN_MALFORMED").
	WithCode(goerrors.CodeUnauthorized)

// ErrBelowMinimumAge rejects customer sign-ups under the configured age
var ErrBelowMinimumAge = goerrors.New("age is below the required minimum", goerrors.CategoryValidation).
	WithTextCode("MIN_AGE_REQUIRED")

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if goerrors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
