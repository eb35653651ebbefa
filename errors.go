package auth

import (
	"github.com/goliatone/go-errors"
)

const (
	// TextCodeInvalidCredentials is shared by every credential mismatch.
	TextCodeInvalidCredentials = "INVALID_CREDENTIALS"
	// TextCodeTokenExpired marks tokens past their exp claim.
	TextCodeTokenExpired = "TOKEN_EXPIRED"
	// TextCodeTokenMalformed marks tokens that fail decoding or signature checks.
	TextCodeTokenMalformed = "TOKEN_MALFORMED"
	// TextCodeInvalidTicket marks unknown, used, or expired verification tickets.
	TextCodeInvalidTicket = "INVALID_OR_EXPIRED_TICKET"
)

// ErrInvalidCredentials is the uniform login failure. Unknown email, wrong
// password, and blocked account status all surface this same error so the
// endpoint leaks nothing about which part failed.
var ErrInvalidCredentials = errors.New("invalid credentials", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeUnauthorized)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound).
	WithTextCode("IDENTITY_NOT_FOUND").
	WithCode(errors.CodeNotFound)

// ErrDuplicateEmail is returned when registering an email already in use for the kind.
var ErrDuplicateEmail = errors.New("email is already registered", errors.CategoryConflict).
	WithTextCode("DUPLICATE_EMAIL").
	WithCode(errors.CodeConflict)

// ErrWeakPassword is returned when a password fails the minimum length rule.
var ErrWeakPassword = errors.New("password does not meet the minimum requirements", errors.CategoryValidation).
	WithTextCode("WEAK_PASSWORD").
	WithCode(errors.CodeBadRequest)

// ErrSamePassword is returned when a password change supplies the current password again.
var ErrSamePassword = errors.New("new password must be different from the current password", errors.CategoryValidation).
	WithTextCode("SAME_PASSWORD").
	WithCode(errors.CodeBadRequest)

// ErrInvalidOrExpiredTicket covers unknown, already used, and expired
// verification tickets. One error for all three keeps probing uninformative.
var ErrInvalidOrExpiredTicket = errors.New("invalid or expired token", errors.CategoryValidation).
	WithTextCode(TextCodeInvalidTicket).
	WithCode(errors.CodeBadRequest)

// ErrTokenExpired is returned when a JWT is past its expiration.
var ErrTokenExpired = errors.New("authentication token has expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned when a JWT cannot be decoded or verified.
var ErrTokenMalformed = errors.New("authentication token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrImmutableClaimMutation is returned when a claims decorator touches a
// registered or identity claim instead of the extension fields.
var ErrImmutableClaimMutation = errors.New("immutable claim mutated", errors.CategoryInternal).
	WithTextCode("IMMUTABLE_CLAIM_MUTATION").
	WithCode(errors.CodeInternal)

// ErrInsufficientRole is returned when valid claims lack a required role.
var ErrInsufficientRole = errors.New("insufficient role for this resource", errors.CategoryAuthz).
	WithTextCode("INSUFFICIENT_ROLE").
	WithCode(errors.CodeForbidden)

// ErrNoEmptyString is returned when hashing an empty password.
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation).
	WithTextCode("EMPTY_PASSWORD").
	WithCode(errors.CodeBadRequest)

// ErrAccountSuspended blocks suspended accounts from authenticating.
var ErrAccountSuspended = errors.New("account is suspended", errors.CategoryAuth).
	WithTextCode("ACCOUNT_SUSPENDED").
	WithCode(errors.CodeUnauthorized)

// ErrAccountDisabled blocks disabled accounts from authenticating.
var ErrAccountDisabled = errors.New("account is disabled", errors.CategoryAuth).
	WithTextCode("ACCOUNT_DISABLED").
	WithCode(errors.CodeUnauthorized)

// ErrAccountArchived blocks archived accounts from authenticating.
var ErrAccountArchived = errors.New("account is archived", errors.CategoryAuth).
	WithTextCode("ACCOUNT_ARCHIVED").
	WithCode(errors.CodeUnauthorized)

// statusAuthError maps a persisted account status to the auth error that
// should block the login. Pending accounts may still log in; verification
// gates feature access, not authentication.
func statusAuthError(status AccountStatus) *errors.Error {
	switch status {
	case AccountStatusSuspended:
		return ErrAccountSuspended
	case AccountStatusDisabled:
		return ErrAccountDisabled
	case AccountStatusArchived:
		return ErrAccountArchived
	default:
		return nil
	}
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.TextCode == TextCodeTokenExpired
	}
	return false
}

// IsMalformedError will check for undecodable tokens
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.TextCode == TextCodeTokenMalformed
	}
	return false
}
