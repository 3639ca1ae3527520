package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// Text codes attached to structured errors so API clients can branch on
// stable identifiers instead of message strings.
const (
	TextCodeInvalidCreds       = "INVALID_CREDENTIALS"
	TextCodeEmptyPassword      = "EMPTY_PASSWORD"
	TextCodeTokenExpired       = "TOKEN_EXPIRED"
	TextCodeTokenMalformed     = "TOKEN_MALFORMED"
	TextCodeTokenSignature     = "TOKEN_BAD_SIGNATURE"
	TextCodeTokenPurpose       = "TOKEN_WRONG_PURPOSE"
	TextCodeClaimsMappingError = "CLAIMS_MAPPING_ERROR"
	TextCodeDataParseError     = "DATA_PARSE_ERROR"
	TextCodeMissingSigningKey  = "MISSING_SIGNING_KEY"
	TextCodeNoMatchingRule     = "NO_MATCHING_RULE"
	TextCodeAuthRequired       = "AUTHENTICATION_REQUIRED"
	TextCodeInsufficientRole   = "INSUFFICIENT_ROLE"
	TextCodeDuplicateIdentity  = "DUPLICATE_IDENTITY"
	TextCodeMailDelivery       = "MAIL_DELIVERY_FAILED"
)

// ErrIdentityNotFound is returned when no identity matches the lookup key.
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound)

// ErrMismatchedHashAndPassword is returned when a password does not verify
// against the stored hash. Malformed hashes map here too so callers cannot
// distinguish the two cases.
var ErrMismatchedHashAndPassword = errors.New("the credentials provided are invalid", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(errors.CodeUnauthorized)

// ErrNoEmptyString is returned when an empty password reaches the hasher.
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword)

// ErrTokenExpired is returned for tokens whose exp claim is in the past.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned for tokens that fail to parse or carry an
// unusable subject.
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrTokenSignature is returned for tokens that parse but were not signed
// with the service key.
var ErrTokenSignature = errors.New("token signature is invalid", errors.CategoryAuth).
	WithTextCode(TextCodeTokenSignature).
	WithCode(errors.CodeUnauthorized)

// ErrTokenPurpose is returned when a token is presented to an operation it
// was not minted for, e.g. an access token on the password reset endpoint.
var ErrTokenPurpose = errors.New("token purpose mismatch", errors.CategoryAuth).
	WithTextCode(TextCodeTokenPurpose).
	WithCode(errors.CodeUnauthorized)

// ErrUnableToMapClaims is returned when a parsed token carries claims we
// cannot decode into AuthClaims.
var ErrUnableToMapClaims = errors.New("unable to map claims", errors.CategoryAuth).
	WithTextCode(TextCodeClaimsMappingError)

// ErrUnableToParseData is a parse error for request payloads.
var ErrUnableToParseData = errors.New("unable to parse data", errors.CategoryBadInput).
	WithTextCode(TextCodeDataParseError)

// ErrMissingSigningKey is a startup configuration error: the token service
// refuses to construct without key material.
var ErrMissingSigningKey = errors.New("signing key must not be empty", errors.CategoryInternal).
	WithTextCode(TextCodeMissingSigningKey)

// ErrNoMatchingRule is returned when no authorization rule covers a request.
// Unmatched requests are denied.
var ErrNoMatchingRule = errors.New("no authorization rule matches request", errors.CategoryAuthz).
	WithTextCode(TextCodeNoMatchingRule)

// ErrAuthenticationRequired is returned when a rule requires a principal and
// the request carries none.
var ErrAuthenticationRequired = errors.New("authentication required", errors.CategoryAuth).
	WithTextCode(TextCodeAuthRequired).
	WithCode(errors.CodeUnauthorized)

// ErrInsufficientRole is returned when the principal's role is not in the
// rule's allowed set.
var ErrInsufficientRole = errors.New("insufficient role", errors.CategoryAuthz).
	WithTextCode(TextCodeInsufficientRole)

// ErrDuplicateIdentity is returned when a username or email is already taken.
var ErrDuplicateIdentity = errors.New("username or email already registered", errors.CategoryConflict).
	WithTextCode(TextCodeDuplicateIdentity)

// IsTokenExpiredError will check for expired tokens, structured or legacy
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.TextCode == TextCodeTokenExpired
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.TextCode == TextCodeTokenMalformed
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
