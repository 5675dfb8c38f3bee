package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrBadRequest   = errors.New("bad request")
)

// Token validation failures. All of them are reported to clients as a plain
// unauthorized response; the distinction only matters to callers and logs.
var (
	ErrTokenExpired        = errors.New("token expired")
	ErrTokenMalformed      = errors.New("token malformed or signature invalid")
	ErrTokenTypeMismatch   = errors.New("token type mismatch")
	ErrTokenMissingSubject = errors.New("token missing subject")
)

// OTP lifecycle failures. ErrOTPAlreadyPending means a live code exists for
// the key and the first code was left untouched. ErrStoreUnavailable is
// transient and retryable, unlike the rejection outcomes.
var (
	ErrOTPAlreadyPending = errors.New("a code was already sent and is still valid")
	ErrStoreUnavailable  = errors.New("code store unavailable")
)

// Authentication outcomes. These are expected, frequent results, not aborts.
var (
	ErrInvalidCredentials   = errors.New("incorrect email or password")
	ErrInactiveAccount      = errors.New("inactive account")
	ErrUnauthenticated      = errors.New("unauthenticated")
	ErrInvalidOrExpiredCode = errors.New("invalid or expired code")
	ErrDeliveryFailed       = errors.New("code delivery failed")
)
