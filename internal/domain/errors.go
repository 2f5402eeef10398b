package domain

import "fmt"

// Error taxonomy. Transport maps these to HTTP statuses (validation 400,
// auth 401 or error-redirect, not-found 404); upstream failures are fatal
// or best-effort depending on the call site, never implicit.

// ValidationError marks missing or malformed caller input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// AuthError marks a failed security check: malformed or expired OAuth
// state, or a webhook signature mismatch.
type AuthError struct {
	Code    string // malformed_state, state_expired, invalid_signature
	Message string
}

func (e *AuthError) Error() string { return e.Message }

const (
	AuthCodeMalformedState   = "malformed_state"
	AuthCodeStateExpired     = "state_expired"
	AuthCodeInvalidSignature = "invalid_signature"
)

func NewAuthError(code, message string) error {
	return &AuthError{Code: code, Message: message}
}

// NotFoundError marks a lookup for a connection or record that does not
// exist (or is no longer active).
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func NewNotFoundError(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// UpstreamError wraps a provider API failure. Whether it aborts the
// surrounding transaction is the caller's decision.
type UpstreamError struct {
	Provider string
	Op       string
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func NewUpstreamError(provider, op string, err error) error {
	return &UpstreamError{Provider: provider, Op: op, Err: err}
}
