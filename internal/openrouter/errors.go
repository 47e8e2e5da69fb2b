package openrouter

import "fmt"

// Kind classifies OpenRouter failures for callers that need to branch on
// them. The zero value is the generic API failure.
type Kind int

const (
	// KindAPI is a non-retryable request failure (4xx other than auth/429).
	KindAPI Kind = iota
	// KindAuth means the API key was rejected (401/403). Never retried.
	KindAuth
	// KindRateLimit means 429 persisted after retries. The user may try later.
	KindRateLimit
	// KindTransient means a 5xx or network failure persisted after retries.
	KindTransient
	// KindBadResponse means the server payload didn't match the protocol —
	// a non-JSON body, a non-object, or a completion without text content.
	KindBadResponse
)

// Error is the error type for all OpenRouter failures. Message preserves the
// server-provided error text when one could be parsed. Status is 0 when no
// HTTP response was received.
type Error struct {
	Kind    Kind
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("openrouter: %s (status %d)", e.Message, e.Status)
	}
	return "openrouter: " + e.Message
}

func authError(status int, message string) *Error {
	return &Error{Kind: KindAuth, Status: status, Message: message}
}

func badResponse(message string) *Error {
	return &Error{Kind: KindBadResponse, Message: message}
}
