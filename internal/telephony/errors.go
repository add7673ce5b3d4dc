package telephony

import (
	"errors"
	"fmt"
	"net/http"
)

// Error taxonomy. APIError wraps one of these so callers can use errors.Is.
var (
	ErrAuth          = errors.New("telephony: unauthorized")
	ErrNotFound      = errors.New("telephony: not found")
	ErrValidation    = errors.New("telephony: invalid request")
	ErrServer        = errors.New("telephony: server error")
	ErrTimeout       = errors.New("telephony: request timed out")
	ErrUnknownStatus = errors.New("telephony: unknown campaign status")
	ErrMalformed     = errors.New("telephony: malformed response")
)

// APIError is returned for every failed request. Status is 0 when no HTTP response arrived.
type APIError struct {
	Op     string
	Status int
	Kind   error
	Body   string
}

func (e *APIError) Error() string {
	switch {
	case e.Status == 0 && e.Kind != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	case e.Kind != nil:
		return fmt.Sprintf("%s: %v (status %d)", e.Op, e.Kind, e.Status)
	default:
		return fmt.Sprintf("%s: api error (status %d)", e.Op, e.Status)
	}
}

func (e *APIError) Unwrap() error { return e.Kind }

func classify(status int) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrAuth
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusBadRequest:
		return ErrValidation
	case status >= 500:
		return ErrServer
	default:
		return nil
	}
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Status
	}
	return 0
}

// IsCredentialFailure reports whether err means the stored token or outbound id is unusable.
func IsCredentialFailure(err error) bool {
	return errors.Is(err, ErrAuth) || errors.Is(err, ErrNotFound)
}

// UserMessage turns err into a short sentence suitable for a notification.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	status := StatusOf(err)
	switch {
	case errors.Is(err, ErrTimeout):
		return "Request timed out. Please try again."
	case status == http.StatusUnauthorized:
		return "Invalid bearer token. Please check your credentials."
	case status == http.StatusForbidden:
		return "Access denied. Please check your permissions."
	case errors.Is(err, ErrNotFound):
		return "Outbound ID not found. Please verify your configuration."
	case errors.Is(err, ErrValidation):
		return "Invalid request. Please check your outbound ID and bearer token."
	case errors.Is(err, ErrServer):
		return "Server error. Please try again later."
	case errors.Is(err, ErrUnknownStatus):
		return "Received an unexpected campaign status. Expected 1 (ON) or 2 (OFF)."
	case status > 0:
		return fmt.Sprintf("API error (%d).", status)
	default:
		return "An unexpected error occurred."
	}
}
