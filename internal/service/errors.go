package service

import (
	"errors"

	"hamrosewa/internal/backend"
	"hamrosewa/internal/domain"
)

var ErrTooManyAttempts = errors.New("too many attempts")

// UserMessage maps an error to the notice shown to the visitor.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}

	if errors.Is(err, domain.ErrUnreachable) {
		return "We can't reach the server right now. Please check your connection and try again."
	}

	if errors.Is(err, domain.ErrNotFound) {
		return "We couldn't find what you were looking for."
	}

	if errors.Is(err, ErrTooManyAttempts) {
		return "Too many attempts. Please wait a minute and try again."
	}

	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}

	return "Something went wrong. Please try again."
}
