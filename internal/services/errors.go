package services

import "errors"

// ErrMissingCredential means a provider was selected without its API key.
var ErrMissingCredential = errors.New("provider credential is not configured")

// errEmptyResponse is returned when a provider answers without content.
var errEmptyResponse = errors.New("provider returned an empty response")

// Custom errors
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }

type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

type ForbiddenError struct{ Message string }

func (e *ForbiddenError) Error() string { return e.Message }

type RateLimitError struct{ Message string }

func (e *RateLimitError) Error() string { return e.Message }
