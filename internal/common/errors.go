// Package common holds the errors, logging setup and retry helper shared by
// tally's packages.
package common

import (
	"errors"
	"fmt"
)

var (
	// ErrClassificationFailed marks a run aborted because an oracle failed.
	ErrClassificationFailed = errors.New("categorization failed")

	// ErrMissingConfig marks a required setting that was not provided.
	ErrMissingConfig = errors.New("missing configuration")
	// ErrInvalidConfig marks a setting whose value cannot be used.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrRateLimit marks a remote API refusing requests for a while.
	ErrRateLimit = errors.New("rate limit exceeded")
	// ErrMaxRetries marks an operation that kept failing after every attempt.
	ErrMaxRetries = errors.New("max retries exceeded")
)

// UserError pairs an error with a message telling the user what to do next.
type UserError struct {
	Err     error
	Message string
}

// NewUserError wraps err with a message for the terminal.
func NewUserError(message string, err error) error {
	return &UserError{Message: message, Err: err}
}

func (e *UserError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *UserError) Unwrap() error { return e.Err }

// RetryableError tells WithRetry whether a failed call is worth repeating.
type RetryableError struct {
	Err       error
	Retryable bool
}

// Retryable marks err as transient.
func Retryable(err error) error {
	return &RetryableError{Err: err, Retryable: true}
}

func (e *RetryableError) Error() string { return e.Err.Error() }

func (e *RetryableError) Unwrap() error { return e.Err }
