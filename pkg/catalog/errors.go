package catalog

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrTransport matches every failed catalog call: network errors,
	// non-success status codes and undecodable bodies.
	ErrTransport = errors.New("catalog transport error")

	// ErrNotFoundOrTransport matches a failed record fetch. It is an alias of
	// ErrTransport so callers can test either name.
	ErrNotFoundOrTransport = ErrTransport

	// ErrNotFound additionally matches a 404 from the record endpoint.
	ErrNotFound = errors.New("record not found")

	// ErrRetryExhausted is returned when all retry attempts are exhausted.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrContextCancelled is returned when the context is cancelled during retry.
	ErrContextCancelled = errors.New("context cancelled")
)

// ErrorClass represents a classification of catalog failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassDecode represents a success response with an unreadable body.
	ErrorClassDecode ErrorClass = "decode"
)

// Error describes a failed catalog call.
type Error struct {
	Endpoint   string
	StatusCode int
	ErrorClass ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("catalog %s error on %s (status %d): %s: %v",
			e.ErrorClass, e.Endpoint, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("catalog %s error on %s (status %d): %s",
		e.ErrorClass, e.Endpoint, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is makes every *Error match ErrTransport, and 404s match ErrNotFound.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrTransport:
		return true
	case ErrNotFound:
		return e.ErrorClass == ErrorClassClient && e.StatusCode == 404
	}
	return false
}

// classifyStatus maps an HTTP status code to an ErrorClass.
func classifyStatus(statusCode int) ErrorClass {
	switch {
	case statusCode >= 400 && statusCode < 500:
		return ErrorClassClient
	case statusCode >= 500:
		return ErrorClassServer
	default:
		// 1xx/3xx that survived redirects are still not a usable answer
		return ErrorClassServer
	}
}

// shouldRetry determines if an error should be retried based on its classification.
func shouldRetry(errorClass ErrorClass) bool {
	switch errorClass {
	case ErrorClassServer, ErrorClassNetwork:
		return true
	default:
		// 4xx and decode errors will not change on a second attempt
		return false
	}
}
