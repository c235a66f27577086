package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyResult indicates the source returned zero questions for the
	// requested filters.
	ErrEmptyResult = errors.New("no questions matched the requested filters")
	// ErrFetchTimeout indicates the question source did not respond in time.
	ErrFetchTimeout = errors.New("question source timed out")
	// ErrStartSuperseded indicates a start attempt finished after the user
	// had already quit or restarted; its results must be discarded.
	ErrStartSuperseded = errors.New("quiz start superseded")
	// ErrSessionOver indicates an intent arrived for a session that has
	// already completed or been quit.
	ErrSessionOver = errors.New("quiz session is over")
)

// RangeError reports a settings field outside its allowed bounds.
type RangeError struct {
	Field string
	Min   int
	Max   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s must be between %d and %d", e.Field, e.Min, e.Max)
}

// StatusError reports a non-200 HTTP response from the question source.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("question source returned HTTP %d", e.Code)
}

// APIError reports a provider-level failure signalled through the response
// body's code field rather than the transport status.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("question source error %d: %s", e.Code, e.Message)
}
