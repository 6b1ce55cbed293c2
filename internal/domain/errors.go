package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrTimeout      = errors.New("timeout")
	ErrFetchFailure = errors.New("unable to fetch feed from any source")
	ErrParseFailure = errors.New("failed to parse feed")
)

// HTTPError is returned when an endpoint answers with a non-2xx status.
type HTTPError struct {
	Status int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d", e.Status)
}

// FetchError aggregates the failures of every endpoint attempt.
type FetchError struct {
	FeedURL  string
	Attempts []error
}

func (e *FetchError) Error() string {
	if len(e.Attempts) == 0 {
		return fmt.Sprintf("%s (%s): no endpoints configured", ErrFetchFailure, e.FeedURL)
	}
	msgs := make([]string, len(e.Attempts))
	for i, err := range e.Attempts {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%s (%s): %s", ErrFetchFailure, e.FeedURL, strings.Join(msgs, "; "))
}

func (e *FetchError) Unwrap() []error {
	return append([]error{ErrFetchFailure}, e.Attempts...)
}

// ParseError is returned when the payload is not a well-formed document.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %v", ErrParseFailure, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParseFailure, e.Err}
}
