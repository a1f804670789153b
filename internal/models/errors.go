package models

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest signals malformed user input: an unparseable repository
// or a missing/out-of-range request field. It is never retried.
var ErrInvalidRequest = errors.New("invalid request")

// UpstreamError wraps a failure from one of the upstream collection fetches.
// Detail carries the upstream message verbatim where one is available.
type UpstreamError struct {
	Collection string
	Status     int
	Detail     string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Collection == "" {
		return fmt.Sprintf("upstream error: %s", e.Detail)
	}
	return fmt.Sprintf("upstream %s: %s", e.Collection, e.Detail)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsUpstream reports whether err is or wraps an *UpstreamError.
func IsUpstream(err error) bool {
	var upErr *UpstreamError
	return errors.As(err, &upErr)
}
