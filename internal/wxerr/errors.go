// Package wxerr defines the error taxonomy shared across the gateway:
// bad input, not found, upstream dependency failure, bulletin parse failure,
// client misuse, and fatal webhook dispatch failure. The HTTP layer maps each
// category to a distinct status class.
package wxerr

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that a coordinate or place could not be resolved even
// after an upstream attempt. Distinct from an upstream failure.
var ErrNotFound = errors.New("not found")

// InputError is a malformed coordinate or location payload. Callers must
// reject it before touching any cache.
type InputError struct {
	Msg string
}

func (e *InputError) Error() string { return e.Msg }

func Inputf(format string, args ...any) error {
	return &InputError{Msg: fmt.Sprintf(format, args...)}
}

// UpstreamError is any failure calling the weather agency: network error,
// non-2xx status, or a malformed response body. Never retried.
type UpstreamError struct {
	Endpoint string
	Status   int // zero when the failure happened before a response arrived
	Err      error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("upstream %s: status %d", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("upstream %s: %v", e.Endpoint, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ParseError reports a bulletin or product that failed a structural invariant.
// The offending entry is dropped, never fabricated.
type ParseError struct {
	Msg string
}

func (e *ParseError) Error() string { return e.Msg }

func Parsef(format string, args ...any) error {
	return &ParseError{Msg: fmt.Sprintf(format, args...)}
}

// ClientError is a 4xx-equivalent: an unrecognized alert type code or
// malformed rule configuration.
type ClientError struct {
	Msg string
}

func (e *ClientError) Error() string { return e.Msg }

func Clientf(format string, args ...any) error {
	return &ClientError{Msg: fmt.Sprintf(format, args...)}
}

// DispatchError aborts a webhook dispatch. Executed preserves the aggregate
// count of actions that completed before the failing call.
type DispatchError struct {
	Executed int
	Status   int // forwarded upstream status, zero on transport failure
	Err      error
}

func (e *DispatchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("dispatch aborted after %d actions: status %d", e.Executed, e.Status)
	}
	return fmt.Sprintf("dispatch aborted after %d actions: %v", e.Executed, e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }
