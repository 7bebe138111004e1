package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

var (
	// ErrUnexpectedShape marks a successful response that lacks the field
	// the operation exists to return. Callers treat it as a no-op.
	ErrUnexpectedShape = errors.New("unexpected response shape")

	// ErrMissingProjectID is returned before any request when an operation
	// needs a project id and none is known.
	ErrMissingProjectID = errors.New("project id not found")

	ErrResponseTooLarge = errors.New("response body too large")
)

// Error is the normalized failure of one request. Status is zero when no
// HTTP response was received.
type Error struct {
	Method string
	URL    string
	Status int
	Body   []byte
	Err    error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
	}
	body := strings.TrimSpace(string(e.Body))
	if body == "" {
		if errors.Is(e.Err, ErrResponseTooLarge) {
			return fmt.Sprintf("%s %s: status %d: %v", e.Method, e.URL, e.Status, e.Err)
		}
		return fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.Status)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.Status, body)
}

func (e *Error) Unwrap() error { return e.Err }

// Timeout reports whether the request hit the client deadline.
func (e *Error) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}

// StatusOf extracts the HTTP status from err, or 0.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
