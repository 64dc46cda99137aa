package fetch

import (
	"errors"
	"fmt"
)

var errNotJSON = errors.New("body is not valid JSON")

// TransportError is a failed HTTP exchange: connection error or a
// non-success status code.
type TransportError struct {
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: HTTP %d: %s", e.URL, e.StatusCode, truncate(e.Body, 200))
}

func (e *TransportError) Unwrap() error { return e.Err }

// MalformedResponseError is a successful request whose body could not be
// parsed as JSON.
type MalformedResponseError struct {
	URL string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("fetch %s: malformed response: %v", e.URL, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
