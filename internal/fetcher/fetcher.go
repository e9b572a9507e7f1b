// Package fetcher defines the page retrieval contract used by the harvester.
package fetcher

import (
	"context"
	"errors"
	"fmt"
)

// Fetcher retrieves the raw markup of a single URL. Implementations do not
// retry; retry policy, if any, belongs to the caller.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Error describes a failed fetch. StatusCode is zero when the failure
// happened below HTTP (DNS, dial, timeout), non-zero for a non-2xx response.
type Error struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusOf extracts the HTTP status from a fetch error, or zero if the error
// is not a fetch error or never reached HTTP.
func StatusOf(err error) int {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.StatusCode
	}
	return 0
}
