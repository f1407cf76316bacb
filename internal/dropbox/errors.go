package dropbox

import (
	"errors"
	"fmt"
)

// ErrCursorReset is returned when Dropbox invalidates a list_folder cursor and
// a new one must be obtained with GetLatestCursor.
var ErrCursorReset = errors.New("dropbox cursor reset")

// UpstreamError is a non-2xx or undecodable response from the Dropbox API.
type UpstreamError struct {
	Endpoint   string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("dropbox %s: %v", e.Endpoint, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("dropbox %s: status %d: %v", e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("dropbox %s: status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
