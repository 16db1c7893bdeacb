package generation

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCompletion is returned when the upstream reply has no text.
	ErrEmptyCompletion = errors.New("empty upstream completion")
	// ErrMalformedFileSet is returned when a code generation response cannot
	// be read as a path to content mapping.
	ErrMalformedFileSet = errors.New("malformed file set")
	// ErrEmptyFileSet is returned when a code generation response has no files.
	ErrEmptyFileSet = errors.New("empty file set")
)

// HTTPError is a non-2xx upstream response.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "upstream http error"
	}
	if e.Body == "" {
		return fmt.Sprintf("upstream http error: status=%d", e.StatusCode)
	}
	return fmt.Sprintf("upstream http error: status=%d body=%s", e.StatusCode, e.Body)
}
