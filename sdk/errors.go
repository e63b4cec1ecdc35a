package samplefeed

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is returned when the samplefeed API responds with a non-success status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("samplefeed: HTTP %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is an APIError for a sample that does not exist.
func IsNotFound(err error) bool {
	var e *APIError
	return errors.As(err, &e) && e.StatusCode == http.StatusNotFound
}
