package supabase

import "fmt"

// RequestError is returned when a request never got a response or the
// response carried a non-2xx status. StatusCode is zero for transport failures.
type RequestError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("supabase: request failed: %s", e.Message)
	}
	return fmt.Sprintf("supabase: HTTP %d: %s", e.StatusCode, e.Message)
}

func (e *RequestError) Unwrap() error { return e.Err }
