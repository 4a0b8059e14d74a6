package rest

import "fmt"

// StatusError is returned when the API answers a request with a non-success
// status code. The response body is kept so callers can show the backend's
// own error payload.
type StatusError struct {
	StatusCode int
	URL        string
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d for %s: %s", e.StatusCode, e.URL, snippet(e.Body))
}

// InvalidResponseError is returned when a response body cannot be decoded
// into the expected shape. The raw body is kept for diagnostics.
type InvalidResponseError struct {
	URL  string
	Body []byte
	Err  error
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("invalid response from %s: %v: %s", e.URL, e.Err, snippet(e.Body))
}

func (e *InvalidResponseError) Unwrap() error { return e.Err }

// snippet keeps error messages readable when the backend returns a large
// body.
func snippet(body []byte) string {
	const limit = 256
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
