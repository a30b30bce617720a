package vision

import "fmt"

// ErrorKind classifies a vision API failure.
type ErrorKind string

const (
	KindNetwork   ErrorKind = "network"
	KindAuth      ErrorKind = "auth"
	KindRateLimit ErrorKind = "rate_limit"
	KindMalformed ErrorKind = "malformed_response"
)

// APIError is any failure talking to the vision endpoint. Kind distinguishes
// network errors, auth rejections, rate limiting, and responses the client
// could not make sense of.
type APIError struct {
	Kind   ErrorKind
	Status int
	Msg    string
	Err    error
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("vision API %s error (HTTP %d): %s", e.Kind, e.Status, e.Msg)
	}
	return fmt.Sprintf("vision API %s error: %s", e.Kind, e.Msg)
}

func (e *APIError) Unwrap() error { return e.Err }
