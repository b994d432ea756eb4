package api

import "fmt"

// The error taxonomy below is what callers branch on. Every error
// carries the HTTP status and the verbatim response body when one was
// received, so the reviewer can always see why a call failed.

// TransportError means no response was received at all.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServerError is an unexpected non-2xx response.
type ServerError struct {
	Status int
	Body   string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.Status, e.Body)
}

// ValidationError means the input was rejected, either before any
// network call (Status 0) or by the server (400/422).
type ValidationError struct {
	Status int
	Body   string
}

func (e *ValidationError) Error() string {
	if e.Status == 0 {
		return e.Body
	}

	return fmt.Sprintf("rejected (%d): %s", e.Status, e.Body)
}

// NotFoundError means the submission no longer exists server-side.
// Callers treat this as a stale selection, not a failure to retry.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("submission %s not found", e.ID)
}

// ConflictError means the submission's state changed server-side since
// it was last read, e.g. it was already approved by another actor.
type ConflictError struct {
	ID     string
	Status int
	Body   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("submission %s conflict (%d): %s", e.ID, e.Status, e.Body)
}
