package catalog

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound matches service errors for ids the service does not know.
// Use errors.Is against errors returned from Get, Update and Delete.
var ErrNotFound = errors.New("catalog: product not found")

// TransportError reports a request that produced no response at all
// (connection refused, timeout, canceled context).
type TransportError struct {
	Op  string // operation name, e.g. "list", "delete"
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("catalog: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServiceError reports a response with a non-success status. Message carries
// the service's own message when the body had one.
type ServiceError struct {
	Op      string
	Status  int
	Message string
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("catalog: %s: %s (status %d)", e.Op, e.Message, e.Status)
	}
	return fmt.Sprintf("catalog: %s: status %d", e.Op, e.Status)
}

// Is maps 404 responses onto ErrNotFound for errors.Is checks.
func (e *ServiceError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}
