package marketplace

import (
	"errors"
	"fmt"
)

// ErrorCategory is the normalized taxonomy of transport failures.
type ErrorCategory string

const (
	// ErrorTimeout indicates the backend took too long to respond
	ErrorTimeout ErrorCategory = "timeout"

	// ErrorBadData indicates a response that could not be decoded
	ErrorBadData ErrorCategory = "bad_data"

	// ErrorOutage indicates the backend was unreachable or failed without an envelope
	ErrorOutage ErrorCategory = "outage"

	// ErrorInternal indicates a local failure building the request
	ErrorInternal ErrorCategory = "internal"
)

// ClientError wraps a transport failure. Messages are for logs, never for users.
type ClientError struct {
	Category   ErrorCategory
	Operation  string
	StatusCode int
	Message    string
	Underlying error
}

func (e *ClientError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("marketplace %s [%s]: %s: %v", e.Operation, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("marketplace %s [%s]: %s", e.Operation, e.Category, e.Message)
}

func (e *ClientError) Unwrap() error {
	return e.Underlying
}

func newClientError(category ErrorCategory, op string, status int, message string, underlying error) *ClientError {
	return &ClientError{
		Category:   category,
		Operation:  op,
		StatusCode: status,
		Message:    message,
		Underlying: underlying,
	}
}

// GetCategory extracts the category from an error, defaulting to ErrorInternal.
func GetCategory(err error) ErrorCategory {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Category
	}
	return ErrorInternal
}
