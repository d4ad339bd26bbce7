package graphql

import (
	"fmt"

	"github.com/alexwatever/wept/internal/domain/apperror"
)

// Error is a transport or protocol failure. It reports its kind through
// ErrorKind so callers can classify it with apperror.Classify.
type Error struct {
	Kind    apperror.Kind
	Op      string
	Message string
	// ServerErrors holds the backend's errors array for GraphQL failures.
	ServerErrors []ServerError
	Err          error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("graphql %s: %s", e.Op, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorKind implements apperror.Classifier.
func (e *Error) ErrorKind() apperror.Kind {
	return e.Kind
}

var _ apperror.Classifier = (*Error)(nil)
