package errors

import (
	"errors"
	"fmt"
)

// NotFoundError reports a lookup miss for a named kind of entity.
type NotFoundError struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func NewNotFoundError(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// InvalidStateError reports an operation attempted from the wrong lifecycle state.
type InvalidStateError struct {
	Operation string   `json:"operation"`
	Current   string   `json:"current"`
	Required  []string `json:"required"`
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s in state %s (requires %v)", e.Operation, e.Current, e.Required)
}

func NewInvalidStateError(operation, current string, required ...string) *InvalidStateError {
	return &InvalidStateError{
		Operation: operation,
		Current:   current,
		Required:  required,
	}
}

// AsNotFound unwraps err into a *NotFoundError, if it holds one.
func AsNotFound(err error) (*NotFoundError, bool) {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return nf, true
	}
	return nil, false
}

// AsInvalidState unwraps err into an *InvalidStateError, if it holds one.
func AsInvalidState(err error) (*InvalidStateError, bool) {
	var ise *InvalidStateError
	if errors.As(err, &ise) {
		return ise, true
	}
	return nil, false
}
