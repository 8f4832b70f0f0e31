package cpm

import (
	"errors"
	"fmt"
)

// ErrInternal marks defects in the engine itself. These are never caused by
// user input and retrying will not help.
var ErrInternal = errors.New("internal scheduling defect")

// InvariantViolationError reports a negative float, which can only come
// from a broken graph or a pass run out of order.
type InvariantViolationError struct {
	TaskID string
	Float  float64
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("negative float %g on task %q", e.Float, e.TaskID)
}

func (e *InvariantViolationError) Unwrap() error { return ErrInternal }
