package graph

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidProject is wrapped by every validation error returned from
// Build. These are input errors: the task list has to be fixed by the user.
var ErrInvalidProject = errors.New("invalid project")

// DuplicateIDError reports two task records sharing an id.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate task id %q", e.ID)
}

func (e *DuplicateIDError) Unwrap() error { return ErrInvalidProject }

// UnknownDependencyError reports a predecessor id absent from the task set.
type UnknownDependencyError struct {
	TaskID       string
	DependencyID string
}

func (e *UnknownDependencyError) Error() string {
	return fmt.Sprintf("task %q depends on unknown task %q", e.TaskID, e.DependencyID)
}

func (e *UnknownDependencyError) Unwrap() error { return ErrInvalidProject }

// CycleError reports a dependency cycle. Cycle lists the participating ids
// in dependency order with the first id repeated at the end.
type CycleError struct {
	Cycle []string
}

func (e *CycleError) Error() string {
	return "dependency cycle detected: " + strings.Join(e.Cycle, " -> ")
}

func (e *CycleError) Unwrap() error { return ErrInvalidProject }

// InvalidTaskError wraps a record level validation failure.
type InvalidTaskError struct {
	TaskID string
	Err    error
}

func (e *InvalidTaskError) Error() string {
	return e.Err.Error()
}

func (e *InvalidTaskError) Unwrap() []error { return []error{ErrInvalidProject, e.Err} }

// TaskIDs returns the task ids an error refers to, so the presentation
// layer can point the user at them. It returns nil for other errors.
func TaskIDs(err error) []string {
	var dup *DuplicateIDError
	var unk *UnknownDependencyError
	var cyc *CycleError
	var inv *InvalidTaskError
	switch {
	case errors.As(err, &dup):
		return []string{dup.ID}
	case errors.As(err, &unk):
		return []string{unk.TaskID, unk.DependencyID}
	case errors.As(err, &cyc):
		return uniq(cyc.Cycle)
	case errors.As(err, &inv):
		if inv.TaskID == "" {
			return nil
		}
		return []string{inv.TaskID}
	}
	return nil
}

// Kind names the error class for machine readable output.
func Kind(err error) string {
	var dup *DuplicateIDError
	var unk *UnknownDependencyError
	var cyc *CycleError
	var inv *InvalidTaskError
	switch {
	case errors.As(err, &dup):
		return "duplicate_id"
	case errors.As(err, &unk):
		return "unknown_dependency"
	case errors.As(err, &cyc):
		return "cycle"
	case errors.As(err, &inv):
		return "invalid_task"
	}
	return ""
}

func uniq(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	var out []string
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
