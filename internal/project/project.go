package project

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Task is one unit of work: an identifier, a duration and the ids of the
// tasks that must finish before it can start.
type Task struct {
	ID           string   `json:"id" yaml:"id" validate:"required"`
	Duration     float64  `json:"duration" yaml:"duration" validate:"gte=0"`
	Predecessors []string `json:"predecessors,omitempty" yaml:"predecessors,omitempty" validate:"dive,required"`
}

// FieldError describes a single invalid field on a task record.
type FieldError struct {
	TaskID string
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	if e.TaskID == "" {
		return fmt.Sprintf("%s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("task %q: %s %s", e.TaskID, e.Field, e.Reason)
}

var (
	validate *validator.Validate
	once     sync.Once
)

func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return strings.ToLower(fld.Name)
			}
			return name
		})
	})
	return validate
}

// Validate checks the record in isolation. Cross-task rules (unique ids,
// known predecessors, acyclicity) belong to the graph builder.
func (t Task) Validate() error {
	if math.IsNaN(t.Duration) || math.IsInf(t.Duration, 0) {
		return &FieldError{TaskID: t.ID, Field: "duration", Reason: "must be a finite number"}
	}
	err := getValidator().Struct(t)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return &FieldError{TaskID: t.ID, Field: "task", Reason: err.Error()}
	}
	fe := verrs[0]
	return &FieldError{TaskID: t.ID, Field: fieldName(fe), Reason: reason(fe)}
}

func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	// dive errors are reported as "predecessors[2]"
	if i := strings.IndexByte(name, '['); i > 0 {
		name = name[:i]
	}
	return name
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must not be negative"
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

// Clone returns a deep copy so callers can keep mutating their own slice.
func (t Task) Clone() Task {
	c := t
	if t.Predecessors != nil {
		c.Predecessors = append([]string(nil), t.Predecessors...)
	}
	return c
}
