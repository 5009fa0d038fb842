package core

import (
	"fmt"
	"strings"
)

// TypeMismatchError reports a dtype combination with no promotion rule, or
// an operation applied to a dtype it is not defined for. It is always
// surfaced to the caller, never silently coerced. Op names the offending
// operation when an engine kernel raises it.
type TypeMismatchError struct {
	Op     string
	DTypes []DType
}

func (e *TypeMismatchError) Error() string {
	if len(e.DTypes) == 0 {
		return "no dtypes to combine"
	}
	names := make([]string, len(e.DTypes))
	for i, dt := range e.DTypes {
		names[i] = dt.String()
	}
	list := strings.Join(names, ", ")
	if e.Op != "" {
		return fmt.Sprintf("%s is not defined for dtypes (%s)", e.Op, list)
	}
	return fmt.Sprintf("no promotion rule for dtypes (%s)", list)
}

// DimensionError reports a named dimension that does not exist in the
// operand's shape, or dimensions that cannot be aligned. Reductions over a
// missing name fail with this error instead of silently doing nothing.
type DimensionError struct {
	Name  string
	Shape Shape
	Cause string
}

func (e *DimensionError) Error() string {
	if e.Cause != "" {
		return fmt.Sprintf("dimension %q: %s", e.Name, e.Cause)
	}
	return fmt.Sprintf("dimension %q not present in shape %s", e.Name, e.Shape)
}

// NotSupportedError reports an abstract operation the active backend does not
// implement. It carries the operation and backend names so callers can catch
// it and fall back to another backend.
type NotSupportedError struct {
	Op      string
	Backend string
}

func (e *NotSupportedError) Error() string {
	return fmt.Sprintf("operation %s is not supported by backend %q", e.Op, e.Backend)
}
