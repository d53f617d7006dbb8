package errors

import (
	"fmt"
	"strings"
)

// List collects every problem found while building or resolving a schema so
// that a single run reports all of them.
type List struct {
	Errors []*Error
}

// Add appends err when it is non-nil. Nested lists are flattened.
func (l *List) Add(err error) {
	switch e := err.(type) {
	case nil:
	case *Error:
		if e != nil {
			l.Errors = append(l.Errors, e)
		}
	case *List:
		if e != nil {
			l.Errors = append(l.Errors, e.Errors...)
		}
	default:
		l.Errors = append(l.Errors, &Error{Phase: PhaseSchema, Kind: KindInvalidData, Cause: err})
	}
}

// Len returns the number of collected errors
func (l *List) Len() int {
	return len(l.Errors)
}

// Err returns nil for an empty list, the single error for a list of one,
// and the list itself otherwise.
func (l *List) Err() error {
	switch len(l.Errors) {
	case 0:
		return nil
	case 1:
		return l.Errors[0]
	default:
		return l
	}
}

func (l *List) Error() string {
	if len(l.Errors) == 0 {
		return "[schema] invalid_data: no errors recorded"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%d schema error(s):\n", len(l.Errors)))

	// Group by struct for cleaner output
	byStruct := make(map[string][]*Error)
	var order []string
	for _, e := range l.Errors {
		if _, exists := byStruct[e.Struct]; !exists {
			order = append(order, e.Struct)
		}
		byStruct[e.Struct] = append(byStruct[e.Struct], e)
	}

	for _, name := range order {
		b.WriteString("\n  ")
		if name == "" {
			b.WriteString("(schema)")
		} else {
			b.WriteString(name)
		}
		b.WriteString(":\n")
		for _, e := range byStruct[name] {
			b.WriteString("    - ")
			b.WriteString(e.Error())
			b.WriteByte('\n')
		}
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// Is matches another List, or any contained error.
func (l *List) Is(target error) bool {
	if _, ok := target.(*List); ok {
		return true
	}
	for _, e := range l.Errors {
		if e.Is(target) {
			return true
		}
	}
	return false
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (l *List) Unwrap() []error {
	out := make([]error, len(l.Errors))
	for i, e := range l.Errors {
		out[i] = e
	}
	return out
}
