package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseLoad     Phase = "load"     // schema file loading
	PhaseParse    Phase = "parse"    // attribute and literal parsing
	PhaseSchema   Phase = "schema"   // schema construction
	PhaseLayout   Phase = "layout"   // word layout resolution
	PhaseGenerate Phase = "generate" // source generation
	PhasePack     Phase = "pack"     // value to buffer
	PhaseUnpack   Phase = "unpack"   // buffer to value
	PhasePrint    Phase = "print"    // value to text
)

// Kind categorizes the error
type Kind string

const (
	KindTypeMismatch    Kind = "type_mismatch"
	KindInvalidData     Kind = "invalid_data"
	KindInvalidInput    Kind = "invalid_input"
	KindInvalidLiteral  Kind = "invalid_literal"
	KindInvalidWidth    Kind = "invalid_width"
	KindInvalidModifier Kind = "invalid_modifier"
	KindInvalidLength   Kind = "invalid_length"
	KindUnknownType     Kind = "unknown_type"
	KindDuplicate       Kind = "duplicate"
	KindOverlap         Kind = "overlap"
	KindCycle           Kind = "cycle"
	KindContract        Kind = "contract"
	KindOverflow        Kind = "overflow"
	KindFieldUnknown    Kind = "field_unknown"
	KindReadOnly        Kind = "read_only"
	KindNotFound        Kind = "not_found"
	KindUnsupported     Kind = "unsupported"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Struct string
	Type   string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Struct != "" || len(e.Path) > 0 {
		b.WriteString(" at ")
		if e.Struct != "" {
			b.WriteString(e.Struct)
			if len(e.Path) > 0 {
				b.WriteByte('.')
			}
		}
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Type != "" {
		b.WriteString(": type ")
		b.WriteString(e.Type)
	}

	if e.Detail != "" {
		if e.Type != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Struct sets the owning struct name
func (b *Builder) Struct(name string) *Builder {
	b.err.Struct = name
	return b
}

// Type sets the semantic type name
func (b *Builder) Type(t string) *Builder {
	b.err.Type = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, got any, want string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Path:   path,
		Type:   want,
		Detail: fmt.Sprintf("cannot use %T", got),
		Value:  got,
	}
}

// Contract creates a run-time contract violation. These are raised with panic.
func Contract(phase Phase, path []string, value any, format string, args ...any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindContract,
		Path:   path,
		Detail: fmt.Sprintf(format, args...),
		Value:  value,
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, path []string, value any, width int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Path:   path,
		Detail: fmt.Sprintf("value %v does not fit in %d bits", value, width),
		Value:  value,
	}
}

// FieldUnknown creates an unknown field error
func FieldUnknown(phase Phase, structName, fieldName string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindFieldUnknown,
		Struct: structName,
		Detail: fmt.Sprintf("unknown field %q", fieldName),
	}
}

// InvalidWidth creates a field width error
func InvalidWidth(structName string, path []string, typ string, detail string) *Error {
	return &Error{
		Phase:  PhaseSchema,
		Kind:   KindInvalidWidth,
		Struct: structName,
		Path:   path,
		Type:   typ,
		Detail: detail,
	}
}

// Duplicate creates a duplicate name error
func Duplicate(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDuplicate,
		Detail: fmt.Sprintf("duplicate %s %q", what, name),
		Value:  name,
	}
}

// InvalidLiteral creates a numeric literal error
func InvalidLiteral(literal string, detail string) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidLiteral,
		Detail: fmt.Sprintf("%q: %s", literal, detail),
		Value:  literal,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Load creates a schema loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}

// ParseFailed creates a parsing error
func ParseFailed(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidData,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
	}
}

// Recover converts a contract panic raised by pack or unpack into an error.
// Any other panic value is re-raised.
//
//	defer errors.Recover(&err)
func Recover(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	if e, ok := r.(*Error); ok {
		*errp = e
		return
	}
	panic(r)
}
