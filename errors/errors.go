package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseLoad    Phase = "load"    // descriptor parsing and registration
	PhaseCompile Phase = "compile" // converter construction
	PhaseEncode  Phase = "encode"  // Go value to bytes
	PhaseDecode  Phase = "decode"  // bytes to Go value
	PhaseSize    Phase = "size"    // serialized size computation
	PhaseLookup  Phase = "lookup"  // protocol and message dispatch
)

// Kind categorizes the error
type Kind string

const (
	KindUnknownType    Kind = "unknown_type"
	KindSchema         Kind = "schema"
	KindFieldMissing   Kind = "field_missing"
	KindLengthMismatch Kind = "length_mismatch"
	KindInvalidBits    Kind = "invalid_bits"
	KindOutOfBounds    Kind = "out_of_bounds"
	KindTypeMismatch   Kind = "type_mismatch"
	KindInvalidEnum    Kind = "invalid_enum"
	KindOverflow       Kind = "overflow"
	KindUnsupported    Kind = "unsupported"
	KindNotFound       Kind = "not_found"
	KindInvalidData    Kind = "invalid_data"
)

// Sentinels for errors.Is checks that do not care about the phase.
var (
	ErrUnknownType    = &Error{Kind: KindUnknownType}
	ErrSchema         = &Error{Kind: KindSchema}
	ErrFieldMissing   = &Error{Kind: KindFieldMissing}
	ErrLengthMismatch = &Error{Kind: KindLengthMismatch}
	ErrInvalidBits    = &Error{Kind: KindInvalidBits}
	ErrOutOfBounds    = &Error{Kind: KindOutOfBounds}
	ErrTypeMismatch   = &Error{Kind: KindTypeMismatch}
	ErrInvalidEnum    = &Error{Kind: KindInvalidEnum}
	ErrOverflow       = &Error{Kind: KindOverflow}
	ErrUnsupported    = &Error{Kind: KindUnsupported}
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrInvalidData    = &Error{Kind: KindInvalidData}
)

// Error is the structured error type used throughout the codec
type Error struct {
	Value    any
	Cause    error
	Phase    Phase
	Kind     Kind
	GoType   string
	TypeName string
	Detail   string
	Path     []string
}

// Error implements the error interface. An error produced by Within renders
// its own path with the detail of the innermost structured error.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(JoinPath(e.Path))
	}

	root := e.root()
	goType := root.GoType
	if goType == "" {
		goType = e.GoType
	}
	typeName := e.TypeName
	if typeName == "" {
		typeName = root.TypeName
	}

	if goType != "" || typeName != "" {
		b.WriteString(": ")
		if goType != "" && typeName != "" {
			b.WriteString("Go type ")
			b.WriteString(goType)
			b.WriteString(", type ")
			b.WriteString(typeName)
		} else if goType != "" {
			b.WriteString("Go type ")
			b.WriteString(goType)
		} else {
			b.WriteString("type ")
			b.WriteString(typeName)
		}
	}

	if root.Detail != "" {
		if goType != "" || typeName != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(root.Detail)
	}

	if root.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(root.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// root follows the cause chain through structured errors that carry no
// detail of their own, as produced by Within.
func (e *Error) root() *Error {
	r := e
	for r.Detail == "" {
		next, ok := r.Cause.(*Error)
		if !ok {
			return r
		}
		r = next
	}
	return r
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. A target without a phase
// matches on kind alone.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		if t.Phase == "" {
			return e.Kind == t.Kind
		}
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// JoinPath renders path segments; index segments ("[3]", "{k}") attach
// without a separator.
func JoinPath(path []string) string {
	var b strings.Builder
	for i, seg := range path {
		if i > 0 && !strings.HasPrefix(seg, "[") && !strings.HasPrefix(seg, "{") {
			b.WriteByte('.')
		}
		b.WriteString(seg)
	}
	return b.String()
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

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// TypeName sets the schema type name
func (b *Builder) TypeName(t string) *Builder {
	b.err.TypeName = t
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

// Within re-roots err under a path segment of the composite type typeName.
// The result keeps the kind of the innermost structured error and wraps err
// as its cause.
func Within(phase Phase, err error, typeName, segment string) *Error {
	inner, ok := err.(*Error)
	if !ok {
		return &Error{
			Phase:    phase,
			Kind:     KindInvalidData,
			Path:     []string{segment},
			TypeName: typeName,
			Cause:    err,
		}
	}
	path := make([]string, 0, len(inner.Path)+1)
	path = append(path, segment)
	path = append(path, inner.Path...)
	return &Error{
		Phase:    inner.Phase,
		Kind:     inner.Kind,
		Path:     path,
		TypeName: typeName,
		Cause:    inner,
	}
}

// Convenience constructors for common error patterns

// UnknownType creates an unresolvable type name error
func UnknownType(phase Phase, name string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindUnknownType,
		TypeName: name,
		Detail:   fmt.Sprintf("unknown type %q", name),
		Value:    name,
	}
}

// Schema creates a schema validation error
func Schema(typeName string, format string, args ...any) *Error {
	return &Error{
		Phase:    PhaseCompile,
		Kind:     KindSchema,
		TypeName: typeName,
		Detail:   fmt.Sprintf(format, args...),
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, goType, typeName string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindTypeMismatch,
		Path:     path,
		GoType:   goType,
		TypeName: typeName,
	}
}

// FieldMissing creates a missing field error
func FieldMissing(phase Phase, structName, fieldName string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindFieldMissing,
		Path:     []string{fieldName},
		TypeName: structName,
		Detail:   fmt.Sprintf("required field %q of struct %s not found", fieldName, structName),
	}
}

// LengthMismatch creates a fixed array length error
func LengthMismatch(phase Phase, typeName string, want, got int) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindLengthMismatch,
		TypeName: typeName,
		Detail:   fmt.Sprintf("array length %d, schema requires %d", got, want),
		Value:    got,
	}
}

// InvalidBits creates an error for bitset input outside the declared mask
func InvalidBits(phase Phase, typeName string, value, mask uint64) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindInvalidBits,
		TypeName: typeName,
		Detail:   fmt.Sprintf("invalid bits set: 0x%x (allowed mask 0x%x)", value&^mask, mask),
		Value:    value,
	}
}

// Underrun creates a buffer underrun error
func Underrun(phase Phase, need, remaining int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("buffer underrun: need %d bytes, %d remaining", need, remaining),
		Value:  need,
	}
}

// Overrun creates a buffer overrun error
func Overrun(phase Phase, need, remaining int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("buffer overrun: need %d bytes, %d remaining", need, remaining),
		Value:  need,
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, path []string, value any, targetType string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindOverflow,
		Path:     path,
		TypeName: targetType,
		Detail:   fmt.Sprintf("value %v overflows %s", value, targetType),
		Value:    value,
	}
}

// InvalidEnum creates an invalid enum value error
func InvalidEnum(phase Phase, value any, enumType string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindInvalidEnum,
		TypeName: enumType,
		Detail:   fmt.Sprintf("invalid enum value %v for %s", value, enumType),
		Value:    value,
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

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
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

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Load creates a descriptor loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}
