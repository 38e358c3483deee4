package converter

import (
	"fmt"

	"github.com/wippyai/messgen/buffer"
	"github.com/wippyai/messgen/errors"
	"github.com/wippyai/messgen/schema"
)

// Safety limits enforced on decode before allocation.
const (
	MaxStringSize = 1 << 30 // 1GB max string or bytes length
	MaxListLength = 1 << 27 // 128M max array or map entries
)

// Converter is the compiled handler for one schema type. Converters are
// immutable after construction and safe for concurrent use; each call owns
// the buffer it is given.
//
// The set of implementations is closed to the kinds of the schema language.
type Converter interface {
	TypeName() string
	Class() schema.Class

	// Serialize writes v at the buffer offset.
	Serialize(v any, buf *buffer.Buffer) error
	// Deserialize reads one value at the buffer offset.
	Deserialize(buf *buffer.Buffer) (any, error)
	// Size returns the exact number of bytes Serialize writes for v.
	Size(v any) (int, error)
	// Default returns a fresh zero value of the type.
	Default() any

	measure(v any, d *depth) (int, error)
}

// Struct is implemented by struct converters.
type Struct interface {
	Converter
	// Fields returns the field names in wire order.
	Fields() []string
	Field(name string) (Converter, bool)
}

// Array is implemented by array converters.
type Array interface {
	Converter
	Elem() Converter
	// Len returns the fixed length and true, or 0 and false for dynamic
	// arrays.
	Len() (int, bool)
}

// TypedArray is implemented by typed array converters.
type TypedArray interface {
	Converter
	Elem() schema.Basic
	Len() (int, bool)
}

// Mapping is implemented by map converters.
type Mapping interface {
	Converter
	Key() Converter
	Value() Converter
}

// Scalar is implemented by scalar converters.
type Scalar interface {
	Converter
	Basic() schema.Basic
}

// Enum is implemented by enum converters. Codes are the contract on the
// wire; names are a convenience at the edges.
type Enum interface {
	Converter
	Name(code any) (string, bool)
	Code(name string) (int64, bool)
	Values() []schema.EnumValue
}

// Bitset is implemented by bitset converters. Values are raw integers of
// the base type; Compose and Decompose translate to and from bit names.
type Bitset interface {
	Converter
	Mask() uint64
	Bits() []schema.Bit
	Compose(bits ...any) (any, error)
	Decompose(v any) ([]string, error)
}

// Resolver answers type lookups for the factory. *schema.Protocols
// implements it.
type Resolver interface {
	GetType(name string) (schema.TypeDefinition, error)
}

// depth bounds recursion of Size over nested values.
type depth struct {
	n, max int
}

func newDepth(max int) *depth {
	return &depth{max: max}
}

func (d *depth) enter() error {
	if d.max > 0 && d.n >= d.max {
		return errors.New(errors.PhaseSize, errors.KindOverflow).
			Detail("nesting depth exceeds %d", d.max).
			Value(d.n + 1).
			Build()
	}
	d.n++
	return nil
}

func (d *depth) leave() {
	d.n--
}

type options struct {
	maxDepth int
}

// Option configures Marshal, MarshalTo, Unmarshal and Measure.
type Option func(*options)

// WithMaxDepth bounds the nesting of composite values. Zero disables the
// limit; the default is buffer.DefaultMaxDepth.
func WithMaxDepth(n int) Option {
	return func(o *options) {
		o.maxDepth = n
	}
}

func applyOptions(opts []Option) options {
	o := options{maxDepth: buffer.DefaultMaxDepth}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Measure returns the serialized size of v.
func Measure(c Converter, v any, opts ...Option) (int, error) {
	o := applyOptions(opts)
	return c.measure(v, newDepth(o.maxDepth))
}

// Marshal serializes v into a new slice sized by Size.
func Marshal(c Converter, v any, opts ...Option) ([]byte, error) {
	o := applyOptions(opts)
	n, err := c.measure(v, newDepth(o.maxDepth))
	if err != nil {
		return nil, err
	}
	data := make([]byte, n)
	if err := encode(c, v, data, n, o); err != nil {
		return nil, err
	}
	return data, nil
}

// MarshalTo serializes v into dst and returns the number of bytes written.
// Nothing is written unless the whole value fits.
func MarshalTo(c Converter, v any, dst []byte, opts ...Option) (int, error) {
	o := applyOptions(opts)
	n, err := c.measure(v, newDepth(o.maxDepth))
	if err != nil {
		return 0, err
	}
	if n > len(dst) {
		return 0, errors.Overrun(errors.PhaseEncode, n, len(dst))
	}
	if err := encode(c, v, dst[:n], n, o); err != nil {
		return 0, err
	}
	return n, nil
}

func encode(c Converter, v any, dst []byte, n int, o options) error {
	buf := buffer.New(dst).WithMaxDepth(o.maxDepth)
	if err := c.Serialize(v, buf); err != nil {
		return err
	}
	if buf.Offset() != n {
		return errors.New(errors.PhaseEncode, errors.KindInvalidData).
			TypeName(c.TypeName()).
			Detail("wrote %d bytes, size computed %d", buf.Offset(), n).
			Build()
	}
	return nil
}

// Unmarshal deserializes exactly one value from data. Trailing bytes are an
// error.
func Unmarshal(c Converter, data []byte, opts ...Option) (any, error) {
	o := applyOptions(opts)
	buf := buffer.New(data).WithMaxDepth(o.maxDepth)
	v, err := c.Deserialize(buf)
	if err != nil {
		return nil, err
	}
	if buf.Remaining() != 0 {
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			TypeName(c.TypeName()).
			Detail("invalid message size: %d trailing bytes", buf.Remaining()).
			Value(buf.Remaining()).
			Build()
	}
	return v, nil
}

func goTypeName(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}

func mismatch(phase errors.Phase, v any, typeName string) *errors.Error {
	return errors.TypeMismatch(phase, nil, goTypeName(v), typeName)
}
