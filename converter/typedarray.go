package converter

import (
	"encoding/binary"
	"math"
	"reflect"
	"strconv"

	"github.com/wippyai/messgen/buffer"
	"github.com/wippyai/messgen/errors"
	"github.com/wippyai/messgen/schema"
)

// typedArrayConverter handles arrays of fixed-width numeric scalars. Values
// are contiguous on the wire and decode into a typed Go slice.
type typedArrayConverter struct {
	name  string
	elem  schema.Basic
	width int
	size  int
	fixed bool
}

func newTypedArray(def *schema.TypedArrayType) *typedArrayConverter {
	return &typedArrayConverter{
		name:  def.Name,
		elem:  def.Element,
		width: def.Element.Width(),
		size:  def.Size,
		fixed: def.Fixed,
	}
}

func (c *typedArrayConverter) TypeName() string    { return c.name }
func (c *typedArrayConverter) Class() schema.Class { return schema.ClassTypedArray }
func (c *typedArrayConverter) Elem() schema.Basic  { return c.elem }
func (c *typedArrayConverter) Len() (int, bool)    { return c.size, c.fixed }

func (c *typedArrayConverter) Serialize(v any, buf *buffer.Buffer) error {
	n, err := c.length(v, errors.PhaseEncode)
	if err != nil {
		return err
	}

	// values that are not a slice of the element type are converted before
	// anything is written
	bits, err := c.convert(v, n, errors.PhaseEncode)
	if err != nil {
		return err
	}

	if buf.Remaining() < c.payload(n) {
		return errors.Overrun(errors.PhaseEncode, c.payload(n), buf.Remaining())
	}
	if !c.fixed {
		if err := buf.WriteLength(n); err != nil {
			return err
		}
	}

	if bits == nil {
		return writeTyped(v, buf)
	}
	for _, b := range bits {
		if err := writeBits(buf, c.width, b); err != nil {
			return err
		}
	}
	return nil
}

// sliceElem reports the scalar element type of a typed Go slice.
// convert returns the bit patterns of v's elements, or nil when v is already
// a slice of the element type.
func (c *typedArrayConverter) convert(v any, n int, phase errors.Phase) ([]uint64, error) {
	if elem, ok := sliceElem(v); ok && elem == c.elem {
		return nil, nil
	}
	rv := reflect.ValueOf(v)
	bits := make([]uint64, n)
	for i := range bits {
		b, err := encodeBits(c.elem, rv.Index(i).Interface(), phase, c.elem.String())
		if err != nil {
			return nil, errors.Within(phase, err, c.name, "["+strconv.Itoa(i)+"]")
		}
		bits[i] = b
	}
	return bits, nil
}

func sliceElem(v any) (schema.Basic, bool) {
	switch v.(type) {
	case []uint8:
		return schema.BasicUint8, true
	case []int8:
		return schema.BasicInt8, true
	case []uint16:
		return schema.BasicUint16, true
	case []int16:
		return schema.BasicInt16, true
	case []uint32:
		return schema.BasicUint32, true
	case []int32:
		return schema.BasicInt32, true
	case []uint64:
		return schema.BasicUint64, true
	case []int64:
		return schema.BasicInt64, true
	case []float32:
		return schema.BasicFloat32, true
	case []float64:
		return schema.BasicFloat64, true
	}
	return schema.BasicInvalid, false
}

func writeTyped(v any, buf *buffer.Buffer) error {
	switch s := v.(type) {
	case []uint8:
		return buf.WriteRaw(s)
	case []int8:
		for _, x := range s {
			if err := buf.WriteInt8(x); err != nil {
				return err
			}
		}
	case []uint16:
		for _, x := range s {
			if err := buf.WriteUint16(x); err != nil {
				return err
			}
		}
	case []int16:
		for _, x := range s {
			if err := buf.WriteInt16(x); err != nil {
				return err
			}
		}
	case []uint32:
		for _, x := range s {
			if err := buf.WriteUint32(x); err != nil {
				return err
			}
		}
	case []int32:
		for _, x := range s {
			if err := buf.WriteInt32(x); err != nil {
				return err
			}
		}
	case []uint64:
		for _, x := range s {
			if err := buf.WriteUint64(x); err != nil {
				return err
			}
		}
	case []int64:
		for _, x := range s {
			if err := buf.WriteInt64(x); err != nil {
				return err
			}
		}
	case []float32:
		for _, x := range s {
			if err := buf.WriteFloat32(x); err != nil {
				return err
			}
		}
	case []float64:
		for _, x := range s {
			if err := buf.WriteFloat64(x); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *typedArrayConverter) Deserialize(buf *buffer.Buffer) (any, error) {
	n := c.size
	if !c.fixed {
		var err error
		if n, err = buf.ReadLength(MaxListLength); err != nil {
			return nil, err
		}
	}
	raw, err := buf.ReadView(n * c.width)
	if err != nil {
		return nil, err
	}

	le := binary.LittleEndian
	switch c.elem {
	case schema.BasicUint8:
		return raw, nil
	case schema.BasicInt8:
		out := make([]int8, n)
		for i := range out {
			out[i] = int8(raw[i])
		}
		return out, nil
	case schema.BasicUint16:
		out := make([]uint16, n)
		for i := range out {
			out[i] = le.Uint16(raw[i*2:])
		}
		return out, nil
	case schema.BasicInt16:
		out := make([]int16, n)
		for i := range out {
			out[i] = int16(le.Uint16(raw[i*2:]))
		}
		return out, nil
	case schema.BasicUint32:
		out := make([]uint32, n)
		for i := range out {
			out[i] = le.Uint32(raw[i*4:])
		}
		return out, nil
	case schema.BasicInt32:
		out := make([]int32, n)
		for i := range out {
			out[i] = int32(le.Uint32(raw[i*4:]))
		}
		return out, nil
	case schema.BasicUint64:
		out := make([]uint64, n)
		for i := range out {
			out[i] = le.Uint64(raw[i*8:])
		}
		return out, nil
	case schema.BasicInt64:
		out := make([]int64, n)
		for i := range out {
			out[i] = int64(le.Uint64(raw[i*8:]))
		}
		return out, nil
	case schema.BasicFloat32:
		out := make([]float32, n)
		for i := range out {
			out[i] = math.Float32frombits(le.Uint32(raw[i*4:]))
		}
		return out, nil
	case schema.BasicFloat64:
		out := make([]float64, n)
		for i := range out {
			out[i] = math.Float64frombits(le.Uint64(raw[i*8:]))
		}
		return out, nil
	}
	return nil, errors.Unsupported(errors.PhaseDecode, "typed array of "+c.elem.String())
}

func (c *typedArrayConverter) Size(v any) (int, error) {
	return c.measure(v, nil)
}

func (c *typedArrayConverter) measure(v any, _ *depth) (int, error) {
	n, err := c.length(v, errors.PhaseSize)
	if err != nil {
		return 0, err
	}
	if _, err := c.convert(v, n, errors.PhaseSize); err != nil {
		return 0, err
	}
	return c.payload(n), nil
}

// payload is the encoded size of n elements including any length prefix.
func (c *typedArrayConverter) payload(n int) int {
	size := n * c.width
	if !c.fixed {
		size += buffer.LengthSize
	}
	return size
}

func (c *typedArrayConverter) Default() any {
	n := 0
	if c.fixed {
		n = c.size
	}
	switch c.elem {
	case schema.BasicUint8:
		return make([]uint8, n)
	case schema.BasicInt8:
		return make([]int8, n)
	case schema.BasicUint16:
		return make([]uint16, n)
	case schema.BasicInt16:
		return make([]int16, n)
	case schema.BasicUint32:
		return make([]uint32, n)
	case schema.BasicInt32:
		return make([]int32, n)
	case schema.BasicUint64:
		return make([]uint64, n)
	case schema.BasicInt64:
		return make([]int64, n)
	case schema.BasicFloat32:
		return make([]float32, n)
	default:
		return make([]float64, n)
	}
}

// length validates v as a sequence and returns its element count.
func (c *typedArrayConverter) length(v any, phase errors.Phase) (int, error) {
	n, ok := sequenceLen(v)
	if !ok {
		return 0, mismatch(phase, v, c.name)
	}
	return n, checkLength(phase, c.name, c.size, c.fixed, n)
}

func checkLength(phase errors.Phase, typeName string, size int, fixed bool, n int) error {
	if fixed && n != size {
		return errors.LengthMismatch(phase, typeName, size, n)
	}
	if n > MaxListLength {
		return errors.Overflow(phase, nil, n, typeName)
	}
	return nil
}

// sequenceLen returns the length of a slice or array value.
func sequenceLen(v any) (int, bool) {
	switch s := v.(type) {
	case []any:
		return len(s), true
	case []byte:
		return len(s), true
	case nil:
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return rv.Len(), true
	}
	return 0, false
}
