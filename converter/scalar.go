package converter

import (
	"math"

	"github.com/wippyai/messgen/buffer"
	"github.com/wippyai/messgen/converter/internal/coerce"
	"github.com/wippyai/messgen/errors"
	"github.com/wippyai/messgen/schema"
)

type scalarConverter struct {
	name  string
	basic schema.Basic
}

func newScalar(def *schema.ScalarType) *scalarConverter {
	return &scalarConverter{name: def.Name, basic: def.Basic}
}

func (c *scalarConverter) TypeName() string    { return c.name }
func (c *scalarConverter) Class() schema.Class { return schema.ClassScalar }
func (c *scalarConverter) Basic() schema.Basic { return c.basic }

func (c *scalarConverter) Serialize(v any, buf *buffer.Buffer) error {
	switch c.basic {
	case schema.BasicString:
		switch s := v.(type) {
		case string:
			if len(s) > MaxStringSize {
				return errors.Overflow(errors.PhaseEncode, nil, len(s), c.name)
			}
			return buf.WriteString(s)
		case []byte:
			if len(s) > MaxStringSize {
				return errors.Overflow(errors.PhaseEncode, nil, len(s), c.name)
			}
			return buf.WriteBytes(s)
		}
		return mismatch(errors.PhaseEncode, v, c.name)

	case schema.BasicBytes:
		switch b := v.(type) {
		case []byte:
			if len(b) > MaxStringSize {
				return errors.Overflow(errors.PhaseEncode, nil, len(b), c.name)
			}
			return buf.WriteBytes(b)
		case string:
			if len(b) > MaxStringSize {
				return errors.Overflow(errors.PhaseEncode, nil, len(b), c.name)
			}
			return buf.WriteString(b)
		}
		return mismatch(errors.PhaseEncode, v, c.name)
	}

	bits, err := encodeBits(c.basic, v, errors.PhaseEncode, c.name)
	if err != nil {
		return err
	}
	return writeBits(buf, c.basic.Width(), bits)
}

func (c *scalarConverter) Deserialize(buf *buffer.Buffer) (any, error) {
	switch c.basic {
	case schema.BasicString:
		return buf.ReadString(MaxStringSize)
	case schema.BasicBytes:
		return buf.ReadBytes(MaxStringSize)
	}
	bits, err := readBits(buf, c.basic.Width())
	if err != nil {
		return nil, err
	}
	return decodeBits(c.basic, bits), nil
}

func (c *scalarConverter) Size(v any) (int, error) {
	return c.measure(v, nil)
}

func (c *scalarConverter) measure(v any, _ *depth) (int, error) {
	switch c.basic {
	case schema.BasicString, schema.BasicBytes:
		var n int
		switch s := v.(type) {
		case string:
			n = len(s)
		case []byte:
			n = len(s)
		default:
			return 0, mismatch(errors.PhaseSize, v, c.name)
		}
		if n > MaxStringSize {
			return 0, errors.Overflow(errors.PhaseSize, nil, n, c.name)
		}
		return buffer.LengthSize + n, nil
	}
	// same conversion as Serialize so that Size fails exactly when it does
	if _, err := encodeBits(c.basic, v, errors.PhaseSize, c.name); err != nil {
		return 0, err
	}
	return c.basic.Width(), nil
}

func (c *scalarConverter) Default() any {
	switch c.basic {
	case schema.BasicString:
		return ""
	case schema.BasicBytes:
		return []byte{}
	}
	return decodeBits(c.basic, 0)
}

// encodeBits converts v into the little-endian bit pattern of a fixed-width
// scalar.
func encodeBits(basic schema.Basic, v any, phase errors.Phase, typeName string) (uint64, error) {
	switch basic {
	case schema.BasicBool:
		b, ok := v.(bool)
		if !ok {
			return 0, mismatch(phase, v, typeName)
		}
		if b {
			return 1, nil
		}
		return 0, nil

	case schema.BasicChar:
		if s, ok := v.(string); ok {
			if len(s) != 1 {
				return 0, errors.New(phase, errors.KindTypeMismatch).
					GoType("string").
					TypeName(typeName).
					Detail("char requires a one-byte string, got %d bytes", len(s)).
					Build()
			}
			return uint64(s[0]), nil
		}
		u, r := coerce.Uint(v, math.MaxUint8)
		if r != coerce.OK {
			return 0, coerceError(phase, r, v, typeName)
		}
		return u, nil

	case schema.BasicFloat32:
		f, r := coerce.Float32(v)
		if r != coerce.OK {
			return 0, coerceError(phase, r, v, typeName)
		}
		return uint64(math.Float32bits(f)), nil

	case schema.BasicFloat64:
		f, r := coerce.Float(v)
		if r != coerce.OK {
			return 0, coerceError(phase, r, v, typeName)
		}
		return math.Float64bits(f), nil
	}

	bitsN := basic.Bits()
	if basic.IsSigned() {
		lo := int64(-1) << (bitsN - 1)
		hi := -(lo + 1)
		n, r := coerce.Int(v, lo, hi)
		if r != coerce.OK {
			return 0, coerceError(phase, r, v, typeName)
		}
		return uint64(n) & widthMask(bitsN), nil
	}
	u, r := coerce.Uint(v, widthMask(bitsN))
	if r != coerce.OK {
		return 0, coerceError(phase, r, v, typeName)
	}
	return u, nil
}

// decodeBits converts a raw pattern into the Go value of basic.
func decodeBits(basic schema.Basic, bits uint64) any {
	switch basic {
	case schema.BasicInt8:
		return int8(bits)
	case schema.BasicUint8:
		return uint8(bits)
	case schema.BasicInt16:
		return int16(bits)
	case schema.BasicUint16:
		return uint16(bits)
	case schema.BasicInt32:
		return int32(bits)
	case schema.BasicUint32:
		return uint32(bits)
	case schema.BasicInt64:
		return int64(bits)
	case schema.BasicUint64:
		return bits
	case schema.BasicFloat32:
		return math.Float32frombits(uint32(bits))
	case schema.BasicFloat64:
		return math.Float64frombits(bits)
	case schema.BasicBool:
		return bits != 0
	case schema.BasicChar:
		return byte(bits)
	}
	return nil
}

func writeBits(buf *buffer.Buffer, width int, bits uint64) error {
	switch width {
	case 1:
		return buf.WriteUint8(uint8(bits))
	case 2:
		return buf.WriteUint16(uint16(bits))
	case 4:
		return buf.WriteUint32(uint32(bits))
	default:
		return buf.WriteUint64(bits)
	}
}

func readBits(buf *buffer.Buffer, width int) (uint64, error) {
	switch width {
	case 1:
		v, err := buf.ReadUint8()
		return uint64(v), err
	case 2:
		v, err := buf.ReadUint16()
		return uint64(v), err
	case 4:
		v, err := buf.ReadUint32()
		return uint64(v), err
	default:
		return buf.ReadUint64()
	}
}

func widthMask(bits int) uint64 {
	if bits >= 64 {
		return math.MaxUint64
	}
	return uint64(1)<<bits - 1
}

func coerceError(phase errors.Phase, r coerce.Result, v any, typeName string) *errors.Error {
	if r == coerce.Overflow {
		return errors.Overflow(phase, nil, v, typeName)
	}
	return mismatch(phase, v, typeName)
}
