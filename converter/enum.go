package converter

import (
	"math"
	"strings"

	"github.com/wippyai/messgen/buffer"
	"github.com/wippyai/messgen/converter/internal/coerce"
	"github.com/wippyai/messgen/errors"
	"github.com/wippyai/messgen/schema"
)

// enumConverter encodes as its base integer type. Serialize accepts a code
// or a case-insensitive value name; Deserialize returns the code.
type enumConverter struct {
	name   string
	base   schema.Basic
	values []schema.EnumValue
	byName map[string]int64
	byCode map[int64]string
}

func newEnum(def *schema.EnumType) (*enumConverter, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	c := &enumConverter{
		name:   def.Name,
		base:   def.Base,
		values: def.Values,
		byName: make(map[string]int64, len(def.Values)),
		byCode: make(map[int64]string, len(def.Values)),
	}
	for _, v := range def.Values {
		key := strings.ToLower(v.Name)
		if _, dup := c.byName[key]; dup {
			return nil, errors.Schema(def.Name, "enum value names %q collide ignoring case", v.Name)
		}
		c.byName[key] = v.Value
		if _, dup := c.byCode[v.Value]; !dup {
			c.byCode[v.Value] = v.Name
		}
	}
	return c, nil
}

func (c *enumConverter) TypeName() string    { return c.name }
func (c *enumConverter) Class() schema.Class { return schema.ClassEnum }

// Name returns the declared name of a code given as any Go integer.
func (c *enumConverter) Name(code any) (string, bool) {
	n, r := coerce.Int(code, math.MinInt64, math.MaxInt64)
	if r != coerce.OK {
		return "", false
	}
	name, ok := c.byCode[n]
	return name, ok
}

// Code resolves a value name, ignoring case.
func (c *enumConverter) Code(name string) (int64, bool) {
	code, ok := c.byName[strings.ToLower(name)]
	return code, ok
}

// Values returns the declared values in schema order.
func (c *enumConverter) Values() []schema.EnumValue {
	return c.values
}

func (c *enumConverter) Serialize(v any, buf *buffer.Buffer) error {
	bits, err := c.encode(v, errors.PhaseEncode)
	if err != nil {
		return err
	}
	return writeBits(buf, c.base.Width(), bits)
}

func (c *enumConverter) encode(v any, phase errors.Phase) (uint64, error) {
	if s, ok := v.(string); ok {
		code, found := c.Code(s)
		if !found {
			return 0, errors.InvalidEnum(phase, s, c.name)
		}
		v = code
	}
	bits, err := encodeBits(c.base, v, phase, c.name)
	if err != nil {
		if e, ok := err.(*errors.Error); ok && e.Kind == errors.KindOverflow {
			return 0, errors.InvalidEnum(phase, v, c.name)
		}
		return 0, err
	}
	return bits, nil
}

func (c *enumConverter) Deserialize(buf *buffer.Buffer) (any, error) {
	bits, err := readBits(buf, c.base.Width())
	if err != nil {
		return nil, err
	}
	return decodeBits(c.base, bits), nil
}

func (c *enumConverter) Size(v any) (int, error) {
	return c.measure(v, nil)
}

func (c *enumConverter) measure(v any, _ *depth) (int, error) {
	if _, err := c.encode(v, errors.PhaseSize); err != nil {
		return 0, err
	}
	return c.base.Width(), nil
}

// Default returns the code of the first declared value.
func (c *enumConverter) Default() any {
	if len(c.values) == 0 {
		return decodeBits(c.base, 0)
	}
	bits, err := encodeBits(c.base, c.values[0].Value, errors.PhaseEncode, c.name)
	if err != nil {
		return decodeBits(c.base, 0)
	}
	return decodeBits(c.base, bits)
}
