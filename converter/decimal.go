package converter

import (
	"encoding/json"
	"math"

	"github.com/cockroachdb/apd/v3"

	"github.com/wippyai/messgen/buffer"
	"github.com/wippyai/messgen/converter/internal/coerce"
	"github.com/wippyai/messgen/decimal64"
	"github.com/wippyai/messgen/errors"
	"github.com/wippyai/messgen/schema"
)

type decimalConverter struct {
	name string
}

func newDecimal(def *schema.DecimalType) *decimalConverter {
	return &decimalConverter{name: def.Name}
}

func (c *decimalConverter) TypeName() string    { return c.name }
func (c *decimalConverter) Class() schema.Class { return schema.ClassDecimal }

func (c *decimalConverter) Serialize(v any, buf *buffer.Buffer) error {
	d, err := c.toDecimal(v, errors.PhaseEncode)
	if err != nil {
		return err
	}
	return buf.WriteUint64(decimal64.Encode(d))
}

func (c *decimalConverter) Deserialize(buf *buffer.Buffer) (any, error) {
	bits, err := buf.ReadUint64()
	if err != nil {
		return nil, err
	}
	return decimal64.Decode(bits), nil
}

func (c *decimalConverter) Size(v any) (int, error) {
	return c.measure(v, nil)
}

func (c *decimalConverter) measure(v any, _ *depth) (int, error) {
	if _, err := c.toDecimal(v, errors.PhaseSize); err != nil {
		return 0, err
	}
	return decimal64.Size, nil
}

func (c *decimalConverter) Default() any {
	return apd.New(0, 0)
}

func (c *decimalConverter) toDecimal(v any, phase errors.Phase) (*apd.Decimal, error) {
	switch d := v.(type) {
	case *apd.Decimal:
		if d == nil {
			return nil, mismatch(phase, v, c.name)
		}
		return d, nil
	case apd.Decimal:
		return &d, nil
	case string:
		return c.parse(d, "string", phase)
	case json.Number:
		return c.parse(string(d), "json.Number", phase)
	case float64:
		return c.fromFloat(d, phase)
	case float32:
		return c.fromFloat(float64(d), phase)
	}

	if n, r := coerce.Int(v, math.MinInt64, math.MaxInt64); r == coerce.OK {
		return apd.New(n, 0), nil
	}
	if u, r := coerce.Uint(v, math.MaxUint64); r == coerce.OK {
		d := new(apd.Decimal)
		d.Coeff.SetUint64(u)
		return d, nil
	}
	return nil, mismatch(phase, v, c.name)
}

func (c *decimalConverter) parse(s, goType string, phase errors.Phase) (*apd.Decimal, error) {
	d, err := decimal64.FromString(s)
	if err != nil {
		return nil, errors.New(phase, errors.KindTypeMismatch).
			GoType(goType).
			TypeName(c.name).
			Detail("invalid decimal literal %q", s).
			Cause(err).
			Build()
	}
	return d, nil
}

func (c *decimalConverter) fromFloat(f float64, phase errors.Phase) (*apd.Decimal, error) {
	d := new(apd.Decimal)
	switch {
	case math.IsNaN(f):
		d.Form = apd.NaN
	case math.IsInf(f, 1):
		d.Form = apd.Infinite
	case math.IsInf(f, -1):
		d.Form = apd.Infinite
		d.Negative = true
	default:
		if _, err := d.SetFloat64(f); err != nil {
			return nil, errors.New(phase, errors.KindTypeMismatch).
				GoType("float64").
				TypeName(c.name).
				Cause(err).
				Build()
		}
	}
	return d, nil
}
