package converter

import (
	"github.com/wippyai/messgen/buffer"
	"github.com/wippyai/messgen/errors"
	"github.com/wippyai/messgen/schema"
)

type structField struct {
	name string
	conv Converter
}

// structConverter encodes fields in declaration order with no padding and
// no tags. Values are map[string]any.
type structConverter struct {
	name   string
	fields []structField
}

func (c *structConverter) TypeName() string    { return c.name }
func (c *structConverter) Class() schema.Class { return schema.ClassStruct }

// Fields returns the field names in wire order.
func (c *structConverter) Fields() []string {
	names := make([]string, len(c.fields))
	for i, f := range c.fields {
		names[i] = f.name
	}
	return names
}

// Field returns the converter of the named field.
func (c *structConverter) Field(name string) (Converter, bool) {
	for _, f := range c.fields {
		if f.name == name {
			return f.conv, true
		}
	}
	return nil, false
}

func (c *structConverter) record(v any, phase errors.Phase) (map[string]any, error) {
	rec, ok := v.(map[string]any)
	if !ok || rec == nil {
		return nil, mismatch(phase, v, c.name)
	}
	return rec, nil
}

func (c *structConverter) Serialize(v any, buf *buffer.Buffer) error {
	rec, err := c.record(v, errors.PhaseEncode)
	if err != nil {
		return err
	}
	if err := buf.Enter(errors.PhaseEncode); err != nil {
		return err
	}
	defer buf.Leave()

	for _, f := range c.fields {
		fv, ok := rec[f.name]
		if !ok || fv == nil {
			return errors.FieldMissing(errors.PhaseEncode, c.name, f.name)
		}
		if err := f.conv.Serialize(fv, buf); err != nil {
			return errors.Within(errors.PhaseEncode, err, c.name, f.name)
		}
	}
	return nil
}

func (c *structConverter) Deserialize(buf *buffer.Buffer) (any, error) {
	if err := buf.Enter(errors.PhaseDecode); err != nil {
		return nil, err
	}
	defer buf.Leave()

	rec := make(map[string]any, len(c.fields))
	for _, f := range c.fields {
		fv, err := f.conv.Deserialize(buf)
		if err != nil {
			return nil, errors.Within(errors.PhaseDecode, err, c.name, f.name)
		}
		rec[f.name] = fv
	}
	return rec, nil
}

func (c *structConverter) Size(v any) (int, error) {
	return c.measure(v, newDepth(buffer.DefaultMaxDepth))
}

func (c *structConverter) measure(v any, d *depth) (int, error) {
	rec, err := c.record(v, errors.PhaseSize)
	if err != nil {
		return 0, err
	}
	if err := d.enter(); err != nil {
		return 0, err
	}
	defer d.leave()

	size := 0
	for _, f := range c.fields {
		fv, ok := rec[f.name]
		if !ok || fv == nil {
			return 0, errors.FieldMissing(errors.PhaseSize, c.name, f.name)
		}
		s, err := f.conv.measure(fv, d)
		if err != nil {
			return 0, errors.Within(errors.PhaseSize, err, c.name, f.name)
		}
		size += s
	}
	return size, nil
}

// Default returns a new record holding the default of every field.
func (c *structConverter) Default() any {
	rec := make(map[string]any, len(c.fields))
	for _, f := range c.fields {
		rec[f.name] = f.conv.Default()
	}
	return rec
}
