package converter

import (
	"github.com/wippyai/messgen/buffer"
	"github.com/wippyai/messgen/errors"
	"github.com/wippyai/messgen/schema"
)

// externalConverter carries an opaque type of a declared size as raw bytes.
// Without a declared size every operation is unsupported.
type externalConverter struct {
	name  string
	size  int
	sized bool
}

func newExternal(def *schema.ExternalType) *externalConverter {
	return &externalConverter{name: def.Name, size: def.Size, sized: def.Sized}
}

func (c *externalConverter) TypeName() string    { return c.name }
func (c *externalConverter) Class() schema.Class { return schema.ClassExternal }

func (c *externalConverter) unsupported(phase errors.Phase) error {
	return errors.New(phase, errors.KindUnsupported).
		TypeName(c.name).
		Detail("external type %s has no declared size", c.name).
		Build()
}

func (c *externalConverter) bytes(v any, phase errors.Phase) ([]byte, error) {
	if !c.sized {
		return nil, c.unsupported(phase)
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, mismatch(phase, v, c.name)
	}
	if len(b) != c.size {
		return nil, errors.LengthMismatch(phase, c.name, c.size, len(b))
	}
	return b, nil
}

func (c *externalConverter) Serialize(v any, buf *buffer.Buffer) error {
	b, err := c.bytes(v, errors.PhaseEncode)
	if err != nil {
		return err
	}
	return buf.WriteRaw(b)
}

func (c *externalConverter) Deserialize(buf *buffer.Buffer) (any, error) {
	if !c.sized {
		return nil, c.unsupported(errors.PhaseDecode)
	}
	raw, err := buf.ReadView(c.size)
	if err != nil {
		return nil, err
	}
	out := make([]byte, c.size)
	copy(out, raw)
	return out, nil
}

func (c *externalConverter) Size(v any) (int, error) {
	return c.measure(v, nil)
}

func (c *externalConverter) measure(v any, _ *depth) (int, error) {
	if _, err := c.bytes(v, errors.PhaseSize); err != nil {
		return 0, err
	}
	return c.size, nil
}

func (c *externalConverter) Default() any {
	return make([]byte, c.size)
}
