package converter

import (
	"sort"

	"github.com/wippyai/messgen/buffer"
	"github.com/wippyai/messgen/errors"
	"github.com/wippyai/messgen/schema"
)

// bitsetConverter encodes a raw integer of the base type. Only declared bits
// may be set on encode; undeclared bits are dropped on decode.
type bitsetConverter struct {
	name     string
	base     schema.Basic
	bits     []schema.Bit // sorted by offset
	byName   map[string]int
	byOffset map[int]string
	mask     uint64
}

func newBitset(def *schema.BitsetType) (*bitsetConverter, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	c := &bitsetConverter{
		name:     def.Name,
		base:     def.Base,
		bits:     append([]schema.Bit(nil), def.Bits...),
		byName:   make(map[string]int, len(def.Bits)),
		byOffset: make(map[int]string, len(def.Bits)),
		mask:     def.Mask(),
	}
	sort.Slice(c.bits, func(i, j int) bool { return c.bits[i].Offset < c.bits[j].Offset })
	for _, b := range def.Bits {
		c.byName[b.Name] = b.Offset
		c.byOffset[b.Offset] = b.Name
	}
	return c, nil
}

func (c *bitsetConverter) TypeName() string    { return c.name }
func (c *bitsetConverter) Class() schema.Class { return schema.ClassBitset }

// Mask returns the OR of all declared bits.
func (c *bitsetConverter) Mask() uint64 { return c.mask }

// Bits returns the declared bits ordered by offset.
func (c *bitsetConverter) Bits() []schema.Bit { return c.bits }

// Compose builds a raw value from bit names (string) or offsets (int).
func (c *bitsetConverter) Compose(bits ...any) (any, error) {
	var raw uint64
	for _, b := range bits {
		switch bit := b.(type) {
		case string:
			off, ok := c.byName[bit]
			if !ok {
				return nil, errors.New(errors.PhaseEncode, errors.KindInvalidBits).
					TypeName(c.name).
					Detail("unknown bit name %q", bit).
					Value(bit).
					Build()
			}
			raw |= 1 << uint(off)
		case int:
			if _, ok := c.byOffset[bit]; !ok {
				return nil, errors.New(errors.PhaseEncode, errors.KindInvalidBits).
					TypeName(c.name).
					Detail("undeclared bit offset %d", bit).
					Value(bit).
					Build()
			}
			raw |= 1 << uint(bit)
		default:
			return nil, mismatch(errors.PhaseEncode, b, c.name)
		}
	}
	return c.typed(raw), nil
}

// Decompose lists the names of the declared bits set in v, by offset.
func (c *bitsetConverter) Decompose(v any) ([]string, error) {
	raw, err := c.raw(v, errors.PhaseDecode)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, b := range c.bits {
		if raw&(1<<uint(b.Offset)) != 0 {
			names = append(names, b.Name)
		}
	}
	return names, nil
}

// raw returns the unsigned bit pattern of v in the base width.
func (c *bitsetConverter) raw(v any, phase errors.Phase) (uint64, error) {
	return encodeBits(c.base, v, phase, c.name)
}

func (c *bitsetConverter) typed(raw uint64) any {
	return decodeBits(c.base, raw&widthMask(c.base.Bits()))
}

func (c *bitsetConverter) check(v any, phase errors.Phase) (uint64, error) {
	raw, err := c.raw(v, phase)
	if err != nil {
		return 0, err
	}
	if raw&^c.mask != 0 {
		return 0, errors.InvalidBits(phase, c.name, raw, c.mask)
	}
	return raw, nil
}

func (c *bitsetConverter) Serialize(v any, buf *buffer.Buffer) error {
	raw, err := c.check(v, errors.PhaseEncode)
	if err != nil {
		return err
	}
	return writeBits(buf, c.base.Width(), raw)
}

func (c *bitsetConverter) Deserialize(buf *buffer.Buffer) (any, error) {
	raw, err := readBits(buf, c.base.Width())
	if err != nil {
		return nil, err
	}
	return c.typed(raw & c.mask), nil
}

func (c *bitsetConverter) Size(v any) (int, error) {
	return c.measure(v, nil)
}

func (c *bitsetConverter) measure(v any, _ *depth) (int, error) {
	if _, err := c.check(v, errors.PhaseSize); err != nil {
		return 0, err
	}
	return c.base.Width(), nil
}

func (c *bitsetConverter) Default() any {
	return c.typed(0)
}
