package converter

import (
	"reflect"
	"strconv"

	"github.com/wippyai/messgen/buffer"
	"github.com/wippyai/messgen/errors"
	"github.com/wippyai/messgen/schema"
)

// arrayConverter encodes elements one by one through the element converter.
type arrayConverter struct {
	name  string
	elem  Converter
	size  int
	fixed bool
}

func (c *arrayConverter) TypeName() string    { return c.name }
func (c *arrayConverter) Class() schema.Class { return schema.ClassArray }
func (c *arrayConverter) Elem() Converter     { return c.elem }
func (c *arrayConverter) Len() (int, bool)    { return c.size, c.fixed }

func (c *arrayConverter) Serialize(v any, buf *buffer.Buffer) error {
	n, ok := sequenceLen(v)
	if !ok {
		return mismatch(errors.PhaseEncode, v, c.name)
	}
	if err := checkLength(errors.PhaseEncode, c.name, c.size, c.fixed, n); err != nil {
		return err
	}
	if err := buf.Enter(errors.PhaseEncode); err != nil {
		return err
	}
	defer buf.Leave()

	if !c.fixed {
		if err := buf.WriteLength(n); err != nil {
			return err
		}
	}
	return eachElement(v, n, func(i int, elem any) error {
		if err := c.elem.Serialize(elem, buf); err != nil {
			return errors.Within(errors.PhaseEncode, err, c.name, "["+strconv.Itoa(i)+"]")
		}
		return nil
	})
}

func (c *arrayConverter) Deserialize(buf *buffer.Buffer) (any, error) {
	n := c.size
	if !c.fixed {
		var err error
		if n, err = buf.ReadLength(MaxListLength); err != nil {
			return nil, err
		}
	}
	if err := buf.Enter(errors.PhaseDecode); err != nil {
		return nil, err
	}
	defer buf.Leave()

	// bound preallocation by the remaining input
	capacity := n
	if capacity > buf.Remaining() {
		capacity = buf.Remaining()
	}
	out := make([]any, 0, capacity)
	for i := 0; i < n; i++ {
		elem, err := c.elem.Deserialize(buf)
		if err != nil {
			return nil, errors.Within(errors.PhaseDecode, err, c.name, "["+strconv.Itoa(i)+"]")
		}
		out = append(out, elem)
	}
	return out, nil
}

func (c *arrayConverter) Size(v any) (int, error) {
	return c.measure(v, newDepth(buffer.DefaultMaxDepth))
}

func (c *arrayConverter) measure(v any, d *depth) (int, error) {
	n, ok := sequenceLen(v)
	if !ok {
		return 0, mismatch(errors.PhaseSize, v, c.name)
	}
	if err := checkLength(errors.PhaseSize, c.name, c.size, c.fixed, n); err != nil {
		return 0, err
	}
	if err := d.enter(); err != nil {
		return 0, err
	}
	defer d.leave()

	size := 0
	if !c.fixed {
		size = buffer.LengthSize
	}
	err := eachElement(v, n, func(i int, elem any) error {
		s, err := c.elem.measure(elem, d)
		if err != nil {
			return errors.Within(errors.PhaseSize, err, c.name, "["+strconv.Itoa(i)+"]")
		}
		size += s
		return nil
	})
	return size, err
}

func (c *arrayConverter) Default() any {
	if !c.fixed {
		return []any{}
	}
	out := make([]any, c.size)
	for i := range out {
		out[i] = c.elem.Default()
	}
	return out
}

// eachElement calls fn for the n elements of a slice or array value.
func eachElement(v any, n int, fn func(i int, elem any) error) error {
	if s, ok := v.([]any); ok {
		for i, elem := range s {
			if err := fn(i, elem); err != nil {
				return err
			}
		}
		return nil
	}
	rv := reflect.ValueOf(v)
	for i := 0; i < n; i++ {
		if err := fn(i, rv.Index(i).Interface()); err != nil {
			return err
		}
	}
	return nil
}
