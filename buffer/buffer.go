package buffer

import (
	"encoding/binary"
	"math"

	"github.com/wippyai/messgen/errors"
)

// LengthSize is the width of the length prefix used by strings, bytes,
// dynamic arrays and maps.
const LengthSize = 4

// DefaultMaxDepth bounds nesting of composite values on a single cursor.
const DefaultMaxDepth = 64

type Buffer struct {
	data     []byte
	off      int
	depth    int
	maxDepth int
}

// New wraps data. Writes fill data from the start; reads consume it.
func New(data []byte) *Buffer {
	return &Buffer{data: data, maxDepth: DefaultMaxDepth}
}

// WithMaxDepth sets the nesting limit enforced by Enter. Zero or negative
// disables the limit.
func (b *Buffer) WithMaxDepth(depth int) *Buffer {
	b.maxDepth = depth
	return b
}

func (b *Buffer) Offset() int    { return b.off }
func (b *Buffer) Len() int       { return len(b.data) }
func (b *Buffer) Remaining() int { return len(b.data) - b.off }

// Bytes returns the portion written or consumed so far.
func (b *Buffer) Bytes() []byte { return b.data[:b.off] }

// Reset rewinds the cursor to the start of the region.
func (b *Buffer) Reset() {
	b.off = 0
	b.depth = 0
}

// Enter records one level of composite nesting. A failed Enter leaves the
// depth unchanged and needs no Leave.
func (b *Buffer) Enter(phase errors.Phase) error {
	if b.maxDepth > 0 && b.depth >= b.maxDepth {
		return errors.New(phase, errors.KindOverflow).
			Detail("nesting depth exceeds %d", b.maxDepth).
			Value(b.depth + 1).
			Build()
	}
	b.depth++
	return nil
}

// Depth returns the current nesting level.
func (b *Buffer) Depth() int { return b.depth }

// Leave undoes one Enter.
func (b *Buffer) Leave() {
	b.depth--
}

func (b *Buffer) reserve(n int) ([]byte, error) {
	if n < 0 || n > len(b.data)-b.off {
		return nil, errors.Overrun(errors.PhaseEncode, n, len(b.data)-b.off)
	}
	p := b.data[b.off : b.off+n]
	b.off += n
	return p, nil
}

func (b *Buffer) take(n int) ([]byte, error) {
	if n < 0 || n > len(b.data)-b.off {
		return nil, errors.Underrun(errors.PhaseDecode, n, len(b.data)-b.off)
	}
	p := b.data[b.off : b.off+n : b.off+n]
	b.off += n
	return p, nil
}

func (b *Buffer) WriteUint8(v uint8) error {
	p, err := b.reserve(1)
	if err != nil {
		return err
	}
	p[0] = v
	return nil
}

func (b *Buffer) WriteInt8(v int8) error { return b.WriteUint8(uint8(v)) }

func (b *Buffer) WriteBool(v bool) error {
	if v {
		return b.WriteUint8(1)
	}
	return b.WriteUint8(0)
}

func (b *Buffer) WriteUint16(v uint16) error {
	p, err := b.reserve(2)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(p, v)
	return nil
}

func (b *Buffer) WriteInt16(v int16) error { return b.WriteUint16(uint16(v)) }

func (b *Buffer) WriteUint32(v uint32) error {
	p, err := b.reserve(4)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(p, v)
	return nil
}

func (b *Buffer) WriteInt32(v int32) error { return b.WriteUint32(uint32(v)) }

func (b *Buffer) WriteUint64(v uint64) error {
	p, err := b.reserve(8)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(p, v)
	return nil
}

func (b *Buffer) WriteInt64(v int64) error { return b.WriteUint64(uint64(v)) }

func (b *Buffer) WriteFloat32(v float32) error { return b.WriteUint32(math.Float32bits(v)) }

func (b *Buffer) WriteFloat64(v float64) error { return b.WriteUint64(math.Float64bits(v)) }

// WriteLength writes a 4-byte length prefix.
func (b *Buffer) WriteLength(n int) error {
	if n < 0 || uint64(n) > math.MaxUint32 {
		return errors.Overflow(errors.PhaseEncode, nil, n, "uint32")
	}
	return b.WriteUint32(uint32(n))
}

// WriteRaw copies p without a length prefix.
func (b *Buffer) WriteRaw(p []byte) error {
	dst, err := b.reserve(len(p))
	if err != nil {
		return err
	}
	copy(dst, p)
	return nil
}

// WriteBytes writes a length-prefixed byte string.
func (b *Buffer) WriteBytes(p []byte) error {
	if err := b.WriteLength(len(p)); err != nil {
		return err
	}
	return b.WriteRaw(p)
}

// WriteString writes a length-prefixed UTF-8 string.
func (b *Buffer) WriteString(s string) error {
	if err := b.WriteLength(len(s)); err != nil {
		return err
	}
	dst, err := b.reserve(len(s))
	if err != nil {
		return err
	}
	copy(dst, s)
	return nil
}

func (b *Buffer) ReadUint8() (uint8, error) {
	p, err := b.take(1)
	if err != nil {
		return 0, err
	}
	return p[0], nil
}

func (b *Buffer) ReadInt8() (int8, error) {
	v, err := b.ReadUint8()
	return int8(v), err
}

// ReadBool decodes any non-zero byte as true.
func (b *Buffer) ReadBool() (bool, error) {
	v, err := b.ReadUint8()
	return v != 0, err
}

func (b *Buffer) ReadUint16() (uint16, error) {
	p, err := b.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(p), nil
}

func (b *Buffer) ReadInt16() (int16, error) {
	v, err := b.ReadUint16()
	return int16(v), err
}

func (b *Buffer) ReadUint32() (uint32, error) {
	p, err := b.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(p), nil
}

func (b *Buffer) ReadInt32() (int32, error) {
	v, err := b.ReadUint32()
	return int32(v), err
}

func (b *Buffer) ReadUint64() (uint64, error) {
	p, err := b.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(p), nil
}

func (b *Buffer) ReadInt64() (int64, error) {
	v, err := b.ReadUint64()
	return int64(v), err
}

func (b *Buffer) ReadFloat32() (float32, error) {
	v, err := b.ReadUint32()
	return math.Float32frombits(v), err
}

func (b *Buffer) ReadFloat64() (float64, error) {
	v, err := b.ReadUint64()
	return math.Float64frombits(v), err
}

// ReadLength reads a 4-byte length prefix and rejects lengths above limit
// before any allocation happens.
func (b *Buffer) ReadLength(limit int) (int, error) {
	v, err := b.ReadUint32()
	if err != nil {
		return 0, err
	}
	if uint64(v) > uint64(limit) {
		return 0, errors.New(errors.PhaseDecode, errors.KindOverflow).
			Detail("length %d exceeds maximum %d", v, limit).
			Value(v).
			Build()
	}
	return int(v), nil
}

// ReadView returns the next n bytes without copying. The view aliases the
// underlying region.
func (b *Buffer) ReadView(n int) ([]byte, error) {
	return b.take(n)
}

// ReadBytes reads a length-prefixed byte string into a fresh slice.
func (b *Buffer) ReadBytes(limit int) ([]byte, error) {
	n, err := b.ReadLength(limit)
	if err != nil {
		return nil, err
	}
	p, err := b.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, p)
	return out, nil
}

// ReadString reads a length-prefixed string.
func (b *Buffer) ReadString(limit int) (string, error) {
	n, err := b.ReadLength(limit)
	if err != nil {
		return "", err
	}
	p, err := b.take(n)
	if err != nil {
		return "", err
	}
	return string(p), nil
}
