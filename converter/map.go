package converter

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"

	"github.com/cockroachdb/apd/v3"

	"github.com/wippyai/messgen/buffer"
	"github.com/wippyai/messgen/errors"
	"github.com/wippyai/messgen/schema"
)

// MapEntry is one key/value pair of a Map.
type MapEntry struct {
	Key   any
	Value any
}

// Map is an insertion-ordered map. Wire order is entry order, so decoding
// and re-encoding a map reproduces the same bytes.
//
// Keys are indexed for Get and Set when they are comparable; []byte and
// *apd.Decimal keys are indexed by content.
type Map struct {
	entries []MapEntry
	index   map[any]int
}

type bytesKey string
type decimalKey string

// NewMap returns an empty map with room for capacity entries.
func NewMap(capacity int) *Map {
	return &Map{
		entries: make([]MapEntry, 0, capacity),
		index:   make(map[any]int, capacity),
	}
}

func mapIndexKey(k any) (any, bool) {
	switch key := k.(type) {
	case nil:
		return nil, false
	case []byte:
		return bytesKey(key), true
	case *apd.Decimal:
		if key == nil {
			return nil, false
		}
		return decimalKey(reducedString(key)), true
	}
	t := reflect.TypeOf(k)
	if !t.Comparable() {
		return nil, false
	}
	switch t.Kind() {
	case reflect.Struct, reflect.Array:
		// may hold incomparable dynamic values
		return nil, false
	}
	return k, true
}

// reducedString renders d without trailing zeros so that equal decimals
// such as 1 and 1.0 share one index key.
func reducedString(d *apd.Decimal) string {
	if d.Form == apd.Finite && d.IsZero() {
		return "0"
	}
	var r apd.Decimal
	r.Reduce(d)
	return r.String()
}

// Set replaces the value of an existing key or appends a new entry.
func (m *Map) Set(key, value any) {
	if m.index == nil {
		m.index = make(map[any]int)
	}
	ik, ok := mapIndexKey(key)
	if ok {
		if i, found := m.index[ik]; found {
			m.entries[i].Value = value
			return
		}
		m.index[ik] = len(m.entries)
	}
	m.entries = append(m.entries, MapEntry{Key: key, Value: value})
}

// append adds an entry without replacing. Duplicate keys stay addressable
// through Entries; Get returns the first.
func (m *Map) append(key, value any) {
	if ik, ok := mapIndexKey(key); ok {
		if _, found := m.index[ik]; !found {
			m.index[ik] = len(m.entries)
		}
	}
	m.entries = append(m.entries, MapEntry{Key: key, Value: value})
}

// Get returns the value stored under key.
func (m *Map) Get(key any) (any, bool) {
	if m == nil {
		return nil, false
	}
	ik, ok := mapIndexKey(key)
	if !ok {
		return nil, false
	}
	i, found := m.index[ik]
	if !found {
		return nil, false
	}
	return m.entries[i].Value, true
}

func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Entries returns the entries in order. The slice is shared with the map.
func (m *Map) Entries() []MapEntry {
	if m == nil {
		return nil
	}
	return m.entries
}

func (m *Map) Keys() []any {
	keys := make([]any, m.Len())
	for i, e := range m.Entries() {
		keys[i] = e.Key
	}
	return keys
}

type mapConverter struct {
	name  string
	key   Converter
	value Converter
}

func (c *mapConverter) TypeName() string    { return c.name }
func (c *mapConverter) Class() schema.Class { return schema.ClassMap }
func (c *mapConverter) Key() Converter      { return c.key }
func (c *mapConverter) Value() Converter    { return c.value }

func (c *mapConverter) Serialize(v any, buf *buffer.Buffer) error {
	entries, ok := mapEntries(v)
	if !ok {
		return mismatch(errors.PhaseEncode, v, c.name)
	}
	if len(entries) > MaxListLength {
		return errors.Overflow(errors.PhaseEncode, nil, len(entries), c.name)
	}
	if err := buf.Enter(errors.PhaseEncode); err != nil {
		return err
	}
	defer buf.Leave()

	if err := buf.WriteLength(len(entries)); err != nil {
		return err
	}
	for _, e := range entries {
		seg := keySegment(e.Key)
		if err := c.key.Serialize(e.Key, buf); err != nil {
			return errors.Within(errors.PhaseEncode, err, c.name, seg)
		}
		if err := c.value.Serialize(e.Value, buf); err != nil {
			return errors.Within(errors.PhaseEncode, err, c.name, seg)
		}
	}
	return nil
}

func (c *mapConverter) Deserialize(buf *buffer.Buffer) (any, error) {
	n, err := buf.ReadLength(MaxListLength)
	if err != nil {
		return nil, err
	}
	if err := buf.Enter(errors.PhaseDecode); err != nil {
		return nil, err
	}
	defer buf.Leave()

	capacity := n
	if capacity > buf.Remaining() {
		capacity = buf.Remaining()
	}
	m := NewMap(capacity)
	for i := 0; i < n; i++ {
		k, err := c.key.Deserialize(buf)
		if err != nil {
			return nil, errors.Within(errors.PhaseDecode, err, c.name, "{#"+strconv.Itoa(i)+"}")
		}
		val, err := c.value.Deserialize(buf)
		if err != nil {
			return nil, errors.Within(errors.PhaseDecode, err, c.name, keySegment(k))
		}
		m.append(k, val)
	}
	return m, nil
}

func (c *mapConverter) Size(v any) (int, error) {
	return c.measure(v, newDepth(buffer.DefaultMaxDepth))
}

func (c *mapConverter) measure(v any, d *depth) (int, error) {
	entries, ok := mapEntries(v)
	if !ok {
		return 0, mismatch(errors.PhaseSize, v, c.name)
	}
	if len(entries) > MaxListLength {
		return 0, errors.Overflow(errors.PhaseSize, nil, len(entries), c.name)
	}
	if err := d.enter(); err != nil {
		return 0, err
	}
	defer d.leave()

	size := buffer.LengthSize
	for _, e := range entries {
		ks, err := c.key.measure(e.Key, d)
		if err != nil {
			return 0, errors.Within(errors.PhaseSize, err, c.name, keySegment(e.Key))
		}
		vs, err := c.value.measure(e.Value, d)
		if err != nil {
			return 0, errors.Within(errors.PhaseSize, err, c.name, keySegment(e.Key))
		}
		size += ks + vs
	}
	return size, nil
}

func (c *mapConverter) Default() any {
	return NewMap(0)
}

// mapEntries lists the entries of a *Map, Map or Go map value. Go map keys
// are sorted when they are numbers or strings so the encoding is stable.
func mapEntries(v any) ([]MapEntry, bool) {
	switch m := v.(type) {
	case *Map:
		if m == nil {
			return nil, false
		}
		return m.entries, true
	case nil:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil, false
	}
	entries := make([]MapEntry, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		entries = append(entries, MapEntry{Key: iter.Key().Interface(), Value: iter.Value().Interface()})
	}
	sortEntries(entries)
	return entries, true
}

func sortEntries(entries []MapEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		less, ok := orderedLess(entries[i].Key, entries[j].Key)
		return ok && less
	})
}

// orderedLess compares keys of the same numeric or string kind.
func orderedLess(a, b any) (bool, bool) {
	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	if !av.IsValid() || !bv.IsValid() || av.Kind() != bv.Kind() {
		return false, false
	}
	switch av.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return av.Int() < bv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return av.Uint() < bv.Uint(), true
	case reflect.Float32, reflect.Float64:
		return av.Float() < bv.Float(), true
	case reflect.String:
		return av.String() < bv.String(), true
	case reflect.Bool:
		return !av.Bool() && bv.Bool(), true
	}
	return false, false
}

func keySegment(k any) string {
	switch key := k.(type) {
	case string:
		return "{" + strconv.Quote(key) + "}"
	case []byte:
		return "{" + strconv.Quote(string(key)) + "}"
	}
	return "{" + fmt.Sprint(k) + "}"
}
