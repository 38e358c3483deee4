package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/cockroachdb/apd/v3"

	"github.com/wippyai/messgen/converter"
	"github.com/wippyai/messgen/schema"
)

type plainOptions struct {
	// json renders bytes as hex and map keys as strings
	json bool
	// names renders enum codes and bitset values by name
	names bool
}

// toPlain turns a decoded value into plain Go data for JSON or CBOR output.
// The JSON form is accepted back by fromJSON.
func toPlain(c converter.Converter, v any, o plainOptions) any {
	switch c.Class() {
	case schema.ClassScalar:
		switch x := v.(type) {
		case []byte:
			if o.json {
				return hex.EncodeToString(x)
			}
			return x
		case byte:
			if s, ok := c.(converter.Scalar); ok && s.Basic() == schema.BasicChar {
				return string([]byte{x})
			}
		}
		return v

	case schema.ClassDecimal:
		if d, ok := v.(*apd.Decimal); ok {
			return d.String()
		}
		return v

	case schema.ClassExternal:
		if b, ok := v.([]byte); ok && o.json {
			return hex.EncodeToString(b)
		}
		return v

	case schema.ClassTypedArray:
		if b, ok := v.([]byte); ok && o.json {
			// numbers, not base64
			out := make([]int, len(b))
			for i, x := range b {
				out[i] = int(x)
			}
			return out
		}
		return v

	case schema.ClassArray:
		arr := c.(converter.Array)
		items, _ := v.([]any)
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = toPlain(arr.Elem(), item, o)
		}
		return out

	case schema.ClassMap:
		mc := c.(converter.Mapping)
		m, _ := v.(*converter.Map)
		if o.json {
			out := make(map[string]any, m.Len())
			for _, e := range m.Entries() {
				out[fmt.Sprint(toPlain(mc.Key(), e.Key, o))] = toPlain(mc.Value(), e.Value, o)
			}
			return out
		}
		out := make(map[any]any, m.Len())
		for _, e := range m.Entries() {
			key := toPlain(mc.Key(), e.Key, o)
			if b, ok := key.([]byte); ok {
				key = string(b)
			}
			out[key] = toPlain(mc.Value(), e.Value, o)
		}
		return out

	case schema.ClassStruct:
		sc := c.(converter.Struct)
		rec, _ := v.(map[string]any)
		out := make(map[string]any, len(rec))
		for _, name := range sc.Fields() {
			fc, _ := sc.Field(name)
			out[name] = toPlain(fc, rec[name], o)
		}
		return out

	case schema.ClassEnum:
		if o.names {
			if name, ok := c.(converter.Enum).Name(v); ok {
				return name
			}
		}
		return v

	case schema.ClassBitset:
		if o.names {
			if names, err := c.(converter.Bitset).Decompose(v); err == nil {
				if names == nil {
					names = []string{}
				}
				return names
			}
		}
		return v
	}
	return v
}

// fromJSON adapts a document decoded with UseNumber to the value shapes the
// converter accepts: hex strings for bytes, objects for maps with typed keys,
// bit name lists for bitsets.
func fromJSON(c converter.Converter, v any) (any, error) {
	switch c.Class() {
	case schema.ClassScalar:
		if s, ok := v.(string); ok && c.(converter.Scalar).Basic() == schema.BasicBytes {
			return hex.DecodeString(s)
		}
		return v, nil

	case schema.ClassExternal:
		if s, ok := v.(string); ok {
			return hex.DecodeString(s)
		}
		return v, nil

	case schema.ClassArray:
		items, ok := v.([]any)
		if !ok {
			return v, nil
		}
		elem := c.(converter.Array).Elem()
		out := make([]any, len(items))
		for i, item := range items {
			x, err := fromJSON(elem, item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = x
		}
		return out, nil

	case schema.ClassMap:
		obj, ok := v.(map[string]any)
		if !ok {
			return v, nil
		}
		mc := c.(converter.Mapping)
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		out := converter.NewMap(len(obj))
		for _, k := range keys {
			key, err := keyFromString(mc.Key(), k)
			if err != nil {
				return nil, fmt.Errorf("{%s}: %w", k, err)
			}
			val, err := fromJSON(mc.Value(), obj[k])
			if err != nil {
				return nil, fmt.Errorf("{%s}: %w", k, err)
			}
			out.Set(key, val)
		}
		return out, nil

	case schema.ClassStruct:
		obj, ok := v.(map[string]any)
		if !ok {
			return v, nil
		}
		sc := c.(converter.Struct)
		out := make(map[string]any, len(obj))
		for name, fv := range obj {
			fc, ok := sc.Field(name)
			if !ok {
				return nil, fmt.Errorf("struct %s has no field %q", c.TypeName(), name)
			}
			x, err := fromJSON(fc, fv)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			out[name] = x
		}
		return out, nil

	case schema.ClassBitset:
		names, ok := v.([]any)
		if !ok {
			return v, nil
		}
		bits := make([]any, len(names))
		for i, n := range names {
			if num, isNum := n.(json.Number); isNum {
				off, err := strconv.Atoi(string(num))
				if err != nil {
					return nil, err
				}
				bits[i] = off
				continue
			}
			bits[i] = n
		}
		return c.(converter.Bitset).Compose(bits...)
	}
	return v, nil
}

// keyFromString converts a JSON object key into a value of the key type.
func keyFromString(c converter.Converter, k string) (any, error) {
	switch c.Class() {
	case schema.ClassScalar:
		switch basic := c.(converter.Scalar).Basic(); {
		case basic == schema.BasicBool:
			return strconv.ParseBool(k)
		case basic == schema.BasicBytes:
			return hex.DecodeString(k)
		case basic.IsNumeric():
			return json.Number(k), nil
		}
		return k, nil
	case schema.ClassEnum, schema.ClassBitset:
		if _, err := strconv.ParseInt(k, 10, 64); err == nil {
			return json.Number(k), nil
		}
		return k, nil
	case schema.ClassDecimal:
		return k, nil
	case schema.ClassExternal:
		return hex.DecodeString(k)
	}
	return nil, fmt.Errorf("map key type %s cannot be written as a JSON object key", c.TypeName())
}
