// Package converter compiles schema types into converters that serialize Go
// values to the wire format and back.
//
// # Converters
//
// A Factory resolves a type name through a Resolver (usually a
// *schema.Protocols) and returns a Converter:
//
//	Class        Go value on Serialize            Go value from Deserialize
//	──────────────────────────────────────────────────────────────────────────
//	scalar       any Go number, bool, string      int8 … uint64, float32/64, bool, byte, string, []byte
//	decimal      *apd.Decimal, string, numbers    *apd.Decimal
//	typed_array  []T or any sequence of numbers   []T ([]uint8 aliases the input)
//	array        any slice or array               []any
//	map          *Map or any Go map               *Map in wire order
//	struct       map[string]any                   map[string]any
//	enum         code or case-insensitive name    code in the base integer type
//	bitset       raw integer of declared bits     raw integer, undeclared bits dropped
//	external     []byte of the declared size      []byte
//
// # Size and Serialize
//
// Size(v) returns exactly the number of bytes Serialize(v) writes. Marshal
// and MarshalTo size the value first, so a value that fails validation
// (a missing field, a fixed array of the wrong length) writes nothing.
//
// # Recursive Schemas
//
// A struct may refer to itself through a dynamic array or a map. The
// converter graph is then cyclic and every value is finite. Nesting depth is
// bounded by the buffer (see buffer.DefaultMaxDepth and WithMaxDepth).
//
// # Errors
//
// Failures inside composite values are re-rooted with the field, index or
// key that led to them:
//
//	[encode] length_mismatch at items[2].samples: type Order - array length 3, schema requires 4
//
// # Thread Safety
//
// Converters are immutable and safe for concurrent use. A buffer.Buffer
// and a Factory are not.
package converter
