// Package messgen provides a schema-driven binary codec for typed messages.
//
// Types and protocols are described by descriptors (YAML or JSON). Each named
// type compiles into a converter that serializes Go values into a compact
// little-endian wire format and back.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	messgen/             Root package with protocol and message identifiers
//	├── codec/           Message dispatch by protocol and message id
//	├── converter/       Per-kind converters and the converter factory
//	├── schema/          Type registry, descriptor loading, type-name grammar, hashing
//	├── decimal64/       IEEE 754-2008 decimal64 bit-level codec
//	├── buffer/          Byte cursor shared by all converters
//	├── errors/          Structured error types for debugging
//	└── cmd/msgdump/     CLI to decode, encode and browse messages
//
// # Quick Start
//
// Load descriptors and encode a message:
//
//	c := codec.New()
//	if err := c.LoadDirs([]string{"types"}, []string{"protocols"}); err != nil {
//	    log.Fatal(err)
//	}
//
//	data, err := c.Serialize("test_proto", "simple_struct_msg", map[string]any{
//	    "f0": uint64(1), "f1_pad": uint8(2), "f2": 0.5, "f3": uint32(3),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	value, err := c.Deserialize(1, 0, data)
//
// # Type System
//
//   - Scalars: int8-int64, uint8-uint64, float32, float64, bool, char, string, bytes
//   - Decimal: dec64, a 64-bit decimal floating point value
//   - Arrays: T[] (length-prefixed) and T[N] (fixed size)
//   - Maps: V{K}, keyed by K with values of V
//   - Named: struct, enum, bitset, external
//
// # Wire Format
//
// Structs are the concatenation of their fields in declaration order, with no
// padding and no type tags. Strings, bytes, dynamic arrays and maps carry a
// 4-byte unsigned length prefix. Enums and bitsets encode as their base
// integer type.
//
// # Thread Safety
//
// Converters are immutable after construction and safe for concurrent use.
// A buffer.Buffer belongs to a single call. Codec is safe for concurrent
// lookups and encoding once loaded.
package messgen
