// Package buffer provides the cursor every converter reads and writes through.
//
// A Buffer wraps a fixed-size byte region and a single offset that advances
// after each primitive operation. All multi-byte values are little-endian.
// Strings and byte strings are prefixed with a 4-byte unsigned length.
//
//	Method            Width
//	─────────────────────────────────
//	Uint8/Int8/Bool   1
//	Uint16/Int16      2
//	Uint32/Int32      4
//	Float32           4
//	Uint64/Int64      8
//	Float64           8
//	String/Bytes      4 + len
//
// Writers size the region up front from the converter's Size, so a write
// past the end means Size and Serialize disagree. Reading past the end is a
// buffer underrun. Both surface as out_of_bounds errors.
//
// A Buffer is owned by one serialize or deserialize call at a time and is
// not safe for concurrent use.
package buffer
