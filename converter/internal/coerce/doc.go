// Package coerce converts loosely typed Go values into the integer and
// floating point ranges of wire scalars. It handles the shapes values take
// after generic decoding: any Go integer, integral float64/float32 and
// json.Number.
package coerce
