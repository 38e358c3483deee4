package schema

// Basic identifies a built-in scalar type.
type Basic uint8

const (
	BasicInvalid Basic = iota
	BasicInt8
	BasicUint8
	BasicInt16
	BasicUint16
	BasicInt32
	BasicUint32
	BasicInt64
	BasicUint64
	BasicFloat32
	BasicFloat64
	BasicBool
	BasicChar
	BasicString
	BasicBytes
)

// DecimalName is the type name of the 64-bit decimal type.
const DecimalName = "dec64"

var basicNames = [...]string{
	BasicInvalid: "invalid",
	BasicInt8:    "int8",
	BasicUint8:   "uint8",
	BasicInt16:   "int16",
	BasicUint16:  "uint16",
	BasicInt32:   "int32",
	BasicUint32:  "uint32",
	BasicInt64:   "int64",
	BasicUint64:  "uint64",
	BasicFloat32: "float32",
	BasicFloat64: "float64",
	BasicBool:    "bool",
	BasicChar:    "char",
	BasicString:  "string",
	BasicBytes:   "bytes",
}

// wire width in bytes; 0 for length-prefixed kinds
var basicWidths = [...]int{
	BasicInt8:    1,
	BasicUint8:   1,
	BasicInt16:   2,
	BasicUint16:  2,
	BasicInt32:   4,
	BasicUint32:  4,
	BasicInt64:   8,
	BasicUint64:  8,
	BasicFloat32: 4,
	BasicFloat64: 8,
	BasicBool:    1,
	BasicChar:    1,
}

var basicByName = func() map[string]Basic {
	m := make(map[string]Basic, len(basicNames))
	for b, name := range basicNames {
		if Basic(b) != BasicInvalid {
			m[name] = Basic(b)
		}
	}
	return m
}()

// LookupBasic resolves a scalar keyword.
func LookupBasic(name string) (Basic, bool) {
	b, ok := basicByName[name]
	return b, ok
}

func (b Basic) String() string {
	if int(b) < len(basicNames) {
		return basicNames[b]
	}
	return "unknown"
}

// Width returns the fixed wire width, or 0 for string and bytes.
func (b Basic) Width() int {
	if int(b) < len(basicWidths) {
		return basicWidths[b]
	}
	return 0
}

// Bits returns the width in bits of a fixed-width scalar.
func (b Basic) Bits() int {
	return b.Width() * 8
}

// IsNumeric reports whether b is an integer or floating point type.
// Arrays of numeric elements are stored contiguously.
func (b Basic) IsNumeric() bool {
	return b >= BasicInt8 && b <= BasicFloat64
}

func (b Basic) IsInteger() bool {
	return b >= BasicInt8 && b <= BasicUint64
}

func (b Basic) IsFloat() bool {
	return b == BasicFloat32 || b == BasicFloat64
}

func (b Basic) IsSigned() bool {
	switch b {
	case BasicInt8, BasicInt16, BasicInt32, BasicInt64, BasicFloat32, BasicFloat64:
		return true
	default:
		return false
	}
}

// IsFixed reports whether b has a constant wire width.
func (b Basic) IsFixed() bool {
	return b.Width() > 0
}
