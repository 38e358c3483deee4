package schema

import (
	"sort"
)

// Class tags the variant of a TypeDefinition.
type Class uint8

const (
	ClassScalar Class = iota
	ClassDecimal
	ClassTypedArray
	ClassArray
	ClassMap
	ClassStruct
	ClassEnum
	ClassBitset
	ClassExternal
)

var classNames = [...]string{
	ClassScalar:     "scalar",
	ClassDecimal:    "decimal",
	ClassTypedArray: "typed_array",
	ClassArray:      "array",
	ClassMap:        "map",
	ClassStruct:     "struct",
	ClassEnum:       "enum",
	ClassBitset:     "bitset",
	ClassExternal:   "external",
}

func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return "unknown"
}

// TypeDefinition is a resolved schema type. The set of implementations is
// closed: *ScalarType, *DecimalType, *TypedArrayType, *ArrayType, *MapType,
// *StructType, *EnumType, *BitsetType and *ExternalType.
type TypeDefinition interface {
	TypeName() string
	Class() Class
	// Dependencies lists the directly referenced type names, sorted.
	Dependencies() []string
	signature() []any
}

type ScalarType struct {
	Name  string
	Basic Basic
}

func (t *ScalarType) TypeName() string       { return t.Name }
func (t *ScalarType) Class() Class           { return ClassScalar }
func (t *ScalarType) Dependencies() []string { return nil }

type DecimalType struct {
	Name string
}

func (t *DecimalType) TypeName() string       { return t.Name }
func (t *DecimalType) Class() Class           { return ClassDecimal }
func (t *DecimalType) Dependencies() []string { return nil }

// TypedArrayType is an array of fixed-width numeric scalars, stored
// contiguously on the wire.
type TypedArrayType struct {
	Name        string
	ElementType string
	Element     Basic
	Size        int
	Fixed       bool
}

func (t *TypedArrayType) TypeName() string       { return t.Name }
func (t *TypedArrayType) Class() Class           { return ClassTypedArray }
func (t *TypedArrayType) Dependencies() []string { return []string{t.ElementType} }

// ArrayType is an array whose elements are encoded one by one.
type ArrayType struct {
	Name        string
	ElementType string
	Size        int
	Fixed       bool
}

func (t *ArrayType) TypeName() string       { return t.Name }
func (t *ArrayType) Class() Class           { return ClassArray }
func (t *ArrayType) Dependencies() []string { return []string{t.ElementType} }

type MapType struct {
	Name      string
	KeyType   string
	ValueType string
}

func (t *MapType) TypeName() string { return t.Name }
func (t *MapType) Class() Class     { return ClassMap }
func (t *MapType) Dependencies() []string {
	return sortedSet(t.KeyType, t.ValueType)
}

type Field struct {
	Name    string
	Type    string
	Comment string
}

type StructType struct {
	Name    string
	Comment string
	Fields  []Field
}

func (t *StructType) TypeName() string { return t.Name }
func (t *StructType) Class() Class     { return ClassStruct }
func (t *StructType) Dependencies() []string {
	names := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		names[i] = f.Type
	}
	return sortedSet(names...)
}

type EnumValue struct {
	Name    string
	Value   int64
	Comment string
}

type EnumType struct {
	Name     string
	Comment  string
	BaseType string
	Base     Basic
	Values   []EnumValue
}

func (t *EnumType) TypeName() string       { return t.Name }
func (t *EnumType) Class() Class           { return ClassEnum }
func (t *EnumType) Dependencies() []string { return nil }

type Bit struct {
	Name    string
	Offset  int
	Comment string
}

type BitsetType struct {
	Name     string
	Comment  string
	BaseType string
	Base     Basic
	Bits     []Bit
}

func (t *BitsetType) TypeName() string       { return t.Name }
func (t *BitsetType) Class() Class           { return ClassBitset }
func (t *BitsetType) Dependencies() []string { return nil }

// Mask returns the OR of all declared bit positions.
func (t *BitsetType) Mask() uint64 {
	var mask uint64
	for _, b := range t.Bits {
		if b.Offset >= 0 && b.Offset < 64 {
			mask |= 1 << uint(b.Offset)
		}
	}
	return mask
}

// ExternalType is an opaque type defined outside the schema. Only types with
// a declared size can be encoded.
type ExternalType struct {
	Name    string
	Comment string
	Size    int
	Sized   bool
}

func (t *ExternalType) TypeName() string       { return t.Name }
func (t *ExternalType) Class() Class           { return ClassExternal }
func (t *ExternalType) Dependencies() []string { return nil }

func sortedSet(names ...string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
