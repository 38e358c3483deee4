package schema

import (
	"strings"

	"github.com/wippyai/messgen/errors"
)

// NameSeparator joins the path segments of a type or protocol name.
const NameSeparator = "/"

// reserved by the Go object model that generated types map onto
var reservedNames = map[string]struct{}{
	"break": {}, "case": {}, "chan": {}, "const": {}, "continue": {},
	"default": {}, "defer": {}, "else": {}, "fallthrough": {}, "for": {},
	"func": {}, "go": {}, "goto": {}, "if": {}, "import": {},
	"interface": {}, "map": {}, "package": {}, "range": {}, "return": {},
	"select": {}, "struct": {}, "switch": {}, "type": {}, "var": {},
}

// IsReserved reports whether name is a reserved identifier.
func IsReserved(name string) bool {
	_, ok := reservedNames[name]
	return ok
}

// ValidName reports whether name is an identifier usable as a field,
// message or name segment.
func ValidName(name string) bool {
	if name == "" || IsReserved(name) {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// ValidTypeName reports whether every separator-delimited segment of name
// is a valid identifier.
func ValidTypeName(name string) bool {
	if name == "" {
		return false
	}
	for _, part := range strings.Split(name, NameSeparator) {
		if !ValidName(part) {
			return false
		}
	}
	return true
}

func schemaError(phase errors.Phase, typeName, format string, args ...any) *errors.Error {
	return errors.New(phase, errors.KindSchema).
		TypeName(typeName).
		Detail(format, args...).
		Build()
}

// Validate checks field names for duplicates, invalid identifiers and
// reserved words.
func (t *StructType) Validate() error {
	return t.validate(errors.PhaseCompile)
}

func (t *StructType) validate(phase errors.Phase) error {
	seen := make(map[string]struct{}, len(t.Fields))
	for _, f := range t.Fields {
		if IsReserved(f.Name) {
			return schemaError(phase, t.Name, "field name %q is a reserved identifier", f.Name)
		}
		if !ValidName(f.Name) {
			return schemaError(phase, t.Name, "invalid field name %q", f.Name)
		}
		if _, dup := seen[f.Name]; dup {
			return schemaError(phase, t.Name, "duplicate field name %q", f.Name)
		}
		if f.Type == "" {
			return schemaError(phase, t.Name, "field %q has no type", f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}

// Validate checks the base type and value names.
func (t *EnumType) Validate() error {
	return t.validate(errors.PhaseCompile)
}

func (t *EnumType) validate(phase errors.Phase) error {
	if !t.Base.IsInteger() {
		return schemaError(phase, t.Name, "enum base type %q is not an integer type", t.BaseType)
	}
	seen := make(map[string]struct{}, len(t.Values))
	for _, v := range t.Values {
		if v.Name == "" {
			return schemaError(phase, t.Name, "enum value %d has no name", v.Value)
		}
		if _, dup := seen[v.Name]; dup {
			return schemaError(phase, t.Name, "duplicate enum value name %q", v.Name)
		}
		seen[v.Name] = struct{}{}
	}
	return nil
}

// Validate checks the base type, bit names and offsets.
func (t *BitsetType) Validate() error {
	return t.validate(errors.PhaseCompile)
}

func (t *BitsetType) validate(phase errors.Phase) error {
	if !t.Base.IsInteger() {
		return schemaError(phase, t.Name, "bitset base type %q is not an integer type", t.BaseType)
	}
	width := t.Base.Bits()
	names := make(map[string]struct{}, len(t.Bits))
	offsets := make(map[int]string, len(t.Bits))
	for _, b := range t.Bits {
		if b.Name == "" {
			return schemaError(phase, t.Name, "bit at offset %d has no name", b.Offset)
		}
		if _, dup := names[b.Name]; dup {
			return schemaError(phase, t.Name, "duplicate bit name %q", b.Name)
		}
		if b.Offset < 0 || b.Offset >= width {
			return schemaError(phase, t.Name, "bit %q offset %d out of range [0, %d]", b.Name, b.Offset, width-1)
		}
		if other, dup := offsets[b.Offset]; dup {
			return schemaError(phase, t.Name, "bits %q and %q share offset %d", other, b.Name, b.Offset)
		}
		names[b.Name] = struct{}{}
		offsets[b.Offset] = b.Name
	}
	return nil
}
