package converter

import (
	"github.com/wippyai/messgen/errors"
	"github.com/wippyai/messgen/schema"
)

// Factory compiles type names into converters. It caches nothing across
// calls; callers keep the converters they need.
//
// A Factory is not safe for concurrent use. The converters it returns are.
type Factory struct {
	resolver Resolver

	// per-call state for recursive schemas
	building map[string]*structConverter
	stack    []frame
}

type frame struct {
	name string
	// an empty value of this type ends recursion (dynamic arrays and maps)
	breaks bool
}

func NewFactory(r Resolver) *Factory {
	return &Factory{resolver: r}
}

// Converter compiles name and every type it references. A struct reached
// again through a dynamic array or map reuses the converter under
// construction, so recursive schemas yield a cyclic converter graph. A
// struct that contains itself through struct fields and fixed arrays only
// can never hold a finite value and is a schema error.
func (f *Factory) Converter(name string) (Converter, error) {
	f.building = make(map[string]*structConverter)
	f.stack = f.stack[:0]
	defer func() { f.building = nil }()
	return f.build(name)
}

func (f *Factory) build(name string) (Converter, error) {
	if sc, ok := f.building[name]; ok {
		if !f.breaksSince(name) {
			return nil, errors.Schema(name, "struct %s contains itself without a dynamic array or map in between", name)
		}
		return sc, nil
	}

	def, err := f.resolver.GetType(name)
	if err != nil {
		return nil, err
	}

	switch d := def.(type) {
	case *schema.ScalarType:
		return newScalar(d), nil
	case *schema.DecimalType:
		return newDecimal(d), nil
	case *schema.TypedArrayType:
		return newTypedArray(d), nil
	case *schema.ArrayType:
		return f.buildArray(d)
	case *schema.MapType:
		return f.buildMap(d)
	case *schema.StructType:
		return f.buildStruct(d)
	case *schema.EnumType:
		return newEnum(d)
	case *schema.BitsetType:
		return newBitset(d)
	case *schema.ExternalType:
		return newExternal(d), nil
	}
	return nil, errors.Unsupported(errors.PhaseCompile, "type class "+def.Class().String()+" of "+name)
}

func (f *Factory) buildArray(d *schema.ArrayType) (Converter, error) {
	f.push(d.Name, !d.Fixed || d.Size == 0)
	defer f.pop()

	elem, err := f.build(d.ElementType)
	if err != nil {
		return nil, errors.Within(errors.PhaseCompile, err, d.Name, "[]")
	}
	return &arrayConverter{name: d.Name, elem: elem, size: d.Size, fixed: d.Fixed}, nil
}

func (f *Factory) buildMap(d *schema.MapType) (Converter, error) {
	f.push(d.Name, true)
	defer f.pop()

	key, err := f.build(d.KeyType)
	if err != nil {
		return nil, errors.Within(errors.PhaseCompile, err, d.Name, "{key}")
	}
	value, err := f.build(d.ValueType)
	if err != nil {
		return nil, errors.Within(errors.PhaseCompile, err, d.Name, "{value}")
	}
	return &mapConverter{name: d.Name, key: key, value: value}, nil
}

func (f *Factory) buildStruct(d *schema.StructType) (Converter, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	sc := &structConverter{name: d.Name}
	f.building[d.Name] = sc
	f.push(d.Name, false)
	defer func() {
		f.pop()
		delete(f.building, d.Name)
	}()

	fields := make([]structField, 0, len(d.Fields))
	for _, fd := range d.Fields {
		conv, err := f.build(fd.Type)
		if err != nil {
			return nil, errors.Within(errors.PhaseCompile, err, d.Name, fd.Name)
		}
		fields = append(fields, structField{name: fd.Name, conv: conv})
	}
	sc.fields = fields
	return sc, nil
}

func (f *Factory) push(name string, breaks bool) {
	f.stack = append(f.stack, frame{name: name, breaks: breaks})
}

func (f *Factory) pop() {
	f.stack = f.stack[:len(f.stack)-1]
}

// breaksSince reports whether a recursion-ending frame lies above the
// innermost frame of the struct name.
func (f *Factory) breaksSince(name string) bool {
	for i := len(f.stack) - 1; i >= 0; i-- {
		if f.stack[i].name == name {
			return false
		}
		if f.stack[i].breaks {
			return true
		}
	}
	return false
}
