// Package schema is the type registry of the codec.
//
// Raw descriptors (RawType, RawProtocol) come from YAML files or JSON and are
// registered in a Protocols value. GetType resolves any type name into a
// TypeDefinition:
//
//	int8 … uint64, float32, float64   → *ScalarType (numeric)
//	bool, char, string, bytes         → *ScalarType
//	dec64                             → *DecimalType
//	T[] / T[N], T numeric scalar      → *TypedArrayType
//	T[] / T[N], anything else         → *ArrayType
//	V{K}                              → *MapType
//	registered name                   → *StructType, *EnumType, *BitsetType, *ExternalType
//
// Named types are resolved lazily, so descriptors can reference each other
// in any order and structs may refer to themselves through arrays or maps.
//
// Hash, MessageHash and ProtocolHash compute the 64-bit fingerprints used to
// detect schema drift between endpoints.
package schema
