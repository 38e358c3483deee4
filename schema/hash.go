package schema

import (
	"bytes"
	"crypto/md5"
	"encoding/binary"
	"encoding/json"
)

// Type fingerprints: the first 8 bytes (little-endian) of the MD5 of the
// compact JSON signature, XOR the fingerprints of every dependency.

func (t *ScalarType) signature() []any  { return []any{pair("type", t.Name)} }
func (t *DecimalType) signature() []any { return []any{pair("type", t.Name)} }
func (t *MapType) signature() []any     { return []any{pair("type", t.Name)} }

func (t *TypedArrayType) signature() []any {
	return arraySignature(t.Name, t.ElementType, t.Size, t.Fixed)
}

func (t *ArrayType) signature() []any {
	return arraySignature(t.Name, t.ElementType, t.Size, t.Fixed)
}

func arraySignature(name, elem string, size int, fixed bool) []any {
	if !fixed {
		return []any{pair("type", name)}
	}
	return []any{pair("type", name), pair("element_type", elem), pair("array_size", size)}
}

func (t *StructType) signature() []any {
	fields := make([]any, len(t.Fields))
	for i, f := range t.Fields {
		fields[i] = pair(f.Name, f.Type)
	}
	return []any{pair("type", t.Name), pair("fields", fields)}
}

func (t *EnumType) signature() []any {
	values := make([]any, len(t.Values))
	for i, v := range t.Values {
		values[i] = pair(v.Name, v.Value)
	}
	return []any{pair("type", t.Name), pair("base_type", t.BaseType), pair("values", values)}
}

func (t *BitsetType) signature() []any {
	bits := make([]any, len(t.Bits))
	for i, b := range t.Bits {
		bits[i] = pair(b.Name, b.Offset)
	}
	return []any{pair("type", t.Name), pair("base_type", t.BaseType), pair("bits", bits)}
}

func (t *ExternalType) signature() []any {
	var size any
	if t.Sized {
		size = t.Size
	}
	return []any{pair("type", t.Name), pair("size", size)}
}

func (m *Message) signature() []any {
	return []any{pair("name", m.Name), pair("proto_id", int(m.ProtoID)), pair("message_id", int(m.ID))}
}

func pair(k string, v any) []any { return []any{k, v} }

func hashSignature(sig []any) (uint64, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(sig); err != nil {
		return 0, err
	}
	sum := md5.Sum(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
	return binary.LittleEndian.Uint64(sum[:8]), nil
}

// Hash returns the fingerprint of a type. A dependency that refers back to a
// type already on the current chain is skipped.
func (p *Protocols) Hash(name string) (uint64, error) {
	return p.hashType(name, make(map[string]bool))
}

func (p *Protocols) hashType(name string, chain map[string]bool) (uint64, error) {
	def, err := p.GetType(name)
	if err != nil {
		return 0, err
	}
	h, err := hashSignature(def.signature())
	if err != nil {
		return 0, err
	}

	chain[name] = true
	defer delete(chain, name)

	for _, dep := range def.Dependencies() {
		if chain[dep] {
			continue
		}
		dh, err := p.hashType(dep, chain)
		if err != nil {
			return 0, err
		}
		h ^= dh
	}
	return h, nil
}

// MessageHash returns the fingerprint of a message: its own signature XOR
// the fingerprint of its payload type.
func (p *Protocols) MessageHash(m *Message) (uint64, error) {
	h, err := hashSignature(m.signature())
	if err != nil {
		return 0, err
	}
	th, err := p.Hash(m.Type)
	if err != nil {
		return 0, err
	}
	return h ^ th, nil
}

// ProtocolHash returns the XOR of all message fingerprints of a protocol.
func (p *Protocols) ProtocolHash(proto *Protocol) (uint64, error) {
	var h uint64
	for _, m := range proto.Messages {
		mh, err := p.MessageHash(m)
		if err != nil {
			return 0, err
		}
		h ^= mh
	}
	return h, nil
}
