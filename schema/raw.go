package schema

// Type classes accepted in raw descriptors.
const (
	TypeClassStruct   = "struct"
	TypeClassEnum     = "enum"
	TypeClassBitset   = "bitset"
	TypeClassExternal = "external"
)

// RawType is a type descriptor as produced by schema tooling.
type RawType struct {
	Type      string         `yaml:"type,omitempty" json:"type,omitempty"`
	TypeClass string         `yaml:"type_class" json:"type_class"`
	Comment   string         `yaml:"comment,omitempty" json:"comment,omitempty"`
	BaseType  string         `yaml:"base_type,omitempty" json:"base_type,omitempty"`
	Size      *int           `yaml:"size,omitempty" json:"size,omitempty"`
	Fields    []RawField     `yaml:"fields,omitempty" json:"fields,omitempty"`
	Values    []RawEnumValue `yaml:"values,omitempty" json:"values,omitempty"`
	Bits      []RawBit       `yaml:"bits,omitempty" json:"bits,omitempty"`
}

type RawField struct {
	Name    string `yaml:"name" json:"name"`
	Type    string `yaml:"type" json:"type"`
	Comment string `yaml:"comment,omitempty" json:"comment,omitempty"`
}

type RawEnumValue struct {
	Name    string `yaml:"name" json:"name"`
	Value   int64  `yaml:"value" json:"value"`
	Comment string `yaml:"comment,omitempty" json:"comment,omitempty"`
}

type RawBit struct {
	Name    string `yaml:"name" json:"name"`
	Offset  int    `yaml:"offset" json:"offset"`
	Comment string `yaml:"comment,omitempty" json:"comment,omitempty"`
}

// RawProtocol is a protocol descriptor. Messages are keyed by message id.
type RawProtocol struct {
	Name     string             `yaml:"name,omitempty" json:"name,omitempty"`
	ProtoID  int                `yaml:"proto_id" json:"proto_id"`
	Comment  string             `yaml:"comment,omitempty" json:"comment,omitempty"`
	Messages map[int]RawMessage `yaml:"messages" json:"messages"`
}

type RawMessage struct {
	MessageID int    `yaml:"message_id" json:"message_id"`
	Name      string `yaml:"name" json:"name"`
	Type      string `yaml:"type" json:"type"`
	Comment   string `yaml:"comment,omitempty" json:"comment,omitempty"`
}
