package schema

import "strings"

// Kind classifies a schema node.
type Kind string

// Schema kinds.
const (
	KindRecord  Kind = "record"
	KindArray   Kind = "array"
	KindEnum    Kind = "enum"
	KindUnion   Kind = "union"
	KindString  Kind = "string"
	KindInt     Kind = "int"
	KindFloat   Kind = "float"
	KindDecimal Kind = "decimal"
	KindBoolean Kind = "boolean"
	KindByte    Kind = "byte"
	KindNil     Kind = "nil"
	KindUnknown Kind = "unknown"
)

var knownKinds = map[Kind]bool{
	KindRecord: true, KindArray: true, KindEnum: true, KindUnion: true,
	KindString: true, KindInt: true, KindFloat: true, KindDecimal: true,
	KindBoolean: true, KindByte: true, KindNil: true, KindUnknown: true,
}

// ParseKind maps a kind name to a Kind. Unrecognized names map to KindUnknown.
func ParseKind(s string) Kind {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if knownKinds[k] {
		return k
	}
	return KindUnknown
}

// IsPrimitive reports whether k has no structural children.
func (k Kind) IsPrimitive() bool {
	switch k {
	case KindRecord, KindArray, KindEnum, KindUnion:
		return false
	}
	return true
}

// DefaultValue returns the literal used for an unmapped field of kind k.
func DefaultValue(k Kind) string {
	switch k {
	case KindString:
		return `""`
	case KindInt, KindByte:
		return "0"
	case KindFloat:
		return "0.0"
	case KindDecimal:
		return "0d"
	case KindBoolean:
		return "false"
	case KindArray:
		return "[]"
	case KindRecord:
		return "{}"
	case KindNil:
		return "()"
	}
	return ""
}

// IOType is a node of an input or output schema tree.
type IOType struct {
	ID           string       `json:"id" bson:"id"`
	VariableName string       `json:"variableName,omitempty" bson:"variable_name,omitempty"`
	TypeName     string       `json:"typeName,omitempty" bson:"type_name,omitempty"`
	Kind         Kind         `json:"kind" bson:"kind"`
	Optional     bool         `json:"optional,omitempty" bson:"optional,omitempty"`
	Fields       []*IOType    `json:"fields,omitempty" bson:"fields,omitempty"`
	Member       *IOType      `json:"member,omitempty" bson:"member,omitempty"`
	Members      []EnumMember `json:"members,omitempty" bson:"members,omitempty"`
}

// EnumMember is one constant of an enum type.
type EnumMember struct {
	ID    string `json:"id" bson:"id"`
	Value string `json:"value,omitempty" bson:"value,omitempty"`
}

// Name returns the variable name, falling back to the ID.
func (t *IOType) Name() string {
	if t == nil {
		return ""
	}
	if t.VariableName != "" {
		return t.VariableName
	}
	return t.ID
}

// Field returns the direct child field with the given name, or nil.
func (t *IOType) Field(name string) *IOType {
	if t == nil {
		return nil
	}
	for _, f := range t.Fields {
		if f.Name() == name {
			return f
		}
	}
	return nil
}

// Clone returns a deep copy of t.
func (t *IOType) Clone() *IOType {
	if t == nil {
		return nil
	}
	c := *t
	if t.Fields != nil {
		c.Fields = make([]*IOType, len(t.Fields))
		for i, f := range t.Fields {
			c.Fields[i] = f.Clone()
		}
	}
	c.Member = t.Member.Clone()
	if t.Members != nil {
		c.Members = append([]EnumMember(nil), t.Members...)
	}
	return &c
}

// Severity grades a diagnostic.
type Severity string

// Diagnostic severities.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Diagnostic is a message attached to a mapping by the persistence collaborator.
type Diagnostic struct {
	Severity Severity `json:"severity" bson:"severity"`
	Message  string   `json:"message" bson:"message"`
}

// Mapping assigns an expression to one output path.
type Mapping struct {
	Output         string       `json:"output" bson:"output"`
	Inputs         []string     `json:"inputs,omitempty" bson:"inputs,omitempty"`
	Expression     string       `json:"expression" bson:"expression"`
	Diagnostics    []Diagnostic `json:"diagnostics,omitempty" bson:"diagnostics,omitempty"`
	IsComplex      bool         `json:"isComplex,omitempty" bson:"is_complex,omitempty"`
	IsFunctionCall bool         `json:"isFunctionCall,omitempty" bson:"is_function_call,omitempty"`
	Elements       []Element    `json:"elements,omitempty" bson:"elements,omitempty"`
}

// Element is one positional entry of an array-shaped mapping.
type Element struct {
	Mappings []Mapping `json:"mappings" bson:"mappings"`
}

// IsDirect reports whether m renders as a single link: exactly one input and
// neither complex nor a function call.
func (m Mapping) IsDirect() bool {
	return len(m.Inputs) == 1 && !m.IsComplex && !m.IsFunctionCall
}

// HasErrors reports whether any diagnostic has error severity.
func (m Mapping) HasErrors() bool {
	for _, d := range m.Diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of m.
func (m Mapping) Clone() Mapping {
	c := m
	if m.Inputs != nil {
		c.Inputs = append([]string(nil), m.Inputs...)
	}
	if m.Diagnostics != nil {
		c.Diagnostics = append([]Diagnostic(nil), m.Diagnostics...)
	}
	if m.Elements != nil {
		c.Elements = make([]Element, len(m.Elements))
		for i, e := range m.Elements {
			c.Elements[i] = Element{Mappings: CloneMappings(e.Mappings)}
		}
	}
	return c
}

// CloneMappings deep copies a mapping list. A nil list stays nil.
func CloneMappings(ms []Mapping) []Mapping {
	if ms == nil {
		return nil
	}
	out := make([]Mapping, len(ms))
	for i, m := range ms {
		out[i] = m.Clone()
	}
	return out
}

// Walk calls fn for every mapping in ms, depth first, including nested element mappings.
// Walking stops early when fn returns false.
func Walk(ms []Mapping, fn func(m *Mapping) bool) bool {
	for i := range ms {
		if !fn(&ms[i]) {
			return false
		}
		for j := range ms[i].Elements {
			if !Walk(ms[i].Elements[j].Mappings, fn) {
				return false
			}
		}
	}
	return true
}

// Direction is the side of a port: IN ports receive values, OUT ports provide them.
type Direction string

// Port directions.
const (
	In  Direction = "IN"
	Out Direction = "OUT"
)
