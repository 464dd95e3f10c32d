package types

// FieldSchema describes one configuration field.
type FieldSchema struct {
	Name string
	Type FieldType
	// ItemType is the element type of a list field.
	ItemType FieldType
	// Default is used when the field has no explicit value. Nil means none.
	Default *Value
}

// Schema is an ordered set of fields. Declaration order decides where newly
// introduced keys land in the output.
type Schema struct {
	Fields []FieldSchema
}

// NewSchema builds a Schema from fields in declaration order.
func NewSchema(fields ...FieldSchema) Schema {
	return Schema{Fields: fields}
}

// Lookup returns the first field with the given name.
func (s Schema) Lookup(name string) (FieldSchema, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSchema{}, false
}

// Order returns field names in declaration order.
func (s Schema) Order() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// FileSpec describes one target artifact for a synthesis pass. It is owned by
// the caller and treated as read-only.
type FileSpec struct {
	// Target is a path template that may contain ${VAR} placeholders.
	Target string
	// Format names a registered format plugin. Empty means infer from the
	// target's extension.
	Format string
	Schema Schema
	Values map[string]Value
}

// EffectiveValues maps field names to the value that will be written:
// explicit values first, schema defaults second. Unset fields are absent.
type EffectiveValues map[string]Value

// Default returns a pointer to v, for use in FieldSchema literals.
func Default(v Value) *Value {
	return &v
}
