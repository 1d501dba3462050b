// Package record models the schema of the in-memory record tables consumed
// by the alert processing pipeline. Field names and types follow that
// pipeline's conventions, which differ from the database ones.
package record

import (
	"fmt"
	"strings"
)

// FieldType is a record field type code.
type FieldType string

const (
	TypeInt    FieldType = "I"
	TypeLong   FieldType = "L"
	TypeFloat  FieldType = "F"
	TypeDouble FieldType = "D"
	TypeAngle  FieldType = "Angle"
	TypeString FieldType = "String"
	TypeFlag   FieldType = "Flag"
)

// Field is one declared field of a record schema.
type Field struct {
	Name  string
	Type  FieldType
	Doc   string
	Units string
	Size  int // String fields only
}

// Key identifies a field in the schema that created it.
type Key struct {
	index int
}

// Index returns the position of the field in its schema.
func (k Key) Index() int { return k.index }

// Schema is an ordered set of uniquely named fields.
type Schema struct {
	fields []Field
	byName map[string]int
}

// NewSchema returns an empty schema.
func NewSchema() *Schema {
	return &Schema{byName: map[string]int{}}
}

// MinimalSourceSchema returns the fields every source record carries.
func MinimalSourceSchema() *Schema {
	s := NewSchema()
	s.MustAdd(
		Field{Name: "id", Type: TypeLong, Doc: "unique ID"},
		Field{Name: "coord_ra", Type: TypeAngle, Doc: "position in ra/dec", Units: "rad"},
		Field{Name: "coord_dec", Type: TypeAngle, Doc: "position in ra/dec", Units: "rad"},
		Field{Name: "parent", Type: TypeLong, Doc: "unique ID of parent source"},
	)
	return s
}

// AddField appends a field and returns its key.
func (s *Schema) AddField(f Field) (Key, error) {
	if f.Name == "" {
		return Key{}, fmt.Errorf("field name is required")
	}
	if _, dup := s.byName[f.Name]; dup {
		return Key{}, fmt.Errorf("field %q already present in schema", f.Name)
	}
	switch f.Type {
	case TypeInt, TypeLong, TypeFloat, TypeDouble, TypeAngle, TypeFlag:
	case TypeString:
		if f.Size <= 0 {
			return Key{}, fmt.Errorf("string field %q needs a positive size", f.Name)
		}
	default:
		return Key{}, fmt.Errorf("field %q has unsupported type %q", f.Name, f.Type)
	}
	k := Key{index: len(s.fields)}
	s.byName[f.Name] = k.index
	s.fields = append(s.fields, f)
	return k, nil
}

// MustAdd appends fields like AddField and panics on the first error. It is
// meant for schemas built from fixed field lists.
func (s *Schema) MustAdd(fields ...Field) {
	for _, f := range fields {
		if _, err := s.AddField(f); err != nil {
			panic(err)
		}
	}
}

// Find looks a field up by its exact name.
func (s *Schema) Find(name string) (Key, bool) {
	i, ok := s.byName[name]
	return Key{index: i}, ok
}

// FindFold returns the names of all fields equal to name under case folding.
func (s *Schema) FindFold(name string) []string {
	var out []string
	for _, f := range s.fields {
		if strings.EqualFold(f.Name, name) {
			out = append(out, f.Name)
		}
	}
	return out
}

// Field returns the field a key refers to.
func (s *Schema) Field(k Key) Field {
	return s.fields[k.index]
}

// Fields returns a copy of all fields in declaration order.
func (s *Schema) Fields() []Field {
	return append([]Field(nil), s.fields...)
}

// Names returns field names in declaration order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// FieldCount returns the number of fields.
func (s *Schema) FieldCount() int {
	return len(s.fields)
}

// Clone returns an independent copy; keys of s remain valid in the copy.
func (s *Schema) Clone() *Schema {
	c := &Schema{
		fields: append([]Field(nil), s.fields...),
		byName: make(map[string]int, len(s.byName)),
	}
	for k, v := range s.byName {
		c.byName[k] = v
	}
	return c
}
