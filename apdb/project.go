package apdb

import (
	"fmt"
	"strings"

	"github.com/ridoystarlord/apdbschema/record"
	"github.com/ridoystarlord/apdbschema/schema"
)

// defaultStringSize is the record field size of CHAR columns without a
// declared length.
const defaultStringSize = 10

// Link ties a logical column to its record field.
type Link struct {
	Logical  string
	External string
	// Key is valid only when HasKey is set. BLOB columns have no record
	// field and therefore no key.
	Key    record.Key
	HasKey bool
}

// Projection is a record schema built for a subset of the columns of one
// table, together with the name links used to build it.
type Projection struct {
	Schema *record.Schema
	Links  []Link // in requested column order

	byLogical  map[string]int
	byExternal map[string]int
}

// External returns the record field name of a projected logical column.
func (p *Projection) External(logical string) (string, bool) {
	i, ok := p.byLogical[logical]
	if !ok {
		return "", false
	}
	return p.Links[i].External, true
}

// Logical returns the logical column name of a projected record field.
func (p *Projection) Logical(external string) (string, bool) {
	i, ok := p.byExternal[external]
	if !ok {
		return "", false
	}
	return p.Links[i].Logical, true
}

// Key returns the record key of a projected logical column.
func (p *Projection) Key(logical string) (record.Key, bool) {
	i, ok := p.byLogical[logical]
	if !ok || !p.Links[i].HasKey {
		return record.Key{}, false
	}
	return p.Links[i].Key, true
}

// Project builds the record schema for columns of the table behind role.
// Without columns every column is projected in table order; otherwise the
// named columns are projected in the given order.
//
// The record schema starts as a copy of the external schema supplied for
// the table, or as record.MinimalSourceSchema when none was supplied, so
// its fields are always present. Columns whose record name is already a
// field reuse that field. BLOB columns are linked without a field.
func (s *Schema) Project(role Role, columns ...string) (*Projection, error) {
	def, err := s.Definition(role)
	if err != nil {
		return nil, err
	}
	selected, err := selectColumns(def, columns)
	if err != nil {
		return nil, err
	}

	base, ok := s.external[def.Name]
	if ok {
		base = base.Clone()
	} else {
		base = record.MinimalSourceSchema()
	}

	p := &Projection{
		Schema:     base,
		Links:      make([]Link, 0, len(selected)),
		byLogical:  make(map[string]int, len(selected)),
		byExternal: make(map[string]int, len(selected)),
	}
	for _, c := range selected {
		link := Link{Logical: c.Name, External: s.extNames.Physical(def.Name, c.Name)}
		if key, found := base.Find(link.External); found {
			link.Key, link.HasKey = key, true
		} else if field, ok := recordField(c, link.External); ok {
			key, err := base.AddField(field)
			if err != nil {
				return nil, fmt.Errorf("table %s, column %s: %w", def.Name, c.Name, err)
			}
			link.Key, link.HasKey = key, true
		}
		p.byLogical[link.Logical] = len(p.Links)
		p.byExternal[link.External] = len(p.Links)
		p.Links = append(p.Links, link)
	}
	return p, nil
}

func selectColumns(def schema.TableDef, names []string) ([]schema.ColumnDef, error) {
	if len(names) == 0 {
		return def.Columns, nil
	}
	out := make([]schema.ColumnDef, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		c, ok := def.Column(n)
		if !ok {
			return nil, fmt.Errorf("%w: table %s has no column %q", schema.ErrConfiguration, def.Name, n)
		}
		if seen[n] {
			return nil, fmt.Errorf("%w: column %q requested twice", schema.ErrConfiguration, n)
		}
		seen[n] = true
		out = append(out, c)
	}
	return out, nil
}

// recordField returns the record field that stores a column. It reports
// false for kinds the record tables cannot hold.
func recordField(c schema.ColumnDef, name string) (record.Field, bool) {
	f := record.Field{Name: name, Doc: c.Description, Units: c.Unit}
	switch c.Kind {
	case schema.KindInt:
		f.Type = record.TypeInt
	case schema.KindBigInt, schema.KindDateTime:
		f.Type = record.TypeLong
	case schema.KindFloat, schema.KindDouble:
		switch {
		case c.Unit == "deg":
			f.Type, f.Units = record.TypeAngle, "rad"
		case c.Kind == schema.KindFloat:
			f.Type = record.TypeFloat
		default:
			f.Type = record.TypeDouble
		}
	case schema.KindChar:
		f.Type = record.TypeString
		f.Size = c.Length
		if f.Size <= 0 {
			f.Size = defaultStringSize
		}
	case schema.KindBool:
		f.Type = record.TypeFlag
	case schema.KindBlob:
		return record.Field{}, false
	default:
		return record.Field{}, false
	}
	return f, true
}

// ExternalColumns returns the definitions of all columns of a role keyed by
// their record field names.
func (s *Schema) ExternalColumns(role Role) (map[string]schema.ColumnDef, error) {
	def, err := s.Definition(role)
	if err != nil {
		return nil, err
	}
	out := make(map[string]schema.ColumnDef, len(def.Columns))
	for _, c := range def.Columns {
		out[s.extNames.Physical(def.Name, c.Name)] = c
	}
	return out, nil
}

// Columns returns the definitions of all columns of a role keyed by their
// logical names.
func (s *Schema) Columns(role Role) (map[string]schema.ColumnDef, error) {
	def, err := s.Definition(role)
	if err != nil {
		return nil, err
	}
	out := make(map[string]schema.ColumnDef, len(def.Columns))
	for _, c := range def.Columns {
		out[c.Name] = c
	}
	return out, nil
}

// String renders the projection as one "logical -> external" line per link.
func (p *Projection) String() string {
	var b strings.Builder
	for _, l := range p.Links {
		if l.HasKey {
			fmt.Fprintf(&b, "%s -> %s\n", l.Logical, l.External)
		} else {
			fmt.Fprintf(&b, "%s -> %s (no field)\n", l.Logical, l.External)
		}
	}
	return b.String()
}
