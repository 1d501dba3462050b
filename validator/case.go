package validator

import (
	"fmt"
	"strings"

	"github.com/ridoystarlord/apdbschema/mapping"
	"github.com/ridoystarlord/apdbschema/record"
	"github.com/ridoystarlord/apdbschema/schema"
)

// CheckCase verifies that every column of table links to at most one field
// of the external record schema. A column whose external name is found
// only when ignoring case, or more than once when ignoring case, yields a
// *schema.NamingError. Columns without any match are left unlinked.
func CheckCase(table schema.TableDef, tr *mapping.Translator, ext *record.Schema) error {
	for _, c := range table.Columns {
		name := tr.Physical(table.Name, c.Name)
		found := ext.FindFold(name)
		if len(found) == 0 {
			continue
		}
		if len(found) == 1 && found[0] == name {
			continue
		}
		return &schema.NamingError{
			Table:    table.Name,
			Column:   c.Name,
			Expected: name,
			Found:    found,
		}
	}
	return nil
}

// CheckUniqueNames verifies that no two columns of table translate to the
// same name. what names the translation in the error, e.g. "record field".
func CheckUniqueNames(table schema.TableDef, tr *mapping.Translator, what string) error {
	seen := make(map[string]string, len(table.Columns))
	for _, c := range table.Columns {
		name := tr.Physical(table.Name, c.Name)
		if prev, dup := seen[name]; dup {
			return fmt.Errorf("%w: table %s: columns %s and %s both map to %s %q",
				schema.ErrConfiguration, table.Name, prev, c.Name, what, name)
		}
		seen[name] = c.Name
	}
	return nil
}

// AdoptFields returns a copy of table extended with one nullable column for
// every external field that has no logical counterpart. The logical name
// of a field comes from the reverse column mapping. Adopted names are
// returned in field order.
//
// AdoptFields must run after CheckCase succeeded; a field colliding with an
// existing column by case alone yields a *schema.NamingError.
func AdoptFields(table schema.TableDef, tr *mapping.Translator, ext *record.Schema) (schema.TableDef, []string, error) {
	out := table.Clone()
	lower := make(map[string]string, len(out.Columns))
	for _, c := range out.Columns {
		lower[strings.ToLower(c.Name)] = c.Name
	}

	var adopted []string
	for _, f := range ext.Fields() {
		name := tr.Logical(table.Name, f.Name)
		existing, ok := lower[strings.ToLower(name)]
		if ok && existing == name {
			continue
		}
		if ok {
			return schema.TableDef{}, nil, &schema.NamingError{
				Table:    table.Name,
				Column:   existing,
				Expected: tr.Physical(table.Name, existing),
				Found:    []string{f.Name},
			}
		}
		col := schema.ColumnDef{
			Name:        name,
			Kind:        KindOf(f.Type),
			Nullable:    true,
			Description: f.Doc,
			Length:      f.Size,
		}
		if col.Kind.HasImplicitDefault() {
			zero := "0"
			col.Default = &zero
		}
		out.Columns = append(out.Columns, col)
		lower[strings.ToLower(name)] = name
		adopted = append(adopted, name)
	}
	return out, adopted, nil
}

// KindOf maps a record field type to the logical column kind used to store
// it.
func KindOf(t record.FieldType) schema.Kind {
	switch t {
	case record.TypeInt:
		return schema.KindInt
	case record.TypeLong:
		return schema.KindBigInt
	case record.TypeFloat:
		return schema.KindFloat
	case record.TypeString:
		return schema.KindChar
	case record.TypeFlag:
		return schema.KindBool
	default:
		// TypeDouble, TypeAngle
		return schema.KindDouble
	}
}
