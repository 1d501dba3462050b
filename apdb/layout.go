package apdb

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ridoystarlord/apdbschema/config"
	"github.com/ridoystarlord/apdbschema/schema"
)

// selectLayout fills the role fields from the merged definitions according
// to the dia_object_index and dia_object_nightly settings.
func (s *Schema) selectLayout(tables []schema.TableDef) error {
	lookup := func(name, reason string) (schema.TableDef, error) {
		t, ok := schema.Find(tables, name)
		if !ok {
			return schema.TableDef{}, fmt.Errorf("%w: table %s is not defined (%s)", schema.ErrConfiguration, name, reason)
		}
		return t, nil
	}

	objects, err := lookup(TableDiaObject, "objects")
	if err != nil {
		return err
	}
	sources, err := lookup(TableDiaSource, "sources")
	if err != nil {
		return err
	}
	forced, err := lookup(TableDiaForcedSource, "forcedSources")
	if err != nil {
		return err
	}

	objectIndices := objects.Indices
	if s.cfg.DiaObjectIndex == config.IndexPixIDIOV {
		htm, err := lookup(TableDiaObjectIndexHtmFirst, "needed by dia_object_index pix_id_iov")
		if err != nil {
			return err
		}
		objectIndices = htm.Indices
	}

	s.tables = map[Role]schema.TableDef{}

	s.Objects, err = s.buildModel(TableDiaObject, objects, objectIndices)
	if err != nil {
		return err
	}
	s.tables[RoleObjects] = objects

	if s.cfg.DiaObjectNightly {
		// same columns as DiaObject, nothing else
		s.ObjectsNightly, err = s.buildModel(TableDiaObjectNightly, objects, nil)
		if err != nil {
			return err
		}
		s.tables[RoleObjectsNightly] = objects
	}

	if s.cfg.DiaObjectIndex == config.IndexLastObjectTable {
		last, err := lookup(TableDiaObjectLast, "needed by dia_object_index last_object_table")
		if err != nil {
			return err
		}
		last, err = inheritPrimaryKey(last, s.Objects.PrimaryKeyColumns(), s.dbNames.Logical)
		if err != nil {
			return err
		}
		s.ObjectsLast, err = s.buildModel(TableDiaObjectLast, last, last.Indices)
		if err != nil {
			return err
		}
		s.tables[RoleObjectsLast] = last
	}

	s.Sources, err = s.buildModel(TableDiaSource, sources, sources.Indices)
	if err != nil {
		return err
	}
	s.tables[RoleSources] = sources

	s.ForcedSources, err = s.buildModel(TableDiaForcedSource, forced, forced.Indices)
	if err != nil {
		return err
	}
	s.tables[RoleForcedSources] = forced
	return nil
}

// inheritPrimaryKey gives DiaObjectLast the primary key of DiaObject. A
// table that declares its own key must use the same columns.
func inheritPrimaryKey(last schema.TableDef, objectKey []string, logical func(table, physical string) string) (schema.TableDef, error) {
	want := make([]string, len(objectKey))
	for i, c := range objectKey {
		want[i] = logical(TableDiaObject, c)
	}
	if pk, ok := last.PrimaryKey(); ok {
		if !slices.Equal(pk.Columns, want) {
			return schema.TableDef{}, fmt.Errorf("%w: %s primary key (%s) differs from %s primary key (%s)",
				schema.ErrConfiguration, last.Name, strings.Join(pk.Columns, ", "),
				TableDiaObject, strings.Join(want, ", "))
		}
		return last, nil
	}
	if len(want) == 0 {
		return last, nil
	}
	out := last.Clone()
	out.Indices = append([]schema.IndexDef{{
		Name:    "PK_" + last.Name,
		Type:    schema.IndexPrimary,
		Columns: want,
	}}, out.Indices...)
	return out, nil
}

// buildModel derives the physical table of a logical definition. Table,
// index and constraint names get the configured prefix, column names go
// through the physical column map of the logical table.
func (s *Schema) buildModel(name string, def schema.TableDef, indices []schema.IndexDef) (*schema.Model, error) {
	table := s.cfg.Prefix + name
	m := &schema.Model{TableName: table}

	for _, c := range def.Columns {
		m.Columns = append(m.Columns, schema.Column{
			Name:    s.dbNames.Physical(def.Name, c.Name),
			Kind:    c.Kind,
			Length:  c.Length,
			NotNull: !c.Nullable,
			Default: c.Default,
		})
	}

	for _, idx := range indices {
		cols := make([]string, len(idx.Columns))
		for i, c := range idx.Columns {
			if _, ok := def.Column(c); !ok {
				return nil, fmt.Errorf("%w: table %s: index %s refers to unknown column %s",
					schema.ErrConfiguration, name, idx.Name, c)
			}
			cols[i] = s.dbNames.Physical(def.Name, c)
		}
		idxName := idx.Name
		if idxName == "" {
			idxName = defaultIndexName(name, idx)
		}
		idxName = s.cfg.Prefix + idxName

		switch idx.Type {
		case schema.IndexPrimary:
			m.PrimaryKey = &schema.Constraint{Name: idxName, Columns: cols}
		case schema.IndexUnique:
			m.Uniques = append(m.Uniques, schema.Constraint{Name: idxName, Columns: cols})
		default:
			m.Indexes = append(m.Indexes, schema.Index{Name: idxName, Table: table, Columns: cols})
		}
	}
	return m, nil
}

func defaultIndexName(table string, idx schema.IndexDef) string {
	switch idx.Type {
	case schema.IndexPrimary:
		return "PK_" + table
	case schema.IndexUnique:
		return "UQ_" + table + "_" + strings.Join(idx.Columns, "_")
	default:
		return "IDX_" + table + "_" + strings.Join(idx.Columns, "_")
	}
}
