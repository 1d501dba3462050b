package schema

import "fmt"

// Merge combines baseline table definitions with extra definitions.
//
// For a table present in both sets the baseline column order is kept, an
// extra column with a baseline name replaces that column in place and the
// remaining extra columns are appended. Extra indices are appended after the
// baseline ones. Tables that exist only in extra are appended as they are.
// A nil extra set returns a copy of base.
func Merge(base, extra []TableDef) ([]TableDef, error) {
	merged := make([]TableDef, 0, len(base)+len(extra))
	pos := make(map[string]int, len(base))
	for _, t := range base {
		if _, dup := pos[t.Name]; dup {
			return nil, fmt.Errorf("%w: table %s defined more than once", ErrConfiguration, t.Name)
		}
		pos[t.Name] = len(merged)
		merged = append(merged, t.Clone())
	}

	seen := make(map[string]bool, len(extra))
	for _, ext := range extra {
		if seen[ext.Name] {
			return nil, fmt.Errorf("%w: extra table %s defined more than once", ErrConfiguration, ext.Name)
		}
		seen[ext.Name] = true

		i, ok := pos[ext.Name]
		if !ok {
			pos[ext.Name] = len(merged)
			merged = append(merged, ext.Clone())
			continue
		}
		t, err := mergeTable(merged[i], ext)
		if err != nil {
			return nil, err
		}
		merged[i] = t
	}
	return merged, nil
}

func mergeTable(t, ext TableDef) (TableDef, error) {
	byName := make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		byName[c.Name] = i
	}
	for _, c := range ext.Columns {
		if i, ok := byName[c.Name]; ok {
			t.Columns[i] = c
			continue
		}
		byName[c.Name] = len(t.Columns)
		t.Columns = append(t.Columns, c)
	}

	_, hasPK := t.PrimaryKey()
	for _, idx := range ext.Indices {
		if idx.Type == IndexPrimary {
			if hasPK {
				return TableDef{}, fmt.Errorf("%w: table %s: extra schema declares a second primary key %s",
					ErrConfiguration, t.Name, idx.Name)
			}
			hasPK = true
		}
		idx.Columns = append([]string(nil), idx.Columns...)
		t.Indices = append(t.Indices, idx)
	}
	if ext.Description != "" && t.Description == "" {
		t.Description = ext.Description
	}
	return t, nil
}

// Find returns the table with the given name.
func Find(tables []TableDef, name string) (TableDef, bool) {
	for _, t := range tables {
		if t.Name == name {
			return t, true
		}
	}
	return TableDef{}, false
}
