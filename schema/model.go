package schema

// TableDef is the logical definition of one table as read from a schema file.
type TableDef struct {
	Name        string
	Description string
	Columns     []ColumnDef
	Indices     []IndexDef
}

// ColumnDef describes a logical column.
type ColumnDef struct {
	Name        string
	Kind        Kind
	Nullable    bool
	Default     *string
	Description string
	Unit        string
	UCD         string
	Length      int // fixed size for CHAR columns, 0 if unspecified
}

// IndexType tells how an IndexDef is materialized.
type IndexType string

const (
	IndexPrimary IndexType = "PRIMARY"
	IndexUnique  IndexType = "UNIQUE"
	IndexPlain   IndexType = "INDEX"
)

// IndexDef is a named, ordered list of columns.
type IndexDef struct {
	Name    string
	Type    IndexType
	Columns []string
}

// Column returns the column with the given name.
func (t TableDef) Column(name string) (ColumnDef, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnDef{}, false
}

// ColumnNames returns column names in table order.
func (t TableDef) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// PrimaryKey returns the primary index of the table, if it has one.
func (t TableDef) PrimaryKey() (IndexDef, bool) {
	for _, idx := range t.Indices {
		if idx.Type == IndexPrimary {
			return idx, true
		}
	}
	return IndexDef{}, false
}

// Clone returns a deep copy of t.
func (t TableDef) Clone() TableDef {
	out := TableDef{Name: t.Name, Description: t.Description}
	if t.Columns != nil {
		out.Columns = make([]ColumnDef, len(t.Columns))
		copy(out.Columns, t.Columns)
	}
	if t.Indices != nil {
		out.Indices = make([]IndexDef, len(t.Indices))
		for i, idx := range t.Indices {
			idx.Columns = append([]string(nil), idx.Columns...)
			out.Indices[i] = idx
		}
	}
	return out
}

// Model is a physical table: the logical definition after naming rules and
// layout selection were applied. It is what gets created in a database.
type Model struct {
	TableName  string
	Columns    []Column
	PrimaryKey *Constraint
	Uniques    []Constraint
	Indexes    []Index
}

// Column is a physical column.
type Column struct {
	Name    string
	Kind    Kind
	Length  int
	NotNull bool
	Default *string
}

// Constraint is a named table-level PRIMARY KEY or UNIQUE constraint.
type Constraint struct {
	Name    string
	Columns []string
}

// Index is a secondary index created with CREATE INDEX.
type Index struct {
	Name    string
	Table   string
	Columns []string
	Unique  bool
}

// ColumnNames returns physical column names in table order.
func (m *Model) ColumnNames() []string {
	names := make([]string, len(m.Columns))
	for i, c := range m.Columns {
		names[i] = c.Name
	}
	return names
}

// PrimaryKeyColumns returns the primary key columns, nil when there is no key.
func (m *Model) PrimaryKeyColumns() []string {
	if m.PrimaryKey == nil {
		return nil
	}
	return m.PrimaryKey.Columns
}
