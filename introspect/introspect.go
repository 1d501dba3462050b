package introspect

import (
	"context"
	"fmt"
	"strings"

	"github.com/ridoystarlord/apdbschema/database"
)

type ExistingTable struct {
	TableName  string
	Columns    []ExistingColumn
	PrimaryKey []string // key order
	Indexes    []ExistingIndex
}

type ExistingColumn struct {
	ColumnName    string
	DataType      string
	IsNullable    bool
	ColumnDefault *string
	IsPrimaryKey  bool
}

type ExistingIndex struct {
	IndexName string
	TableName string
	Columns   []string
	IsUnique  bool
	// Implicit is set for indexes the database created on its own to back
	// a PRIMARY KEY or UNIQUE constraint.
	Implicit bool
}

// Column returns the column with the given name.
func (t ExistingTable) Column(name string) (ExistingColumn, bool) {
	for _, c := range t.Columns {
		if c.ColumnName == name {
			return c, true
		}
	}
	return ExistingColumn{}, false
}

// IntrospectDatabase lists every user table of the database behind conn.
func IntrospectDatabase(ctx context.Context, conn database.Conn) ([]ExistingTable, error) {
	var tablesQuery string
	switch conn.Dialect() {
	case database.Postgres:
		tablesQuery = `
	SELECT table_name
	FROM information_schema.tables
	WHERE table_schema = current_schema() AND table_type='BASE TABLE'
	ORDER BY table_name;
	`
	case database.SQLite:
		tablesQuery = `
	SELECT name
	FROM sqlite_master
	WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
	ORDER BY name;
	`
	default:
		return nil, fmt.Errorf("unsupported dialect %q", conn.Dialect())
	}

	tableNames, err := queryStrings(ctx, conn, tablesQuery)
	if err != nil {
		return nil, fmt.Errorf("querying tables: %w", err)
	}

	tables := make([]ExistingTable, 0, len(tableNames))
	for _, tableName := range tableNames {
		table, err := IntrospectTable(ctx, conn, tableName)
		if err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}
	return tables, nil
}

// IntrospectTable reads one table. A table that does not exist yields an
// ExistingTable without columns.
func IntrospectTable(ctx context.Context, conn database.Conn, tableName string) (ExistingTable, error) {
	var (
		columns []ExistingColumn
		pk      []string
		indexes []ExistingIndex
		err     error
	)
	switch conn.Dialect() {
	case database.Postgres:
		columns, pk, err = pgColumns(ctx, conn, tableName)
		if err == nil {
			indexes, err = pgIndexes(ctx, conn, tableName)
		}
	case database.SQLite:
		columns, pk, err = sqliteColumns(ctx, conn, tableName)
		if err == nil {
			indexes, err = sqliteIndexes(ctx, conn, tableName)
		}
	default:
		err = fmt.Errorf("unsupported dialect %q", conn.Dialect())
	}
	if err != nil {
		return ExistingTable{}, fmt.Errorf("introspecting table %s: %w", tableName, err)
	}
	return ExistingTable{TableName: tableName, Columns: columns, PrimaryKey: pk, Indexes: indexes}, nil
}

func queryStrings(ctx context.Context, conn database.Conn, query string, args ...any) ([]string, error) {
	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func pgColumns(ctx context.Context, conn database.Conn, tableName string) ([]ExistingColumn, []string, error) {
	columnsQuery := `
	SELECT
		c.column_name,
		c.data_type,
		(c.is_nullable = 'YES') as is_nullable,
		c.column_default
	FROM information_schema.columns c
	WHERE c.table_schema = current_schema() AND c.table_name = $1
	ORDER BY c.ordinal_position;
	`

	rows, err := conn.Query(ctx, columnsQuery, tableName)
	if err != nil {
		return nil, nil, fmt.Errorf("querying columns: %w", err)
	}
	defer rows.Close()

	var columns []ExistingColumn
	for rows.Next() {
		var col ExistingColumn
		if err := rows.Scan(&col.ColumnName, &col.DataType, &col.IsNullable, &col.ColumnDefault); err != nil {
			return nil, nil, fmt.Errorf("scanning column: %w", err)
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterating column rows: %w", err)
	}

	pkQuery := `
	SELECT kcu.column_name
	FROM information_schema.table_constraints tc
	JOIN information_schema.key_column_usage kcu
		ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
	WHERE tc.constraint_type = 'PRIMARY KEY'
		AND tc.table_schema = current_schema()
		AND tc.table_name = $1
	ORDER BY kcu.ordinal_position;
	`
	pk, err := queryStrings(ctx, conn, pkQuery, tableName)
	if err != nil {
		return nil, nil, fmt.Errorf("querying primary key: %w", err)
	}
	markPrimaryKey(columns, pk)
	return columns, pk, nil
}

func pgIndexes(ctx context.Context, conn database.Conn, tableName string) ([]ExistingIndex, error) {
	indexesQuery := `
	SELECT
		ic.relname,
		array_to_string(array_agg(a.attname ORDER BY k.ord), ','),
		idx.indisunique,
		(idx.indisprimary OR EXISTS (
			SELECT 1 FROM pg_constraint con WHERE con.conindid = idx.indexrelid
		))
	FROM pg_index idx
	JOIN pg_class ic ON ic.oid = idx.indexrelid
	JOIN pg_class tc ON tc.oid = idx.indrelid
	JOIN pg_namespace n ON n.oid = tc.relnamespace
	CROSS JOIN LATERAL unnest(idx.indkey) WITH ORDINALITY AS k(attnum, ord)
	JOIN pg_attribute a ON a.attrelid = idx.indrelid AND a.attnum = k.attnum
	WHERE tc.relname = $1 AND n.nspname = current_schema()
	GROUP BY ic.relname, idx.indisunique, idx.indisprimary, idx.indexrelid
	ORDER BY ic.relname;
	`

	rows, err := conn.Query(ctx, indexesQuery, tableName)
	if err != nil {
		return nil, fmt.Errorf("querying indexes: %w", err)
	}
	defer rows.Close()

	var indexes []ExistingIndex
	for rows.Next() {
		idx := ExistingIndex{TableName: tableName}
		var columnNames string
		if err := rows.Scan(&idx.IndexName, &columnNames, &idx.IsUnique, &idx.Implicit); err != nil {
			return nil, fmt.Errorf("scanning index: %w", err)
		}
		idx.Columns = splitColumns(columnNames)
		indexes = append(indexes, idx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating index rows: %w", err)
	}
	return indexes, nil
}

func sqliteColumns(ctx context.Context, conn database.Conn, tableName string) ([]ExistingColumn, []string, error) {
	rows, err := conn.Query(ctx, `SELECT name, type, "notnull", dflt_value, pk FROM pragma_table_info(?)`, tableName)
	if err != nil {
		return nil, nil, fmt.Errorf("querying columns: %w", err)
	}
	defer rows.Close()

	type keyed struct {
		name string
		pos  int
	}
	var (
		columns []ExistingColumn
		keys    []keyed
	)
	for rows.Next() {
		var (
			col     ExistingColumn
			notNull int
			pkPos   int
		)
		if err := rows.Scan(&col.ColumnName, &col.DataType, &notNull, &col.ColumnDefault, &pkPos); err != nil {
			return nil, nil, fmt.Errorf("scanning column: %w", err)
		}
		col.IsNullable = notNull == 0
		if col.ColumnDefault != nil {
			unquoted := strings.Trim(*col.ColumnDefault, "'")
			col.ColumnDefault = &unquoted
		}
		if pkPos > 0 {
			col.IsPrimaryKey = true
			keys = append(keys, keyed{col.ColumnName, pkPos})
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterating column rows: %w", err)
	}

	var pk []string
	if len(keys) > 0 {
		pk = make([]string, len(keys))
		for _, k := range keys {
			pk[k.pos-1] = k.name
		}
	}
	return columns, pk, nil
}

func sqliteIndexes(ctx context.Context, conn database.Conn, tableName string) ([]ExistingIndex, error) {
	rows, err := conn.Query(ctx, `SELECT name, "unique", origin FROM pragma_index_list(?) ORDER BY name`, tableName)
	if err != nil {
		return nil, fmt.Errorf("querying indexes: %w", err)
	}

	var indexes []ExistingIndex
	for rows.Next() {
		idx := ExistingIndex{TableName: tableName}
		var (
			unique int
			origin string
		)
		if err := rows.Scan(&idx.IndexName, &unique, &origin); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning index: %w", err)
		}
		idx.IsUnique = unique != 0
		// "c" is CREATE INDEX, "u" and "pk" back table constraints
		idx.Implicit = origin != "c"
		indexes = append(indexes, idx)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("iterating index rows: %w", err)
	}

	// the single sqlite connection is busy until the list query is closed
	for i := range indexes {
		cols, err := queryStrings(ctx, conn, `SELECT name FROM pragma_index_info(?) ORDER BY seqno`, indexes[i].IndexName)
		if err != nil {
			return nil, fmt.Errorf("querying index %s: %w", indexes[i].IndexName, err)
		}
		indexes[i].Columns = cols
	}
	return indexes, nil
}

func markPrimaryKey(columns []ExistingColumn, pk []string) {
	inKey := make(map[string]bool, len(pk))
	for _, name := range pk {
		inKey[name] = true
	}
	for i := range columns {
		columns[i].IsPrimaryKey = inKey[columns[i].ColumnName]
	}
}

func splitColumns(columnNames string) []string {
	columns := strings.Split(columnNames, ",")
	for i, col := range columns {
		columns[i] = strings.TrimSpace(col)
	}
	return columns
}
