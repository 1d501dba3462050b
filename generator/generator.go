package generator

import (
	"fmt"
	"strings"

	"github.com/ridoystarlord/apdbschema/database"
	"github.com/ridoystarlord/apdbschema/diff"
	"github.com/ridoystarlord/apdbschema/schema"
)

// GenerateSQL converts a list of Operations into raw SQL statements for the
// given dialect. Statements carry no trailing semicolon so that they can be
// executed one at a time by any driver.
func GenerateSQL(ops []diff.Operation, dialect database.Dialect) ([]string, error) {
	var sqlStatements []string

	for _, op := range ops {
		switch op.Type {
		case diff.CreateTable:
			stmt, err := generateCreateTable(op, dialect)
			if err != nil {
				return nil, fmt.Errorf("generate CREATE TABLE: %w", err)
			}
			sqlStatements = append(sqlStatements, stmt)

		case diff.DropTable:
			sqlStatements = append(sqlStatements, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, Quote(op.TableName)))

		case diff.AddColumn:
			if op.Column == nil {
				return nil, fmt.Errorf("generate ADD COLUMN: column is nil")
			}
			def, err := columnDefinition(*op.Column, dialect)
			if err != nil {
				return nil, fmt.Errorf("generate ADD COLUMN: %w", err)
			}
			sqlStatements = append(sqlStatements, fmt.Sprintf(`ALTER TABLE %s ADD COLUMN %s`, Quote(op.TableName), def))

		case diff.DropColumn:
			sqlStatements = append(sqlStatements, fmt.Sprintf(`ALTER TABLE %s DROP COLUMN %s`,
				Quote(op.TableName),
				Quote(op.ColumnName),
			))

		case diff.CreateIndex:
			stmt, err := generateCreateIndex(op)
			if err != nil {
				return nil, fmt.Errorf("generate CREATE INDEX: %w", err)
			}
			sqlStatements = append(sqlStatements, stmt)

		case diff.DropIndex:
			sqlStatements = append(sqlStatements, fmt.Sprintf(`DROP INDEX IF EXISTS %s`, Quote(op.IndexName)))

		default:
			return nil, fmt.Errorf("unsupported operation: %s", op.Type)
		}
	}

	return sqlStatements, nil
}

// SQLType returns the column type a dialect uses to store a column.
func SQLType(col schema.Column, dialect database.Dialect) (string, error) {
	switch col.Kind {
	case schema.KindInt:
		return "INTEGER", nil
	case schema.KindBigInt:
		return "BIGINT", nil
	case schema.KindFloat:
		if dialect == database.Postgres {
			return "REAL", nil
		}
		return "FLOAT", nil
	case schema.KindDouble:
		if dialect == database.Postgres {
			return "DOUBLE PRECISION", nil
		}
		return "DOUBLE", nil
	case schema.KindDateTime:
		return "TIMESTAMP", nil
	case schema.KindChar:
		if col.Length > 0 {
			return fmt.Sprintf("CHAR(%d)", col.Length), nil
		}
		return "VARCHAR", nil
	case schema.KindBool:
		return "BOOLEAN", nil
	case schema.KindBlob:
		if dialect == database.Postgres {
			return "BYTEA", nil
		}
		return "BLOB", nil
	default:
		return "", fmt.Errorf("column %s: unsupported kind %q", col.Name, col.Kind)
	}
}

// Quote returns name as a double-quoted SQL identifier.
func Quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = Quote(n)
	}
	return strings.Join(quoted, ", ")
}

func literal(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

func columnDefinition(col schema.Column, dialect database.Dialect) (string, error) {
	typ, err := SQLType(col, dialect)
	if err != nil {
		return "", err
	}
	def := Quote(col.Name) + " " + typ
	if col.NotNull {
		def += " NOT NULL"
	}
	if col.Default != nil {
		def += " DEFAULT " + literal(*col.Default)
	}
	return def, nil
}

func generateCreateTable(op diff.Operation, dialect database.Dialect) (string, error) {
	if op.Model == nil {
		return "", fmt.Errorf("model is nil")
	}
	m := op.Model

	var parts []string
	for _, col := range m.Columns {
		def, err := columnDefinition(col, dialect)
		if err != nil {
			return "", err
		}
		parts = append(parts, def)
	}
	if m.PrimaryKey != nil {
		parts = append(parts, fmt.Sprintf(`CONSTRAINT %s PRIMARY KEY (%s)`,
			Quote(m.PrimaryKey.Name), quoteList(m.PrimaryKey.Columns)))
	}
	for _, u := range m.Uniques {
		parts = append(parts, fmt.Sprintf(`CONSTRAINT %s UNIQUE (%s)`, Quote(u.Name), quoteList(u.Columns)))
	}

	return fmt.Sprintf("CREATE TABLE %s (\n\t%s\n)", Quote(m.TableName), strings.Join(parts, ",\n\t")), nil
}

func generateCreateIndex(op diff.Operation) (string, error) {
	if op.Index == nil {
		return "", fmt.Errorf("index is nil")
	}
	if len(op.Index.Columns) == 0 {
		return "", fmt.Errorf("index %s has no columns", op.Index.Name)
	}

	stmt := "CREATE"
	if op.Index.Unique {
		stmt += " UNIQUE"
	}
	stmt += " INDEX"
	if op.Index.Name != "" {
		stmt += " " + Quote(op.Index.Name)
	}

	table := op.Index.Table
	if table == "" {
		table = op.TableName
	}
	stmt += fmt.Sprintf(" ON %s (%s)", Quote(table), quoteList(op.Index.Columns))
	return stmt, nil
}
