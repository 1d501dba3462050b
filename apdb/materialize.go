package apdb

import (
	"context"
	"fmt"

	"github.com/ridoystarlord/apdbschema/database"
	"github.com/ridoystarlord/apdbschema/diff"
	"github.com/ridoystarlord/apdbschema/generator"
)

// Statements returns the DDL that MakeSchema executes for a dialect.
func (s *Schema) Statements(dialect database.Dialect, drop bool) ([]string, error) {
	stmts, err := generator.GenerateSQL(diff.Plan(s.Models(), drop), dialect)
	if err != nil {
		return nil, fmt.Errorf("generating DDL: %w", err)
	}
	return stmts, nil
}

// MakeSchema creates the populated tables and their indices through conn.
// With drop set, existing tables of the same names are dropped first, which
// makes repeated calls succeed. Without it, creating a table that already
// exists fails with the error of the connection, returned as is. The
// connection stays owned by the caller.
func (s *Schema) MakeSchema(ctx context.Context, conn database.Conn, drop bool) error {
	stmts, err := s.Statements(conn.Dialect(), drop)
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		s.logger.Debug("executing DDL", "dialect", conn.Dialect(), "sql", stmt)
		if err := conn.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	s.logger.Info("schema created", "tables", len(s.Models()), "statements", len(stmts), "drop", drop)
	return nil
}
