package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ridoystarlord/apdbschema/database"
	"github.com/ridoystarlord/apdbschema/diff"
	"github.com/ridoystarlord/apdbschema/generator"
	"github.com/ridoystarlord/apdbschema/introspect"
	"github.com/ridoystarlord/apdbschema/utils"
)

var (
	diffVisual  bool
	diffSQL     bool
	diffTimeout time.Duration
)

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Show differences between the schema and a database",
	Long: `Compare the tables of the configured layout with the tables found in a
database. Tables the schema does not describe are ignored.

Examples:
  apdbschema diff                    # Show differences in text format
  apdbschema diff --visual           # Group differences per table with colors
  apdbschema diff --sql              # Also show the SQL that would fix them
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := buildSchema()
		if err != nil {
			return err
		}
		url, err := utils.GetDatabaseURL(databaseURL)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), diffTimeout)
		defer cancel()

		conn, err := database.Open(ctx, url)
		if err != nil {
			return err
		}
		defer conn.Close()

		existing, err := introspect.IntrospectDatabase(ctx, conn)
		if err != nil {
			return fmt.Errorf("introspecting database: %w", err)
		}

		operations := diff.DiffSchemas(s.Models(), existing)
		if len(operations) == 0 {
			fmt.Println("✅ No differences found between schema and database")
			return nil
		}

		if diffVisual {
			showVisualDiff(os.Stdout, operations)
		} else {
			showTextDiff(os.Stdout, operations)
		}

		if !diffSQL {
			return nil
		}
		stmts, err := generator.GenerateSQL(operations, conn.Dialect())
		if err != nil {
			return err
		}
		fmt.Println()
		printStatements(os.Stdout, stmts)
		return nil
	},
}

// groupByTable keeps operation order within each table and the order in
// which tables first appear.
func groupByTable(operations []diff.Operation) ([]string, map[string][]diff.Operation) {
	var tables []string
	byTable := make(map[string][]diff.Operation)
	for _, op := range operations {
		if _, ok := byTable[op.TableName]; !ok {
			tables = append(tables, op.TableName)
		}
		byTable[op.TableName] = append(byTable[op.TableName], op)
	}
	return tables, byTable
}

func showVisualDiff(w io.Writer, operations []diff.Operation) {
	green := color.New(color.FgGreen, color.Bold)
	red := color.New(color.FgRed, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)

	fmt.Fprintln(w, "🌳 Schema Changes (Visual Diff)")
	fmt.Fprintln(w, strings.Repeat("=", 50))

	tables, byTable := groupByTable(operations)
	for _, table := range tables {
		ops := byTable[table]
		if ops[0].Type == diff.CreateTable {
			green.Fprintf(w, "\n  ➕ CREATE %s (%d columns)\n", table, len(ops[0].Model.Columns))
		} else {
			yellow.Fprintf(w, "\n  ⚡ MODIFY %s\n", table)
		}

		for _, op := range ops {
			switch op.Type {
			case diff.AddColumn:
				green.Fprintf(w, "    ➕ ADD %s (%s)", op.Column.Name, op.Column.Kind)
				if op.Column.NotNull {
					green.Fprint(w, " NOT NULL")
				}
				if op.Column.Default != nil {
					green.Fprintf(w, " DEFAULT %s", *op.Column.Default)
				}
				fmt.Fprintln(w)
			case diff.DropColumn:
				red.Fprintf(w, "    ❌ DROP %s\n", op.ColumnName)
			case diff.CreateIndex:
				green.Fprintf(w, "    🔍 CREATE INDEX %s (%s)\n", op.Index.Name, strings.Join(op.Index.Columns, ", "))
			case diff.DropIndex:
				red.Fprintf(w, "    🔍 DROP INDEX %s\n", op.IndexName)
			}
		}
	}
}

func showTextDiff(w io.Writer, operations []diff.Operation) {
	fmt.Fprintln(w, "📋 Schema Changes (Text Format)")
	fmt.Fprintln(w, strings.Repeat("=", 40))

	for i, op := range operations {
		fmt.Fprintf(w, "%d. ", i+1)

		switch op.Type {
		case diff.CreateTable:
			fmt.Fprintf(w, "CREATE TABLE %s\n", op.TableName)

		case diff.DropTable:
			fmt.Fprintf(w, "DROP TABLE %s\n", op.TableName)

		case diff.AddColumn:
			fmt.Fprintf(w, "ADD COLUMN %s.%s (%s)", op.TableName, op.Column.Name, op.Column.Kind)
			if op.Column.NotNull {
				fmt.Fprint(w, " NOT NULL")
			}
			if op.Column.Default != nil {
				fmt.Fprintf(w, " DEFAULT %s", *op.Column.Default)
			}
			fmt.Fprintln(w)

		case diff.DropColumn:
			fmt.Fprintf(w, "DROP COLUMN %s.%s\n", op.TableName, op.ColumnName)

		case diff.CreateIndex:
			fmt.Fprintf(w, "CREATE INDEX %s ON %s\n", op.Index.Name, op.TableName)

		case diff.DropIndex:
			fmt.Fprintf(w, "DROP INDEX %s\n", op.IndexName)
		}
	}
}

func init() {
	diffCmd.Flags().BoolVarP(&diffVisual, "visual", "v", false, "Show changes grouped per table with colors")
	diffCmd.Flags().BoolVar(&diffSQL, "sql", false, "Also print the SQL that would remove the differences")
	diffCmd.Flags().StringVarP(&databaseURL, "database", "d", "", "Database URL (default $DATABASE_URL)")
	diffCmd.Flags().DurationVarP(&diffTimeout, "timeout", "t", time.Minute, "Timeout for the comparison")
}
