package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ridoystarlord/apdbschema/database"
	"github.com/ridoystarlord/apdbschema/utils"
)

var (
	createDrop    bool
	createDryRun  bool
	createDialect string
	databaseURL   string
	createTimeout time.Duration
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create the APDB tables in a database",
	Long: `Create every table of the configured layout together with its indexes.
With --drop existing tables of the same names are dropped first. Without it
the command fails when a table already exists.

The database is taken from --database or DATABASE_URL. postgres:// URLs use
PostgreSQL; sqlite:// URLs and plain paths use SQLite.

Examples:
  apdbschema create --database sqlite://apdb.db
  apdbschema create --drop
  apdbschema create --dry-run --dialect postgres
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := buildSchema()
		if err != nil {
			return err
		}

		if createDryRun {
			dialect, err := parseDialect(createDialect)
			if err != nil {
				return err
			}
			stmts, err := s.Statements(dialect, createDrop)
			if err != nil {
				return err
			}
			printStatements(os.Stdout, stmts)
			return nil
		}

		url, err := utils.GetDatabaseURL(databaseURL)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), createTimeout)
		defer cancel()

		conn, err := database.Open(ctx, url)
		if err != nil {
			return err
		}
		defer conn.Close()

		if err := s.MakeSchema(ctx, conn, createDrop); err != nil {
			return fmt.Errorf("create failed: %w", err)
		}
		color.New(color.FgGreen, color.Bold).Printf("✅ Created %d tables\n", len(s.Models()))
		return nil
	},
}

func parseDialect(name string) (database.Dialect, error) {
	switch d := database.Dialect(name); d {
	case database.Postgres, database.SQLite:
		return d, nil
	}
	return "", fmt.Errorf("unsupported dialect %q (want postgres or sqlite)", name)
}

func printStatements(w io.Writer, stmts []string) {
	fmt.Fprintln(w, "🔍 Dry run: the following SQL would be executed")
	for _, stmt := range stmts {
		fmt.Fprintf(w, "%s;\n\n", stmt)
	}
}

func init() {
	createCmd.Flags().BoolVar(&createDrop, "drop", false, "Drop existing tables before creating them")
	createCmd.Flags().BoolVar(&createDryRun, "dry-run", false, "Print the SQL instead of executing it")
	createCmd.Flags().StringVar(&createDialect, "dialect", string(database.Postgres), "SQL dialect for --dry-run (postgres, sqlite)")
	createCmd.Flags().StringVarP(&databaseURL, "database", "d", "", "Database URL (default $DATABASE_URL)")
	createCmd.Flags().DurationVarP(&createTimeout, "timeout", "t", 2*time.Minute, "Timeout for creating the tables")
}
