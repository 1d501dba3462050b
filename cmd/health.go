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
	"github.com/ridoystarlord/apdbschema/introspect"
	"github.com/ridoystarlord/apdbschema/schema"
	"github.com/ridoystarlord/apdbschema/utils"
)

var healthTimeout time.Duration

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check database connectivity and which APDB tables exist",
	Long: `Check that the database is accessible and report which tables of the
configured layout are present.

Examples:
  apdbschema health                    # Check DATABASE_URL
  apdbschema health --timeout 10s      # Set custom timeout
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

		ctx, cancel := context.WithTimeout(context.Background(), healthTimeout)
		defer cancel()

		conn, err := database.Open(ctx, url)
		if err != nil {
			return fmt.Errorf("database health check failed: %w", err)
		}
		defer conn.Close()
		fmt.Printf("✅ Database is healthy and accessible (%s)\n", conn.Dialect())

		existing, err := introspect.IntrospectDatabase(ctx, conn)
		if err != nil {
			return fmt.Errorf("listing tables: %w", err)
		}
		printTablePresence(os.Stdout, s.Models(), existing)
		return nil
	},
}

func printTablePresence(w io.Writer, models []*schema.Model, existing []introspect.ExistingTable) {
	found := make(map[string]introspect.ExistingTable, len(existing))
	for _, t := range existing {
		found[t.TableName] = t
	}

	missing := 0
	for _, m := range models {
		if t, ok := found[m.TableName]; ok {
			fmt.Fprintf(w, "  ✅ %s (%d columns)\n", m.TableName, len(t.Columns))
			continue
		}
		missing++
		color.New(color.FgYellow).Fprintf(w, "  ⚠️  %s not found\n", m.TableName)
	}
	if missing > 0 {
		fmt.Fprintf(w, "\n📊 %d of %d tables missing. Run 'apdbschema create' to create them\n", missing, len(models))
	}
}

func init() {
	healthCmd.Flags().DurationVarP(&healthTimeout, "timeout", "t", 5*time.Second, "Timeout for health check")
	healthCmd.Flags().StringVarP(&databaseURL, "database", "d", "", "Database URL (default $DATABASE_URL)")
}
