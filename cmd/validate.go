package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ridoystarlord/apdbschema/apdb"
	"github.com/ridoystarlord/apdbschema/validator"
)

var validateFormat string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Build the schema and report the tables of the configured layout",
	Long: `Load the schema files and column maps, apply the configured layout and
check the resulting tables. No database is needed.

Checks include:
- Every table of the layout is defined and its primary key is present
- Column names are unique and valid identifiers
- Every key and index refers to an existing column
- DiaObjectLast agrees with DiaObject on the primary key

Examples:
  apdbschema validate
  apdbschema validate --dia-object-index last_object_table --extra-schema-file data/apdb-schema-extra.yaml
  apdbschema validate --format json
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := buildSchema()
		if err != nil {
			return fmt.Errorf("schema validation failed: %w", err)
		}
		report := summarize(s)
		if validateFormat == "json" {
			return outputJSON(os.Stdout, report)
		}
		outputText(os.Stdout, report)
		return nil
	},
}

// tableSummary describes one physical table of the layout.
type tableSummary struct {
	Role       string   `json:"role"`
	Table      string   `json:"table"`
	Columns    int      `json:"columns"`
	PrimaryKey []string `json:"primary_key,omitempty"`
	Indexes    []string `json:"indexes,omitempty"`
}

type validateReport struct {
	Valid          bool                        `json:"valid"`
	DiaObjectIndex string                      `json:"dia_object_index"`
	Nightly        bool                        `json:"dia_object_nightly"`
	Tables         []tableSummary              `json:"tables"`
	Warnings       []validator.ValidationError `json:"warnings"`
}

func init() {
	validateCmd.Flags().StringVarP(&validateFormat, "format", "f", "text", "Output format (text, json)")
}

func summarize(s *apdb.Schema) validateReport {
	cfg := s.Config()
	result := validator.ValidateModels(s.Models())
	report := validateReport{
		Valid:          result.Valid,
		DiaObjectIndex: string(cfg.DiaObjectIndex),
		Nightly:        cfg.DiaObjectNightly,
		Warnings:       result.Warnings,
	}
	for _, role := range s.PopulatedRoles() {
		m := s.Table(role)
		t := tableSummary{
			Role:       role.String(),
			Table:      m.TableName,
			Columns:    len(m.Columns),
			PrimaryKey: m.PrimaryKeyColumns(),
		}
		for _, idx := range m.Indexes {
			t.Indexes = append(t.Indexes, idx.Name)
		}
		report.Tables = append(report.Tables, t)
	}
	return report
}

func outputJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func outputText(w io.Writer, report validateReport) {
	if report.Valid {
		color.New(color.FgGreen).Fprintln(w, "✅ Schema validation passed!")
	} else {
		color.New(color.FgRed).Fprintln(w, "❌ Schema validation failed!")
	}

	fmt.Fprintf(w, "\n📋 Layout: %s", report.DiaObjectIndex)
	if report.Nightly {
		fmt.Fprint(w, " (with nightly table)")
	}
	fmt.Fprintln(w)

	for _, t := range report.Tables {
		fmt.Fprintf(w, "  • %-15s %-20s %3d columns", t.Role, t.Table, t.Columns)
		if len(t.PrimaryKey) > 0 {
			fmt.Fprintf(w, "  PK %v", t.PrimaryKey)
		}
		fmt.Fprintln(w)
		for _, idx := range t.Indexes {
			fmt.Fprintf(w, "      index %s\n", idx)
		}
	}

	if len(report.Warnings) > 0 {
		fmt.Fprintf(w, "\n🟡 Warnings (%d):\n", len(report.Warnings))
		for i, warning := range report.Warnings {
			fmt.Fprintf(w, "  %d. ", i+1)
			if warning.Table != "" {
				fmt.Fprintf(w, "[%s]", warning.Table)
			}
			if warning.Column != "" {
				fmt.Fprintf(w, ".%s", warning.Column)
			}
			if warning.Index != "" {
				fmt.Fprintf(w, " (index: %s)", warning.Index)
			}
			fmt.Fprintf(w, ": %s\n", warning.Message)
		}
	}
}
