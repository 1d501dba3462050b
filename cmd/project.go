package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ridoystarlord/apdbschema/apdb"
	"github.com/ridoystarlord/apdbschema/record"
)

var (
	projectColumns []string
	projectMinimal bool
	projectFormat  string
)

var projectCmd = &cobra.Command{
	Use:   "project ROLE",
	Short: "Show the record schema built for the columns of a table",
	Long: `Build the record schema for a table role and show its fields together
with the link from every logical column to its record field.

ROLE is one of objects, objects_nightly, objects_last, sources,
forcedSources, or the name of the table.

Examples:
  apdbschema project objects --column-map data/apdb-afw-map.yaml
  apdbschema project sources --columns diaSourceId,ra,decl,psFlux
  apdbschema project objects --minimal --format json
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := apdb.ParseRole(args[0])
		if err != nil {
			return err
		}

		var opts []apdb.Option
		if projectMinimal {
			opts = append(opts, apdb.WithExternalSchemas(map[string]*record.Schema{
				apdb.TableDiaObject: apdb.MinimalDiaObjectSchema(),
				apdb.TableDiaSource: apdb.MinimalDiaSourceSchema(),
			}))
		}
		s, err := apdb.New(appConfig, append(opts, apdb.WithLogger(slog.Default()))...)
		if err != nil {
			return fmt.Errorf("building schema: %w", err)
		}

		p, err := s.Project(role, projectColumns...)
		if err != nil {
			return err
		}
		if projectFormat == "json" {
			return outputJSON(os.Stdout, projectionReport(role, p))
		}
		printProjection(os.Stdout, role, p)
		return nil
	},
}

type projectedField struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Size  int    `json:"size,omitempty"`
	Units string `json:"units,omitempty"`
	Doc   string `json:"doc,omitempty"`
}

type projectedLink struct {
	Column string `json:"column"`
	Field  string `json:"field"`
	Stored bool   `json:"stored"`
	Key    *int   `json:"key,omitempty"` // field position, nil when not stored
	Type   string `json:"type,omitempty"`
}

type projectionOutput struct {
	Role   string           `json:"role"`
	Fields []projectedField `json:"fields"`
	Links  []projectedLink  `json:"links"`
}

func projectionReport(role apdb.Role, p *apdb.Projection) projectionOutput {
	out := projectionOutput{Role: role.String()}
	for _, f := range p.Schema.Fields() {
		out.Fields = append(out.Fields, projectedField{
			Name:  f.Name,
			Type:  string(f.Type),
			Size:  f.Size,
			Units: f.Units,
			Doc:   f.Doc,
		})
	}
	for _, l := range p.Links {
		link := projectedLink{Column: l.Logical, Field: l.External, Stored: l.HasKey}
		if l.HasKey {
			idx := l.Key.Index()
			link.Key = &idx
			link.Type = string(p.Schema.Field(l.Key).Type)
		}
		out.Links = append(out.Links, link)
	}
	return out
}

func printProjection(w io.Writer, role apdb.Role, p *apdb.Projection) {
	bold := color.New(color.Bold)
	yellow := color.New(color.FgYellow)

	bold.Fprintf(w, "📋 %s: %d fields, %d columns\n", role, p.Schema.FieldCount(), len(p.Links))
	for _, f := range p.Schema.Fields() {
		fmt.Fprintf(w, "  %-24s %s", f.Name, f.Type)
		if f.Size > 0 {
			fmt.Fprintf(w, "[%d]", f.Size)
		}
		if f.Units != "" {
			fmt.Fprintf(w, " (%s)", f.Units)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "\n🔗 Columns:")
	for _, l := range p.Links {
		if l.HasKey {
			f := p.Schema.Field(l.Key)
			fmt.Fprintf(w, "  %s → %s [#%d %s]\n", l.Logical, f.Name, l.Key.Index(), f.Type)
		} else {
			yellow.Fprintf(w, "  %s → %s (not stored)\n", l.Logical, l.External)
		}
	}
}

func init() {
	projectCmd.Flags().StringSliceVar(&projectColumns, "columns", nil, "Columns to project, in order (default all)")
	projectCmd.Flags().BoolVar(&projectMinimal, "minimal", false, "Start DiaObject and DiaSource records from the minimal pipeline schemas")
	projectCmd.Flags().StringVarP(&projectFormat, "format", "f", "text", "Output format (text, json)")
}
