package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/apdbschema/apdb"
	"github.com/ridoystarlord/apdbschema/database"
	"github.com/ridoystarlord/apdbschema/generator"
	"github.com/ridoystarlord/apdbschema/schema"
)

var (
	docsFormat string
	docsOutput string
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Generate documentation for the tables of the layout",
	Long: `Generate documentation from the tables of the configured layout.

Supported formats:
  - markdown: column reference with types, units and descriptions
  - mermaid: Mermaid ER diagram
  - plantuml: PlantUML ER diagram

Examples:
  apdbschema docs --format markdown --output apdb.md
  apdbschema docs --format mermaid --output erd.md
  apdbschema docs --format plantuml
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := buildSchema()
		if err != nil {
			return err
		}

		var content, output string
		switch docsFormat {
		case "markdown":
			content, output = generateMarkdownContent(s), "apdb.md"
		case "mermaid":
			content, output = generateMermaidContent(s.Models()), "erd.md"
		case "plantuml":
			content, output = generatePlantUMLContent(s.Models()), "erd.puml"
		default:
			return fmt.Errorf("unsupported format: %s (supported: markdown, mermaid, plantuml)", docsFormat)
		}
		if docsOutput != "" {
			output = docsOutput
		}
		if output == "-" {
			fmt.Print(content)
			return nil
		}

		if err := os.WriteFile(output, []byte(content), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", output, err)
		}
		fmt.Printf("✅ Documentation saved to: %s\n", output)
		return nil
	},
}

func generateMarkdownContent(s *apdb.Schema) string {
	var content strings.Builder

	cfg := s.Config()
	content.WriteString("# APDB Schema\n\n")
	fmt.Fprintf(&content, "Layout: `%s`", cfg.DiaObjectIndex)
	if cfg.DiaObjectNightly {
		content.WriteString(", with nightly table")
	}
	content.WriteString("\n")

	for _, role := range s.PopulatedRoles() {
		model := s.Table(role)
		def, err := s.Definition(role)
		if err != nil {
			continue
		}

		fmt.Fprintf(&content, "\n## %s\n\n", model.TableName)
		if def.Description != "" {
			content.WriteString(def.Description + "\n\n")
		}
		if pk := model.PrimaryKeyColumns(); len(pk) > 0 {
			fmt.Fprintf(&content, "Primary key: %s\n\n", strings.Join(pk, ", "))
		}
		content.WriteString("| Column | Type | Nullable | Unit | Description |\n")
		content.WriteString("|--------|------|----------|------|-------------|\n")

		// model columns follow the definition column order
		for i, col := range model.Columns {
			var unit, desc string
			if i < len(def.Columns) {
				unit, desc = def.Columns[i].Unit, def.Columns[i].Description
			}
			sqlType, _ := generator.SQLType(col, database.Postgres)
			nullable := "yes"
			if col.NotNull {
				nullable = "no"
			}
			fmt.Fprintf(&content, "| %s | %s | %s | %s | %s |\n",
				col.Name, sqlType, nullable, unit, strings.ReplaceAll(desc, "|", "\\|"))
		}

		if len(model.Indexes) > 0 {
			content.WriteString("\nIndexes:\n\n")
			for _, idx := range model.Indexes {
				fmt.Fprintf(&content, "- %s (%s)\n", idx.Name, strings.Join(idx.Columns, ", "))
			}
		}
	}
	return content.String()
}

func generateMermaidContent(models []*schema.Model) string {
	var content strings.Builder

	content.WriteString("# APDB Schema ERD\n\n")
	content.WriteString("```mermaid\nerDiagram\n")
	for _, model := range models {
		pk := columnSet(model.PrimaryKeyColumns())
		fmt.Fprintf(&content, "    %s {\n", model.TableName)
		for _, col := range model.Columns {
			line := fmt.Sprintf("        %s %s", col.Kind, col.Name)
			if pk[col.Name] {
				line += " PK"
			}
			content.WriteString(line + "\n")
		}
		content.WriteString("    }\n")
	}
	content.WriteString("```\n")
	return content.String()
}

func generatePlantUMLContent(models []*schema.Model) string {
	var content strings.Builder

	content.WriteString("@startuml\n")
	content.WriteString("!theme plain\n")
	content.WriteString("skinparam linetype ortho\n\n")
	for _, model := range models {
		pk := columnSet(model.PrimaryKeyColumns())
		fmt.Fprintf(&content, "entity \"%s\" {\n", model.TableName)
		for _, col := range model.Columns {
			sqlType, _ := generator.SQLType(col, database.Postgres)
			line := fmt.Sprintf("  %s : %s", col.Name, sqlType)
			if pk[col.Name] {
				line += " <<PK>>"
			}
			if col.NotNull {
				line += " <<NN>>"
			}
			if col.Default != nil {
				line += fmt.Sprintf(" <<DEFAULT: %s>>", *col.Default)
			}
			content.WriteString(line + "\n")
		}
		content.WriteString("}\n\n")
	}
	content.WriteString("@enduml\n")
	return content.String()
}

func columnSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

func init() {
	docsCmd.Flags().StringVarP(&docsFormat, "format", "f", "markdown", "Output format (markdown, mermaid, plantuml)")
	docsCmd.Flags().StringVarP(&docsOutput, "output", "o", "", "Output file, - for stdout")
}
