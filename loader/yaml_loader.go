package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ridoystarlord/apdbschema/schema"
	"gopkg.in/yaml.v3"
)

// yamlTable is one document of a schema file.
type yamlTable struct {
	Table       string       `yaml:"table"`
	Description string       `yaml:"description"`
	Columns     []yamlColumn `yaml:"columns"`
	Indices     []yamlIndex  `yaml:"indices"`
}

type yamlColumn struct {
	Name        string  `yaml:"name"`
	Type        string  `yaml:"type"`
	Nullable    *bool   `yaml:"nullable"`
	Default     *string `yaml:"default"`
	Description string  `yaml:"description"`
	Unit        string  `yaml:"unit"`
	UCD         string  `yaml:"ucd"`
	Length      int     `yaml:"length"`
}

type yamlIndex struct {
	Name    string   `yaml:"name"`
	Type    string   `yaml:"type"`
	Columns []string `yaml:"columns"`
}

// LoadTablesFile reads a multi-document YAML schema file.
func LoadTablesFile(filename string) ([]schema.TableDef, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}
	tables, err := LoadTables(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return tables, nil
}

// LoadTables decodes table definitions, one per YAML document. Unknown keys,
// unknown column types and duplicate column names are rejected.
func LoadTables(data []byte) ([]schema.TableDef, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var tables []schema.TableDef
	for {
		var doc yamlTable
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("unmarshalling YAML: %w", err)
		}
		if doc.Table == "" && len(doc.Columns) == 0 && len(doc.Indices) == 0 {
			// empty document, e.g. a trailing "---"
			continue
		}
		t, err := convertTable(doc)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

func convertTable(doc yamlTable) (schema.TableDef, error) {
	if doc.Table == "" {
		return schema.TableDef{}, fmt.Errorf("table document without a table name")
	}
	t := schema.TableDef{
		Name:        doc.Table,
		Description: doc.Description,
	}

	seen := map[string]bool{}
	for _, c := range doc.Columns {
		if c.Name == "" {
			return schema.TableDef{}, fmt.Errorf("table %s: column without a name", doc.Table)
		}
		if seen[c.Name] {
			return schema.TableDef{}, fmt.Errorf("table %s: duplicate column %s", doc.Table, c.Name)
		}
		seen[c.Name] = true

		kind, err := schema.ParseKind(c.Type)
		if err != nil {
			return schema.TableDef{}, fmt.Errorf("table %s, column %s: %w", doc.Table, c.Name, err)
		}
		col := schema.ColumnDef{
			Name:        c.Name,
			Kind:        kind,
			Nullable:    true,
			Default:     c.Default,
			Description: c.Description,
			Unit:        c.Unit,
			UCD:         c.UCD,
			Length:      c.Length,
		}
		if c.Nullable != nil {
			col.Nullable = *c.Nullable
		}
		if col.Default == nil && kind.HasImplicitDefault() {
			zero := "0"
			col.Default = &zero
		}
		t.Columns = append(t.Columns, col)
	}

	for _, idx := range doc.Indices {
		if len(idx.Columns) == 0 {
			return schema.TableDef{}, fmt.Errorf("table %s: index %q has no columns", doc.Table, idx.Name)
		}
		typ := schema.IndexType(idx.Type)
		switch typ {
		case schema.IndexPrimary, schema.IndexUnique, schema.IndexPlain:
		case "":
			typ = schema.IndexPlain
		default:
			return schema.TableDef{}, fmt.Errorf("table %s: index %q has unknown type %q", doc.Table, idx.Name, idx.Type)
		}
		if _, hasPK := t.PrimaryKey(); hasPK && typ == schema.IndexPrimary {
			return schema.TableDef{}, fmt.Errorf("table %s: more than one primary key", doc.Table)
		}
		t.Indices = append(t.Indices, schema.IndexDef{
			Name:    idx.Name,
			Type:    typ,
			Columns: idx.Columns,
		})
	}
	return t, nil
}
