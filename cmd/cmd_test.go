package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridoystarlord/apdbschema/apdb"
	"github.com/ridoystarlord/apdbschema/config"
	"github.com/ridoystarlord/apdbschema/database"
	"github.com/ridoystarlord/apdbschema/diff"
	"github.com/ridoystarlord/apdbschema/introspect"
)

func init() {
	color.NoColor = true
}

func dataFile(t *testing.T, name string) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(thisFile), "..", "data", name)
}

func testSchema(t *testing.T, index config.ObjectIndex) *apdb.Schema {
	t.Helper()
	cfg := config.Default()
	cfg.DiaObjectIndex = index
	cfg.SchemaFile = dataFile(t, "apdb-schema.yaml")
	if index.NeedsExtraSchema() {
		cfg.ExtraSchemaFile = dataFile(t, "apdb-schema-extra.yaml")
	}
	s, err := apdb.New(cfg, apdb.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)
	return s
}

func TestLoadConfig_Flags(t *testing.T) {
	t.Cleanup(func() {
		prefix, diaObjectIndex, extraSchemaFile = "", "", ""
	})
	require.NoError(t, rootCmd.ParseFlags([]string{
		"--prefix", "Test",
		"--dia-object-index", "pix_id_iov",
		"--extra-schema-file", "extra.yaml",
	}))

	cfg, err := loadConfig(rootCmd)
	require.NoError(t, err)
	assert.Equal(t, "Test", cfg.Prefix)
	assert.Equal(t, config.IndexPixIDIOV, cfg.DiaObjectIndex)
	assert.Equal(t, "extra.yaml", cfg.ExtraSchemaFile)
	// untouched flags keep the defaults
	assert.Equal(t, "data/apdb-schema.yaml", cfg.SchemaFile)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestSummarize(t *testing.T) {
	report := summarize(testSchema(t, config.IndexLastObjectTable))

	assert.True(t, report.Valid)
	assert.Equal(t, "last_object_table", report.DiaObjectIndex)
	require.Len(t, report.Tables, 4)
	assert.Equal(t, "objects_last", report.Tables[1].Role)
	assert.Equal(t, "DiaObjectLast", report.Tables[1].Table)
	assert.Equal(t, 18, report.Tables[1].Columns)
	assert.Equal(t, []string{"IDX_DiaObjLast_pixelId"}, report.Tables[1].Indexes)

	var buf bytes.Buffer
	outputText(&buf, report)
	assert.Contains(t, buf.String(), "Schema validation passed")
	assert.Contains(t, buf.String(), "DiaObjectLast")

	buf.Reset()
	require.NoError(t, outputJSON(&buf, report))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, true, decoded["valid"])
	assert.Len(t, decoded["tables"], 4)
}

func TestProjectionOutput(t *testing.T) {
	s := testSchema(t, config.IndexBaseline)
	p, err := s.Project(apdb.RoleObjects, "diaObjectId", "ra", "uLcPeriodic")
	require.NoError(t, err)

	out := projectionReport(apdb.RoleObjects, p)
	assert.Equal(t, "objects", out.Role)
	require.Len(t, out.Links, 3)
	assert.True(t, out.Links[0].Stored)
	require.NotNil(t, out.Links[1].Key)
	// diaObjectId and ra follow the four base fields
	assert.Equal(t, 5, *out.Links[1].Key)
	assert.Equal(t, "Angle", out.Links[1].Type)
	assert.False(t, out.Links[2].Stored)
	assert.Nil(t, out.Links[2].Key)

	var buf bytes.Buffer
	printProjection(&buf, apdb.RoleObjects, p)
	assert.Contains(t, buf.String(), "uLcPeriodic → uLcPeriodic (not stored)")
	assert.Contains(t, buf.String(), "diaObjectId → diaObjectId [#4 L]")
	assert.Contains(t, buf.String(), "ra → ra [#5 Angle]")
}

func TestShowDiff(t *testing.T) {
	ctx := context.Background()
	conn, err := database.Open(ctx, "sqlite://")
	require.NoError(t, err)
	defer conn.Close()

	s := testSchema(t, config.IndexBaseline)
	stmts, err := s.Statements(database.SQLite, false)
	require.NoError(t, err)
	// create DiaObject only
	require.NoError(t, conn.Exec(ctx, stmts[0]))

	existing, err := introspect.IntrospectDatabase(ctx, conn)
	require.NoError(t, err)
	ops := diff.DiffSchemas(s.Models(), existing)

	tables, byTable := groupByTable(ops)
	assert.Equal(t, []string{"DiaObject", "DiaSource", "DiaForcedSource"}, tables)
	assert.Equal(t, diff.CreateIndex, byTable["DiaObject"][0].Type)

	var buf bytes.Buffer
	showTextDiff(&buf, ops)
	assert.Contains(t, buf.String(), "CREATE TABLE DiaSource")
	assert.Contains(t, buf.String(), "CREATE INDEX IDX_DiaObject_validityStart ON DiaObject")

	buf.Reset()
	showVisualDiff(&buf, ops)
	assert.Contains(t, buf.String(), "MODIFY DiaObject")
	assert.Contains(t, buf.String(), "CREATE DiaForcedSource (7 columns)")

	buf.Reset()
	printTablePresence(&buf, s.Models(), existing)
	assert.Contains(t, buf.String(), "✅ DiaObject (92 columns)")
	assert.Contains(t, buf.String(), "DiaSource not found")
	assert.Contains(t, buf.String(), "2 of 3 tables missing")
}

func TestDocsContent(t *testing.T) {
	s := testSchema(t, config.IndexBaseline)

	md := generateMarkdownContent(s)
	assert.Contains(t, md, "## DiaObject\n")
	assert.Contains(t, md, "Primary key: diaObjectId, validityStart")
	assert.Contains(t, md, "| diaObjectId | BIGINT | no |  | Unique id. |")
	assert.Contains(t, md, "| ra | DOUBLE PRECISION | no | deg |")

	mermaid := generateMermaidContent(s.Models())
	assert.Contains(t, mermaid, "    DiaForcedSource {\n")
	assert.Contains(t, mermaid, "        BIGINT diaObjectId PK\n")

	puml := generatePlantUMLContent(s.Models())
	assert.Contains(t, puml, "entity \"DiaSource\" {")
	assert.Contains(t, puml, "  flags : BIGINT <<NN>> <<DEFAULT: 0>>")
}

func TestParseDialect(t *testing.T) {
	d, err := parseDialect("sqlite")
	require.NoError(t, err)
	assert.Equal(t, database.SQLite, d)

	_, err = parseDialect("mysql")
	assert.Error(t, err)
}
