// Package config holds the settings that select schema files, column maps
// and the physical layout of the object tables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ridoystarlord/apdbschema/schema"
)

// ObjectIndex selects how the DiaObject entity is laid out in the database.
type ObjectIndex string

const (
	// IndexBaseline keeps the primary key declared on DiaObject.
	IndexBaseline ObjectIndex = "baseline"
	// IndexPixIDIOV keys DiaObject by (pixelId, diaObjectId, validityStart).
	IndexPixIDIOV ObjectIndex = "pix_id_iov"
	// IndexLastObjectTable adds a DiaObjectLast table with the latest version
	// of each object.
	IndexLastObjectTable ObjectIndex = "last_object_table"
)

// ParseObjectIndex converts a configuration value into an ObjectIndex.
func ParseObjectIndex(s string) (ObjectIndex, error) {
	switch ObjectIndex(s) {
	case IndexBaseline, IndexPixIDIOV, IndexLastObjectTable:
		return ObjectIndex(s), nil
	}
	return "", fmt.Errorf("%w: unknown dia_object_index %q (want baseline, pix_id_iov or last_object_table)",
		schema.ErrConfiguration, s)
}

// NeedsExtraSchema reports whether the layout reads tables that only the
// extra schema file defines.
func (i ObjectIndex) NeedsExtraSchema() bool {
	return i == IndexPixIDIOV || i == IndexLastObjectTable
}

// Config is the schema configuration. Paths are used as given.
type Config struct {
	DiaObjectIndex    ObjectIndex `yaml:"dia_object_index"`
	DiaObjectNightly  bool        `yaml:"dia_object_nightly"`
	SchemaFile        string      `yaml:"schema_file"`
	ExtraSchemaFile   string      `yaml:"extra_schema_file"`
	ColumnMap         string      `yaml:"column_map"`          // logical -> external record names
	PhysicalColumnMap string      `yaml:"physical_column_map"` // logical -> database names
	Prefix            string      `yaml:"prefix"`
	LogLevel          string      `yaml:"log_level"` // debug, info, warn, error (default "info")
}

// Default returns the baseline layout reading the schema from data/.
func Default() Config {
	return Config{
		DiaObjectIndex: IndexBaseline,
		SchemaFile:     "data/apdb-schema.yaml",
		LogLevel:       "info",
	}
}

// Load reads a YAML configuration file on top of Default. Unknown keys are
// rejected.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the configuration is internally consistent.
func (c Config) Validate() error {
	if _, err := ParseObjectIndex(string(c.DiaObjectIndex)); err != nil {
		return err
	}
	if c.SchemaFile == "" {
		return fmt.Errorf("%w: schema_file is required", schema.ErrConfiguration)
	}
	if c.DiaObjectIndex.NeedsExtraSchema() && c.ExtraSchemaFile == "" {
		return fmt.Errorf("%w: dia_object_index %s requires extra_schema_file",
			schema.ErrConfiguration, c.DiaObjectIndex)
	}
	return nil
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
