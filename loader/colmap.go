package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ColumnMap maps a table name to its logical -> physical column names.
type ColumnMap map[string]map[string]string

// LoadColumnMapFile reads a column map file. An empty filename yields an
// empty map, meaning every name maps to itself.
func LoadColumnMapFile(filename string) (ColumnMap, error) {
	if filename == "" {
		return ColumnMap{}, nil
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading column map file: %w", err)
	}
	cmap, err := LoadColumnMap(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return cmap, nil
}

// LoadColumnMap decodes a column map document:
//
//	DiaObject:
//	  diaObjectId: id
//	  ra: coord_ra
func LoadColumnMap(data []byte) (ColumnMap, error) {
	cmap := ColumnMap{}
	err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&cmap)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unmarshalling YAML: %w", err)
	}
	for table, names := range cmap {
		targets := make(map[string]string, len(names))
		for logical, physical := range names {
			if logical == "" || physical == "" {
				return nil, fmt.Errorf("table %s: empty name in column map", table)
			}
			if prev, dup := targets[physical]; dup {
				return nil, fmt.Errorf("table %s: columns %s and %s both map to %s", table, prev, logical, physical)
			}
			targets[physical] = logical
		}
	}
	return cmap, nil
}
