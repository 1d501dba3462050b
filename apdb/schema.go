// Package apdb reconciles the APDB table definitions into the physical tables
// of the configured layout and maps their columns to record-table schemas.
//
// A Schema is built once with New, which loads and merges the schema files,
// checks external record schemas for case collisions and selects the layout
// of the DiaObject tables. Any inconsistency fails construction. The tables
// are then created with MakeSchema, and column projections for the record
// tables are computed with Project.
package apdb

import (
	"fmt"
	"log/slog"

	"github.com/ridoystarlord/apdbschema/config"
	"github.com/ridoystarlord/apdbschema/loader"
	"github.com/ridoystarlord/apdbschema/mapping"
	"github.com/ridoystarlord/apdbschema/record"
	"github.com/ridoystarlord/apdbschema/schema"
	"github.com/ridoystarlord/apdbschema/validator"
)

// Role names one of the tables a Schema may hold.
type Role string

const (
	RoleObjects        Role = "objects"
	RoleObjectsNightly Role = "objects_nightly"
	RoleObjectsLast    Role = "objects_last"
	RoleSources        Role = "sources"
	RoleForcedSources  Role = "forcedSources"
)

// Roles lists every role in materialization order.
var Roles = []Role{RoleObjects, RoleObjectsNightly, RoleObjectsLast, RoleSources, RoleForcedSources}

// Logical table names read from the schema files.
const (
	TableDiaObject        = "DiaObject"
	TableDiaObjectNightly = "DiaObjectNightly"
	TableDiaObjectLast    = "DiaObjectLast"
	TableDiaSource        = "DiaSource"
	TableDiaForcedSource  = "DiaForcedSource"
	// TableDiaObjectIndexHtmFirst only carries the indices used by the
	// pix_id_iov layout.
	TableDiaObjectIndexHtmFirst = "DiaObjectIndexHtmFirst"
)

// ParseRole accepts a role name or the logical name of the table that
// backs a role, e.g. "objects" or "DiaObject".
func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if s == string(r) {
			return r, nil
		}
	}
	switch s {
	case TableDiaObject:
		return RoleObjects, nil
	case TableDiaObjectNightly:
		return RoleObjectsNightly, nil
	case TableDiaObjectLast:
		return RoleObjectsLast, nil
	case TableDiaSource:
		return RoleSources, nil
	case TableDiaForcedSource:
		return RoleForcedSources, nil
	}
	return "", fmt.Errorf("%w: unknown table role %q", schema.ErrConfiguration, s)
}

// Schema is the reconciled APDB schema. Role fields are nil when the
// configured layout does not use the role. A Schema is not modified after
// New returns, so concurrent reads are safe.
type Schema struct {
	Objects        *schema.Model
	ObjectsNightly *schema.Model
	ObjectsLast    *schema.Model
	Sources        *schema.Model
	ForcedSources  *schema.Model

	cfg      config.Config
	logger   *slog.Logger
	tables   map[Role]schema.TableDef
	external map[string]*record.Schema
	extNames *mapping.Translator // logical -> record field names
	dbNames  *mapping.Translator // logical -> database column names
}

// Option configures New.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	external map[string]*record.Schema
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithExternalSchemas supplies record schemas keyed by logical table name.
// They are checked for case collisions, their unknown fields are added to
// the table as nullable columns, and they are the base of projections.
func WithExternalSchemas(schemas map[string]*record.Schema) Option {
	return func(o *options) { o.external = schemas }
}

// New builds a Schema from cfg.
func New(cfg config.Config, opts ...Option) (*Schema, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	extMap, err := loader.LoadColumnMapFile(cfg.ColumnMap)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", schema.ErrConfiguration, err)
	}
	dbMap, err := loader.LoadColumnMapFile(cfg.PhysicalColumnMap)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", schema.ErrConfiguration, err)
	}

	tables, err := loadTables(cfg, o.logger)
	if err != nil {
		return nil, err
	}

	s := &Schema{
		cfg:      cfg,
		logger:   o.logger,
		external: make(map[string]*record.Schema, len(o.external)),
		extNames: mapping.NewTranslator(extMap),
		dbNames:  mapping.NewTranslator(dbMap),
	}
	for name, ext := range o.external {
		if ext != nil {
			s.external[name] = ext.Clone()
		}
	}

	for i, t := range tables {
		ext, ok := s.external[t.Name]
		if !ok {
			continue
		}
		if err := validator.CheckCase(t, s.extNames, ext); err != nil {
			return nil, err
		}
		adoptedTable, adopted, err := validator.AdoptFields(t, s.extNames, ext)
		if err != nil {
			return nil, err
		}
		if len(adopted) > 0 {
			s.logger.Debug("adopted record fields as columns", "table", t.Name, "columns", adopted)
		}
		tables[i] = adoptedTable
	}

	for _, t := range tables {
		if err := validator.CheckUniqueNames(t, s.extNames, "record field"); err != nil {
			return nil, err
		}
		if err := validator.CheckUniqueNames(t, s.dbNames, "database column"); err != nil {
			return nil, err
		}
	}

	if err := s.selectLayout(tables); err != nil {
		return nil, err
	}

	result := validator.ValidateModels(s.Models())
	for _, w := range result.Warnings {
		s.logger.Debug("schema warning", "table", w.Table, "message", w.Message)
	}
	if err := result.Err(); err != nil {
		return nil, err
	}

	s.logger.Info("schema reconciled",
		"dia_object_index", cfg.DiaObjectIndex,
		"nightly", cfg.DiaObjectNightly,
		"tables", len(s.Models()),
	)
	return s, nil
}

func loadTables(cfg config.Config, logger *slog.Logger) ([]schema.TableDef, error) {
	base, err := loader.LoadTablesFile(cfg.SchemaFile)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded schema file", "file", cfg.SchemaFile, "tables", len(base))

	var extra []schema.TableDef
	if cfg.ExtraSchemaFile != "" {
		extra, err = loader.LoadTablesFile(cfg.ExtraSchemaFile)
		if err != nil {
			return nil, err
		}
		logger.Debug("loaded extra schema file", "file", cfg.ExtraSchemaFile, "tables", len(extra))
	}
	return schema.Merge(base, extra)
}

// Config returns the configuration the schema was built from.
func (s *Schema) Config() config.Config {
	return s.cfg
}

// Table returns the physical table of a role, nil when the role is not
// populated.
func (s *Schema) Table(role Role) *schema.Model {
	switch role {
	case RoleObjects:
		return s.Objects
	case RoleObjectsNightly:
		return s.ObjectsNightly
	case RoleObjectsLast:
		return s.ObjectsLast
	case RoleSources:
		return s.Sources
	case RoleForcedSources:
		return s.ForcedSources
	}
	return nil
}

// Definition returns the logical definition behind a role. The definition of
// objects_nightly is the one of objects.
func (s *Schema) Definition(role Role) (schema.TableDef, error) {
	role, err := ParseRole(string(role))
	if err != nil {
		return schema.TableDef{}, err
	}
	if s.Table(role) == nil {
		return schema.TableDef{}, fmt.Errorf("%w: table role %q is not used by layout %s",
			schema.ErrConfiguration, role, s.cfg.DiaObjectIndex)
	}
	return s.tables[role].Clone(), nil
}

// Models returns the populated physical tables in role order.
func (s *Schema) Models() []*schema.Model {
	var models []*schema.Model
	for _, r := range Roles {
		if m := s.Table(r); m != nil {
			models = append(models, m)
		}
	}
	return models
}

// PopulatedRoles returns the roles with a physical table, in role order.
func (s *Schema) PopulatedRoles() []Role {
	var roles []Role
	for _, r := range Roles {
		if s.Table(r) != nil {
			roles = append(roles, r)
		}
	}
	return roles
}

func (r Role) String() string { return string(r) }
