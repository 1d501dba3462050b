package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ridoystarlord/apdbschema/apdb"
	"github.com/ridoystarlord/apdbschema/config"
	"github.com/ridoystarlord/apdbschema/utils"
)

var (
	configFile        string
	schemaFile        string
	extraSchemaFile   string
	columnMap         string
	physicalColumnMap string
	diaObjectIndex    string
	nightly           bool
	prefix            string
	logLevel          string

	// appConfig is filled in before any subcommand runs.
	appConfig config.Config
)

var rootCmd = &cobra.Command{
	Use:   "apdbschema",
	Short: "Build, inspect and create the APDB table schema",
	Long: `apdbschema reads the APDB schema description, applies the configured
table layout and creates or compares the resulting tables.

Examples:

  apdbschema validate
  apdbschema create --database sqlite://apdb.db --drop
  apdbschema project objects --columns diaObjectId,ra,decl
  apdbschema diff --visual
`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		utils.LoadEnv()
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		appConfig = cfg
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: cfg.SlogLevel(),
		})))
		return nil
	},
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

// loadConfig reads --config, or the defaults without one, and applies the
// flags the user set on top.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if configFile != "" {
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return config.Config{}, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("schema-file") {
		cfg.SchemaFile = schemaFile
	}
	if flags.Changed("extra-schema-file") {
		cfg.ExtraSchemaFile = extraSchemaFile
	}
	if flags.Changed("column-map") {
		cfg.ColumnMap = columnMap
	}
	if flags.Changed("physical-column-map") {
		cfg.PhysicalColumnMap = physicalColumnMap
	}
	if flags.Changed("dia-object-index") {
		idx, err := config.ParseObjectIndex(diaObjectIndex)
		if err != nil {
			return config.Config{}, err
		}
		cfg.DiaObjectIndex = idx
	}
	if flags.Changed("nightly") {
		cfg.DiaObjectNightly = nightly
	}
	if flags.Changed("prefix") {
		cfg.Prefix = prefix
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}

func buildSchema() (*apdb.Schema, error) {
	s, err := apdb.New(appConfig, apdb.WithLogger(slog.Default()))
	if err != nil {
		return nil, fmt.Errorf("building schema: %w", err)
	}
	return s, nil
}

// Register subcommands
func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configFile, "config", "c", "", "YAML configuration file")
	pf.StringVar(&schemaFile, "schema-file", "", "Schema description file (default data/apdb-schema.yaml)")
	pf.StringVar(&extraSchemaFile, "extra-schema-file", "", "Extra schema file merged over the schema file")
	pf.StringVar(&columnMap, "column-map", "", "Column map from logical to record field names")
	pf.StringVar(&physicalColumnMap, "physical-column-map", "", "Column map from logical to database column names")
	pf.StringVar(&diaObjectIndex, "dia-object-index", "", "DiaObject layout (baseline, pix_id_iov, last_object_table)")
	pf.BoolVar(&nightly, "nightly", false, "Also create the DiaObjectNightly table")
	pf.StringVar(&prefix, "prefix", "", "Prefix for table, index and constraint names")
	pf.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(healthCmd)
}
