// Package cli implements the assetcat command line.
package cli

import (
	"fmt"

	"assetcat/pkg/asset"
	"assetcat/pkg/catalog"
	"assetcat/pkg/config"
	"assetcat/pkg/log"

	"github.com/spf13/cobra"
)

// app holds the persistent flags and the configuration they resolve to.
type app struct {
	version    string
	configFile string
	dbFile     string
	rootDir    string
	debug      bool
	cfg        *config.Config
}

// NewRootCmd creates the root command with every subcommand attached.
func NewRootCmd(version string) *cobra.Command {
	a := &app{version: version}

	cmd := &cobra.Command{
		Use:   "assetcat",
		Short: "assetcat catalogs files by content checksum",
		Long: `assetcat copies files into a content-addressed storage tree and records their
metadata in a SQLite catalog, with a JSON sidecar beside every stored copy.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "Path to a YAML configuration file")
	flags.StringVar(&a.dbFile, "db-file", "", "Catalog database file (default "+config.DefaultDBFile+")")
	flags.StringVar(&a.rootDir, "root-dir", "", "Directory holding the files/ tree (default: the database directory)")
	flags.BoolVar(&a.debug, "debug", false, "Enable debug logging")

	addCommands(cmd, a)
	return cmd
}

func addCommands(cmd *cobra.Command, a *app) {
	cmd.AddCommand(
		newInitCmd(a),
		newAddCmd(a),
		newGetCmd(a),
		newUpdateCmd(a),
		newRetireCmd(a),
		newServeCmd(a),
		newVersionCmd(a),
	)
}

// setup loads the config file and lets explicit flags override it.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}

	if a.dbFile != "" {
		cfg.DBFile = a.dbFile
	}
	if a.rootDir != "" {
		cfg.RootDir = a.rootDir
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := log.Configure(log.Options{
		Level:  cfg.LogLevel,
		JSON:   cfg.LogJSON,
		Writer: cmd.ErrOrStderr(),
	}); err != nil {
		return err
	}
	if a.debug {
		log.SetDebugMode()
	}

	a.cfg = cfg
	return nil
}

func (a *app) openStore(opts ...catalog.Option) (*catalog.Store, error) {
	options := []catalog.Option{
		catalog.WithPlacer(asset.NewPlacer(asset.WithMaxAttempts(a.cfg.Placement.MaxAttempts))),
	}
	if a.cfg.RootDir != "" {
		options = append(options, catalog.WithRootDir(a.cfg.RootDir))
	}

	store, err := catalog.Open(a.cfg.DBFile, append(options, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("unable to open catalog %s: %w", a.cfg.DBFile, err)
	}
	return store, nil
}

func closeStore(store *catalog.Store) {
	if err := store.Close(); err != nil {
		log.Error().Err(err).Str("db_file", store.DatabasePath()).Msg("Failed to close catalog")
	}
}
