package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"assetcat/pkg/catalog"

	"github.com/spf13/cobra"
)

func newInitCmd(a *app) *cobra.Command {
	var writeConfig string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the catalog table",
		Long: `Create the catalog table in the configured database. An existing table is
left untouched and reported as a warning.

With --write-config the effective configuration, flags included, is saved as
YAML so later commands can use it through --config.`,
		Example: `  assetcat --db-file /data/assets/catalog.sqlite init --write-config /etc/assetcat.yaml`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if writeConfig != "" {
				if _, err := os.Stat(writeConfig); !errors.Is(err, fs.ErrNotExist) {
					return fmt.Errorf("refusing to overwrite %s", writeConfig)
				}
			}

			store, err := a.openStore(catalog.WithoutSchema())
			if err != nil {
				return err
			}
			defer closeStore(store)

			err = store.CreateSchema()
			switch {
			case errors.Is(err, catalog.ErrSchemaConflict):
				if _, err = fmt.Fprintf(cmd.OutOrStdout(), "Warning: catalog table already exists in %s\n", store.DatabasePath()); err != nil {
					return err
				}
			case err != nil:
				return err
			default:
				if _, err = fmt.Fprintf(cmd.OutOrStdout(), "Created catalog in %s\n", store.DatabasePath()); err != nil {
					return err
				}
			}

			if writeConfig == "" {
				return nil
			}
			if err := a.cfg.Write(writeConfig); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Wrote configuration to %s\n", writeConfig)
			return err
		},
	}
	cmd.Flags().StringVar(&writeConfig, "write-config", "", "Save the effective configuration to this YAML file")

	return cmd
}
