package cli

import (
	"fmt"

	"assetcat/pkg/catalog"

	"github.com/spf13/cobra"
)

type updateOptions struct {
	jsonString string
	fields     *fieldValues
}

func newUpdateCmd(a *app) *cobra.Command {
	opts := &updateOptions{}

	cmd := &cobra.Command{
		Use:   "update --json-string DOCUMENT [filter flags]",
		Short: "Change metadata of matching files",
		Long: `Apply a JSON change document to every cataloged file matching the filter
flags. The sidecar and the row are updated together and update_ts is refreshed.

Example:
  assetcat update -l v1 --subsystem readout --json-string '{"status": "new_version_available"}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runUpdate(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.jsonString, "json-string", "", "JSON object of fields to change")
	_ = cmd.MarkFlagRequired("json-string")
	opts.fields = registerFieldFlags(cmd)

	return cmd
}

func (a *app) runUpdate(cmd *cobra.Command, opts *updateOptions) error {
	changes, err := catalog.ParseChanges([]byte(opts.jsonString))
	if err != nil {
		return err
	}

	filter, err := opts.fields.mutationFilter(cmd)
	if err != nil {
		return err
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer closeStore(store)

	updated, err := store.UpdateFiles(filter, changes)
	if _, printErr := fmt.Fprintf(cmd.OutOrStdout(), "Updated %d asset(s)\n", updated); printErr != nil && err == nil {
		err = printErr
	}
	return err
}
