package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRetireCmd(a *app) *cobra.Command {
	var fields *fieldValues

	cmd := &cobra.Command{
		Use:   "retire [filter flags]",
		Short: "Mark matching files expired",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := fields.mutationFilter(cmd)
			if err != nil {
				return err
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer closeStore(store)

			retired, err := store.RetireFiles(filter)
			if _, printErr := fmt.Fprintf(cmd.OutOrStdout(), "Retired %d asset(s)\n", retired); printErr != nil && err == nil {
				err = printErr
			}
			return err
		},
	}
	fields = registerFieldFlags(cmd)

	return cmd
}
