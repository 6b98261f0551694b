package cli

import (
	"fmt"

	"assetcat/pkg/asset"
	"assetcat/pkg/client"
	"assetcat/pkg/report"

	"github.com/spf13/cobra"
)

type getOptions struct {
	printMetadata bool
	jsonOutput    bool
	copyTo        string
	serverURL     string
	fields        *fieldValues
}

func newGetCmd(a *app) *cobra.Command {
	opts := &getOptions{}

	cmd := &cobra.Command{
		Use:   "get [flags]",
		Short: "Query the catalog",
		Long: `List cataloged files matching every given field flag. Without flags every
file is listed.

Example:
  assetcat get --subsystem readout -l v1 -p
  assetcat get -c 0cc175b9c0f1b6a831c399e269772661 --copy-to ./out
  assetcat get --server http://catalog:8080 --subsystem readout`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runGet(cmd, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.printMetadata, "print-metadata", "p", false, "Print every field of each match")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Print matches as JSON")
	cmd.Flags().StringVar(&opts.copyTo, "copy-to", "", "Copy matching files into this directory")
	cmd.Flags().StringVar(&opts.serverURL, "server", "", "Query a remote catalog at this URL instead of the local database")
	cmd.MarkFlagsMutuallyExclusive("server", "copy-to")
	opts.fields = registerFieldFlags(cmd)

	return cmd
}

func (a *app) runGet(cmd *cobra.Command, opts *getOptions) error {
	filter, err := opts.fields.filter(cmd)
	if err != nil {
		return err
	}

	if opts.serverURL != "" {
		return runRemoteGet(cmd, opts)
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer closeStore(store)

	records, err := store.GetFiles(filter)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := report.Write(out, records, store.AssetPath, report.Options{
		JSON:     opts.jsonOutput,
		Metadata: opts.printMetadata,
	}); err != nil {
		return err
	}

	if opts.copyTo == "" {
		return nil
	}
	for i := range records {
		src := store.AssetPath(&records[i])
		dest, err := asset.CopyOut(src, opts.copyTo)
		if err != nil {
			return fmt.Errorf("unable to copy file_id %d: %w", records[i].ID, err)
		}
		if !opts.jsonOutput {
			if _, err := fmt.Fprintf(out, "Copied %s to %s\n", src, dest); err != nil {
				return err
			}
		}
	}
	return nil
}

// runRemoteGet lists matches from a catalog server. The path column shows download URLs.
func runRemoteGet(cmd *cobra.Command, opts *getOptions) error {
	remote := client.New(opts.serverURL)

	records, err := remote.List(cmd.Context(), opts.fields.set(cmd))
	if err != nil {
		return err
	}

	return report.Write(cmd.OutOrStdout(), records, remote.DownloadURL, report.Options{
		JSON:     opts.jsonOutput,
		Metadata: opts.printMetadata,
	})
}
