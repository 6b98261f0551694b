package cli

import (
	"assetcat/pkg/server"

	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var addr, ingestDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("ingest-dir") {
				a.cfg.Server.IngestDir = ingestDir
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer closeStore(store)

			return server.NewCatalogServer(store, a.version, a.cfg.Server.ShutdownTimeout,
				server.WithIngestDir(a.cfg.Server.IngestDir),
			).Start(a.cfg.Server.Addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, 127.0.0.1:8080)")
	cmd.Flags().StringVar(&ingestDir, "ingest-dir", "", "Directory POST /assets may read sources from (default from config, ingest disabled)")

	return cmd
}
