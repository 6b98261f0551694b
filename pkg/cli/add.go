package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"assetcat/pkg/catalog"
	"assetcat/pkg/log"
	"assetcat/pkg/models"

	"github.com/spf13/cobra"
)

type addOptions struct {
	source   string
	jsonFile string
	fields   *fieldValues
}

func newAddCmd(a *app) *cobra.Command {
	opts := &addOptions{}

	cmd := &cobra.Command{
		Use:   "add -s SOURCE [flags]",
		Short: "Catalog a file",
		Long: `Copy a file into the storage tree and record it in the catalog.

Metadata comes from --json-file and the field flags; flags win over file keys.
The checksum, size and path are always computed from the file.

Example:
  assetcat add -s calib.dat --subsystem readout -l v1 -f binary`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runAdd(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.source, "source", "s", "", "File to catalog")
	cmd.Flags().StringVar(&opts.jsonFile, "json-file", "", "JSON file with metadata")
	_ = cmd.MarkFlagRequired("source")
	opts.fields = registerFieldFlags(cmd)

	return cmd
}

func (a *app) runAdd(cmd *cobra.Command, opts *addOptions) error {
	values, err := readMetadataFile(opts.jsonFile)
	if err != nil {
		return err
	}

	for key, value := range opts.fields.set(cmd) {
		if key == string(models.FieldChecksum) {
			log.Warn().Msg("Checksum is computed from the file, ignoring --checksum")
			continue
		}
		values[key] = value
	}

	md, err := catalog.MetadataFromMap(values)
	if err != nil {
		return err
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer closeStore(store)

	record, err := store.InsertFile(opts.source, md)
	if err != nil {
		return fmt.Errorf("unable to catalog %s: %w", opts.source, err)
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Cataloged %s as file_id %d at %s\n",
		opts.source, record.ID, store.AssetPath(record))
	return err
}

func readMetadataFile(path string) (map[string]any, error) {
	values := make(map[string]any)
	if path == "" {
		return values, nil
	}

	//nolint:gosec // the operator names the metadata file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read metadata file: %w", err)
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&values); err != nil {
		return nil, fmt.Errorf("%w: metadata file %s is not a JSON object: %w", catalog.ErrValidation, path, err)
	}
	if values == nil {
		values = make(map[string]any)
	}
	return values, nil
}
