package cli

import (
	"errors"

	"assetcat/pkg/catalog"
	"assetcat/pkg/models"

	"github.com/spf13/cobra"
)

var errFilterRequired = errors.New("at least one filter flag is required")

// fieldFlag binds a command line flag to a catalog column.
type fieldFlag struct {
	name      string
	shorthand string
	field     models.Field
	usage     string
}

var fieldFlagSet = []fieldFlag{
	{"name", "n", models.FieldName, "File name"},
	{"subsystem", "", models.FieldSubsystem, "Subsystem the file belongs to"},
	{"label", "l", models.FieldLabel, "Release or version label"},
	{"format", "f", models.FieldFormat, "File format"},
	{"status", "", models.FieldStatus, "Status: valid, new_version_available or expired"},
	{"checksum", "c", models.FieldChecksum, "MD5 checksum of the content"},
	{"description", "", models.FieldDescription, "Free text description"},
	{"replica-uri", "", models.FieldReplicaURI, "Where the original copy lives"},
}

// fieldValues collects the column flags of one command.
type fieldValues struct {
	values map[models.Field]*string
}

func registerFieldFlags(cmd *cobra.Command) *fieldValues {
	fv := &fieldValues{values: make(map[models.Field]*string, len(fieldFlagSet))}
	for _, flag := range fieldFlagSet {
		fv.values[flag.field] = cmd.Flags().StringP(flag.name, flag.shorthand, "", flag.usage)
	}
	return fv
}

// set returns the columns whose flags were given, explicit empty values included.
func (fv *fieldValues) set(cmd *cobra.Command) map[string]string {
	given := make(map[string]string)
	for _, flag := range fieldFlagSet {
		if cmd.Flags().Changed(flag.name) {
			given[string(flag.field)] = *fv.values[flag.field]
		}
	}
	return given
}

func (fv *fieldValues) filter(cmd *cobra.Command) (catalog.Filter, error) {
	return catalog.ParseFilter(fv.set(cmd))
}

// mutationFilter refuses to match every row.
func (fv *fieldValues) mutationFilter(cmd *cobra.Command) (catalog.Filter, error) {
	filter, err := fv.filter(cmd)
	if err != nil {
		return catalog.Filter{}, err
	}
	if filter.Len() == 0 {
		return catalog.Filter{}, errFilterRequired
	}
	return filter, nil
}
