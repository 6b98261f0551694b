package catalog

import (
	"strings"

	"assetcat/pkg/models"
)

// TableName is the catalog table.
const TableName = "assets"

// indexes speed up the usual equality lookups; none of them is unique since
// identical content may be cataloged more than once.
const indexes = `
CREATE INDEX IF NOT EXISTS idx_assets_subsystem ON assets(subsystem);
CREATE INDEX IF NOT EXISTS idx_assets_label ON assets(label);
CREATE INDEX IF NOT EXISTS idx_assets_checksum ON assets(checksum);
`

// createTableStatement builds the CREATE TABLE statement from the column list.
func createTableStatement() string {
	columns := make([]string, 0, len(models.Columns))
	for _, field := range models.Columns {
		columns = append(columns, string(field)+" "+field.SQLType())
	}
	return "CREATE TABLE " + TableName + " (\n    " + strings.Join(columns, ",\n    ") + "\n);" + indexes
}

// selectColumns lists the columns for SELECT, mapping NULLs left by other
// writers to zero values so they scan into the record.
func selectColumns() string {
	columns := make([]string, 0, len(models.Columns))
	for _, field := range models.Columns {
		switch {
		case field == models.FieldID:
			columns = append(columns, string(field))
		case field.IsInteger():
			columns = append(columns, "COALESCE("+string(field)+", 0)")
		default:
			columns = append(columns, "COALESCE("+string(field)+", '')")
		}
	}
	return strings.Join(columns, ", ")
}

func insertStatement() string {
	columns := make([]string, 0, len(models.Columns))
	for _, field := range models.Columns {
		columns = append(columns, string(field))
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	return "INSERT INTO " + TableName + " (" + strings.Join(columns, ", ") + ") VALUES (" + placeholders + ")"
}
