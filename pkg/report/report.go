// Package report renders catalog query results for the terminal.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"assetcat/pkg/models"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"
)

var tableHeader = []string{"ID", "SUBSYSTEM", "LABEL", "STATUS", "PATH", "SIZE"}

// PathFunc resolves the absolute location of a record's file.
type PathFunc func(record *models.AssetRecord) string

// Options controls Write.
type Options struct {
	// JSON prints the raw records instead of a table.
	JSON     bool
	// Metadata prints every column of each record after the table.
	Metadata bool
}

// Write renders records to w.
func Write(w io.Writer, records []models.AssetRecord, pathOf PathFunc, opts Options) error {
	if opts.JSON {
		return JSON(w, records)
	}

	if err := Table(w, records, pathOf); err != nil {
		return err
	}

	if opts.Metadata {
		for i := range records {
			if err := Metadata(w, &records[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

// Table writes one row per record: subsystem, label, status, full path and size.
func Table(w io.Writer, records []models.AssetRecord, pathOf PathFunc) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No matching assets")
		return err
	}

	data := make([][]string, 0, len(records)+1)
	data = append(data, tableHeader)
	for i := range records {
		record := &records[i]
		data = append(data, []string{
			strconv.FormatInt(record.ID, 10),
			record.Subsystem,
			record.Label,
			string(record.Status),
			pathOf(record),
			humanSize(record.Size),
		})
	}

	rendered, err := pterm.DefaultTable.WithHasHeader(true).WithHeaderRowSeparator("-").WithData(data).Srender()
	if err != nil {
		return fmt.Errorf("unable to render table: %w", err)
	}

	_, err = fmt.Fprintln(w, rendered)
	return err
}

// Metadata writes every column of record as a two column table.
func Metadata(w io.Writer, record *models.AssetRecord) error {
	data := make([][]string, 0, len(models.Columns))
	for _, field := range models.Columns {
		data = append(data, []string{string(field), fmt.Sprint(record.Get(field))})
	}

	rendered, err := pterm.DefaultTable.WithHasHeader(false).WithBoxed(true).WithData(data).Srender()
	if err != nil {
		return fmt.Errorf("unable to render metadata: %w", err)
	}

	_, err = fmt.Fprintln(w, rendered)
	return err
}

// JSON writes records as an indented JSON array.
func JSON(w io.Writer, records []models.AssetRecord) error {
	if records == nil {
		records = []models.AssetRecord{}
	}

	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("unable to encode records: %w", err)
	}

	_, err = fmt.Fprintln(w, string(data))
	return err
}

func humanSize(size int64) string {
	if size < 0 {
		return strconv.FormatInt(size, 10)
	}
	return humanize.IBytes(uint64(size))
}
