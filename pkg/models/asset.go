package models

import (
	"errors"
	"fmt"
	"strings"
)

// TimestampLayout is the layout used for catalog_ts and update_ts.
const TimestampLayout = "2006-01-02 15:04:05"

// Status is the lifecycle state of a cataloged asset.
type Status string

const (
	StatusValid               Status = "valid"
	StatusNewVersionAvailable Status = "new_version_available"
	StatusExpired             Status = "expired"
)

// ErrInvalidStatus is returned for a status outside the known set.
var ErrInvalidStatus = errors.New("invalid status")

// ParseStatus accepts the canonical status names and the legacy
// space-separated spelling "new version available".
func ParseStatus(value string) (Status, error) {
	switch Status(strings.ReplaceAll(strings.TrimSpace(value), " ", "_")) {
	case StatusValid:
		return StatusValid, nil
	case StatusNewVersionAvailable:
		return StatusNewVersionAvailable, nil
	case StatusExpired:
		return StatusExpired, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, value)
	}
}

// Spellings returns every stored form of st: the canonical name and, where it
// differs, the space-separated form older writers used.
func (st Status) Spellings() []string {
	spaced := strings.ReplaceAll(string(st), "_", " ")
	if spaced == string(st) {
		return []string{string(st)}
	}
	return []string{string(st), spaced}
}

// AssetRecord is one cataloged file. JSON keys match the catalog column names so
// the sidecar document and the row carry the same field set.
type AssetRecord struct {
	ID          int64  `json:"file_id"`
	Name        string `json:"name" validate:"required,excludesall=/\\"`
	Subsystem   string `json:"subsystem" validate:"required"`
	Label       string `json:"label" validate:"required"`
	Path        string `json:"path"`
	Checksum    string `json:"checksum"`
	Size        int64  `json:"size"`
	Format      string `json:"format"`
	Status      Status `json:"status" validate:"omitempty,oneof=valid new_version_available expired"`
	Description string `json:"description"`
	CatalogTS   string `json:"catalog_ts"`
	UpdateTS    string `json:"update_ts"`
	ReplicaURI  string `json:"replica_uri"`
}

// Get returns the value held in the given column, int64 for integer columns
// and string for the rest.
func (r *AssetRecord) Get(field Field) any {
	switch field {
	case FieldID:
		return r.ID
	case FieldName:
		return r.Name
	case FieldSubsystem:
		return r.Subsystem
	case FieldLabel:
		return r.Label
	case FieldPath:
		return r.Path
	case FieldChecksum:
		return r.Checksum
	case FieldSize:
		return r.Size
	case FieldFormat:
		return r.Format
	case FieldStatus:
		return string(r.Status)
	case FieldDescription:
		return r.Description
	case FieldCatalogTS:
		return r.CatalogTS
	case FieldUpdateTS:
		return r.UpdateTS
	case FieldReplicaURI:
		return r.ReplicaURI
	}
	return nil
}

// Set coerces value to the column type and stores it.
func (r *AssetRecord) Set(field Field, value any) error {
	coerced, err := field.Coerce(value)
	if err != nil {
		return err
	}

	switch field {
	case FieldID:
		r.ID = coerced.(int64)
	case FieldSize:
		r.Size = coerced.(int64)
	case FieldStatus:
		status, err := ParseStatus(coerced.(string))
		if err != nil {
			return err
		}
		r.Status = status
	default:
		r.setText(field, coerced.(string))
	}
	return nil
}

func (r *AssetRecord) setText(field Field, value string) {
	switch field {
	case FieldName:
		r.Name = value
	case FieldSubsystem:
		r.Subsystem = value
	case FieldLabel:
		r.Label = value
	case FieldPath:
		r.Path = value
	case FieldChecksum:
		r.Checksum = value
	case FieldFormat:
		r.Format = value
	case FieldDescription:
		r.Description = value
	case FieldCatalogTS:
		r.CatalogTS = value
	case FieldUpdateTS:
		r.UpdateTS = value
	case FieldReplicaURI:
		r.ReplicaURI = value
	}
}

// Values returns the record in column order, suitable as bound statement arguments.
func (r *AssetRecord) Values() []any {
	values := make([]any, 0, len(Columns))
	for _, field := range Columns {
		values = append(values, r.Get(field))
	}
	return values
}

// ScanTargets returns pointers in column order for rows.Scan.
func (r *AssetRecord) ScanTargets() []any {
	return []any{
		&r.ID, &r.Name, &r.Subsystem, &r.Label, &r.Path, &r.Checksum, &r.Size,
		&r.Format, &r.Status, &r.Description, &r.CatalogTS, &r.UpdateTS, &r.ReplicaURI,
	}
}
