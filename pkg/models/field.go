package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Field names one catalog column. Only fields in Columns may appear in
// statements, so user supplied keys are always checked with ParseField first.
type Field string

const (
	FieldID          Field = "file_id"
	FieldName        Field = "name"
	FieldSubsystem   Field = "subsystem"
	FieldLabel       Field = "label"
	FieldPath        Field = "path"
	FieldChecksum    Field = "checksum"
	FieldSize        Field = "size"
	FieldFormat      Field = "format"
	FieldStatus      Field = "status"
	FieldDescription Field = "description"
	FieldCatalogTS   Field = "catalog_ts"
	FieldUpdateTS    Field = "update_ts"
	FieldReplicaURI  Field = "replica_uri"
)

// Columns lists the catalog columns in table order.
var Columns = []Field{
	FieldID, FieldName, FieldSubsystem, FieldLabel, FieldPath, FieldChecksum, FieldSize,
	FieldFormat, FieldStatus, FieldDescription, FieldCatalogTS, FieldUpdateTS, FieldReplicaURI,
}

var (
	// ErrUnknownField is returned for a key that is not a catalog column.
	ErrUnknownField = errors.New("unknown field")

	// ErrInvalidValue is returned when a value cannot be represented in the column type.
	ErrInvalidValue = errors.New("invalid field value")
)

// ParseField maps a user supplied key to a catalog column.
func ParseField(name string) (Field, error) {
	for _, field := range Columns {
		if string(field) == name {
			return field, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// IsInteger reports whether the column stores integers.
func (f Field) IsInteger() bool {
	return f == FieldID || f == FieldSize
}

// SQLType returns the column declaration used in the schema.
func (f Field) SQLType() string {
	switch f {
	case FieldID:
		return "INTEGER PRIMARY KEY"
	case FieldName, FieldSubsystem, FieldLabel, FieldPath:
		return "TEXT NOT NULL"
	case FieldSize:
		return "INTEGER"
	default:
		return "TEXT"
	}
}

// Coerce converts value to int64 for integer columns and string for text columns.
// Integer columns accept integral numbers and numeric strings; text columns accept strings only.
func (f Field) Coerce(value any) (any, error) {
	if f.IsInteger() {
		n, err := toInt64(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s expects an integer, got %v", ErrInvalidValue, f, value)
		}
		return n, nil
	}

	switch v := value.(type) {
	case string:
		return v, nil
	case Status:
		return string(v), nil
	default:
		return nil, fmt.Errorf("%w: %s expects a string, got %v", ErrInvalidValue, f, value)
	}
}

func toInt64(value any) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, ErrInvalidValue
		}
		return int64(v), nil
	case json.Number:
		return v.Int64()
	case string:
		return strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	default:
		return 0, ErrInvalidValue
	}
}
