package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"assetcat/pkg/models"
)

// derivedFields are computed by InsertFile and silently dropped from user metadata.
var derivedFields = map[models.Field]bool{
	models.FieldID:       true,
	models.FieldChecksum: true,
	models.FieldPath:     true,
	models.FieldSize:     true,
}

// MetadataFromMap builds insert metadata from user supplied key/value pairs.
// Unknown keys and values of the wrong type are rejected with ErrValidation.
func MetadataFromMap(values map[string]any) (*models.AssetRecord, error) {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	record := &models.AssetRecord{}
	for _, key := range keys {
		field, err := models.ParseField(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrValidation, err)
		}
		if derivedFields[field] {
			continue
		}
		if err := record.Set(field, values[key]); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrValidation, err)
		}
	}
	return record, nil
}

// ParseMetadata decodes a JSON object into insert metadata.
func ParseMetadata(data []byte) (*models.AssetRecord, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var values map[string]any
	if err := decoder.Decode(&values); err != nil {
		return nil, fmt.Errorf("%w: metadata is not a JSON object: %w", ErrValidation, err)
	}
	return MetadataFromMap(values)
}
