package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"assetcat/pkg/models"
)

// Filter is a conjunction of column equality conditions.
// The zero value matches every row.
type Filter struct {
	conditions []condition
}

// condition matches field against value, or against any of values when set.
type condition struct {
	field  models.Field
	value  any
	values []any
}

// Where returns a copy of f with an additional equality condition.
func (f Filter) Where(field models.Field, value any) (Filter, error) {
	if _, err := models.ParseField(string(field)); err != nil {
		return f, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	coerced, err := field.Coerce(value)
	if err != nil {
		return f, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	cond := condition{field: field, value: coerced}
	if field == models.FieldStatus {
		status, err := models.ParseStatus(coerced.(string))
		if err != nil {
			return f, fmt.Errorf("%w: %w", ErrValidation, err)
		}
		cond.value = string(status)
		// Rows written by other tools may carry the spaced spelling.
		if spellings := status.Spellings(); len(spellings) > 1 {
			for _, spelling := range spellings {
				cond.values = append(cond.values, spelling)
			}
		}
	}

	conditions := make([]condition, len(f.conditions), len(f.conditions)+1)
	copy(conditions, f.conditions)
	f.conditions = append(conditions, cond)
	return f, nil
}

// ParseFilter builds a filter from user supplied field/value pairs.
func ParseFilter(values map[string]string) (Filter, error) {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var (
		err    error
		filter Filter
	)
	for _, key := range keys {
		field, parseErr := models.ParseField(key)
		if parseErr != nil {
			return Filter{}, fmt.Errorf("%w: %w", ErrValidation, parseErr)
		}
		if filter, err = filter.Where(field, values[key]); err != nil {
			return Filter{}, err
		}
	}
	return filter, nil
}

// MatchByID returns a filter selecting a single identifier.
func MatchByID(id int64) Filter {
	return Filter{conditions: []condition{{field: models.FieldID, value: id}}}
}

// Len returns the number of conditions.
func (f Filter) Len() int {
	return len(f.conditions)
}

// clause renders the WHERE clause with placeholders. Column names come from the
// fixed column set; values are returned as bound arguments.
func (f Filter) clause() (string, []any) {
	if len(f.conditions) == 0 {
		return "", nil
	}

	parts := make([]string, 0, len(f.conditions))
	args := make([]any, 0, len(f.conditions))
	for _, cond := range f.conditions {
		if len(cond.values) > 0 {
			placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cond.values)), ", ")
			parts = append(parts, string(cond.field)+" IN ("+placeholders+")")
			args = append(args, cond.values...)
			continue
		}
		parts = append(parts, string(cond.field)+" = ?")
		args = append(args, cond.value)
	}
	return " WHERE " + strings.Join(parts, " AND "), args
}

// protectedFields are set by the catalog itself and cannot be changed by an update.
var protectedFields = map[models.Field]string{
	models.FieldID:        "identifiers are assigned once",
	models.FieldChecksum:  "checksum is immutable",
	models.FieldPath:      "path is derived from the checksum",
	models.FieldName:      "name is fixed once placed",
	models.FieldCatalogTS: "catalog_ts is set once at creation",
	models.FieldUpdateTS:  "update_ts is refreshed by every update",
}

// Changes is a validated partial field map for updates.
type Changes struct {
	values map[models.Field]any
}

// NewChanges validates field names and value types.
func NewChanges(values map[string]any) (Changes, error) {
	changes := Changes{values: make(map[models.Field]any, len(values))}

	for key, value := range values {
		field, err := models.ParseField(key)
		if err != nil {
			return Changes{}, fmt.Errorf("%w: %w", ErrValidation, err)
		}
		if reason, ok := protectedFields[field]; ok {
			return Changes{}, fmt.Errorf("%w: cannot change %s: %s", ErrValidation, field, reason)
		}

		coerced, err := field.Coerce(value)
		if err != nil {
			return Changes{}, fmt.Errorf("%w: %w", ErrValidation, err)
		}
		if field == models.FieldStatus {
			status, err := models.ParseStatus(coerced.(string))
			if err != nil {
				return Changes{}, fmt.Errorf("%w: %w", ErrValidation, err)
			}
			coerced = string(status)
		}
		changes.values[field] = coerced
	}

	return changes, nil
}

// ParseChanges decodes a JSON object into validated changes.
func ParseChanges(data []byte) (Changes, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var values map[string]any
	if err := decoder.Decode(&values); err != nil {
		return Changes{}, fmt.Errorf("%w: change document is not a JSON object: %w", ErrValidation, err)
	}
	if values == nil {
		return Changes{}, fmt.Errorf("%w: change document is null", ErrValidation)
	}
	if decoder.More() {
		return Changes{}, fmt.Errorf("%w: trailing data after change document", ErrValidation)
	}

	return NewChanges(values)
}

// Retirement is the change set applied by RetireFiles.
func Retirement() Changes {
	return Changes{values: map[models.Field]any{models.FieldStatus: string(models.StatusExpired)}}
}

// Len returns the number of changed fields.
func (c Changes) Len() int {
	return len(c.values)
}

// fields returns the changed fields in column order.
func (c Changes) fields() []models.Field {
	fields := make([]models.Field, 0, len(c.values))
	for _, field := range models.Columns {
		if _, ok := c.values[field]; ok {
			fields = append(fields, field)
		}
	}
	return fields
}
