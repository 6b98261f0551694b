package catalog

import "errors"

var (
	// ErrValidation is returned for malformed filters, change documents or metadata.
	// Nothing has been mutated when it is returned.
	ErrValidation = errors.New("validation error")

	// ErrConsistency is returned when a failure between the sidecar and row writes
	// leaves the two out of step. It is reported, never repaired automatically.
	ErrConsistency = errors.New("catalog row and sidecar diverged")

	// ErrSchemaConflict is returned when creating the catalog table that already exists.
	ErrSchemaConflict = errors.New("catalog table already exists")

	// ErrAssetNotFound is returned when no row has the requested identifier.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrDatabaseError is returned when a database operation fails.
	ErrDatabaseError = errors.New("database error")
)
