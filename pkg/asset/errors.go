package asset

import "errors"

var (
	// ErrNotFound is returned when the source file does not exist.
	ErrNotFound = errors.New("source file not found")

	// ErrNotRegularFile is returned when the source exists but is not a regular file.
	ErrNotRegularFile = errors.New("source is not a regular file")

	// ErrInvalidChecksum is returned when a checksum is too short or not lowercase hex.
	ErrInvalidChecksum = errors.New("invalid checksum")

	// ErrInvalidName is returned when a file name is not a plain base name.
	ErrInvalidName = errors.New("invalid file name")

	// ErrNameCollision is returned when the destination name is already taken.
	ErrNameCollision = errors.New("file name already taken")

	// ErrCollisionLimit is returned when no free name was found within the attempt budget.
	ErrCollisionLimit = errors.New("could not find a free file name")

	// ErrDestinationExists is returned by CopyOut when it would overwrite a file.
	ErrDestinationExists = errors.New("destination file already exists")
)
