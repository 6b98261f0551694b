// Package asset computes a file's content identity, derives its storage
// placement from that identity and keeps the JSON sidecar next to each copy.
package asset

import (
	"crypto/md5" //nolint:gosec // md5 is the catalog's content identity, not a security boundary
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"assetcat/pkg/log"
)

// ComputeIdentity streams the file through MD5 and returns the hex digest and byte size.
func ComputeIdentity(sourcePath string) (string, int64, error) {
	info, err := os.Stat(sourcePath)
	if errors.Is(err, fs.ErrNotExist) {
		log.Error().Str("source", sourcePath).Msg("Source file does not exist")
		return "", 0, fmt.Errorf("%w: %s", ErrNotFound, sourcePath)
	}
	if err != nil {
		return "", 0, fmt.Errorf("stat %s: %w", sourcePath, err)
	}
	if !info.Mode().IsRegular() {
		return "", 0, fmt.Errorf("%w: %s", ErrNotRegularFile, sourcePath)
	}

	//nolint:gosec // sourcePath is an operator supplied file to catalog
	file, err := os.Open(sourcePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", 0, fmt.Errorf("%w: %s", ErrNotFound, sourcePath)
		}
		return "", 0, fmt.Errorf("open %s: %w", sourcePath, err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.Error().Err(err).Str("source", sourcePath).Msg("Failed to close source file")
		}
	}()

	hasher := md5.New() //nolint:gosec // see import
	size, err := io.Copy(hasher, file)
	if err != nil {
		return "", 0, fmt.Errorf("read %s: %w", sourcePath, err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), size, nil
}
