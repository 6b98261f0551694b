package asset

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"assetcat/pkg/log"
)

// CopyOut copies a cataloged file into destDir under its own base name and
// returns the destination path. An existing destination is left untouched.
func CopyOut(sourcePath, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, dirPerm); err != nil {
		return "", fmt.Errorf("create %s: %w", destDir, err)
	}

	//nolint:gosec // sourcePath comes from the catalog
	src, err := os.Open(sourcePath)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, sourcePath)
	}
	if err != nil {
		return "", fmt.Errorf("open %s: %w", sourcePath, err)
	}
	defer func() { _ = src.Close() }()

	destPath := filepath.Join(destDir, filepath.Base(sourcePath))
	//nolint:gosec // destPath is the operator's chosen directory plus a cataloged name
	dst, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if errors.Is(err, fs.ErrExist) {
		return "", fmt.Errorf("%w: %s", ErrDestinationExists, destPath)
	}
	if err != nil {
		return "", fmt.Errorf("create %s: %w", destPath, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		removePartial(destPath)
		return "", fmt.Errorf("copy to %s: %w", destPath, err)
	}
	if err := dst.Close(); err != nil {
		removePartial(destPath)
		return "", fmt.Errorf("close %s: %w", destPath, err)
	}

	log.Info().Str("source", sourcePath).Str("destination", destPath).Msg("Copied asset out")
	return destPath, nil
}
