package server

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"assetcat/pkg/asset"
	"assetcat/pkg/log"
)

// resolveIngestDir returns dir as an absolute path with symlinks resolved.
// An empty dir stays empty and disables ingest.
func resolveIngestDir(dir string) string {
	if dir == "" {
		return ""
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		log.Warn().Err(err).Str("ingest_dir", dir).Msg("Cannot resolve ingest directory")
		return filepath.Clean(dir)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		log.Warn().Err(err).Str("ingest_dir", abs).Msg("Cannot resolve ingest directory links")
		return abs
	}
	return resolved
}

// confineSource resolves source against the ingest directory and returns the
// real path to read. Relative sources are taken relative to the ingest
// directory. Anything resolving outside it, through ".." or a symlink, is refused.
func (cs *CatalogServer) confineSource(source string) (string, error) {
	if cs.ingestDir == "" {
		return "", errIngestDisabled
	}

	if !filepath.IsAbs(source) {
		source = filepath.Join(cs.ingestDir, source)
	}
	source = filepath.Clean(source)

	resolved, err := filepath.EvalSymlinks(source)
	if errors.Is(err, fs.ErrNotExist) {
		if !within(cs.ingestDir, source) {
			return "", fmt.Errorf("%w: %s", errOutsideIngest, source)
		}
		return "", fmt.Errorf("%w: %s", asset.ErrNotFound, source)
	}
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", source, err)
	}
	if !within(cs.ingestDir, resolved) {
		return "", fmt.Errorf("%w: %s", errOutsideIngest, source)
	}

	return resolved, nil
}

// within reports whether path is root or below it. Both must be clean and absolute.
func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
