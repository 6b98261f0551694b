package asset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"assetcat/pkg/models"
)

// SidecarSuffix is appended to the data file name to form the sidecar name.
const SidecarSuffix = ".json"

const sidecarIndent = "    "

// SidecarPath returns the sidecar location for dir/fileName.
func SidecarPath(dir, fileName string) string {
	return filepath.Join(dir, fileName+SidecarSuffix)
}

// WriteSidecar serializes the full record as indented JSON to targetDir/fileName.json,
// replacing any existing sidecar. The write goes through a temp file, fsync and rename
// so a reader never observes a half-written document.
func WriteSidecar(record *models.AssetRecord, targetDir, fileName string) error {
	if err := ValidateName(fileName); err != nil {
		return err
	}

	data, err := json.MarshalIndent(record, "", sidecarIndent)
	if err != nil {
		return fmt.Errorf("encode sidecar for %s: %w", fileName, err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(targetDir, dirPerm); err != nil {
		return fmt.Errorf("create %s: %w", targetDir, err)
	}

	tmp, err := os.CreateTemp(targetDir, "."+fileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp sidecar in %s: %w", targetDir, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write sidecar %s: %w", tmpPath, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("sync sidecar %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close sidecar %s: %w", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, filePerm); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("chmod sidecar %s: %w", tmpPath, err)
	}

	target := SidecarPath(targetDir, fileName)
	if err := os.Rename(tmpPath, target); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename sidecar to %s: %w", target, err)
	}

	return nil
}

// ReadSidecar loads the sidecar stored next to targetDir/fileName.
func ReadSidecar(targetDir, fileName string) (*models.AssetRecord, error) {
	target := SidecarPath(targetDir, fileName)

	//nolint:gosec // target is built from a cataloged path and name
	data, err := os.ReadFile(target)
	if err != nil {
		return nil, fmt.Errorf("read sidecar %s: %w", target, err)
	}

	var record models.AssetRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decode sidecar %s: %w", target, err)
	}
	return &record, nil
}
