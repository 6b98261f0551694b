package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"assetcat/pkg/asset"
	"assetcat/pkg/log"
	"assetcat/pkg/metrics"
	"assetcat/pkg/models"
)

// InsertFile catalogs the file at sourcePath with the supplied metadata.
//
// The steps run in order: compute identity, derive placement, copy the file in
// (renaming on collision), stamp timestamps, assign the next identifier, insert
// the row and write the sidecar. The row is only committed after the copy
// succeeded. A sidecar failure after the commit is reported as ErrConsistency.
// Any checksum, size, path or identifier in md is ignored.
func (s *Store) InsertFile(sourcePath string, md *models.AssetRecord) (*models.AssetRecord, error) {
	record := models.AssetRecord{}
	if md != nil {
		record = *md
	}
	if record.Name == "" {
		record.Name = filepath.Base(sourcePath)
	}
	if record.Status == "" {
		record.Status = models.StatusValid
	}
	if err := s.validate.Struct(&record); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if err := asset.ValidateName(record.Name); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	checksum, size, err := asset.ComputeIdentity(sourcePath)
	if err != nil {
		return nil, err
	}
	relPath, err := asset.RelativePath(checksum)
	if err != nil {
		return nil, err
	}
	record.Checksum = checksum
	record.Size = size
	record.Path = relPath

	if record.ReplicaURI == "" {
		absSource, err := filepath.Abs(sourcePath)
		if err != nil {
			absSource = sourcePath
		}
		record.ReplicaURI = s.hostname + ":" + absSource
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	targetDir := s.dirOf(&record)
	name, err := s.placer.Place(sourcePath, targetDir, record.Name)
	if err != nil {
		return nil, err
	}
	if name != record.Name {
		log.Info().Str("requested", record.Name).Str("name", name).Str("path", record.Path).Msg("Stored under a new name")
	}
	record.Name = name

	now := s.timestamp()
	if record.CatalogTS == "" {
		record.CatalogTS = now
	}
	if record.UpdateTS == "" {
		record.UpdateTS = now
	}

	id, err := s.nextID()
	if err != nil {
		s.discardCopy(&record)
		return nil, err
	}
	record.ID = id

	if _, err := s.db.ExecContext(context.Background(), insertStatement(), record.Values()...); err != nil {
		s.discardCopy(&record)
		return nil, fmt.Errorf("%w: insert file_id %d: %w", ErrDatabaseError, id, err)
	}

	if err := asset.WriteSidecar(&record, targetDir, record.Name); err != nil {
		metrics.ConsistencyErrors.Inc()
		log.Error().Err(err).Int64("file_id", id).Str("path", record.Path).Str("name", record.Name).
			Msg("Row committed but sidecar write failed")
		return &record, fmt.Errorf("%w: file_id %d has no sidecar: %w", ErrConsistency, id, err)
	}

	metrics.AssetsInserted.Inc()
	metrics.BytesInserted.Add(float64(record.Size))
	log.Info().Int64("file_id", id).Str("path", record.Path).Str("name", record.Name).Msg("Cataloged file")

	return &record, nil
}

// discardCopy removes a placed copy whose row was never committed.
func (s *Store) discardCopy(record *models.AssetRecord) {
	target := s.AssetPath(record)
	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Error().Err(err).Str("target_path", target).Msg("Failed to remove uncataloged copy")
	}
}
