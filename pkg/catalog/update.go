package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"assetcat/pkg/asset"
	"assetcat/pkg/log"
	"assetcat/pkg/metrics"
	"assetcat/pkg/models"
)

// UpdateFile applies changes to the sidecar and then the row of record.ID,
// refreshing update_ts. On success record holds the new values. A missing row
// is reported as ErrAssetNotFound before anything is written. If the row
// update fails after the sidecar was rewritten, ErrConsistency is returned.
func (s *Store) UpdateFile(record *models.AssetRecord, changes Changes) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.updateFile(record, changes)
}

func (s *Store) updateFile(record *models.AssetRecord, changes Changes) error {
	updated := *record
	fields := changes.fields()
	for _, field := range fields {
		if err := updated.Set(field, changes.values[field]); err != nil {
			return fmt.Errorf("%w: %w", ErrValidation, err)
		}
	}
	updated.UpdateTS = s.timestamp()
	fields = append(fields, models.FieldUpdateTS)

	exists, err := s.rowExists(updated.ID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("update file_id %d: %w", updated.ID, ErrAssetNotFound)
	}

	log.Info().Int64("file_id", updated.ID).Str("path", updated.Path).Str("name", updated.Name).Msg("Updating file")

	if err := asset.WriteSidecar(&updated, s.dirOf(&updated), updated.Name); err != nil {
		return fmt.Errorf("update file_id %d: %w", updated.ID, err)
	}

	assignments := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields)+1)
	for _, field := range fields {
		assignments = append(assignments, string(field)+" = ?")
		args = append(args, updated.Get(field))
	}
	args = append(args, updated.ID)

	statement := `UPDATE ` + TableName + ` SET ` + strings.Join(assignments, ", ") + ` WHERE file_id = ?`
	result, err := s.db.ExecContext(context.Background(), statement, args...)
	if err != nil {
		metrics.ConsistencyErrors.Inc()
		return fmt.Errorf("%w: sidecar of file_id %d rewritten but row update failed: %w", ErrConsistency, updated.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}
	if affected == 0 {
		metrics.ConsistencyErrors.Inc()
		return fmt.Errorf("%w: sidecar of file_id %d rewritten but %w", ErrConsistency, updated.ID, ErrAssetNotFound)
	}

	*record = updated
	metrics.AssetsUpdated.WithLabelValues(string(updated.Status)).Inc()
	return nil
}

func (s *Store) rowExists(id int64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(context.Background(), `SELECT 1 FROM `+TableName+` WHERE file_id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: look up file_id %d: %w", ErrDatabaseError, id, err)
	}
	return true, nil
}

// UpdateFiles applies changes to every row matching filter and returns how many
// rows were updated. Rows are updated one at a time; a failure stops the batch
// and leaves earlier rows updated.
func (s *Store) UpdateFiles(filter Filter, changes Changes) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.getFiles(filter)
	if err != nil {
		return 0, err
	}

	for i := range records {
		if err := s.updateFile(&records[i], changes); err != nil {
			log.Error().Err(err).Int64("file_id", records[i].ID).Int("updated", i).Msg("Batch update stopped")
			return i, err
		}
	}

	return len(records), nil
}

// RetireFiles marks every row matching filter as expired.
func (s *Store) RetireFiles(filter Filter) (int, error) {
	return s.UpdateFiles(filter, Retirement())
}
