// Package catalog owns the relational table of cataloged assets and keeps each
// row in step with the JSON sidecar stored beside the file copy.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"assetcat/pkg/asset"
	"assetcat/pkg/log"
	"assetcat/pkg/models"

	_ "modernc.org/sqlite"
)

const busyTimeoutMillis = 5000

// Store is one open handle on the catalog database. It assumes a single writer:
// the mutex serializes writers inside this process, nothing guards against
// another process computing the same next identifier.
type Store struct {
	db       *sql.DB
	mu       sync.RWMutex
	dbPath   string
	rootDir  string
	placer   Placer
	now      func() time.Time
	hostname string
	validate *validator.Validate

	skipSchema bool
}

// Placer copies a source file into a placement directory without overwriting,
// returning the name actually used. *asset.Placer is the implementation.
type Placer interface {
	Place(sourcePath, targetDir, fileName string) (string, error)
}

// Option configures a Store.
type Option func(*Store)

// WithRootDir sets the directory the storage-relative paths resolve against.
// Defaults to the directory containing the database file.
func WithRootDir(dir string) Option {
	return func(s *Store) {
		s.rootDir = dir
	}
}

// WithClock overrides the clock used for catalog_ts and update_ts.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithPlacer overrides how files are copied into the storage tree.
func WithPlacer(placer Placer) Option {
	return func(s *Store) {
		s.placer = placer
	}
}

// WithHostname sets the host part of default replica URIs.
func WithHostname(hostname string) Option {
	return func(s *Store) {
		s.hostname = hostname
	}
}

// WithoutSchema leaves a database without the catalog table as is, so the
// caller can run CreateSchema itself.
func WithoutSchema() Option {
	return func(s *Store) {
		s.skipSchema = true
	}
}

// Open opens or creates the catalog database at dbPath. A new database gets
// the catalog table; an existing one is used as is.
func Open(dbPath string, opts ...Option) (*Store, error) {
	absPath, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve %s: %w", ErrDatabaseError, dbPath, err)
	}

	store := &Store{
		dbPath:   absPath,
		rootDir:  filepath.Dir(absPath),
		placer:   asset.NewPlacer(),
		now:      time.Now,
		validate: newValidator(),
	}
	for _, opt := range opts {
		opt(store)
	}
	if store.hostname == "" {
		store.hostname, _ = os.Hostname()
	}

	if _, statErr := os.Stat(absPath); errors.Is(statErr, fs.ErrNotExist) {
		dbDir := filepath.Dir(absPath)
		if err := checkWritable(dbDir); err != nil {
			log.Error().Err(err).Str("db_dir", dbDir).Msg("Database directory is not writable")
		}
	}

	database, err := sql.Open("sqlite", absPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %w", ErrDatabaseError, err)
	}
	// One connection: every statement runs and commits immediately on the same handle.
	database.SetMaxOpenConns(1)
	store.db = database

	ctx := context.Background()
	if _, err := database.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout = %d", busyTimeoutMillis)); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("%w: failed to open %s: %w", ErrDatabaseError, absPath, err)
	}

	exists, err := store.hasTable()
	if err != nil {
		_ = database.Close()
		return nil, err
	}
	if !exists && !store.skipSchema {
		if err := store.CreateSchema(); err != nil {
			_ = database.Close()
			return nil, err
		}
	}

	return store, nil
}

func newValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return validate
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Root returns the storage root directory.
func (s *Store) Root() string {
	return s.rootDir
}

// DatabasePath returns the absolute database file path.
func (s *Store) DatabasePath() string {
	return s.dbPath
}

// AssetPath returns the absolute location of a cataloged file.
func (s *Store) AssetPath(record *models.AssetRecord) string {
	return filepath.Join(s.dirOf(record), record.Name)
}

func (s *Store) dirOf(record *models.AssetRecord) string {
	return filepath.Join(s.rootDir, filepath.FromSlash(record.Path))
}

func (s *Store) timestamp() string {
	return s.now().Format(models.TimestampLayout)
}

func (s *Store) hasTable() (bool, error) {
	var name string
	err := s.db.QueryRowContext(context.Background(),
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, TableName,
	).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}
	return true, nil
}

// CreateSchema creates the catalog table. It checks first and returns
// ErrSchemaConflict without touching an existing table.
func (s *Store) CreateSchema() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.hasTable()
	if err != nil {
		return err
	}
	if exists {
		log.Warn().Str("table", TableName).Str("db_file", s.dbPath).Msg("Catalog table already exists")
		return fmt.Errorf("%w: %s in %s", ErrSchemaConflict, TableName, s.dbPath)
	}

	if _, err := s.db.ExecContext(context.Background(), createTableStatement()); err != nil {
		return fmt.Errorf("%w: failed to create schema: %w", ErrDatabaseError, err)
	}

	log.Info().Str("table", TableName).Str("db_file", s.dbPath).Msg("Created catalog table")
	return nil
}

// NextID returns max(file_id)+1, or 0 for an empty table. It is read fresh on
// every call so rows added by another writer are respected.
func (s *Store) NextID() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.nextID()
}

func (s *Store) nextID() (int64, error) {
	var maxID sql.NullInt64
	err := s.db.QueryRowContext(context.Background(), `SELECT MAX(file_id) FROM `+TableName).Scan(&maxID)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}
	if !maxID.Valid {
		return 0, nil
	}
	return maxID.Int64 + 1, nil
}

// GetFiles returns the rows equal to every condition in filter, ordered by identifier.
func (s *Store) GetFiles(filter Filter) ([]models.AssetRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getFiles(filter)
}

func (s *Store) getFiles(filter Filter) ([]models.AssetRecord, error) {
	where, args := filter.clause()
	query := `SELECT ` + selectColumns() + ` FROM ` + TableName + where + ` ORDER BY file_id`

	rows, err := s.db.QueryContext(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}
	defer func() { _ = rows.Close() }()

	var records []models.AssetRecord
	for rows.Next() {
		var record models.AssetRecord
		if err := rows.Scan(record.ScanTargets()...); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDatabaseError, err)
		}
		if status, err := models.ParseStatus(string(record.Status)); err == nil {
			record.Status = status
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}

	return records, nil
}

// GetFile returns the row with the given identifier.
func (s *Store) GetFile(id int64) (*models.AssetRecord, error) {
	records, err := s.GetFiles(MatchByID(id))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: file_id %d", ErrAssetNotFound, id)
	}
	return &records[0], nil
}

// Count returns the number of cataloged rows.
func (s *Store) Count() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	if err := s.db.QueryRowContext(context.Background(), `SELECT COUNT(*) FROM `+TableName).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}
	return count, nil
}
