package asset

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math/rand/v2"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"assetcat/pkg/log"
	"assetcat/pkg/metrics"
)

const (
	// FilesDir is the storage-relative directory holding the hash buckets.
	FilesDir = "files"

	placementDepth = 3
	dirPerm        = 0750
	filePerm       = 0644

	// tokenDigits is how many leading digits of the microsecond clock prefix a renamed file.
	tokenDigits = 2
	// wideTokenDigits is used once the short token has collided.
	wideTokenDigits = 6

	defaultMaxAttempts = 100
	defaultRetryDelay  = 10 * time.Microsecond
)

// DerivePlacement returns "c0/c1/c2" built from the first three checksum characters.
// Only lowercase hex is accepted, the form ComputeIdentity produces, so a
// checksum can never name a path segment such as ".." or "/".
func DerivePlacement(checksum string) (string, error) {
	if len(checksum) < placementDepth {
		return "", fmt.Errorf("%w: %q is shorter than %d characters", ErrInvalidChecksum, checksum, placementDepth)
	}
	for _, char := range checksum {
		if (char < '0' || char > '9') && (char < 'a' || char > 'f') {
			return "", fmt.Errorf("%w: %q is not lowercase hex", ErrInvalidChecksum, checksum)
		}
	}

	segments := make([]string, placementDepth)
	for i := range placementDepth {
		segments[i] = checksum[i : i+1]
	}
	return strings.Join(segments, "/"), nil
}

// RelativePath returns the storage-relative directory for a checksum, e.g. "files/a/b/c".
func RelativePath(checksum string) (string, error) {
	placement, err := DerivePlacement(checksum)
	if err != nil {
		return "", err
	}
	return path.Join(FilesDir, placement), nil
}

// ValidateName checks that name is a plain file name usable inside a placement directory.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Placer copies source files into placement directories, renaming on collision.
type Placer struct {
	now         func() time.Time
	maxAttempts uint
	retryDelay  time.Duration
}

// PlacerOption configures a Placer.
type PlacerOption func(*Placer)

// WithClock overrides the clock used to derive rename tokens.
func WithClock(now func() time.Time) PlacerOption {
	return func(p *Placer) {
		p.now = now
	}
}

// WithMaxAttempts bounds how many names are tried before giving up.
func WithMaxAttempts(attempts uint) PlacerOption {
	return func(p *Placer) {
		if attempts > 0 {
			p.maxAttempts = attempts
		}
	}
}

// NewPlacer creates a Placer with the wall clock and default attempt budget.
func NewPlacer(opts ...PlacerOption) *Placer {
	placer := &Placer{
		now:         time.Now,
		maxAttempts: defaultMaxAttempts,
		retryDelay:  defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(placer)
	}
	return placer
}

// Place copies sourcePath into targetDir/fileName and returns the name actually used.
// An existing file is never overwritten: the name is prefixed with a clock token
// and the copy retried until a free name is found or the attempt budget runs out.
func (p *Placer) Place(sourcePath, targetDir, fileName string) (string, error) {
	if err := ValidateName(fileName); err != nil {
		return "", err
	}

	if _, err := os.Stat(sourcePath); errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, sourcePath)
	}

	if err := os.MkdirAll(targetDir, dirPerm); err != nil {
		log.Error().Err(err).Str("target_dir", targetDir).Msg("Failed to create target directory")
		return "", fmt.Errorf("create %s: %w", targetDir, err)
	}

	name := fileName
	renames := 0
	err := retry.Do(
		func() error {
			err := copyExclusive(sourcePath, targetDir, name)
			if errors.Is(err, ErrNameCollision) {
				renames++
				renamed := p.disambiguate(fileName, renames)
				log.Info().
					Str("name", name).
					Str("target_dir", targetDir).
					Str("renamed", renamed).
					Msg("File name already taken, renaming")
				metrics.NameCollisions.Inc()
				name = renamed
			}
			return err
		},
		retry.Attempts(p.maxAttempts),
		retry.Delay(p.retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.RetryIf(func(err error) bool { return errors.Is(err, ErrNameCollision) }),
		retry.LastErrorOnly(true),
	)
	if errors.Is(err, ErrNameCollision) {
		return "", fmt.Errorf("%w: %s in %s after %d attempts", ErrCollisionLimit, fileName, targetDir, p.maxAttempts)
	}
	if err != nil {
		return "", err
	}

	return name, nil
}

// disambiguate prefixes name with a clock token that widens on repeated
// collisions: the leading two digits of the current microsecond first, then
// all six, then six plus a random suffix. The prefix always applies to the
// original name, so names do not grow with the number of copies.
func (p *Placer) disambiguate(name string, rename int) string {
	usec := p.now().Nanosecond() / int(time.Microsecond)

	var token string
	switch {
	case rename <= 1:
		token = strconv.Itoa(usec)
		if len(token) > tokenDigits {
			token = token[:tokenDigits]
		}
	case rename == 2:
		token = fmt.Sprintf("%0*d", wideTokenDigits, usec)
	default:
		//nolint:gosec // uniqueness only, not a secret
		token = fmt.Sprintf("%0*d%08x", wideTokenDigits, usec, rand.Uint32())
	}
	return token + "_" + name
}

// copyExclusive copies source to dir/name, failing with ErrNameCollision when
// either the data file or its sidecar name is already present.
func copyExclusive(sourcePath, dir, name string) error {
	targetPath := filepath.Join(dir, name)

	if _, err := os.Lstat(SidecarPath(dir, name)); err == nil {
		return ErrNameCollision
	}

	//nolint:gosec // sourcePath is an operator supplied file to catalog
	src, err := os.Open(sourcePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, sourcePath)
		}
		return fmt.Errorf("open %s: %w", sourcePath, err)
	}
	defer func() {
		if err := src.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close source file")
		}
	}()

	//nolint:gosec // targetPath is derived from the checksum and a validated base name
	dst, err := os.OpenFile(targetPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if errors.Is(err, fs.ErrExist) {
		return ErrNameCollision
	}
	if err != nil {
		log.Error().Err(err).Str("target_path", targetPath).Msg("Failed to create destination file")
		return fmt.Errorf("create %s: %w", targetPath, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		removePartial(targetPath)
		log.Error().Err(err).Str("target_path", targetPath).Msg("Failed to copy file")
		return fmt.Errorf("copy to %s: %w", targetPath, err)
	}

	if err := dst.Close(); err != nil {
		removePartial(targetPath)
		return fmt.Errorf("close %s: %w", targetPath, err)
	}

	return nil
}

func removePartial(targetPath string) {
	if err := os.Remove(targetPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Error().Err(err).Str("target_path", targetPath).Msg("Failed to remove partial copy")
	}
}
