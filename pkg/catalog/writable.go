//go:build unix

package catalog

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// checkWritable reports whether the current user may create files in dir.
func checkWritable(dir string) error {
	if err := unix.Access(dir, unix.W_OK); err != nil {
		return fmt.Errorf("%s is not writable: %w", dir, err)
	}
	return nil
}
