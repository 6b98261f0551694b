//go:build !unix

package catalog

import (
	"fmt"
	"os"
)

// checkWritable probes dir by creating and removing a temp file.
func checkWritable(dir string) error {
	probe, err := os.CreateTemp(dir, ".assetcat-probe-*")
	if err != nil {
		return fmt.Errorf("%s is not writable: %w", dir, err)
	}
	_ = probe.Close()
	return os.Remove(probe.Name())
}
