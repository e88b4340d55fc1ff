// Package storage persists batch artifacts: training datasets and model
// bundles. Every write is atomic (temp file then rename) so a failed batch
// never publishes a partial artifact.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrArtifactIO marks a batch-fatal persistence failure. The step that hit it
// must abort; whatever is on disk for that run is not a valid artifact.
var ErrArtifactIO = errors.New("artifact write failed")

// WriteAtomic writes payload to path via a temp file in the same directory.
// The destination either keeps its previous content or holds the complete new
// payload, never a prefix.
func WriteAtomic(path string, payload []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrArtifactIO, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrArtifactIO, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrArtifactIO, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrArtifactIO, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrArtifactIO, err)
	}
	return nil
}
