// Package scratch provides scoped temporary directories whose lifetime
// matches a single generation run. A Dir is acquired at the start of the
// run and released on every exit path, so repeated runs never leak
// staging files across invocations.
package scratch

import (
	"fmt"
	"os"
	"path/filepath"
)

// Dir is a handle to a private scratch directory. Release is idempotent,
// so callers can defer it and still release early on the success path.
type Dir struct {
	path     string
	released bool
}

// New creates a scratch directory under the system temp directory using
// the given name pattern.
func New(pattern string) (*Dir, error) {
	path, err := os.MkdirTemp("", pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %v", err)
	}

	return &Dir{path: path}, nil
}

// Path returns the root of the scratch directory.
func (d *Dir) Path() string {
	return d.path
}

// Join returns a path inside the scratch directory.
func (d *Dir) Join(elem ...string) string {
	return filepath.Join(append([]string{d.path}, elem...)...)
}

// Release deletes the scratch directory and everything beneath it.
// Calling Release more than once is a no-op.
func (d *Dir) Release() error {
	if d.released {
		return nil
	}
	d.released = true

	if err := os.RemoveAll(d.path); err != nil {
		return fmt.Errorf("failed to release scratch directory %s: %v", d.path, err)
	}

	return nil
}
