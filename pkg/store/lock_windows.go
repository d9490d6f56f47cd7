//go:build windows

package store

import (
	"os"
	"path/filepath"
)

// acquireLock on Windows falls back to creating the lock file without an
// advisory flock; concurrent mutators rely on the atomic rename in save.
func (s *Store) acquireLock() (func(), error) {
	if err := os.MkdirAll(filepath.Dir(s.path), DirMode); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(s.lockPath(), os.O_CREATE|os.O_RDWR, FileMode)
	if err != nil {
		return nil, err
	}

	return func() {
		_ = f.Close()
	}, nil
}
