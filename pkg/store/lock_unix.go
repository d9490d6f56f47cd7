//go:build !windows

package store

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// acquireLock takes an exclusive advisory lock on the vault's lock file,
// serializing mutators across invocations. Readers never lock: they only see
// complete files because save renames into place. The lock file itself
// stays on disk; only the flock is released.
func (s *Store) acquireLock() (func(), error) {
	if err := os.MkdirAll(filepath.Dir(s.path), DirMode); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(s.lockPath(), os.O_CREATE|os.O_RDWR, FileMode)
	if err != nil {
		return nil, err
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		f.Close()
		return nil, err
	}

	return func() {
		_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
		_ = f.Close()
	}, nil
}
