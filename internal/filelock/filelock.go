// Package filelock provides cross-process file locks and atomic writes for
// state and export files that other processes may read concurrently.
package filelock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

const (
	lockFileSuffix        = ".lock"
	temporaryFilePattern  = ".tmp-*"
	directoryPermissions  = 0o755
	defaultFilePermission = 0o644
)

// FileLock wraps a flock lock file.
type FileLock struct {
	flock *flock.Flock
	path  string
}

// NewFileLock creates a lock backed by the file at path.
func NewFileLock(path string) *FileLock {
	return &FileLock{
		flock: flock.New(path),
		path:  path,
	}
}

// Lock acquires an exclusive lock, blocking until it is available.
func (fileLock *FileLock) Lock() error {
	if err := fileLock.flock.Lock(); err != nil {
		return fmt.Errorf("acquire lock on %s: %w", fileLock.path, err)
	}
	return nil
}

// RLock acquires a shared lock, blocking until it is available.
func (fileLock *FileLock) RLock() error {
	if err := fileLock.flock.RLock(); err != nil {
		return fmt.Errorf("acquire shared lock on %s: %w", fileLock.path, err)
	}
	return nil
}

// Unlock releases the lock.
func (fileLock *FileLock) Unlock() error {
	if err := fileLock.flock.Unlock(); err != nil {
		return fmt.Errorf("release lock on %s: %w", fileLock.path, err)
	}
	return nil
}

// LockPath returns the lock file path guarding path.
func LockPath(path string) string {
	return path + lockFileSuffix
}

// AtomicWrite writes data to a temporary file in the target directory and
// renames it over path, so readers never observe a partial file.
func AtomicWrite(path string, data []byte) error {
	directory := filepath.Dir(path)
	if err := os.MkdirAll(directory, directoryPermissions); err != nil {
		return fmt.Errorf("create directory %s: %w", directory, err)
	}

	temporaryFile, err := os.CreateTemp(directory, temporaryFilePattern)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	temporaryPath := temporaryFile.Name()

	defer func() {
		if temporaryFile != nil {
			temporaryFile.Close()
			os.Remove(temporaryPath)
		}
	}()

	if _, err := temporaryFile.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := temporaryFile.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := temporaryFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(temporaryPath, defaultFilePermission); err != nil {
		return fmt.Errorf("set permissions: %w", err)
	}
	if err := os.Rename(temporaryPath, path); err != nil {
		return fmt.Errorf("rename temp file to %s: %w", path, err)
	}

	temporaryFile = nil
	return nil
}

// LockAndWrite performs AtomicWrite while holding the lock at LockPath(path).
func LockAndWrite(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), directoryPermissions); err != nil {
		return fmt.Errorf("create directory %s: %w", filepath.Dir(path), err)
	}
	lock := NewFileLock(LockPath(path))
	if err := lock.Lock(); err != nil {
		return err
	}
	defer lock.Unlock()
	return AtomicWrite(path, data)
}

// ReadShared reads path while holding a shared lock at LockPath(path), so it
// never interleaves with LockAndWrite. A missing directory is reported as the
// os.ErrNotExist error of os.Stat and no lock file is created.
func ReadShared(path string) ([]byte, error) {
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		return nil, err
	}
	lock := NewFileLock(LockPath(path))
	if err := lock.RLock(); err != nil {
		return nil, err
	}
	defer lock.Unlock()
	return os.ReadFile(path)
}
