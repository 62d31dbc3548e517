package router

import (
	"errors"
	"io"
	"io/fs"
	"os"
)

// FS is the filesystem the router creates destinations on.
type FS interface {
	MkdirAll(path string, perm fs.FileMode) error
	Exists(path string) (bool, error)
	Create(path string, appendMode bool) (io.WriteCloser, error)
}

// OSFS is the real filesystem.
type OSFS struct{}

// MkdirAll creates path and any missing parents.
func (OSFS) MkdirAll(path string, perm fs.FileMode) error {
	return os.MkdirAll(path, perm)
}

// Exists reports whether path exists.
func (OSFS) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Create opens path for writing, truncating it unless appendMode is set.
func (OSFS) Create(path string, appendMode bool) (io.WriteCloser, error) {
	flags := os.O_CREATE | os.O_WRONLY
	if appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	return os.OpenFile(path, flags, 0644)
}
