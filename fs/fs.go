// Package fs defines the filesystem abstraction releasy reads and writes
// through. Status files, changelogs, configuration and git repositories all
// live behind this interface so that they can be backed by the OS or by memory.
package fs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// File is an open file handle.
type File interface {
	io.ReadWriteCloser
	Name() string

	// Sync commits written data to stable storage. Backends without
	// durable storage return nil.
	Sync() error
}

// Filesystem is the read/write filesystem used across releasy.
type Filesystem interface {
	Exists(path string) (bool, error)
	MkdirAll(path string, perm os.FileMode) error
	Open(name string) (File, error)
	OpenFile(name string, flag int, perm os.FileMode) (File, error)
	ReadFile(path string) ([]byte, error)
	Remove(name string) error
	Rename(oldpath, newpath string) error
	Stat(name string) (os.FileInfo, error)
	WriteFile(filename string, data []byte, perm os.FileMode) error
}

// GetAbs returns path as an absolute path. Absolute paths are returned
// unchanged; relative paths are resolved against the working directory.
func GetAbs(path string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("fs: abs %q: %w", path, err)
	}
	return abs, nil
}

// WriteFileAtomic writes data to a sibling temporary file, syncs it and
// renames it over filename, creating parent directories as needed. Readers
// see either the old content or the new, never a partial write.
func WriteFileAtomic(fsys Filesystem, filename string, data []byte, perm os.FileMode) error {
	if dir := filepath.Dir(filename); dir != "." && dir != "" {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	tmp := filename + ".tmp"
	if err := writeSynced(fsys, tmp, data, perm); err != nil {
		_ = fsys.Remove(tmp)
		return err
	}
	if err := fsys.Rename(tmp, filename); err != nil {
		_ = fsys.Remove(tmp)
		return err
	}
	return nil
}

func writeSynced(fsys Filesystem, name string, data []byte, perm os.FileMode) error {
	f, err := fsys.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
