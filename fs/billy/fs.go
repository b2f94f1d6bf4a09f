// Package billy implements the releasy filesystem abstraction on top of
// go-billy, giving OS-backed and in-memory filesystems the same API.
package billy

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	parentfs "github.com/chokrifaysal/releasy/fs"
)

// FS adapts a go-billy filesystem to parentfs.Filesystem.
type FS struct {
	fs billy.Filesystem
}

var _ parentfs.Filesystem = (*FS)(nil)

// pathError prefixes err with the operation and path. Every error keeps
// its cause, so errors.Is(err, os.ErrNotExist) still works.
func pathError(op, path string, err error) error {
	return fmt.Errorf("billy: %s %q: %w", op, path, err)
}

// Exists reports whether path exists. Errors other than not-exist are returned.
func (b *FS) Exists(path string) (bool, error) {
	_, err := b.fs.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, pathError("stat", path, err)
	}
}

func (b *FS) MkdirAll(path string, perm os.FileMode) error {
	if err := b.fs.MkdirAll(path, perm); err != nil {
		return pathError("mkdir", path, err)
	}
	return nil
}

// Open opens name read-only.
//
//nolint:ireturn // callers only need the narrow File interface.
func (b *FS) Open(name string) (parentfs.File, error) {
	return b.OpenFile(name, os.O_RDONLY, 0)
}

// OpenFile opens name with the given flags, creating it with perm when
// os.O_CREATE is set. Parent directories are not created.
//
//nolint:ireturn // callers only need the narrow File interface.
func (b *FS) OpenFile(name string, flag int, perm os.FileMode) (parentfs.File, error) {
	f, err := b.fs.OpenFile(name, flag, perm)
	if err != nil {
		return nil, pathError("open", name, err)
	}
	return &file{File: f}, nil
}

func (b *FS) ReadFile(path string) ([]byte, error) {
	data, err := util.ReadFile(b.fs, path)
	if err != nil {
		return nil, pathError("read", path, err)
	}
	return data, nil
}

func (b *FS) Remove(name string) error {
	if err := b.fs.Remove(name); err != nil {
		return pathError("remove", name, err)
	}
	return nil
}

// Rename moves oldpath over newpath, replacing an existing file.
func (b *FS) Rename(oldpath, newpath string) error {
	if err := b.fs.Rename(oldpath, newpath); err != nil {
		return fmt.Errorf("billy: rename %q to %q: %w", oldpath, newpath, err)
	}
	return nil
}

func (b *FS) Stat(name string) (os.FileInfo, error) {
	info, err := b.fs.Stat(name)
	if err != nil {
		return nil, pathError("stat", name, err)
	}
	return info, nil
}

func (b *FS) WriteFile(filename string, data []byte, perm os.FileMode) error {
	if err := util.WriteFile(b.fs, filename, data, perm); err != nil {
		return pathError("write", filename, err)
	}
	return nil
}

// Raw returns the underlying go-billy filesystem, which go-git consumes
// directly.
//
//nolint:ireturn // go-git takes the billy interface.
func (b *FS) Raw() billy.Filesystem {
	return b.fs
}

// NewFS creates a new FS using the given go-billy filesystem.
func NewFS(fsys billy.Filesystem) *FS {
	return &FS{fs: fsys}
}

// NewInMemoryFS creates a new in-memory filesystem.
func NewInMemoryFS() *FS {
	return &FS{fs: memfs.New()}
}

// NewOSFS creates a new OS filesystem rooted at path.
func NewOSFS(path string) *FS {
	return &FS{fs: osfs.New(path)}
}

// file embeds the billy handle for Read, Write and Name, and adds error
// context and Sync on top.
type file struct {
	billy.File
}

// syncer is implemented by OS-backed handles; in-memory files have nothing
// to flush.
type syncer interface {
	Sync() error
}

func (f *file) Read(p []byte) (int, error) {
	n, err := f.File.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, pathError("read", f.Name(), err)
	}
	return n, err
}

func (f *file) Write(p []byte) (int, error) {
	n, err := f.File.Write(p)
	if err != nil {
		return n, pathError("write", f.Name(), err)
	}
	return n, nil
}

// Sync flushes the file to stable storage when the backend supports it.
func (f *file) Sync() error {
	s, ok := f.File.(syncer)
	if !ok {
		return nil
	}
	if err := s.Sync(); err != nil {
		return pathError("sync", f.Name(), err)
	}
	return nil
}

func (f *file) Close() error {
	if err := f.File.Close(); err != nil {
		return pathError("close", f.Name(), err)
	}
	return nil
}
