// Package fsbridge adapts the releasy filesystem abstraction to go-billy so
// go-git can operate on OS-backed and in-memory filesystems alike.
package fsbridge

import (
	"fmt"

	"github.com/go-git/go-billy/v5"

	"github.com/chokrifaysal/releasy/fs"
	fsb "github.com/chokrifaysal/releasy/fs/billy"
)

// ToBillyFilesystem converts an fs.Filesystem to a billy.Filesystem.
// The passed filesystem must be a *billy.FS from the fs/billy package.
//
//nolint:ireturn // returns interface as required by billy.Filesystem interface
func ToBillyFilesystem(fsys fs.Filesystem) (billy.Filesystem, error) {
	billyFS, ok := fsys.(*fsb.FS)
	if !ok {
		return nil, fmt.Errorf("filesystem must be a billy.FS from fs/billy package, got %T", fsys)
	}
	return billyFS.Raw(), nil
}
