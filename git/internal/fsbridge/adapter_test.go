package fsbridge

import (
	"os"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chokrifaysal/releasy/fs"
	"github.com/chokrifaysal/releasy/fs/billy"
)

func TestToBillyFilesystem(t *testing.T) {
	t.Run("success with billy.FS", func(t *testing.T) {
		memFS := memfs.New()

		result, err := ToBillyFilesystem(billy.NewFS(memFS))
		require.NoError(t, err)
		assert.Equal(t, memFS, result)
	})

	t.Run("error with non-billy.FS", func(t *testing.T) {
		var other fs.Filesystem = &foreignFilesystem{}

		result, err := ToBillyFilesystem(other)
		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Contains(t, err.Error(), "filesystem must be a billy.FS")
	})
}

// foreignFilesystem satisfies fs.Filesystem without being backed by go-billy.
type foreignFilesystem struct{}

//nolint:ireturn // tests can return interfaces for mocks
func (m *foreignFilesystem) Open(string) (fs.File, error) { return nil, nil }

//nolint:ireturn // tests can return interfaces for mocks
func (m *foreignFilesystem) OpenFile(string, int, os.FileMode) (fs.File, error) {
	return nil, nil
}
func (m *foreignFilesystem) Exists(string) (bool, error)                { return false, nil }
func (m *foreignFilesystem) MkdirAll(string, os.FileMode) error         { return nil }
func (m *foreignFilesystem) ReadFile(string) ([]byte, error)            { return nil, nil }
func (m *foreignFilesystem) Remove(string) error                        { return nil }
func (m *foreignFilesystem) Rename(string, string) error                { return nil }
func (m *foreignFilesystem) Stat(string) (os.FileInfo, error)           { return nil, nil }
func (m *foreignFilesystem) WriteFile(string, []byte, os.FileMode) error { return nil }
