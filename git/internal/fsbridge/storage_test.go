package fsbridge

import (
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStorage(t *testing.T) {
	for _, size := range []int{-1, 0, 500} {
		memFS := memfs.New()
		storage := NewStorage(memFS, size)
		require.NotNil(t, storage)
		assert.Equal(t, memFS, storage.Filesystem())
	}
}
