package git

import (
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentBranch(t *testing.T) {
	tr := setupTestRepoWithCommit(t)

	branch, err := tr.repo.CurrentBranch(tr.ctx)
	require.NoError(t, err)
	assert.Equal(t, "master", branch)

	head, err := tr.repo.repo.Head()
	require.NoError(t, err)
	require.NoError(t, tr.repo.repo.Storer.SetReference(plumbing.NewHashReference(plumbing.HEAD, head.Hash())))

	_, err = tr.repo.CurrentBranch(tr.ctx)
	assert.ErrorIs(t, err, ErrResolveFailed)
}

func TestRollback(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T) (*testRepo, string)
		tag      string
		validate func(t *testing.T, tr *testRepo, tagged string, err error)
	}{
		{
			name: "moves branch and worktree to tag",
			setup: func(t *testing.T) (*testRepo, string) {
				tr := setupTestRepoWithCommit(t)
				tr.commitFile(t, "app.txt", "v1", "feat: v1")
				tr.tag(t, "v1.0.0")
				tagged := tr.headHash(t)
				tr.commitFile(t, "app.txt", "v2", "feat: v2")
				return tr, tagged
			},
			tag: "v1.0.0",
			validate: func(t *testing.T, tr *testRepo, tagged string, err error) {
				require.NoError(t, err)
				assert.Equal(t, tagged, tr.headHash(t))
				assert.Equal(t, "v1", tr.readFile(t, "app.txt"))

				branch, err := tr.repo.CurrentBranch(tr.ctx)
				require.NoError(t, err)
				assert.Equal(t, "master", branch)

				ref, err := tr.repo.repo.Reference(plumbing.NewBranchReferenceName("master"), true)
				require.NoError(t, err)
				assert.Equal(t, tagged, ref.Hash().String())
			},
		},
		{
			name: "accepts version without prefix",
			setup: func(t *testing.T) (*testRepo, string) {
				tr := setupTestRepoWithCommit(t)
				tr.lightweightTag(t, "v1.0.0")
				tagged := tr.headHash(t)
				tr.commitFile(t, "app.txt", "v2", "feat: v2")
				return tr, tagged
			},
			tag: "1.0.0",
			validate: func(t *testing.T, tr *testRepo, tagged string, err error) {
				require.NoError(t, err)
				assert.Equal(t, tagged, tr.headHash(t))
			},
		},
		{
			name: "dirty tree performs no mutation",
			setup: func(t *testing.T) (*testRepo, string) {
				tr := setupTestRepoWithCommit(t)
				tr.tag(t, "v1.0.0")
				tr.commitFile(t, "app.txt", "v2", "feat: v2")
				require.NoError(t, tr.fs.WriteFile("app.txt", []byte("local edit"), 0o644))
				return tr, tr.headHash(t)
			},
			tag: "v1.0.0",
			validate: func(t *testing.T, tr *testRepo, head string, err error) {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrDirtyRepo)
				assert.Equal(t, head, tr.headHash(t))
				assert.Equal(t, "local edit", tr.readFile(t, "app.txt"))
			},
		},
		{
			name: "missing tag",
			setup: func(t *testing.T) (*testRepo, string) {
				tr := setupTestRepoWithCommit(t)
				return tr, tr.headHash(t)
			},
			tag: "v9.9.9",
			validate: func(t *testing.T, tr *testRepo, head string, err error) {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrRollbackFailed)
				assert.ErrorIs(t, err, ErrTagMissing)
				assert.Equal(t, head, tr.headHash(t))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, hash := tt.setup(t)
			err := tr.repo.Rollback(tr.ctx, tt.tag)
			tt.validate(t, tr, hash, err)
		})
	}
}

func TestRollback_RefusesWithUntrackedFiles(t *testing.T) {
	tr := setupTestRepoWithCommit(t)
	tr.tag(t, "v1.0.0")
	tr.commitFile(t, "app.txt", "v2", "feat: v2")

	// untracked files make the tree dirty, so rollback refuses to run
	require.NoError(t, tr.fs.WriteFile("notes.txt", []byte("keep me"), 0o644))
	err := tr.repo.Rollback(tr.ctx, "v1.0.0")
	assert.ErrorIs(t, err, ErrDirtyRepo)
	assert.Equal(t, "keep me", tr.readFile(t, "notes.txt"))
}
