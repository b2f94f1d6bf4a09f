package git

import (
	"context"
	"testing"
	"time"

	"github.com/go-git/go-git/v5/config"
	"github.com/stretchr/testify/require"

	"github.com/chokrifaysal/releasy/fs"
	fsb "github.com/chokrifaysal/releasy/fs/billy"
)

// testRepo is a helper struct that contains a test repository and its filesystem
type testRepo struct {
	repo  *Repo
	fs    fs.Filesystem
	ctx   context.Context
	clock time.Time
}

var testAuthor = Signature{Name: "Test User", Email: "test@example.com"}

// isolatedOptions returns options that never consult the host's git config or environment.
func isolatedOptions(fsys fs.Filesystem, env map[string]string) Options {
	return Options{
		FS:      fsys,
		Workdir: ".",
		GlobalConfig: func() (*config.Config, error) {
			return config.NewConfig(), nil
		},
		Getenv: func(key string) string {
			return env[key]
		},
	}
}

// setupTestRepo creates a new test repository with an in-memory filesystem
func setupTestRepo(t *testing.T) *testRepo {
	t.Helper()

	ctx := context.Background()
	memFS := fsb.NewInMemoryFS()

	opts := isolatedOptions(memFS, nil)
	repo, err := Init(ctx, &opts)
	require.NoError(t, err, "failed to initialize test repository")
	require.NotNil(t, repo, "repository should not be nil")

	return &testRepo{
		repo:  repo,
		fs:    memFS,
		ctx:   ctx,
		clock: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// setupTestRepoWithCommit creates a test repository with an initial commit
func setupTestRepoWithCommit(t *testing.T) *testRepo {
	t.Helper()

	tr := setupTestRepo(t)
	tr.commitFile(t, "test.txt", "initial content", "chore: initial commit")
	return tr
}

// commitFile writes a file, stages it and commits it one minute after the
// previous commit so commit ordering is deterministic.
func (tr *testRepo) commitFile(t *testing.T, path, content, msg string) string {
	t.Helper()

	require.NoError(t, tr.fs.WriteFile(path, []byte(content), 0o644), "failed to write %s", path)
	require.NoError(t, tr.repo.Add(tr.ctx, path), "failed to add %s", path)

	tr.clock = tr.clock.Add(time.Minute)
	who := testAuthor
	who.When = tr.clock

	sha, err := tr.repo.Commit(tr.ctx, msg, who, CommitOpts{})
	require.NoError(t, err, "failed to commit %q", msg)
	return sha
}

// tag creates an annotated version tag at HEAD.
func (tr *testRepo) tag(t *testing.T, name string) {
	t.Helper()

	who := testAuthor
	who.When = tr.clock
	require.NoError(t, tr.repo.CreateTag(tr.ctx, name, "HEAD", "Release "+name, true, who))
}

// lightweightTag creates a lightweight tag at HEAD.
func (tr *testRepo) lightweightTag(t *testing.T, name string) {
	t.Helper()

	require.NoError(t, tr.repo.CreateTag(tr.ctx, name, "HEAD", "", false, Signature{}))
}

// headHash returns the commit HEAD points to.
func (tr *testRepo) headHash(t *testing.T) string {
	t.Helper()

	ref, err := tr.repo.Resolve(tr.ctx, "HEAD")
	require.NoError(t, err)
	return ref.Hash
}

// readFile returns the content of a worktree file.
func (tr *testRepo) readFile(t *testing.T, path string) string {
	t.Helper()

	data, err := tr.fs.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
