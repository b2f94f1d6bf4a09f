package release

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rconfig "github.com/chokrifaysal/releasy/config"
	"github.com/chokrifaysal/releasy/deploy"
	"github.com/chokrifaysal/releasy/fs"
	fsb "github.com/chokrifaysal/releasy/fs/billy"
	"github.com/chokrifaysal/releasy/git"
	"github.com/chokrifaysal/releasy/semver"
)

type fakeDeployer struct {
	target       string
	executed     []string
	failExecute  error
	failRollback error
	rollbacks    int
}

func (f *fakeDeployer) SetTarget(_ context.Context, name string) error {
	f.target = name
	return nil
}

func (f *fakeDeployer) Execute(_ context.Context, version string) error {
	f.executed = append(f.executed, version)
	return f.failExecute
}

func (f *fakeDeployer) Rollback(context.Context) error {
	f.rollbacks++
	return f.failRollback
}

type fixture struct {
	repo  *git.Repo
	fs    fs.Filesystem
	clock time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	memFS := fsb.NewInMemoryFS()
	repo, err := git.Init(context.Background(), &git.Options{
		FS: memFS,
		GlobalConfig: func() (*config.Config, error) {
			return config.NewConfig(), nil
		},
		Getenv: func(string) string { return "" },
	})
	require.NoError(t, err)

	return &fixture{
		repo:  repo,
		fs:    memFS,
		clock: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (f *fixture) commit(t *testing.T, path, msg string) {
	t.Helper()

	ctx := context.Background()
	require.NoError(t, f.fs.WriteFile(path, []byte(msg), 0o644))
	require.NoError(t, f.repo.Add(ctx, path))

	f.clock = f.clock.Add(time.Minute)
	_, err := f.repo.Commit(ctx, msg, git.Signature{Name: "Dev", Email: "dev@example.com", When: f.clock}, git.CommitOpts{})
	require.NoError(t, err)
}

func (f *fixture) tag(t *testing.T, name string) {
	t.Helper()

	who := git.Signature{Name: "Dev", Email: "dev@example.com", When: f.clock}
	require.NoError(t, f.repo.CreateTag(context.Background(), name, "HEAD", "Release "+name, true, who))
}

func (f *fixture) options(cfg rconfig.Release, d Deployer) Options {
	return Options{
		Repo:      f.repo,
		Deployer:  d,
		FS:        f.fs,
		Config:    cfg,
		UserName:  "Release Bot",
		UserEmail: "bot@example.com",
		Now: func() time.Time {
			return time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
		},
	}
}

func defaultRelease() rconfig.Release {
	return rconfig.Default().Release
}

func TestRun_FullRelease(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.commit(t, "core.txt", "feat(core): x")
	f.commit(t, "fix.txt", "fix: y")
	f.tag(t, "v1.0.0")
	f.commit(t, "z.txt", "feat!: z")

	cfg := defaultRelease()
	cfg.Type = "minor"
	cfg.DeployTarget = "staging"
	d := &fakeDeployer{}

	r, err := New(f.options(cfg, d))
	require.NoError(t, err)

	res, err := r.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, "1.0.0", res.Bump.Previous.String())
	assert.Equal(t, "1.1.0", res.Bump.Current.String())
	assert.Equal(t, "v1.1.0", res.Tag)
	require.NoError(t, f.repo.VerifyTag(ctx, "v1.1.0"))

	latest, err := f.repo.LatestVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1.1.0", latest.String())

	assert.Equal(t, "1.0.0", res.Entry.PreviousVersion)
	require.Len(t, res.Entry.Commits, 1)
	assert.True(t, res.Entry.Commits[0].IsBreaking)

	assert.Equal(t, "CHANGELOG.md", res.ChangelogPath)
	data, err := f.fs.ReadFile("CHANGELOG.md")
	require.NoError(t, err)
	assert.Contains(t, string(data), "## [1.1.0] - 2024-07-01\n")
	assert.Contains(t, string(data), "### feat\n\n* z [BREAKING]\n")

	assert.Equal(t, "staging", d.target)
	assert.Equal(t, []string{"1.1.0"}, d.executed)
	assert.True(t, res.Deployed)
	assert.Zero(t, d.rollbacks)
}

func TestRun_FirstRelease(t *testing.T) {
	f := newFixture(t)
	f.commit(t, "a.txt", "feat: first feature")

	r, err := New(f.options(defaultRelease(), nil))
	require.NoError(t, err)

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0.0.0", res.Bump.Previous.String())
	assert.Equal(t, "0.0.1", res.Bump.Current.String())
	assert.Empty(t, res.Entry.PreviousVersion)
	assert.Len(t, res.Entry.Commits, 1)
}

func TestRun_CustomVersion(t *testing.T) {
	f := newFixture(t)
	f.commit(t, "a.txt", "fix: a")
	f.tag(t, "v1.2.3")
	f.commit(t, "b.txt", "fix: b")

	cfg := defaultRelease()
	cfg.Type = "custom"
	cfg.CustomVersion = "2.0.0-rc.1"

	r, err := New(f.options(cfg, nil))
	require.NoError(t, err)

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, semver.MustParse("2.0.0-rc.1"), res.Bump.Current)
	assert.Equal(t, "v2.0.0-rc.1", res.Tag)

	cfg.CustomVersion = "1.0.0"
	r, err = New(f.options(cfg, nil))
	require.NoError(t, err)
	_, err = r.Run(context.Background())
	assert.ErrorIs(t, err, semver.ErrInvalidIncrement)
}

func TestRun_DryRun(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.commit(t, "a.txt", "feat: a")
	f.tag(t, "v1.0.0")
	f.commit(t, "b.txt", "fix: b")

	cfg := defaultRelease()
	cfg.BuildCommand = "exit 1"

	opts := f.options(cfg, nil)
	opts.DryRun = true
	r, err := New(opts)
	require.NoError(t, err)

	res, err := r.Run(ctx)
	require.NoError(t, err, "commands are not run in a dry run")
	assert.Equal(t, "1.0.1", res.Bump.Current.String())
	assert.Empty(t, res.Tag)
	assert.Empty(t, res.ChangelogPath)
	assert.Len(t, res.Entry.Commits, 1)

	tags, err := f.repo.ListTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"v1.0.0"}, tags)

	exists, err := f.fs.Exists("CHANGELOG.md")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRun_CommandFailures(t *testing.T) {
	tests := []struct {
		name    string
		build   string
		test    string
		wantErr error
	}{
		{name: "build", build: "exit 2", test: "true", wantErr: ErrBuildFailed},
		{name: "test", build: "true", test: "exit 3", wantErr: ErrTestFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)
			f.commit(t, "a.txt", "feat: a")

			cfg := defaultRelease()
			cfg.BuildCommand = tt.build
			cfg.TestCommand = tt.test

			r, err := New(f.options(cfg, nil))
			require.NoError(t, err)

			_, err = r.Run(ctx)
			assert.ErrorIs(t, err, tt.wantErr)

			_, err = f.repo.ListTags(ctx)
			assert.ErrorIs(t, err, git.ErrNoTags, "nothing is tagged when a command fails")
		})
	}
}

func TestRun_DirtyTree(t *testing.T) {
	f := newFixture(t)
	f.commit(t, "a.txt", "feat: a")
	require.NoError(t, f.fs.WriteFile("scratch.txt", []byte("wip"), 0o644))

	r, err := New(f.options(defaultRelease(), nil))
	require.NoError(t, err)

	_, err = r.Run(context.Background())
	assert.ErrorIs(t, err, git.ErrDirtyRepo)
}

func TestRun_DeployFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	f.commit(t, "a.txt", "feat: a")

	cfg := defaultRelease()
	cfg.CreateChangelog = false
	cfg.DeployTarget = "staging"
	d := &fakeDeployer{failExecute: deploy.ErrScriptFailed}

	r, err := New(f.options(cfg, d))
	require.NoError(t, err)

	res, err := r.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDeployFailed)
	assert.ErrorIs(t, err, deploy.ErrScriptFailed)
	assert.Equal(t, 1, d.rollbacks)
	assert.True(t, res.RolledBack)
	assert.False(t, res.Deployed)
}

func TestRun_DeployAndRollbackFailure(t *testing.T) {
	f := newFixture(t)
	f.commit(t, "a.txt", "feat: a")

	cfg := defaultRelease()
	cfg.CreateTag = false
	cfg.CreateChangelog = false
	cfg.DeployTarget = "staging"
	d := &fakeDeployer{failExecute: deploy.ErrHookFailed, failRollback: deploy.ErrNoPreviousVersion}

	r, err := New(f.options(cfg, d))
	require.NoError(t, err)

	res, err := r.Run(context.Background())
	assert.ErrorIs(t, err, ErrDeployFailed)
	assert.ErrorIs(t, err, deploy.ErrNoPreviousVersion)
	assert.False(t, res.RolledBack)
}

func TestRun_DeployRejectedVersionSkipsRollback(t *testing.T) {
	f := newFixture(t)
	f.commit(t, "a.txt", "feat: a")

	cfg := defaultRelease()
	cfg.CreateChangelog = false
	cfg.DeployTarget = "production"
	d := &fakeDeployer{failExecute: fmt.Errorf("%w: 0.0.1 does not satisfy \">=1.0.0\"", deploy.ErrInvalidVersion)}

	r, err := New(f.options(cfg, d))
	require.NoError(t, err)

	res, err := r.Run(context.Background())
	assert.ErrorIs(t, err, ErrDeployFailed)
	assert.ErrorIs(t, err, deploy.ErrInvalidVersion)
	assert.Zero(t, d.rollbacks, "the live deployment was never touched")
	assert.False(t, res.RolledBack)
	assert.Equal(t, "v0.0.1", res.Tag, "the release itself stands")
}

func TestRun_Prerelease(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.commit(t, "a.txt", "feat: a")
	f.tag(t, "v1.0.0")
	f.commit(t, "b.txt", "fix: b")

	cfg := defaultRelease()
	cfg.Type = "prerelease"
	cfg.CreateChangelog = false

	r, err := New(f.options(cfg, nil))
	require.NoError(t, err)

	res, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1.0.1-rc.1", res.Bump.Current.String())
	assert.Equal(t, "v1.0.1-rc.1", res.Tag)

	f.commit(t, "c.txt", "fix: c")
	res, err = r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1.0.1-rc.1", res.Bump.Previous.String())
	assert.Equal(t, "1.0.1-rc.2", res.Bump.Current.String())

	cfg.PrereleaseLabel = "beta"
	r, err = New(f.options(cfg, nil))
	require.NoError(t, err)
	f.commit(t, "d.txt", "fix: d")
	_, err = r.Run(ctx)
	assert.ErrorIs(t, err, semver.ErrInvalidIncrement, "beta sorts below rc")
}

// readLines returns the lines of a file written by a release command.
func readLines(t *testing.T, path string) []string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestRun_PublishAndNotify(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.commit(t, "a.txt", "feat: a")
	f.tag(t, "v1.0.0")
	f.commit(t, "b.txt", "feat: b")

	dir := t.TempDir()
	cfg := defaultRelease()
	cfg.Type = "minor"
	cfg.DeployTarget = "staging"
	cfg.PublishCommand = `echo "publish $RELEASY_TAG $RELEASY_PREVIOUS_VERSION" >> events`
	cfg.NotifyCommand = `echo "notify $RELEASY_STATUS $RELEASY_VERSION" >> events`

	d := &fakeDeployer{}
	opts := f.options(cfg, d)
	opts.WorkingDir = dir
	r, err := New(opts)
	require.NoError(t, err)

	res, err := r.Run(ctx)
	require.NoError(t, err)
	assert.True(t, res.Published)
	assert.True(t, res.Notified)
	assert.NoError(t, res.NotifyErr)
	assert.Equal(t, []string{"1.1.0"}, d.executed)

	assert.Equal(t, []string{
		"publish v1.1.0 1.0.0",
		"notify success 1.1.0",
	}, readLines(t, filepath.Join(dir, "events")))
}

func TestRun_PublishFailureRemovesTag(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.commit(t, "a.txt", "feat: a")
	f.tag(t, "v1.0.0")
	f.commit(t, "b.txt", "fix: b")

	dir := t.TempDir()
	cfg := defaultRelease()
	cfg.CreateChangelog = false
	cfg.DeployTarget = "staging"
	cfg.PublishCommand = "exit 4"
	cfg.NotifyCommand = `printf '%s\n%s\n' "$RELEASY_STATUS" "$RELEASY_ERROR" > notified`

	d := &fakeDeployer{}
	opts := f.options(cfg, d)
	opts.WorkingDir = dir
	r, err := New(opts)
	require.NoError(t, err)

	res, err := r.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPublishFailed)
	assert.Empty(t, res.Tag)
	assert.False(t, res.Published)
	assert.Empty(t, d.executed, "nothing is deployed after a failed publish")

	tags, err := f.repo.ListTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"v1.0.0"}, tags, "the release tag is removed so the version can be retried")

	lines := readLines(t, filepath.Join(dir, "notified"))
	require.Len(t, lines, 2)
	assert.Equal(t, "failure", lines[0])
	assert.Contains(t, lines[1], "publish command failed")
	assert.True(t, res.Notified)
}

func TestRun_Notify(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(cfg *rconfig.Release)
		dryRun   bool
		validate func(t *testing.T, res *Result, err error, marker string)
	}{
		{
			name: "success notification disabled",
			mutate: func(cfg *rconfig.Release) {
				cfg.NotifyOnSuccess = false
			},
			validate: func(t *testing.T, res *Result, err error, marker string) {
				require.NoError(t, err)
				assert.False(t, res.Notified)
				assert.NoFileExists(t, marker)
			},
		},
		{
			name: "failure notification disabled",
			mutate: func(cfg *rconfig.Release) {
				cfg.BuildCommand = "exit 1"
				cfg.NotifyOnFailure = false
			},
			validate: func(t *testing.T, res *Result, err error, marker string) {
				assert.ErrorIs(t, err, ErrBuildFailed)
				assert.False(t, res.Notified)
				assert.NoFileExists(t, marker)
			},
		},
		{
			name: "failure before the version is known",
			mutate: func(cfg *rconfig.Release) {
				cfg.TestCommand = "exit 1"
			},
			validate: func(t *testing.T, res *Result, err error, marker string) {
				assert.ErrorIs(t, err, ErrTestFailed)
				assert.True(t, res.Notified)
				assert.Equal(t, []string{"failure version="}, readLines(t, marker))
			},
		},
		{
			name: "failing notify command does not fail the release",
			mutate: func(cfg *rconfig.Release) {
				cfg.NotifyCommand = "exit 7"
			},
			validate: func(t *testing.T, res *Result, err error, _ string) {
				require.NoError(t, err)
				assert.Equal(t, "v1.0.1", res.Tag)
				assert.False(t, res.Notified)
				assert.ErrorIs(t, res.NotifyErr, ErrNotifyFailed)
			},
		},
		{
			name:   "dry run skips publish and notify",
			dryRun: true,
			mutate: func(cfg *rconfig.Release) {
				cfg.PublishCommand = "exit 1"
			},
			validate: func(t *testing.T, res *Result, err error, marker string) {
				require.NoError(t, err)
				assert.False(t, res.Published)
				assert.False(t, res.Notified)
				assert.NoFileExists(t, marker)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.commit(t, "a.txt", "feat: a")
			f.tag(t, "v1.0.0")
			f.commit(t, "b.txt", "fix: b")

			dir := t.TempDir()
			cfg := defaultRelease()
			cfg.CreateChangelog = false
			cfg.NotifyCommand = `echo "$RELEASY_STATUS version=$RELEASY_VERSION" > notified`
			tt.mutate(&cfg)

			opts := f.options(cfg, nil)
			opts.WorkingDir = dir
			opts.DryRun = tt.dryRun
			r, err := New(opts)
			require.NoError(t, err)

			res, err := r.Run(context.Background())
			tt.validate(t, res, err, filepath.Join(dir, "notified"))
		})
	}
}

func TestNew_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := New(Options{})
	assert.ErrorIs(t, err, ErrInvalidOptions)

	cfg := defaultRelease()
	cfg.DeployTarget = "staging"
	_, err = New(f.options(cfg, nil))
	assert.ErrorIs(t, err, ErrInvalidOptions)

	cfg = defaultRelease()
	cfg.Type = "sideways"
	_, err = New(f.options(cfg, nil))
	assert.ErrorIs(t, err, ErrInvalidOptions)
}
