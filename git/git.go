// Package git provides a task-oriented wrapper over go-git for release work:
// opening a working tree, checking cleanliness, reading and writing version
// tags, walking commit ranges and rolling back to a tagged release.
package git

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	gobilly "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/storage/filesystem"

	"github.com/chokrifaysal/releasy/errors"
	"github.com/chokrifaysal/releasy/fs"
	"github.com/chokrifaysal/releasy/git/internal/fsbridge"
)

const (
	// DefaultStorerCacheSize is the default size for the LRU object cache.
	DefaultStorerCacheSize = fsbridge.DefaultCacheSize

	// DefaultWorkdir is the default worktree directory name.
	DefaultWorkdir = "."
)

// Options configures repository discovery/creation.
type Options struct {
	// FS is the REQUIRED filesystem root (OS or in-memory).
	// All repository state lives within this filesystem.
	FS fs.Filesystem

	// Workdir is the path within FS for the worktree root.
	// Discover treats it as the starting point of the upward search.
	// Defaults to ".".
	Workdir string

	// Bare indicates a repository with no worktree.
	Bare bool

	// StorerCacheSize sets the LRU objects cache entries.
	// Defaults to DefaultStorerCacheSize.
	StorerCacheSize int

	// Logger receives operational logs. Defaults to a discarding logger.
	Logger *slog.Logger

	// GlobalConfig loads the user's global git configuration for identity
	// resolution. Defaults to reading the global scope from disk.
	GlobalConfig func() (*config.Config, error)

	// Getenv looks up environment variables for identity resolution.
	// Defaults to os.Getenv.
	Getenv func(key string) string
}

// Validate checks that the Options are properly configured.
func (o *Options) Validate() error {
	if o.FS == nil {
		return WrapError(ErrInvalidRef, "FS is required")
	}

	if o.StorerCacheSize < 0 {
		return WrapError(ErrInvalidRef, "StorerCacheSize cannot be negative")
	}

	return nil
}

// applyDefaults sets default values for any unset fields in Options.
func (o *Options) applyDefaults() {
	if o.Workdir == "" {
		o.Workdir = DefaultWorkdir
	}

	if o.StorerCacheSize == 0 {
		o.StorerCacheSize = DefaultStorerCacheSize
	}

	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}

	if o.GlobalConfig == nil {
		o.GlobalConfig = func() (*config.Config, error) {
			return config.LoadConfig(config.GlobalScope)
		}
	}

	if o.Getenv == nil {
		o.Getenv = os.Getenv
	}
}

// Signature represents an author/committer/tagger identity.
type Signature struct {
	// Name is the author's or committer's name.
	Name string

	// Email is the author's or committer's email address.
	Email string

	// When is the timestamp for the signature. Zero means now.
	When time.Time
}

// IsComplete reports whether both name and email are set.
func (s Signature) IsComplete() bool {
	return s.Name != "" && s.Email != ""
}

// String renders the signature as "Name <email>".
func (s Signature) String() string {
	return fmt.Sprintf("%s <%s>", s.Name, s.Email)
}

func (s Signature) when() time.Time {
	if s.When.IsZero() {
		return time.Now()
	}
	return s.When
}

// CommitOpts configures commit creation behavior.
type CommitOpts struct {
	// AllowEmpty allows creating commits with no changes.
	AllowEmpty bool
}

// Repo represents an opened git repository.
type Repo struct {
	repo     *git.Repository
	worktree *git.Worktree
	fs       fs.Filesystem
	options  Options
	logger   *slog.Logger

	branch string
	dirty  bool
}

// Init creates a new git repository at the specified location.
func Init(ctx context.Context, opts *Options) (*Repo, error) {
	if err := opts.Validate(); err != nil {
		return nil, WrapError(err, "invalid options")
	}

	opts.applyDefaults()

	storage, worktreeFS, err := openStorage(opts)
	if err != nil {
		return nil, err
	}

	repo, err := git.Init(storage, worktreeFS)
	if err != nil {
		return nil, WrapError(err, "failed to initialize repository")
	}

	return newRepo(ctx, repo, opts)
}

// Open opens an existing git repository rooted exactly at opts.Workdir.
// It records the current branch when HEAD is attached and runs the dirty
// check so callers can inspect Dirty without another status walk.
func Open(ctx context.Context, opts *Options) (*Repo, error) {
	if err := opts.Validate(); err != nil {
		return nil, WrapError(err, "invalid options")
	}

	opts.applyDefaults()

	storage, worktreeFS, err := openStorage(opts)
	if err != nil {
		return nil, err
	}

	repo, err := git.Open(storage, worktreeFS)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, WrapErrorf(ErrRepoNotFound, "no repository at %q", opts.Workdir)
		}
		return nil, WrapError(err, "failed to open repository")
	}

	r, err := newRepo(ctx, repo, opts)
	if err != nil {
		return nil, err
	}

	if !opts.Bare {
		dirty, err := r.IsDirty(ctx)
		if err != nil {
			return nil, err
		}
		r.dirty = dirty
	}

	r.logger.DebugContext(ctx, "opened repository",
		"workdir", opts.Workdir,
		"branch", r.branch,
		"dirty", r.dirty,
	)

	return r, nil
}

// Discover searches opts.Workdir and each of its parents for a ".git"
// directory and opens the first repository found. It fails with
// ErrRepoNotFound when the search reaches the filesystem root.
func Discover(ctx context.Context, opts *Options) (*Repo, error) {
	if err := opts.Validate(); err != nil {
		return nil, WrapError(err, "invalid options")
	}

	start := opts.Workdir
	if start == "" {
		start = DefaultWorkdir
	}

	dir := filepath.Clean(start)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		found, err := opts.FS.Exists(filepath.Join(dir, git.GitDirName))
		if err != nil {
			return nil, WrapErrorf(err, "failed to inspect %q", dir)
		}
		if found {
			discovered := *opts
			discovered.Workdir = dir
			return Open(ctx, &discovered)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, WrapErrorf(ErrRepoNotFound, "no repository at or above %q", start)
		}
		dir = parent
	}
}

// Branch returns the branch recorded when the repository was opened.
// It is empty when HEAD was detached or unborn.
func (r *Repo) Branch() string {
	return r.branch
}

// Dirty returns the result of the dirty check run when the repository was opened.
func (r *Repo) Dirty() bool {
	return r.dirty
}

func newRepo(ctx context.Context, repo *git.Repository, opts *Options) (*Repo, error) {
	r := &Repo{
		repo:    repo,
		fs:      opts.FS,
		options: *opts,
		logger:  opts.Logger,
	}

	if !opts.Bare {
		worktree, err := repo.Worktree()
		if err != nil {
			return nil, WrapError(err, "failed to get worktree")
		}
		r.worktree = worktree
	}

	if branch, err := r.CurrentBranch(ctx); err == nil {
		r.branch = branch
	}

	return r, nil
}

//nolint:ireturn // the worktree is exposed to go-git as a billy filesystem
func openStorage(opts *Options) (*filesystem.Storage, gobilly.Filesystem, error) {
	billyFS, err := fsbridge.ToBillyFilesystem(opts.FS)
	if err != nil {
		return nil, nil, fmt.Errorf("filesystem conversion failed: %w", err)
	}

	scopedFS, err := billyFS.Chroot(opts.Workdir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to chroot to workdir %q: %w", opts.Workdir, err)
	}

	if opts.Bare {
		return fsbridge.NewStorage(scopedFS, opts.StorerCacheSize), nil, nil
	}

	dotGitFS, err := scopedFS.Chroot(git.GitDirName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to access .git directory: %w", err)
	}

	return fsbridge.NewStorage(dotGitFS, opts.StorerCacheSize), scopedFS, nil
}
