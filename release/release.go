// Package release runs the end-to-end release flow: build and test, compute
// the next version from the latest tag, tag it, write the changelog, publish
// and deploy, rolling the deployment back when it fails. A notify command
// reports the outcome.
package release

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/chokrifaysal/releasy/changelog"
	"github.com/chokrifaysal/releasy/config"
	"github.com/chokrifaysal/releasy/errors"
	"github.com/chokrifaysal/releasy/executor"
	"github.com/chokrifaysal/releasy/fs"
	"github.com/chokrifaysal/releasy/git"
	"github.com/chokrifaysal/releasy/semver"
)

// Repository is the version history the releaser reads and tags.
// *git.Repo satisfies it.
type Repository interface {
	changelog.History
	LatestVersion(ctx context.Context) (semver.Version, error)
	EnsureUserConfig(ctx context.Context, name, email string) (git.Signature, error)
	CreateVersionTag(ctx context.Context, version semver.Version, who git.Signature) (string, error)
	DeleteTag(ctx context.Context, name string) error
}

// Deployer deploys a version to a target. *deploy.Deployer satisfies it.
type Deployer interface {
	SetTarget(ctx context.Context, name string) error
	Execute(ctx context.Context, version string) error
	Rollback(ctx context.Context) error
}

// Options configures a Releaser.
type Options struct {
	Repo     Repository
	Deployer Deployer

	// FS receives the changelog file.
	FS fs.Filesystem

	Config config.Release

	// UserName and UserEmail take precedence over git configuration when
	// signing the tag.
	UserName  string
	UserEmail string

	// DryRun computes the version and changelog without running commands,
	// creating tags or writing files. The deployer keeps its own dry-run flag.
	DryRun bool

	// WorkingDir is where build, test, publish and notify commands run.
	WorkingDir string

	Verbose bool
	Stdout  io.Writer
	Stderr  io.Writer

	Logger *slog.Logger
	Now    func() time.Time
}

// Validate checks that the Options are properly configured.
func (o *Options) Validate() error {
	if o.Repo == nil {
		return fmt.Errorf("%w: Repo is required", ErrInvalidOptions)
	}
	if o.Config.CreateChangelog && o.FS == nil {
		return fmt.Errorf("%w: FS is required to write the changelog", ErrInvalidOptions)
	}
	if o.Config.DeployTarget != "" && o.Deployer == nil {
		return fmt.Errorf("%w: Deployer is required for deploy target %q", ErrInvalidOptions, o.Config.DeployTarget)
	}
	if _, err := o.Config.Kind(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	return nil
}

func (o *Options) applyDefaults() {
	if o.Config.ChangelogPath == "" {
		o.Config.ChangelogPath = "CHANGELOG.md"
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Result describes what a release did.
type Result struct {
	Bump semver.Bump

	// Tag is the created tag name, empty when no tag was created.
	Tag string

	// Entry is the generated changelog entry.
	Entry changelog.Entry

	// ChangelogPath is set when the changelog file was written.
	ChangelogPath string

	Published  bool
	Deployed   bool
	RolledBack bool

	// Notified reports whether the notify command ran successfully.
	// NotifyErr holds its failure, which does not fail the release.
	Notified  bool
	NotifyErr error
}

// Releaser runs releases.
type Releaser struct {
	opts  Options
	shell *executor.WrappedExecutor
}

// New creates a Releaser.
func New(opts Options) (*Releaser, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts.applyDefaults()

	shell := executor.NewWrappedExecutor(executor.DefaultShell,
		executor.WithCapture(false, false, true),
		executor.WithWorkingDir(opts.WorkingDir),
		executor.WithLogger(opts.Logger),
	)
	return &Releaser{opts: opts, shell: shell}, nil
}

// Run performs one release. The returned Result is populated up to the
// step that failed. The notify command runs last, whatever the outcome.
func (r *Releaser) Run(ctx context.Context) (*Result, error) {
	res := &Result{}
	err := r.run(ctx, res)
	r.notify(ctx, res, err)
	return res, err
}

func (r *Releaser) run(ctx context.Context, res *Result) error {
	log := r.opts.Logger
	cfg := r.opts.Config

	if err := r.command(ctx, "build", cfg.BuildCommand, ErrBuildFailed); err != nil {
		return err
	}
	if err := r.command(ctx, "test", cfg.TestCommand, ErrTestFailed); err != nil {
		return err
	}

	latest, err := r.opts.Repo.LatestVersion(ctx)
	switch {
	case errors.Is(err, git.ErrNoTags):
		log.InfoContext(ctx, "no version tags found, starting from 0.0.0")
		latest = semver.Version{}
	case err != nil:
		return err
	}

	kind, _ := cfg.Kind()
	bump, err := semver.Increment(latest, kind, cfg.IncrementArg(kind))
	if err != nil {
		return err
	}
	res.Bump = bump
	log.InfoContext(ctx, "computed next version",
		"previous", bump.Previous.String(),
		"version", bump.Current.String(),
		"kind", kind.String(),
	)

	if cfg.CreateTag {
		tag, err := r.tag(ctx, bump.Current)
		if err != nil {
			return err
		}
		res.Tag = tag
	}

	if cfg.CreateChangelog {
		if err := r.changelog(ctx, bump.Current, res); err != nil {
			return r.untag(ctx, res, err)
		}
	}

	if err := r.command(ctx, "publish", cfg.PublishCommand, ErrPublishFailed, r.releaseEnv(res)...); err != nil {
		return r.untag(ctx, res, err)
	}
	res.Published = cfg.PublishCommand != "" && !r.opts.DryRun

	if cfg.DeployTarget != "" {
		if err := r.deploy(ctx, bump.Current, res); err != nil {
			return err
		}
	}

	return nil
}

func (r *Releaser) command(ctx context.Context, step, script string, sentinel error, extra ...executor.Option) error {
	if script == "" {
		return nil
	}
	if r.opts.DryRun {
		r.opts.Logger.InfoContext(ctx, "dry run: would run "+step+" command", "command", script)
		return nil
	}

	r.opts.Logger.InfoContext(ctx, "running "+step+" command", "command", script)

	opts := append([]executor.Option(nil), extra...)
	if r.opts.Verbose {
		opts = append(opts,
			executor.WithStdoutWriter(r.opts.Stdout),
			executor.WithStderrWriter(r.opts.Stderr),
		)
	}

	result, err := r.shell.Execute(ctx, []string{"-c", script}, opts...)
	if err != nil {
		r.opts.Logger.ErrorContext(ctx, step+" command failed",
			"exit_code", result.ExitCode,
			"output", result.Combined,
		)
		return fmt.Errorf("%w: %w", sentinel, err)
	}
	return nil
}

// releaseEnv exposes the computed version to publish and notify commands.
func (r *Releaser) releaseEnv(res *Result) []executor.Option {
	if res.Bump.Current.IsZero() {
		return nil
	}
	return []executor.Option{
		executor.WithEnvVar("RELEASY_VERSION", res.Bump.Current.String()),
		executor.WithEnvVar("RELEASY_PREVIOUS_VERSION", res.Bump.Previous.String()),
		executor.WithEnvVar("RELEASY_TAG", semver.TagName(res.Bump.Current)),
	}
}

// untag removes the tag created by this run so a failed release can be
// retried at the same version.
func (r *Releaser) untag(ctx context.Context, res *Result, cause error) error {
	if res.Tag == "" {
		return cause
	}
	if err := r.opts.Repo.DeleteTag(ctx, res.Tag); err != nil {
		r.opts.Logger.ErrorContext(ctx, "failed to remove release tag", "tag", res.Tag, "error", err)
		return errors.Join(cause, err)
	}
	r.opts.Logger.InfoContext(ctx, "removed release tag", "tag", res.Tag)
	res.Tag = ""
	return cause
}

func (r *Releaser) notify(ctx context.Context, res *Result, runErr error) {
	cfg := r.opts.Config
	if cfg.NotifyCommand == "" {
		return
	}

	status := "success"
	if runErr != nil {
		status = "failure"
	}
	if (runErr == nil && !cfg.NotifyOnSuccess) || (runErr != nil && !cfg.NotifyOnFailure) {
		r.opts.Logger.DebugContext(ctx, "notification disabled", "status", status)
		return
	}

	opts := append(r.releaseEnv(res), executor.WithEnvVar("RELEASY_STATUS", status))
	if runErr != nil {
		opts = append(opts, executor.WithEnvVar("RELEASY_ERROR", runErr.Error()))
	}

	if err := r.command(ctx, "notify", cfg.NotifyCommand, ErrNotifyFailed, opts...); err != nil {
		r.opts.Logger.WarnContext(ctx, "notification failed", "error", err)
		res.NotifyErr = err
		return
	}
	res.Notified = !r.opts.DryRun
}

func (r *Releaser) tag(ctx context.Context, v semver.Version) (string, error) {
	name := semver.TagName(v)
	if r.opts.DryRun {
		r.opts.Logger.InfoContext(ctx, "dry run: would create tag", "tag", name)
		return "", nil
	}

	who, err := r.opts.Repo.EnsureUserConfig(ctx, r.opts.UserName, r.opts.UserEmail)
	if err != nil {
		return "", err
	}
	who.When = r.opts.Now()

	return r.opts.Repo.CreateVersionTag(ctx, v, who)
}

func (r *Releaser) changelog(ctx context.Context, v semver.Version, res *Result) error {
	gen := changelog.NewGenerator(r.opts.Repo, changelog.Options{
		Logger: r.opts.Logger,
		Now:    r.opts.Now,
	})

	entry, err := gen.Generate(ctx, v)
	if err != nil {
		return err
	}
	res.Entry = entry
	r.opts.Logger.DebugContext(ctx, "generated changelog entry",
		"version", entry.Version,
		"commits", len(entry.Commits),
		"breaking", len(entry.Breaking()),
	)

	if len(entry.Commits) == 0 {
		r.opts.Logger.WarnContext(ctx, "no commits since previous release, skipping changelog",
			"version", entry.Version,
			"previous", entry.PreviousVersion,
		)
		return nil
	}

	path := r.opts.Config.ChangelogPath
	if r.opts.DryRun {
		r.opts.Logger.InfoContext(ctx, "dry run: would write changelog", "path", path, "commits", len(entry.Commits))
		return nil
	}

	cl := &changelog.Changelog{}
	cl.Add(entry)
	if err := cl.Write(r.opts.FS, path, changelog.RenderOptions{
		GroupByType:    r.opts.Config.GroupByType,
		IncludeAuthors: r.opts.Config.IncludeAuthors,
	}); err != nil {
		return err
	}

	res.ChangelogPath = path
	r.opts.Logger.InfoContext(ctx, "wrote changelog", "path", path, "commits", len(entry.Commits))
	return nil
}

func (r *Releaser) deploy(ctx context.Context, v semver.Version, res *Result) error {
	target := r.opts.Config.DeployTarget
	if err := r.opts.Deployer.SetTarget(ctx, target); err != nil {
		return err
	}

	err := r.opts.Deployer.Execute(ctx, v.String())
	if err == nil {
		res.Deployed = true
		return nil
	}

	deployErr := fmt.Errorf("%w: %s to %s: %w", ErrDeployFailed, v, target, err)

	// A rejected version never reached the target, so the live deployment
	// stays as it was.
	if errors.HasCode(err, errors.CodeFormat) {
		r.opts.Logger.ErrorContext(ctx, "deployment rejected the version", "target", target, "version", v.String(), "error", err)
		return deployErr
	}

	r.opts.Logger.ErrorContext(ctx, "deployment failed, rolling back",
		"target", target,
		"version", v.String(),
		"error", err,
	)
	if rbErr := r.opts.Deployer.Rollback(ctx); rbErr != nil {
		r.opts.Logger.ErrorContext(ctx, "rollback failed", "target", target, "error", rbErr)
		return errors.Join(deployErr, rbErr)
	}

	res.RolledBack = true
	r.opts.Logger.InfoContext(ctx, "rolled back deployment", "target", target)
	return deployErr
}
