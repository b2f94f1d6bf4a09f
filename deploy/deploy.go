// Package deploy orchestrates deployments to named targets.
//
// A Deployer runs a target's pre-hooks, its deployment script and its
// post-hooks through /bin/sh, retrying hooks as configured, and persists the
// outcome to the target's status file. Rollback re-deploys the previous
// version.
//
// State moves None -> Pending -> Running -> Success | Failed, and a
// successful Rollback ends in RolledBack.
package deploy

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/chokrifaysal/releasy/errors"
	"github.com/chokrifaysal/releasy/executor"
	"github.com/chokrifaysal/releasy/fs"
	fsb "github.com/chokrifaysal/releasy/fs/billy"
	"github.com/chokrifaysal/releasy/semver"
)

// Environment variables exported to every hook and script.
const (
	EnvVersion         = "RELEASY_VERSION"
	EnvPreviousVersion = "RELEASY_PREVIOUS_VERSION"
	EnvTarget          = "RELEASY_TARGET"
	EnvDeployID        = "RELEASY_DEPLOY_ID"
	EnvVerifySSL       = "RELEASY_VERIFY_SSL"
)

// Options configures a Deployer.
type Options struct {
	// Targets are the deployable environments. Names must be unique.
	Targets []Target

	// DryRun logs what would run without spawning processes or writing
	// status files.
	DryRun bool

	// Verbose streams child output to Stdout and Stderr.
	Verbose bool
	Stdout  io.Writer
	Stderr  io.Writer

	// FS holds status and env files. Defaults to the OS filesystem.
	FS fs.Filesystem

	// Sleep waits between hook attempts. Defaults to a context-aware timer.
	Sleep executor.SleepFunc

	// Metrics records outcomes when set.
	Metrics *Metrics

	// User is recorded in the status history. Defaults to $USER.
	User string

	Logger *slog.Logger
	Now    func() time.Time
	NewID  func() string
}

// Validate checks that the Options are properly configured.
func (o *Options) Validate() error {
	seen := make(map[string]bool, len(o.Targets))
	for _, t := range o.Targets {
		if err := t.Validate(); err != nil {
			return err
		}
		if seen[t.Name] {
			return fmt.Errorf("%w: duplicate target %q", ErrInvalidConfig, t.Name)
		}
		seen[t.Name] = true
	}
	return nil
}

func (o *Options) applyDefaults() {
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	if o.FS == nil {
		o.FS = fsb.NewOSFS("")
	}
	if o.User == "" {
		o.User = os.Getenv("USER")
	}
	if o.User == "" {
		o.User = "unknown"
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
}

// Deployer runs deployments against one selected target at a time.
type Deployer struct {
	opts    Options
	targets []Target
	target  int

	status          Status
	currentVersion  string
	previousVersion string
	deployID        string
}

// New creates a Deployer owning a copy of opts.Targets.
func New(opts Options) (*Deployer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts.applyDefaults()

	return &Deployer{
		opts:    opts,
		targets: slices.Clone(opts.Targets),
		target:  -1,
	}, nil
}

// Targets returns the configured targets.
func (d *Deployer) Targets() []Target {
	return slices.Clone(d.targets)
}

// Target returns the selected target.
func (d *Deployer) Target() (Target, bool) {
	if d.target < 0 {
		return Target{}, false
	}
	return d.targets[d.target], true
}

// Status returns the state of the last deployment.
func (d *Deployer) Status() Status { return d.status }

// CurrentVersion returns the version of the last deployment attempt.
func (d *Deployer) CurrentVersion() string { return d.currentVersion }

// PreviousVersion returns the version deployed before the current one.
func (d *Deployer) PreviousVersion() string { return d.previousVersion }

// DeployID returns the id of the last deployment attempt.
func (d *Deployer) DeployID() string { return d.deployID }

// SetTarget selects the target called name and seeds the current and
// previous versions from its status file when one exists.
func (d *Deployer) SetTarget(ctx context.Context, name string) error {
	idx := -1
	for i := range d.targets {
		if d.targets[i].Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrTargetNotFound, name)
	}

	d.target = idx
	d.status = StatusNone
	d.currentVersion = ""
	d.previousVersion = ""
	d.deployID = ""

	t := d.targets[idx]
	if t.StatusFile == "" {
		return nil
	}

	sf, err := ReadStatusFile(d.opts.FS, t.StatusFile)
	if err != nil {
		if !IsNotExist(err) {
			d.opts.Logger.WarnContext(ctx, "ignoring unreadable status file",
				"target", t.Name,
				"path", t.StatusFile,
				"error", err,
			)
		}
		return nil
	}

	d.currentVersion = sf.CurrentVersion
	d.previousVersion = sf.Previous()
	d.opts.Logger.DebugContext(ctx, "seeded deployment state",
		"target", t.Name,
		"current", d.currentVersion,
		"previous", d.previousVersion,
	)
	return nil
}

// Execute deploys version to the selected target. The version is validated
// before any state changes. On failure the status is Failed and the error
// wraps ErrHookFailed or ErrScriptFailed.
func (d *Deployer) Execute(ctx context.Context, version string) error {
	return d.execute(ctx, version, StatusSuccess)
}

// Rollback re-deploys the previous version. It fails with
// ErrNoPreviousVersion when there is none. On success the status is
// RolledBack.
func (d *Deployer) Rollback(ctx context.Context) error {
	if d.target < 0 {
		return ErrNoTarget
	}
	if d.previousVersion == "" {
		return fmt.Errorf("%w: %w", ErrRollbackFailed, ErrNoPreviousVersion)
	}

	from, to := d.currentVersion, d.previousVersion
	d.opts.Logger.InfoContext(ctx, "rolling back",
		"target", d.targets[d.target].Name,
		"from", from,
		"to", to,
	)

	if err := d.execute(ctx, to, StatusRolledBack); err != nil {
		return fmt.Errorf("%w to %s: %w", ErrRollbackFailed, to, err)
	}
	return nil
}

func (d *Deployer) execute(ctx context.Context, version string, done Status) error {
	if d.target < 0 {
		return ErrNoTarget
	}
	t := d.targets[d.target]

	v, err := semver.Parse(version)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidVersion, err)
	}
	ok, err := semver.Satisfies(v, t.VersionConstraint)
	if err != nil {
		return fmt.Errorf("%w: target %q: %w", ErrInvalidConfig, t.Name, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s does not satisfy %q for target %q", ErrInvalidVersion, v, t.VersionConstraint, t.Name)
	}

	d.previousVersion = d.currentVersion
	d.currentVersion = v.String()
	d.deployID = d.opts.NewID()
	d.status = StatusPending

	start := d.opts.Now()
	logger := d.opts.Logger.With(
		"target", t.Name,
		"version", d.currentVersion,
		"deploy_id", d.deployID,
	)
	logger.InfoContext(ctx, "starting deployment",
		"previous", d.previousVersion,
		"dry_run", d.opts.DryRun,
	)

	if err := d.transition(ctx, StatusRunning); err != nil {
		return d.fail(ctx, start, err)
	}

	env, err := d.environment(t)
	if err != nil {
		return d.fail(ctx, start, err)
	}

	if err := d.runHooks(ctx, logger, "pre-deploy", t.PreHooks, env); err != nil {
		return d.fail(ctx, start, err)
	}

	if t.ScriptPath != "" {
		if err := d.runScript(ctx, logger, t, env); err != nil {
			return d.fail(ctx, start, err)
		}
	}

	if err := d.runHooks(ctx, logger, "post-deploy", t.PostHooks, env); err != nil {
		return d.fail(ctx, start, err)
	}

	// The run itself succeeded; a failed final status write still counts.
	err = d.transition(ctx, done)
	d.opts.Metrics.recordDeployment(t.Name, done, d.opts.Now().Sub(start), d.opts.Now())
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "deployment finished", "status", done.String())
	return nil
}

// fail records the Failed state and returns cause. A status write error is
// joined with cause.
func (d *Deployer) fail(ctx context.Context, start time.Time, cause error) error {
	t := d.targets[d.target]
	d.opts.Logger.ErrorContext(ctx, "deployment failed",
		"target", t.Name,
		"version", d.currentVersion,
		"error", cause,
	)

	err := d.transition(ctx, StatusFailed)
	d.opts.Metrics.recordDeployment(t.Name, StatusFailed, d.opts.Now().Sub(start), d.opts.Now())
	if err != nil {
		return errors.Join(cause, err)
	}
	return cause
}

// transition sets the status and persists it unless this is a dry run.
func (d *Deployer) transition(ctx context.Context, s Status) error {
	d.status = s

	t := d.targets[d.target]
	if d.opts.DryRun || t.StatusFile == "" {
		return nil
	}

	_, err := writeStatus(d.opts.FS, t.StatusFile, update{
		current:  d.currentVersion,
		previous: d.previousVersion,
		status:   s,
		user:     d.opts.User,
		at:       d.opts.Now(),
	})
	if err != nil {
		d.opts.Logger.ErrorContext(ctx, "failed to persist status",
			"target", t.Name,
			"path", t.StatusFile,
			"status", s.String(),
			"error", err,
		)
		return err
	}
	return nil
}

// environment builds the overrides shared by every process of a run:
// env file entries sorted by key, then the target's Env, then the
// RELEASY_* variables.
func (d *Deployer) environment(t Target) ([]string, error) {
	var env []string

	if t.EnvFile != "" && !d.opts.DryRun {
		f, err := d.opts.FS.Open(t.EnvFile)
		if err != nil {
			return nil, fmt.Errorf("%w %s: %w", ErrEnvFile, t.EnvFile, err)
		}
		values, err := godotenv.Parse(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("%w %s: %w", ErrEnvFile, t.EnvFile, err)
		}

		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			env = append(env, k+"="+values[k])
		}
	}

	env = append(env, t.Env...)
	env = append(env,
		EnvVersion+"="+d.currentVersion,
		EnvPreviousVersion+"="+d.previousVersion,
		EnvTarget+"="+t.Name,
		EnvDeployID+"="+d.deployID,
		EnvVerifySSL+"="+strconv.FormatBool(t.VerifySSL),
	)
	return env, nil
}

func (d *Deployer) runHooks(ctx context.Context, logger *slog.Logger, phase string, hooks []Hook, env []string) error {
	t := d.targets[d.target]

	for _, h := range hooks {
		logger.InfoContext(ctx, "running hook", "phase", phase, "hook", h.Label())

		if d.opts.DryRun {
			logger.InfoContext(ctx, "dry run: would execute hook", "phase", phase, "hook", h.Label(), "script", h.Script)
			continue
		}

		opts := d.commandOptions(logger, h.WorkingDir, h.Timeout, append(slices.Clone(env), h.Env...))
		opts = append(opts,
			executor.WithRetry(h.RetryCount, h.RetryDelay),
			executor.WithRetryCondition(func(err error) bool {
				return ctx.Err() == nil && errors.CodeOf(err).Retryable()
			}),
		)

		result, err := executor.Shell(h.Script).Execute(ctx, opts...)
		d.opts.Metrics.recordHook(t.Name, h.Label(), result.Attempts, err)

		if err != nil {
			logger.WarnContext(ctx, "hook failed",
				"phase", phase,
				"hook", h.Label(),
				"attempts", result.Attempts,
				"exit_code", result.ExitCode,
				"stderr", result.Stderr,
			)
			return fmt.Errorf("%w: %s hook %q after %d attempt(s): %w", ErrHookFailed, phase, h.Label(), result.Attempts, err)
		}
	}
	return nil
}

func (d *Deployer) runScript(ctx context.Context, logger *slog.Logger, t Target, env []string) error {
	logger.InfoContext(ctx, "running deployment script", "script", t.ScriptPath)

	if d.opts.DryRun {
		logger.InfoContext(ctx, "dry run: would execute script", "script", t.ScriptPath)
		return nil
	}

	result, err := executor.Shell(t.ScriptPath).Execute(ctx, d.commandOptions(logger, t.WorkingDir, t.Timeout, env)...)
	if err != nil {
		logger.WarnContext(ctx, "deployment script failed",
			"exit_code", result.ExitCode,
			"stderr", result.Stderr,
		)
		return fmt.Errorf("%w: %s: %w", ErrScriptFailed, t.ScriptPath, err)
	}
	return nil
}

func (d *Deployer) commandOptions(logger *slog.Logger, dir string, timeout time.Duration, env []string) []executor.Option {
	opts := []executor.Option{
		executor.SilentMode(),
		executor.WithWorkingDir(dir),
		executor.WithTimeout(timeout),
		executor.WithEnv(env...),
		executor.WithLogger(logger),
	}
	if d.opts.Sleep != nil {
		opts = append(opts, executor.WithSleep(d.opts.Sleep))
	}
	if d.opts.Verbose {
		opts = append(opts,
			executor.WithStdoutWriter(d.opts.Stdout),
			executor.WithStderrWriter(d.opts.Stderr),
		)
	}
	return opts
}
