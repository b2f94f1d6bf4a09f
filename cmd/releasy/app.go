// Command releasy automates releases and deployments.
// This file contains the state shared by every subcommand.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/chokrifaysal/releasy/config"
	"github.com/chokrifaysal/releasy/deploy"
	"github.com/chokrifaysal/releasy/fs"
	"github.com/chokrifaysal/releasy/git"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	dryRun     bool
	configPath string
	env        string
	userName   string
	userEmail  string
	verbose    bool
}

// app carries the state one invocation of the CLI works with.
type app struct {
	flags globalFlags

	fs     fs.Filesystem
	stdout io.Writer
	stderr io.Writer

	logger  *slog.Logger
	closers []io.Closer
}

func newApp(stdout, stderr io.Writer, fsys fs.Filesystem) *app {
	return &app{
		fs:     fsys,
		stdout: stdout,
		stderr: stderr,
		logger: newLogger(stderr, false, nil),
	}
}

func (a *app) close() {
	for _, c := range a.closers {
		_ = c.Close()
	}
	a.closers = nil
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.stdout, format, args...)
}

// loadConfig finds and loads the configuration, then rebuilds the logger
// from its verbose and log_path settings.
func (a *app) loadConfig(ctx context.Context) (*config.Config, error) {
	path, err := config.Find(a.fs, a.flags.configPath, config.SearchPaths())
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(ctx, a.fs, path)
	if err != nil {
		return nil, err
	}

	if err := a.setupLogging(cfg); err != nil {
		return nil, err
	}
	a.logger.DebugContext(ctx, "loaded configuration", "path", path, "targets", len(cfg.Targets))
	return cfg, nil
}

func (a *app) setupLogging(cfg *config.Config) error {
	verbose := a.flags.verbose || cfg.Verbose

	if cfg.LogPath == "" {
		a.logger = newLogger(a.stderr, verbose, nil)
		return nil
	}

	if dir := filepath.Dir(cfg.LogPath); dir != "." {
		if err := a.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
	}
	f, err := a.fs.OpenFile(cfg.LogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	a.closers = append(a.closers, f)
	a.logger = newLogger(a.stderr, verbose, f)
	return nil
}

func (a *app) dryRun(cfg *config.Config) bool {
	return a.flags.dryRun || cfg.DryRun
}

// newDeployer builds a deployer over the configured targets. The returned
// Metrics is nil unless metrics_file is set.
func (a *app) newDeployer(cfg *config.Config) (*deploy.Deployer, *deploy.Metrics, error) {
	var metrics *deploy.Metrics
	if cfg.MetricsFile != "" {
		metrics = deploy.NewMetrics()
	}

	d, err := deploy.New(deploy.Options{
		Targets: cfg.DeployTargets(),
		DryRun:  a.dryRun(cfg),
		Verbose: a.flags.verbose || cfg.Verbose,
		Stdout:  a.stdout,
		Stderr:  a.stderr,
		FS:      a.fs,
		Metrics: metrics,
		Logger:  a.logger,
	})
	if err != nil {
		return nil, nil, err
	}
	return d, metrics, nil
}

// flushMetrics writes the metrics textfile. Failures are logged only.
func (a *app) flushMetrics(ctx context.Context, cfg *config.Config, m *deploy.Metrics) {
	if m == nil || a.dryRun(cfg) {
		return
	}
	path, err := fs.GetAbs(cfg.MetricsFile)
	if err == nil {
		err = m.WriteTextfile(path)
	}
	if err != nil {
		a.logger.WarnContext(ctx, "failed to write metrics file", "path", cfg.MetricsFile, "error", err)
	}
}

// openRepo discovers the git repository containing the working directory.
func (a *app) openRepo(ctx context.Context) (*git.Repo, error) {
	wd, err := fs.GetAbs(".")
	if err != nil {
		return nil, err
	}
	return git.Discover(ctx, &git.Options{
		FS:      a.fs,
		Workdir: wd,
		Logger:  a.logger,
	})
}

// requireEnv returns the --env target or ErrEnvRequired.
func (a *app) requireEnv() (string, error) {
	if a.flags.env == "" {
		return "", ErrEnvRequired
	}
	return a.flags.env, nil
}
