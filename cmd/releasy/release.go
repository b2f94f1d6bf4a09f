// Command releasy automates releases and deployments.
// This file contains the release command.
package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/chokrifaysal/releasy/deploy"
	"github.com/chokrifaysal/releasy/fs"
	"github.com/chokrifaysal/releasy/release"
)

type releaseFlags struct {
	kind          string
	customVersion string
}

func newReleaseCmd(a *app) *cobra.Command {
	var f releaseFlags

	cmd := &cobra.Command{
		Use:   "release",
		Short: "Create a new release",
		Long: `Runs the configured build and test commands, bumps the version from the
latest version tag, tags HEAD, writes the changelog, runs the publish
command and, when a deploy target is configured or --env is given, deploys
the new version. The notify command reports the outcome.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runRelease(cmd.Context(), f)
		},
	}

	cmd.Flags().StringVarP(&f.kind, "type", "t", "", "increment: patch, minor, major, prerelease or custom (default from config)")
	cmd.Flags().StringVar(&f.customVersion, "custom-version", "", "version to release with --type custom")

	return cmd
}

func (a *app) runRelease(ctx context.Context, f releaseFlags) error {
	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return err
	}

	rc := cfg.Release
	if f.kind != "" {
		rc.Type = f.kind
	}
	if f.customVersion != "" {
		rc.CustomVersion = f.customVersion
	}
	if a.flags.env != "" {
		rc.DeployTarget = a.flags.env
	}

	repo, err := a.openRepo(ctx)
	if err != nil {
		return err
	}

	wd, err := fs.GetAbs(".")
	if err != nil {
		return err
	}

	var (
		deployer *deploy.Deployer
		metrics  *deploy.Metrics
	)
	if rc.DeployTarget != "" {
		deployer, metrics, err = a.newDeployer(cfg)
		if err != nil {
			return err
		}
		defer a.flushMetrics(ctx, cfg, metrics)
	}

	opts := release.Options{
		Repo:       repo,
		FS:         a.fs,
		Config:     rc,
		UserName:   a.flags.userName,
		UserEmail:  a.flags.userEmail,
		DryRun:     a.dryRun(cfg),
		WorkingDir: wd,
		Verbose:    a.flags.verbose || cfg.Verbose,
		Stdout:     a.stdout,
		Stderr:     a.stderr,
		Logger:     a.logger,
	}
	if deployer != nil {
		opts.Deployer = deployer
	}

	r, err := release.New(opts)
	if err != nil {
		return err
	}

	if opts.DryRun {
		a.printf("%s\n", yellow(dryRunNotice))
	}

	res, err := r.Run(ctx)
	if res != nil && !res.Bump.Current.IsZero() {
		a.printf("Version: %s -> %s\n", res.Bump.Previous, bold(res.Bump.Current.String()))
	}
	if res != nil && res.NotifyErr != nil {
		a.printf("%s %v\n", yellow("Warning:"), res.NotifyErr)
	}
	if err != nil {
		if res != nil && res.RolledBack {
			a.printf("%s %s\n", yellow("Rolled back deployment on"), rc.DeployTarget)
		}
		return err
	}

	if res.Tag != "" {
		a.printf("%s %s\n", green("Created tag:"), res.Tag)
	}
	if res.ChangelogPath != "" {
		a.printf("%s %s (%d commits)\n", green("Updated changelog:"), res.ChangelogPath, len(res.Entry.Commits))
	}
	if res.Published {
		a.printf("%s\n", green("Published"))
	}
	if res.Deployed {
		a.printf("%s %s\n", green("Deployed to"), rc.DeployTarget)
	}
	a.printf("%s\n", bold("Release completed successfully"))
	return nil
}
