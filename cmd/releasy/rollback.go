// Command releasy automates releases and deployments.
// This file contains the rollback command.
package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chokrifaysal/releasy/git"
)

type rollbackFlags struct {
	toTag string
}

func newRollbackCmd(a *app) *cobra.Command {
	var f rollbackFlags

	cmd := &cobra.Command{
		Use:   "rollback",
		Short: "Roll back the last deployment of a target environment",
		Long: `Redeploys the version that was live before the current one on the --env
target. With --to-tag the working tree and current branch are first moved
to that tag.`,
		Example: "  releasy rollback --env staging\n  releasy rollback --env staging --to-tag v1.1.0",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runRollback(cmd.Context(), f)
		},
	}

	cmd.Flags().StringVar(&f.toTag, "to-tag", "", "also check out this tag in the git repository")

	return cmd
}

func (a *app) runRollback(ctx context.Context, f rollbackFlags) error {
	env, err := a.requireEnv()
	if err != nil {
		return err
	}

	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return err
	}

	d, metrics, err := a.newDeployer(cfg)
	if err != nil {
		return err
	}
	defer a.flushMetrics(ctx, cfg, metrics)

	if err := d.SetTarget(ctx, env); err != nil {
		return err
	}

	a.printf("Rolling back deployment in %s environment...\n", env)
	if a.dryRun(cfg) {
		a.printf("%s\n", yellow(dryRunNotice))
	}

	if f.toTag != "" {
		if err := a.checkoutTag(ctx, f.toTag, a.dryRun(cfg)); err != nil {
			return err
		}
	}

	err = d.Rollback(ctx)
	a.printf("Rollback status: %s\n", statusText(d.Status()))
	if err == nil {
		a.printf("Now at version %s\n", bold(d.CurrentVersion()))
	}
	return err
}

// checkoutTag moves the repository to tag. The revision must name a tag;
// branches and bare commits are rejected before anything is touched.
func (a *app) checkoutTag(ctx context.Context, tag string, dryRun bool) error {
	repo, err := a.openRepo(ctx)
	if err != nil {
		return err
	}

	ref, err := repo.Resolve(ctx, tag)
	if err != nil {
		return err
	}
	if ref.Kind != git.RefTag {
		return fmt.Errorf("%w: %s is a %s, not a tag", git.ErrInvalidRef, tag, ref.Kind)
	}

	if dryRun {
		a.printf("Would check out %s (%s)\n", tag, ref.Hash[:7])
		return nil
	}

	if err := repo.Rollback(ctx, tag); err != nil {
		return err
	}
	a.printf("%s %s\n", green("Checked out"), tag)
	return nil
}
