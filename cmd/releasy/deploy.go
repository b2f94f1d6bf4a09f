// Command releasy automates releases and deployments.
// This file contains the deploy command.
package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chokrifaysal/releasy/semver"
)

func newDeployCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "deploy <version>",
		Short: "Deploy a version to a target environment",
		Long: `Runs the pre-hooks, deployment script and post-hooks of the --env target
for <version> and records the outcome in the target's status file.`,
		Example: "  releasy deploy 1.2.0 --env staging",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDeploy(cmd.Context(), args[0])
		},
	}
}

func (a *app) runDeploy(ctx context.Context, raw string) error {
	v, err := semver.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid version %q: %w", raw, err)
	}

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

	a.printf("Deploying version %s to %s environment...\n", bold(v.String()), env)
	if a.dryRun(cfg) {
		a.printf("%s\n", yellow(dryRunNotice))
	}

	err = d.Execute(ctx, v.String())
	a.printf("Deployment status: %s\n", statusText(d.Status()))
	return err
}
