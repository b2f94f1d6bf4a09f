// Command releasy automates releases and deployments.
// This file contains the root command and its persistent flags.
package main

import (
	"github.com/spf13/cobra"

	"github.com/chokrifaysal/releasy/config"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "releasy",
		Short: "Version, tag, changelog and deploy releases",
		Long: bold("releasy") + ` automates the release workflow of a git project:

  - bumps the semantic version from the latest v<version> tag
  - tags the release and writes CHANGELOG.md from conventional commits
  - deploys to named targets with pre/post hooks, retries and rollback

Run '` + cyan("releasy init") + `' to scaffold a project.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.BoolVarP(&a.flags.dryRun, "dry-run", "d", false, "simulate actions without making changes")
	flags.StringVarP(&a.flags.configPath, "config", "c", "", "configuration file (default "+config.DefaultPath+")")
	flags.StringVarP(&a.flags.env, "env", "e", "", "target environment for deployment")
	flags.StringVarP(&a.flags.userName, "user-name", "n", "", "git user name for tagging")
	flags.StringVarP(&a.flags.userEmail, "user-email", "m", "", "git user email for tagging")
	flags.BoolVar(&a.flags.verbose, "verbose", false, "debug logging and streamed script output")

	root.AddCommand(
		newInitCmd(a),
		newReleaseCmd(a),
		newDeployCmd(a),
		newRollbackCmd(a),
		newStatusCmd(a),
	)

	return root
}
