// Command releasy automates releases and deployments.
// This file contains the status command.
package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chokrifaysal/releasy/config"
	"github.com/chokrifaysal/releasy/deploy"
)

type statusFlags struct {
	json bool
}

func newStatusCmd(a *app) *cobra.Command {
	var f statusFlags

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the persisted deployment status of targets",
		Long: `Prints the status file of the --env target, or of every configured target
when --env is not given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runStatus(cmd.Context(), f)
		},
	}

	cmd.Flags().BoolVar(&f.json, "json", false, "print the raw status documents")

	return cmd
}

func (a *app) runStatus(ctx context.Context, f statusFlags) error {
	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(cfg.Targets))
	if a.flags.env != "" {
		if _, ok := cfg.Target(a.flags.env); !ok {
			return fmt.Errorf("%w: %q", deploy.ErrTargetNotFound, a.flags.env)
		}
		names = append(names, a.flags.env)
	} else {
		for _, t := range cfg.Targets {
			names = append(names, t.Name)
		}
	}

	docs := make(map[string]*deploy.StatusFile, len(names))
	for _, name := range names {
		sf, err := a.readStatus(cfg, name)
		if err != nil {
			return err
		}
		docs[name] = sf
	}

	if f.json {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(docs)
	}

	for _, name := range names {
		a.printStatus(name, docs[name])
	}
	return nil
}

// readStatus returns the status file of target name, or nil when the target
// was never deployed.
func (a *app) readStatus(cfg *config.Config, name string) (*deploy.StatusFile, error) {
	path := cfg.StatusFile(name)
	if path == "" {
		return nil, nil
	}
	sf, err := deploy.ReadStatusFile(a.fs, path)
	if err != nil {
		if deploy.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return sf, nil
}

func (a *app) printStatus(name string, sf *deploy.StatusFile) {
	a.printf("%s\n", bold(name))
	if sf == nil {
		a.printf("  status:           %s\n", deploy.StatusNone)
		return
	}

	previous := sf.Previous()
	if previous == "" {
		previous = "-"
	}

	a.printf("  status:           %s\n", statusText(sf.Status))
	a.printf("  current version:  %s\n", sf.CurrentVersion)
	a.printf("  previous version: %s\n", previous)
	a.printf("  last deployment:  %s\n", sf.LastDeployment)

	if len(sf.History) > 0 {
		a.printf("  history:\n")
		for _, h := range sf.History {
			a.printf("    %s  %-10s %-12s %s\n", h.Timestamp, h.Version, h.Status, h.User)
		}
	}
}
