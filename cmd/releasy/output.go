// Command releasy automates releases and deployments.
// This file contains terminal colors and status formatting.
package main

import (
	"github.com/fatih/color"

	"github.com/chokrifaysal/releasy/deploy"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// statusText colors a deployment status for the terminal.
func statusText(s deploy.Status) string {
	switch s {
	case deploy.StatusSuccess:
		return green(s.String())
	case deploy.StatusFailed:
		return red(s.String())
	case deploy.StatusRolledBack, deploy.StatusPending, deploy.StatusRunning:
		return yellow(s.String())
	default:
		return s.String()
	}
}

const dryRunNotice = "[DRY RUN] No changes will be made"
