// Package deploy orchestrates deployments to named targets.
// This file contains the sentinel errors reported by the Deployer.
package deploy

import (
	"github.com/chokrifaysal/releasy/errors"
)

var (
	// ErrTargetNotFound is returned when no configured target has the requested name.
	ErrTargetNotFound = errors.New(errors.CodeNotFound, "deployment target not found")

	// ErrNoTarget is returned when an operation needs a selected target.
	ErrNoTarget = errors.New(errors.CodeState, "no deployment target selected")

	// ErrInvalidConfig is returned for malformed targets and hooks.
	ErrInvalidConfig = errors.New(errors.CodeInvalidConfig, "invalid deployment configuration")

	// ErrInvalidVersion is returned when the requested version does not parse
	// or falls outside the target's version constraint.
	ErrInvalidVersion = errors.New(errors.CodeFormat, "invalid deployment version")

	// ErrHookFailed is returned when a pre- or post-deployment hook fails after all retries.
	ErrHookFailed = errors.New(errors.CodeExecutionFailed, "deployment hook failed")

	// ErrScriptFailed is returned when the target's deployment script fails.
	ErrScriptFailed = errors.New(errors.CodeExecutionFailed, "deployment script failed")

	// ErrNoPreviousVersion is returned by Rollback when there is nothing to roll back to.
	ErrNoPreviousVersion = errors.New(errors.CodeState, "no previous version to roll back to")

	// ErrRollbackFailed wraps the failure of a rollback deployment.
	ErrRollbackFailed = errors.New(errors.CodeExecutionFailed, "rollback failed")

	// ErrStatusFile is returned when a status file cannot be read or written.
	ErrStatusFile = errors.New(errors.CodeIO, "status file access failed")

	// ErrEnvFile is returned when a target's env file cannot be read or parsed.
	ErrEnvFile = errors.New(errors.CodeIO, "env file access failed")
)
