// Package release runs the end-to-end release flow.
// This file contains the sentinel errors returned by the releaser.
package release

import (
	"github.com/chokrifaysal/releasy/errors"
)

var (
	// ErrBuildFailed is returned when the configured build command fails.
	ErrBuildFailed = errors.New(errors.CodeExecutionFailed, "build command failed")

	// ErrTestFailed is returned when the configured test command fails.
	ErrTestFailed = errors.New(errors.CodeExecutionFailed, "test command failed")

	// ErrPublishFailed is returned when the configured publish command fails.
	ErrPublishFailed = errors.New(errors.CodeExecutionFailed, "publish command failed")

	// ErrNotifyFailed is recorded in Result.NotifyErr when the notify
	// command fails.
	ErrNotifyFailed = errors.New(errors.CodeExecutionFailed, "notify command failed")

	// ErrDeployFailed is returned when deploying the new version fails.
	ErrDeployFailed = errors.New(errors.CodeExecutionFailed, "release deployment failed")

	// ErrInvalidOptions is returned when the releaser is misconfigured.
	ErrInvalidOptions = errors.New(errors.CodeInvalidConfig, "invalid release options")
)
