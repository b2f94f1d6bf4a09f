// Package executor runs external commands.
// This file contains the sentinel errors for failed and timed out commands.
package executor

import (
	"github.com/chokrifaysal/releasy/errors"
)

var (
	// ErrExecutionFailed is returned when a command exits non-zero, is killed
	// by a signal or cannot be started.
	ErrExecutionFailed = errors.New(errors.CodeExecutionFailed, "command execution failed")

	// ErrTimeout is returned when an attempt exceeds its timeout.
	ErrTimeout = errors.New(errors.CodeTimeout, "command timed out")
)
