// Command releasy automates releases and deployments.
// This file contains CLI-level sentinel errors.
package main

import "github.com/chokrifaysal/releasy/errors"

// ErrEnvRequired is returned by commands that act on one target when --env
// is missing.
var ErrEnvRequired = errors.New(errors.CodeInvalidConfig, "target environment is required (use --env)")
