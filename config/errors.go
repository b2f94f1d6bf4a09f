package config

import (
	"github.com/chokrifaysal/releasy/errors"
)

var (
	// ErrInvalidConfig is returned when a configuration fails to parse or
	// does not match the schema.
	ErrInvalidConfig = errors.New(errors.CodeInvalidConfig, "invalid configuration")

	// ErrNotFound is returned when no configuration file exists on the search path.
	ErrNotFound = errors.New(errors.CodeNotFound, "configuration file not found")

	// ErrExists is returned by WriteDefault when the destination already exists.
	ErrExists = errors.New(errors.CodeAlreadyExists, "configuration file already exists")
)
