// Package semver provides semantic version parsing, comparison and increment.
// This file contains the sentinel errors reported by the package.
package semver

import (
	"github.com/chokrifaysal/releasy/errors"
)

// ErrInvalidFormat is returned when text is not MAJOR.MINOR.PATCH[-PRERELEASE][+BUILD].
var ErrInvalidFormat = errors.New(errors.CodeFormat, "invalid version format")

// ErrInvalidMajor is returned when the major component is malformed.
var ErrInvalidMajor = errors.New(errors.CodeFormat, "invalid major version")

// ErrInvalidMinor is returned when the minor component is malformed.
var ErrInvalidMinor = errors.New(errors.CodeFormat, "invalid minor version")

// ErrInvalidPatch is returned when the patch component is malformed.
var ErrInvalidPatch = errors.New(errors.CodeFormat, "invalid patch version")

// ErrInvalidPrerelease is returned when the prerelease identifiers are malformed.
var ErrInvalidPrerelease = errors.New(errors.CodeFormat, "invalid prerelease")

// ErrInvalidBuild is returned when the build metadata is malformed.
var ErrInvalidBuild = errors.New(errors.CodeFormat, "invalid build metadata")

// ErrInvalidIncrement is returned when an increment cannot produce a greater version.
var ErrInvalidIncrement = errors.New(errors.CodeFormat, "invalid version increment")

// ErrInvalidConstraint is returned when a version constraint cannot be parsed.
var ErrInvalidConstraint = errors.New(errors.CodeInvalidConfig, "invalid version constraint")
