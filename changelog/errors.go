// Package changelog builds Markdown changelogs from conventional commits.
// This file contains the sentinel errors reported by the package.
package changelog

import (
	"github.com/chokrifaysal/releasy/errors"
)

// ErrInvalidFormat is returned when a commit header has no "type: description" form.
var ErrInvalidFormat = errors.New(errors.CodeFormat, "commit message is not a conventional commit")

// ErrNoCommits is returned when there is nothing to write.
var ErrNoCommits = errors.New(errors.CodeState, "no commits to write")

// ErrFileAccess is returned when the changelog destination cannot be written.
var ErrFileAccess = errors.New(errors.CodeIO, "cannot write changelog file")
