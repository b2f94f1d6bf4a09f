// Package git provides sentinel errors for repository operations.
// All errors can be checked using errors.Is() for programmatic handling and
// carry a releasy error code retrievable with errors.CodeOf.
package git

import (
	"fmt"

	"github.com/chokrifaysal/releasy/errors"
)

// ErrRepoNotFound is returned when no repository exists at or above the requested path.
var ErrRepoNotFound = errors.New(errors.CodeNotFound, "repository not found")

// ErrDirtyRepo is returned when an operation requires a clean working tree
// but the index or worktree has modifications or untracked files.
var ErrDirtyRepo = errors.New(errors.CodeState, "repository has uncommitted changes")

// ErrNoTags is returned when the repository has no tags, or no version tags
// when only version tags qualify.
var ErrNoTags = errors.New(errors.CodeNotFound, "no tags found")

// ErrInvalidTag is returned when a tag fails verification, for example when it
// is a lightweight tag with no tagger signature.
var ErrInvalidTag = errors.New(errors.CodeFormat, "invalid tag")

// ErrTagExists is returned when attempting to create a tag that already exists.
var ErrTagExists = errors.New(errors.CodeAlreadyExists, "tag already exists")

// ErrTagMissing is returned when attempting to operate on a tag that does not exist.
var ErrTagMissing = errors.New(errors.CodeNotFound, "tag does not exist")

// ErrRollbackFailed is returned when a rollback checkout or reference update fails.
var ErrRollbackFailed = errors.New(errors.CodeState, "rollback failed")

// ErrNoUserConfig is returned when no user name and email can be resolved.
var ErrNoUserConfig = errors.New(errors.CodeNotFound, "no git user identity configured")

// ErrInvalidRef is returned when a reference name, revision or option is malformed.
var ErrInvalidRef = errors.New(errors.CodeFormat, "invalid reference")

// ErrResolveFailed is returned when a revision specification cannot be resolved
// to a valid commit hash.
var ErrResolveFailed = errors.New(errors.CodeNotFound, "cannot resolve revision")

// ErrEmptyCommit is returned when a commit would record no changes.
var ErrEmptyCommit = errors.New(errors.CodeState, "empty commit")

// WrapError wraps an error with additional context while preserving
// the ability to check against sentinel errors using errors.Is().
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// WrapErrorf wraps an error with formatted additional context while preserving
// the ability to check against sentinel errors using errors.Is().
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
