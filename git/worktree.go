// Package git provides a task-oriented wrapper over go-git for release work.
// This file contains worktree operations (status, add, commit).
package git

import (
	"context"
	"strings"

	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/chokrifaysal/releasy/errors"
	"github.com/chokrifaysal/releasy/git/internal/fsbridge"
)

// IsDirty reports whether the index or worktree has any modification or any
// untracked file. Bare repositories are never dirty.
//
// The check is not atomic with whatever operation follows it; the working
// tree is assumed to be owned by the current process for the duration.
func (r *Repo) IsDirty(ctx context.Context) (bool, error) {
	if r.worktree == nil {
		return false, nil
	}

	if err := ctx.Err(); err != nil {
		return false, err
	}

	status, err := r.worktree.Status()
	if err != nil {
		return false, WrapError(err, "failed to get worktree status")
	}

	return !status.IsClean(), nil
}

// ensureClean fails with ErrDirtyRepo when the working tree is dirty.
func (r *Repo) ensureClean(ctx context.Context, op string) error {
	dirty, err := r.IsDirty(ctx)
	if err != nil {
		return err
	}
	r.dirty = dirty
	if dirty {
		return WrapErrorf(ErrDirtyRepo, "cannot %s", op)
	}
	return nil
}

// Add stages files in the worktree for the next commit.
// Glob patterns are expanded and paths that do not exist are ignored.
func (r *Repo) Add(ctx context.Context, paths ...string) error {
	if r.worktree == nil {
		return WrapError(ErrInvalidRef, "cannot add files in bare repository")
	}

	if len(paths) == 0 {
		return nil
	}

	billyFS, err := fsbridge.ToBillyFilesystem(r.fs)
	if err != nil {
		return WrapError(err, "failed to convert filesystem for glob operations")
	}

	workdirFS, err := billyFS.Chroot(r.options.Workdir)
	if err != nil {
		return WrapErrorf(err, "failed to chroot to workdir %q", r.options.Workdir)
	}

	var pathsToAdd []string
	for _, path := range paths {
		if path == "" {
			continue
		}

		if strings.ContainsAny(path, "*?[") {
			matches, globErr := util.Glob(workdirFS, path)
			if globErr != nil {
				return WrapErrorf(globErr, "invalid glob pattern %q", path)
			}
			pathsToAdd = append(pathsToAdd, matches...)
			continue
		}

		if _, statErr := workdirFS.Stat(path); statErr == nil {
			pathsToAdd = append(pathsToAdd, path)
		}
	}

	for _, path := range pathsToAdd {
		if _, err := r.worktree.Add(path); err != nil {
			return WrapErrorf(err, "failed to add path %q", path)
		}
	}

	return nil
}

// Commit creates a new commit with the specified message and author/committer.
// It returns the SHA of the new commit.
func (r *Repo) Commit(ctx context.Context, msg string, who Signature, opts CommitOpts) (string, error) {
	if r.worktree == nil {
		return "", WrapError(ErrInvalidRef, "cannot commit in bare repository")
	}

	if msg == "" {
		return "", WrapError(ErrInvalidRef, "commit message cannot be empty")
	}

	if !who.IsComplete() {
		return "", WrapError(ErrNoUserConfig, "committer name and email are required")
	}

	status, err := r.worktree.Status()
	if err != nil {
		return "", WrapError(err, "failed to get worktree status")
	}

	staged := 0
	for _, fileStatus := range status {
		if fileStatus.Staging != git.Untracked && fileStatus.Staging != git.Unmodified {
			staged++
		}
	}

	if staged == 0 && !opts.AllowEmpty {
		return "", WrapError(ErrEmptyCommit, "no changes staged for commit")
	}

	sig := &object.Signature{
		Name:  who.Name,
		Email: who.Email,
		When:  who.when(),
	}

	hash, err := r.worktree.Commit(msg, &git.CommitOptions{
		Author:            sig,
		Committer:         sig,
		AllowEmptyCommits: opts.AllowEmpty,
	})
	if err != nil {
		if errors.Is(err, git.ErrEmptyCommit) {
			return "", ErrEmptyCommit
		}
		return "", WrapError(err, "failed to create commit")
	}

	r.logger.DebugContext(ctx, "created commit", "hash", hash.String())

	return hash.String(), nil
}
