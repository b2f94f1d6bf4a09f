// Package git provides a task-oriented wrapper over go-git for release work.
// This file contains branch operations and rollback to a tagged release.
package git

import (
	"context"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// CurrentBranch returns the name of the currently checked out branch.
// It returns an error if HEAD is detached or unborn.
func (r *Repo) CurrentBranch(ctx context.Context) (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", WrapError(err, "failed to get HEAD reference")
	}

	if !head.Name().IsBranch() {
		return "", WrapError(ErrResolveFailed, "HEAD is detached")
	}

	return head.Name().Short(), nil
}

// Rollback checks out the tree of tag and moves the current branch to the
// tag's commit. The working tree must be clean. Untracked files are never
// removed by the checkout.
//
// The checkout and the branch update are two separate steps. If the branch
// update fails after a successful checkout the working tree already matches
// the tag while the branch still points at the old commit; this is logged as
// a partial rollback and reported as ErrRollbackFailed.
func (r *Repo) Rollback(ctx context.Context, tag string) error {
	if r.worktree == nil {
		return WrapError(ErrRollbackFailed, "cannot roll back a bare repository")
	}

	if tag == "" {
		return WrapError(ErrInvalidRef, "tag cannot be empty")
	}

	if err := r.ensureClean(ctx, "roll back"); err != nil {
		return err
	}

	name, hash, err := r.resolveTag(tag)
	if err != nil {
		return fmt.Errorf("rollback to %s: %w: %w", tag, ErrRollbackFailed, err)
	}

	branch := plumbing.ReferenceName("")
	if head, headErr := r.repo.Head(); headErr == nil && head.Name().IsBranch() {
		branch = head.Name()
	}

	r.logger.InfoContext(ctx, "rolling back",
		"tag", name,
		"commit", hash.String(),
		"branch", branch.Short(),
	)

	if err := r.worktree.Checkout(&git.CheckoutOptions{Hash: hash}); err != nil {
		return fmt.Errorf("checkout %s: %w: %w", name, ErrRollbackFailed, err)
	}

	if branch == "" {
		r.logger.WarnContext(ctx, "HEAD was detached; leaving it at the rolled back commit", "tag", name)
		return nil
	}

	if err := r.repo.Storer.SetReference(plumbing.NewHashReference(branch, hash)); err != nil {
		r.logger.ErrorContext(ctx, "partial rollback: worktree checked out but branch not updated",
			"tag", name,
			"branch", branch.Short(),
			"error", err,
		)
		return fmt.Errorf("update branch %s: %w: %w", branch.Short(), ErrRollbackFailed, err)
	}

	if err := r.repo.Storer.SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, branch)); err != nil {
		r.logger.ErrorContext(ctx, "partial rollback: branch updated but HEAD left detached",
			"tag", name,
			"branch", branch.Short(),
			"error", err,
		)
		return fmt.Errorf("reattach HEAD to %s: %w: %w", branch.Short(), ErrRollbackFailed, err)
	}

	r.branch = branch.Short()

	return nil
}
