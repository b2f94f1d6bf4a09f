// Package git provides a task-oriented wrapper over go-git for release work.
// This file contains revision resolution.
package git

import (
	"context"

	"github.com/go-git/go-git/v5/plumbing"
)

// RefKind represents the type of git reference.
type RefKind int

const (
	// RefBranch indicates a local branch reference (refs/heads/*).
	RefBranch RefKind = iota

	// RefTag indicates a tag reference (refs/tags/*).
	RefTag

	// RefCommit indicates a commit hash (not a symbolic reference).
	RefCommit

	// RefOther indicates any other type of reference, including HEAD.
	RefOther
)

// String returns a human-readable string representation of the RefKind.
func (k RefKind) String() string {
	switch k {
	case RefBranch:
		return "branch"
	case RefTag:
		return "tag"
	case RefCommit:
		return "commit"
	case RefOther:
		return "other"
	default:
		return "unknown"
	}
}

// ResolvedRef represents a resolved reference with its kind and commit hash.
type ResolvedRef struct {
	// Kind indicates the type of reference.
	Kind RefKind

	// Hash is the resolved commit hash in full SHA-1 format.
	Hash string

	// CanonicalName is the full reference name (e.g., "refs/tags/v1.0.0").
	// For commit hashes this is the hash itself.
	CanonicalName string
}

// Resolve resolves a revision specification to the commit it names.
// Annotated tags are peeled to their commit.
func (r *Repo) Resolve(ctx context.Context, rev string) (*ResolvedRef, error) {
	if rev == "" {
		return nil, WrapError(ErrInvalidRef, "revision cannot be empty")
	}

	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, WrapErrorf(ErrResolveFailed, "failed to resolve revision %q", rev)
	}

	kind, canonicalName := r.classify(rev, *hash)

	return &ResolvedRef{
		Kind:          kind,
		Hash:          hash.String(),
		CanonicalName: canonicalName,
	}, nil
}

func (r *Repo) classify(rev string, hash plumbing.Hash) (RefKind, string) {
	if rev == string(plumbing.HEAD) {
		return RefOther, rev
	}

	if _, err := r.repo.Reference(plumbing.NewBranchReferenceName(rev), false); err == nil {
		return RefBranch, plumbing.NewBranchReferenceName(rev).String()
	}

	if _, err := r.repo.Reference(plumbing.NewTagReferenceName(rev), false); err == nil {
		return RefTag, plumbing.NewTagReferenceName(rev).String()
	}

	if ref, err := r.repo.Reference(plumbing.ReferenceName(rev), false); err == nil {
		switch {
		case ref.Name().IsBranch():
			return RefBranch, ref.Name().String()
		case ref.Name().IsTag():
			return RefTag, ref.Name().String()
		default:
			return RefOther, ref.Name().String()
		}
	}

	return RefCommit, hash.String()
}
