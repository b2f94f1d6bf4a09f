// Package git provides a task-oriented wrapper over go-git for release work.
// This file contains history operations: the commits between two releases.
package git

import (
	"context"
	"strings"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// DefaultMaxCommits bounds the number of commits returned by CommitRange.
const DefaultMaxCommits = 1000

// Commit is a commit as seen by release tooling.
type Commit struct {
	Hash        string
	Message     string
	AuthorName  string
	AuthorEmail string
	AuthorWhen  time.Time
}

// Author renders the commit author as "Name <email>".
func (c Commit) Author() string {
	return c.AuthorName + " <" + c.AuthorEmail + ">"
}

// Subject returns the first line of the commit message.
func (c Commit) Subject() string {
	subject, _, _ := strings.Cut(c.Message, "\n")
	return strings.TrimRight(subject, "\r")
}

// CommitRange returns the commits reachable from to but not from from,
// newest first, stopping silently after limit commits. An empty from walks
// the whole history of to. A non-positive limit uses DefaultMaxCommits.
func (r *Repo) CommitRange(ctx context.Context, to, from string, limit int) ([]Commit, error) {
	if to == "" {
		to = string(plumbing.HEAD)
	}
	if limit <= 0 {
		limit = DefaultMaxCommits
	}

	toHash, err := r.repo.ResolveRevision(plumbing.Revision(to))
	if err != nil {
		return nil, WrapErrorf(ErrResolveFailed, "failed to resolve %q", to)
	}

	head, err := r.repo.CommitObject(*toHash)
	if err != nil {
		return nil, WrapErrorf(err, "failed to load commit %s", toHash)
	}

	excluded := map[plumbing.Hash]bool{}
	if from != "" {
		fromHash, resolveErr := r.repo.ResolveRevision(plumbing.Revision(from))
		if resolveErr != nil {
			return nil, WrapErrorf(ErrResolveFailed, "failed to resolve %q", from)
		}

		base, commitErr := r.repo.CommitObject(*fromHash)
		if commitErr != nil {
			return nil, WrapErrorf(commitErr, "failed to load commit %s", fromHash)
		}

		ancestors := object.NewCommitPreorderIter(base, nil, nil)
		err = ancestors.ForEach(func(c *object.Commit) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			excluded[c.Hash] = true
			return nil
		})
		ancestors.Close()
		if err != nil {
			return nil, WrapError(err, "failed to walk previous release history")
		}
	}

	if excluded[head.Hash] {
		return nil, nil
	}

	iter := object.NewCommitIterCTime(head, excluded, nil)
	defer iter.Close()

	return collectCommits(ctx, iter, limit)
}

func collectCommits(ctx context.Context, iter object.CommitIter, limit int) ([]Commit, error) {
	var commits []Commit
	err := iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if limit > 0 && len(commits) >= limit {
			return storer.ErrStop
		}
		commits = append(commits, Commit{
			Hash:        c.Hash.String(),
			Message:     c.Message,
			AuthorName:  c.Author.Name,
			AuthorEmail: c.Author.Email,
			AuthorWhen:  c.Author.When,
		})
		return nil
	})
	if err != nil {
		return nil, WrapError(err, "failed to iterate commits")
	}
	return commits, nil
}
