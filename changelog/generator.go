// Package changelog builds Markdown changelogs from conventional commits.
// This file contains changelog generation from repository history.
package changelog

import (
	"context"
	"log/slog"
	"time"

	"github.com/chokrifaysal/releasy/errors"
	"github.com/chokrifaysal/releasy/git"
	"github.com/chokrifaysal/releasy/semver"
)

// DateFormat is the layout of entry and commit dates.
const DateFormat = "2006-01-02"

// History is the repository view the generator needs.
// *git.Repo satisfies it.
type History interface {
	VersionTags(ctx context.Context) ([]git.VersionTag, error)
	CommitRange(ctx context.Context, to, from string, limit int) ([]git.Commit, error)
}

// Options configures a Generator.
type Options struct {
	// Ref is the revision the walk starts from. Defaults to HEAD.
	Ref string

	// MaxCommits bounds the walk. Defaults to git.DefaultMaxCommits.
	MaxCommits int

	// Logger receives skipped-commit notices. Defaults to a discarding logger.
	Logger *slog.Logger

	// Now supplies the entry date. Defaults to time.Now.
	Now func() time.Time
}

func (o *Options) applyDefaults() {
	if o.Ref == "" {
		o.Ref = "HEAD"
	}
	if o.MaxCommits <= 0 {
		o.MaxCommits = git.DefaultMaxCommits
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Generator produces changelog entries from repository history.
type Generator struct {
	history History
	opts    Options
}

// NewGenerator creates a Generator reading from history.
func NewGenerator(history History, opts Options) *Generator {
	opts.applyDefaults()
	return &Generator{history: history, opts: opts}
}

// PreviousVersion returns the highest version tag strictly lower than version.
// The boolean is false when no such tag exists.
func (g *Generator) PreviousVersion(ctx context.Context, version semver.Version) (git.VersionTag, bool, error) {
	tags, err := g.history.VersionTags(ctx)
	if err != nil {
		if errors.Is(err, git.ErrNoTags) {
			return git.VersionTag{}, false, nil
		}
		return git.VersionTag{}, false, err
	}

	for _, tag := range tags {
		if semver.Compare(tag.Version, version) < 0 {
			return tag, true, nil
		}
	}

	return git.VersionTag{}, false, nil
}

// Generate builds the entry for version from the commits made since the
// previous version tag. Commits whose header is not a conventional commit are
// logged and skipped. The walk is newest first and stops silently at
// MaxCommits.
func (g *Generator) Generate(ctx context.Context, version semver.Version) (Entry, error) {
	entry := Entry{
		Version: version.String(),
		Date:    g.opts.Now().Format(DateFormat),
	}

	prev, found, err := g.PreviousVersion(ctx, version)
	if err != nil {
		return Entry{}, err
	}

	from := ""
	if found {
		entry.PreviousVersion = prev.Version.String()
		from = prev.Name
	}

	commits, err := g.history.CommitRange(ctx, g.opts.Ref, from, g.opts.MaxCommits)
	if err != nil {
		return Entry{}, err
	}

	for _, c := range commits {
		info, parseErr := ParseCommit(c.Message)
		if parseErr != nil {
			g.opts.Logger.WarnContext(ctx, "skipping commit",
				"hash", c.Hash,
				"subject", c.Subject(),
				"error", parseErr,
			)
			continue
		}

		info.Hash = c.Hash
		info.Author = c.Author()
		info.Date = c.AuthorWhen.Format(DateFormat)
		entry.Commits = append(entry.Commits, info)
	}

	g.opts.Logger.InfoContext(ctx, "generated changelog entry",
		"version", entry.Version,
		"previous", entry.PreviousVersion,
		"commits", len(entry.Commits),
		"walked", len(commits),
	)

	return entry, nil
}
