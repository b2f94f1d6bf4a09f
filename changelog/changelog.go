// Package changelog builds Markdown changelogs from conventional commits.
//
// A Generator walks the commits since the previous version tag and parses
// each into a CommitInfo. Entries are collected into a Changelog, which
// renders as:
//
//	# Changelog
//
//	## [1.1.0] - 2024-03-01
//
//	### feat
//
//	* **core:** add widgets [BREAKING] (Jane <jane@example.com>)
package changelog

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chokrifaysal/releasy/fs"
)

// Entry is the changelog section for one version.
type Entry struct {
	Version         string
	PreviousVersion string
	Date            string
	Commits         []CommitInfo
}

// Breaking returns the commits flagged as breaking.
func (e Entry) Breaking() []CommitInfo {
	var out []CommitInfo
	for _, c := range e.Commits {
		if c.IsBreaking {
			out = append(out, c)
		}
	}
	return out
}

// RenderOptions controls Markdown rendering.
type RenderOptions struct {
	// GroupByType renders one "### <type>" section per non-empty type.
	GroupByType bool

	// IncludeAuthors appends " (<author>)" to each line.
	IncludeAuthors bool
}

// Changelog is an ordered list of entries. Entries render in the order they
// were added.
type Changelog struct {
	Entries []Entry
}

// Add appends an entry.
func (c *Changelog) Add(e Entry) {
	c.Entries = append(c.Entries, e)
}

// Render writes the Markdown document to w. It fails with ErrNoCommits when
// the changelog has no entries or an entry has no commits.
func (c *Changelog) Render(w io.Writer, opts RenderOptions) error {
	if len(c.Entries) == 0 {
		return ErrNoCommits
	}
	for _, e := range c.Entries {
		if len(e.Commits) == 0 {
			return fmt.Errorf("%w: entry %s is empty", ErrNoCommits, e.Version)
		}
	}

	var b strings.Builder
	b.WriteString("# Changelog\n\n")

	for _, e := range c.Entries {
		b.WriteString("## [" + e.Version + "]")
		if e.Date != "" {
			b.WriteString(" - " + e.Date)
		}
		b.WriteString("\n")

		if opts.GroupByType {
			for _, t := range TypeOrder {
				writeGroup(&b, t, e.Commits, opts)
			}
		} else {
			b.WriteString("\n")
			for _, commit := range e.Commits {
				b.WriteString("* " + string(commit.Type) + ": ")
				writeLine(&b, commit, opts)
			}
		}

		b.WriteString("\n")
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("%w: %w", ErrFileAccess, err)
	}
	return nil
}

// Write renders the changelog and replaces the file at path.
func (c *Changelog) Write(fsys fs.Filesystem, path string, opts RenderOptions) error {
	var buf bytes.Buffer
	if err := c.Render(&buf, opts); err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w %s: %w", ErrFileAccess, path, err)
		}
	}

	if err := fsys.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("%w %s: %w", ErrFileAccess, path, err)
	}
	return nil
}

func writeGroup(b *strings.Builder, t CommitType, commits []CommitInfo, opts RenderOptions) {
	header := false
	for _, commit := range commits {
		if commit.Type != t {
			continue
		}
		if !header {
			b.WriteString("\n### " + string(t) + "\n\n")
			header = true
		}
		b.WriteString("* ")
		writeLine(b, commit, opts)
	}
}

func writeLine(b *strings.Builder, commit CommitInfo, opts RenderOptions) {
	if commit.Scope != "" {
		b.WriteString("**" + commit.Scope + ":** ")
	}
	b.WriteString(commit.Description)
	if commit.IsBreaking {
		b.WriteString(" [BREAKING]")
	}
	if opts.IncludeAuthors && commit.Author != "" {
		b.WriteString(" (" + commit.Author + ")")
	}
	b.WriteString("\n")
}
