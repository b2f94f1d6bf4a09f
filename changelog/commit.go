// Package changelog builds Markdown changelogs from conventional commits.
// This file contains the commit model and message parsing.
package changelog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/leodido/go-conventionalcommits"
	"github.com/leodido/go-conventionalcommits/parser"
)

// CommitType classifies a commit by its conventional-commit type.
type CommitType string

// Recognised commit types. Anything else parses as TypeUnknown.
const (
	TypeFeat     CommitType = "feat"
	TypeFix      CommitType = "fix"
	TypeDocs     CommitType = "docs"
	TypeStyle    CommitType = "style"
	TypeRefactor CommitType = "refactor"
	TypePerf     CommitType = "perf"
	TypeTest     CommitType = "test"
	TypeBuild    CommitType = "build"
	TypeCI       CommitType = "ci"
	TypeChore    CommitType = "chore"
	TypeRevert   CommitType = "revert"
	TypeUnknown  CommitType = "unknown"
)

// TypeOrder is the order in which grouped sections are rendered.
var TypeOrder = []CommitType{
	TypeFeat, TypeFix, TypeDocs, TypeStyle, TypeRefactor, TypePerf,
	TypeTest, TypeBuild, TypeCI, TypeChore, TypeRevert, TypeUnknown,
}

// ParseCommitType matches s case-sensitively against the known types.
func ParseCommitType(s string) CommitType {
	for _, t := range TypeOrder {
		if t != TypeUnknown && string(t) == s {
			return t
		}
	}
	return TypeUnknown
}

// CommitInfo is one parsed commit.
type CommitInfo struct {
	Type        CommitType
	Scope       string
	Description string
	Body        string
	Footer      string
	IsBreaking  bool

	Hash   string
	Author string
	Date   string
}

// ParseCommit parses a commit message.
//
// The header is the first line, split on its first ':'. Before the colon the
// type runs up to the first '(' or '!', an optional scope sits between
// parentheses, and a '!' anywhere marks the commit breaking. The description
// is the rest of the header with leading whitespace removed. Body and footers
// come from the remaining lines; a BREAKING CHANGE footer also marks the
// commit breaking.
func ParseCommit(message string) (CommitInfo, error) {
	header, rest, _ := strings.Cut(message, "\n")
	header = strings.TrimRight(header, "\r")

	prefix, description, found := strings.Cut(header, ":")
	if !found {
		return CommitInfo{}, fmt.Errorf("%w: %q", ErrInvalidFormat, header)
	}

	info := CommitInfo{
		Description: strings.TrimLeft(description, " \t"),
		IsBreaking:  strings.Contains(prefix, "!"),
	}

	typeEnd := strings.IndexAny(prefix, "(!")
	if typeEnd < 0 {
		typeEnd = len(prefix)
	}
	info.Type = ParseCommitType(prefix[:typeEnd])

	if open := strings.IndexByte(prefix, '('); open >= 0 {
		if closing := strings.IndexByte(prefix[open:], ')'); closing >= 0 {
			info.Scope = prefix[open+1 : open+closing]
		}
	}

	info.Body, info.Footer = parseTrailer(message, rest)
	if hasBreakingFooter(rest) {
		info.IsBreaking = true
	}

	return info, nil
}

// parseTrailer extracts body and footers. The full message goes through the
// conventional-commit parser first; when that yields nothing the text after
// the header is used as the body.
func parseTrailer(message, rest string) (string, string) {
	machine := parser.NewMachine(
		parser.WithTypes(conventionalcommits.TypesFreeForm),
		parser.WithBestEffort(),
	)

	msg, _ := machine.Parse([]byte(message))
	if cc, ok := msg.(*conventionalcommits.ConventionalCommit); ok && cc != nil {
		var body string
		if cc.Body != nil {
			body = strings.TrimSpace(*cc.Body)
		}
		footer := renderFooters(cc.Footers)
		if body != "" || footer != "" {
			return body, footer
		}
	}

	return strings.TrimSpace(rest), ""
}

func renderFooters(footers map[string][]string) string {
	if len(footers) == 0 {
		return ""
	}

	keys := make([]string, 0, len(footers))
	for k := range footers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var lines []string
	for _, k := range keys {
		for _, v := range footers[k] {
			lines = append(lines, k+": "+v)
		}
	}
	return strings.Join(lines, "\n")
}

func hasBreakingFooter(rest string) bool {
	for _, line := range strings.Split(rest, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "BREAKING CHANGE:") || strings.HasPrefix(line, "BREAKING-CHANGE:") {
			return true
		}
	}
	return false
}
