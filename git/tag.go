// Package git provides a task-oriented wrapper over go-git for release work.
// This file contains tag operations, including version tag ordering.
package git

import (
	"context"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/chokrifaysal/releasy/errors"
	"github.com/chokrifaysal/releasy/semver"
)

// TagFilter is a predicate function for filtering tags.
// It returns true if the tag should be included in the results.
type TagFilter func(name string, ref *plumbing.Reference) bool

// VersionTag is a tag whose name parses as a version.
type VersionTag struct {
	// Name is the tag name as stored, with or without a "v" prefix.
	Name string

	// Version is the parsed version.
	Version semver.Version
}

// CreateTag creates a tag named name at the target revision.
// An annotated tag is created when annotated is true and message is set;
// otherwise the tag is lightweight. The tagger defaults to the repository
// identity when who is incomplete.
func (r *Repo) CreateTag(ctx context.Context, name, target, message string, annotated bool, who Signature) error {
	if name == "" {
		return WrapError(ErrInvalidRef, "tag name cannot be empty")
	}

	if target == "" {
		return WrapError(ErrInvalidRef, "target revision cannot be empty")
	}

	hash, err := r.repo.ResolveRevision(plumbing.Revision(target))
	if err != nil {
		return WrapErrorf(ErrResolveFailed, "failed to resolve target revision %q", target)
	}

	if _, err := r.repo.Tag(name); err == nil {
		return WrapErrorf(ErrTagExists, "tag %s", name)
	}

	if annotated && message != "" {
		opts := &git.CreateTagOptions{Message: message}
		if who.IsComplete() {
			opts.Tagger = &object.Signature{Name: who.Name, Email: who.Email, When: who.when()}
		}
		if _, err := r.repo.CreateTag(name, *hash, opts); err != nil {
			return WrapError(err, "failed to create annotated tag")
		}
		return nil
	}

	ref := plumbing.NewHashReference(plumbing.NewTagReferenceName(name), *hash)
	if err := r.repo.Storer.SetReference(ref); err != nil {
		return WrapError(err, "failed to create lightweight tag")
	}

	return nil
}

// CreateVersionTag tags HEAD as v<version>. The working tree must be clean.
// An annotated tag with message "Release version <version>" is attempted
// first; if that fails a lightweight tag is written instead. It returns the
// tag name.
func (r *Repo) CreateVersionTag(ctx context.Context, version semver.Version, who Signature) (string, error) {
	if err := version.Validate(); err != nil {
		return "", err
	}

	if err := r.ensureClean(ctx, "create tag"); err != nil {
		return "", err
	}

	name := semver.TagName(version)
	if _, err := r.repo.Tag(name); err == nil {
		return "", WrapErrorf(ErrTagExists, "tag %s", name)
	}

	message := "Release version " + version.String()
	err := r.CreateTag(ctx, name, string(plumbing.HEAD), message, true, who)
	if err == nil {
		r.logger.InfoContext(ctx, "created annotated tag", "tag", name)
		return name, nil
	}
	if errors.Is(err, ErrTagExists) || errors.Is(err, ErrResolveFailed) {
		return "", err
	}

	r.logger.WarnContext(ctx, "annotated tag failed, falling back to lightweight tag",
		"tag", name,
		"error", err,
	)

	if err := r.CreateTag(ctx, name, string(plumbing.HEAD), "", false, who); err != nil {
		return "", err
	}

	r.logger.InfoContext(ctx, "created lightweight tag", "tag", name)
	return name, nil
}

// VerifyTag checks that name is an annotated tag carrying a tagger signature.
// Lightweight tags fail with ErrInvalidTag even though CreateVersionTag may
// fall back to writing one.
func (r *Repo) VerifyTag(ctx context.Context, name string) error {
	if name == "" {
		return WrapError(ErrInvalidRef, "tag name cannot be empty")
	}

	ref, err := r.repo.Tag(name)
	if err != nil {
		return WrapErrorf(ErrTagMissing, "tag %s", name)
	}

	tag, err := r.repo.TagObject(ref.Hash())
	if err != nil {
		return WrapErrorf(ErrInvalidTag, "tag %s is not annotated", name)
	}

	if tag.Tagger.Name == "" && tag.Tagger.Email == "" {
		return WrapErrorf(ErrInvalidTag, "tag %s has no tagger", name)
	}

	return nil
}

// DeleteTag deletes the specified tag from the repository.
// Returns ErrTagMissing if the tag does not exist.
func (r *Repo) DeleteTag(ctx context.Context, name string) error {
	if name == "" {
		return WrapError(ErrInvalidRef, "tag name cannot be empty")
	}

	if _, err := r.repo.Tag(name); err != nil {
		return WrapErrorf(ErrTagMissing, "tag %s", name)
	}

	if err := r.repo.DeleteTag(name); err != nil {
		return WrapError(err, "failed to delete tag")
	}

	return nil
}

// Tags returns the names of tags that pass all the provided filters,
// sorted alphabetically.
func (r *Repo) Tags(ctx context.Context, filters ...TagFilter) ([]string, error) {
	iter, err := r.repo.Tags()
	if err != nil {
		return nil, WrapError(err, "failed to get tags")
	}

	var tags []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		if shouldIncludeTag(name, ref, filters) {
			tags = append(tags, name)
		}
		return nil
	})
	if err != nil {
		return nil, WrapError(err, "failed to iterate tags")
	}

	sort.Strings(tags)
	return tags, nil
}

// ListTags returns every tag sorted in descending order. Version tags come
// first, highest version first; remaining names follow in descending string
// order. It fails with ErrNoTags when the repository has no tags.
func (r *Repo) ListTags(ctx context.Context) ([]string, error) {
	names, err := r.Tags(ctx)
	if err != nil {
		return nil, err
	}

	if len(names) == 0 {
		return nil, ErrNoTags
	}

	SortTagsDescending(names)
	return names, nil
}

// VersionTags returns the version tags of the repository, highest first.
// It fails with ErrNoTags when none qualify.
func (r *Repo) VersionTags(ctx context.Context) ([]VersionTag, error) {
	names, err := r.Tags(ctx, VersionTagFilter())
	if err != nil {
		return nil, err
	}

	tags := make([]VersionTag, 0, len(names))
	for _, name := range names {
		v, parseErr := semver.ParseTag(name)
		if parseErr != nil {
			continue
		}
		tags = append(tags, VersionTag{Name: name, Version: v})
	}

	if len(tags) == 0 {
		return nil, WrapError(ErrNoTags, "no version tags")
	}

	sort.SliceStable(tags, func(i, j int) bool {
		return semver.Compare(tags[i].Version, tags[j].Version) > 0
	})

	return tags, nil
}

// LatestVersion returns the highest version among the repository's version tags.
func (r *Repo) LatestVersion(ctx context.Context) (semver.Version, error) {
	tags, err := r.VersionTags(ctx)
	if err != nil {
		return semver.Version{}, err
	}
	return tags[0].Version, nil
}

// IsVersionTag reports whether name, stripped of an optional leading "v",
// parses as a version.
func IsVersionTag(name string) bool {
	return semver.IsVersionTag(name)
}

// SortTagsDescending sorts tag names in place: version tags first by
// descending version, then the rest by descending string order.
func SortTagsDescending(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		vi, errI := semver.ParseTag(names[i])
		vj, errJ := semver.ParseTag(names[j])
		switch {
		case errI == nil && errJ == nil:
			return semver.Compare(vi, vj) > 0
		case errI == nil:
			return true
		case errJ == nil:
			return false
		default:
			return names[i] > names[j]
		}
	})
}

// resolveTag resolves a tag to its commit, accepting a version with or
// without the "v" prefix.
func (r *Repo) resolveTag(name string) (string, plumbing.Hash, error) {
	candidates := []string{name}
	if !strings.HasPrefix(name, "v") && semver.IsVersionTag(name) {
		candidates = append(candidates, "v"+name)
	}

	for _, candidate := range candidates {
		if _, err := r.repo.Tag(candidate); err != nil {
			continue
		}
		hash, err := r.repo.ResolveRevision(plumbing.Revision(plumbing.NewTagReferenceName(candidate)))
		if err != nil {
			return "", plumbing.ZeroHash, WrapErrorf(ErrResolveFailed, "tag %s", candidate)
		}
		return candidate, *hash, nil
	}

	return "", plumbing.ZeroHash, WrapErrorf(ErrTagMissing, "tag %s", name)
}

// shouldIncludeTag checks if a tag passes all filters
func shouldIncludeTag(name string, ref *plumbing.Reference, filters []TagFilter) bool {
	for _, filter := range filters {
		if filter != nil && !filter(name, ref) {
			return false
		}
	}
	return true
}

// VersionTagFilter returns a filter that keeps only version tags.
func VersionTagFilter() TagFilter {
	return func(name string, _ *plumbing.Reference) bool {
		return semver.IsVersionTag(name)
	}
}
