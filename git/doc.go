// Package git provides the repository side of a release: version tags,
// working tree cleanliness, commit ranges and rollback.
//
// The package wraps go-git and operates exclusively through the releasy
// filesystem abstraction, so every operation works against both on-disk and
// in-memory repositories.
//
// # Basic Usage
//
// Locate and open the repository containing the current directory:
//
//	import (
//	    "context"
//	    billyfs "github.com/chokrifaysal/releasy/fs/billy"
//	    "github.com/chokrifaysal/releasy/git"
//	)
//
//	repo, err := git.Discover(context.Background(), &git.Options{
//	    FS:      billyfs.NewBaseOSFS(),
//	    Workdir: cwd,
//	})
//
// Open runs the dirty check immediately; Dirty and Branch report what it saw.
//
// # Version Tags
//
// Tags named "1.2.3" or "v1.2.3" are version tags. Releases are always
// written with the "v" prefix:
//
//	latest, err := repo.LatestVersion(ctx)
//	who, err := repo.EnsureUserConfig(ctx, "", "")
//	name, err := repo.CreateVersionTag(ctx, next, who)
//
// CreateVersionTag writes an annotated tag when it can and falls back to a
// lightweight one. VerifyTag only accepts annotated tags with a tagger.
//
// # Release Ranges
//
// CommitRange lists the commits reachable from a revision but not from the
// previous release, newest first:
//
//	commits, err := repo.CommitRange(ctx, "HEAD", "v1.0.0", git.DefaultMaxCommits)
//
// # Rollback
//
// Rollback checks out a tag and moves the current branch to it. It refuses
// to run on a dirty tree. The checkout and branch update are not atomic; a
// failure between them is logged as a partial rollback.
//
// # Error Handling
//
// Sentinel errors carry releasy error codes:
//
//	if errors.Is(err, git.ErrDirtyRepo) {
//	    // commit or stash first
//	}
//
// # Thread Safety
//
// A Repo instance is NOT safe for concurrent use.
package git
