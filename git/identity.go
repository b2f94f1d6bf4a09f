// Package git provides a task-oriented wrapper over go-git for release work.
// This file contains user identity resolution for commits and tags.
package git

import (
	"context"

	"github.com/go-git/go-git/v5/config"
)

// identitySource yields a partial identity; empty fields mean "not set here".
type identitySource struct {
	name  string
	fetch func() (string, string)
}

// EnsureUserConfig resolves the identity used to author tags and commits.
// Each field is taken from the first source that sets it:
//
//  1. the explicitly supplied name and email
//  2. the repository's own git config
//  3. the user's global git config
//  4. GIT_AUTHOR_NAME / GIT_AUTHOR_EMAIL
//  5. GIT_COMMITTER_NAME / GIT_COMMITTER_EMAIL
//
// It fails with ErrNoUserConfig when either field is still empty.
func (r *Repo) EnsureUserConfig(ctx context.Context, name, email string) (Signature, error) {
	sig := Signature{Name: name, Email: email}

	sources := []identitySource{
		{name: "repository config", fetch: func() (string, string) {
			cfg, err := r.repo.ConfigScoped(config.LocalScope)
			if err != nil {
				return "", ""
			}
			return userFromConfig(cfg)
		}},
		{name: "global config", fetch: func() (string, string) {
			cfg, err := r.options.GlobalConfig()
			if err != nil {
				return "", ""
			}
			return userFromConfig(cfg)
		}},
		{name: "author environment", fetch: func() (string, string) {
			return r.options.Getenv("GIT_AUTHOR_NAME"), r.options.Getenv("GIT_AUTHOR_EMAIL")
		}},
		{name: "committer environment", fetch: func() (string, string) {
			return r.options.Getenv("GIT_COMMITTER_NAME"), r.options.Getenv("GIT_COMMITTER_EMAIL")
		}},
	}

	for _, src := range sources {
		if sig.IsComplete() {
			break
		}
		n, e := src.fetch()
		if sig.Name == "" && n != "" {
			sig.Name = n
			r.logger.DebugContext(ctx, "resolved user name", "source", src.name)
		}
		if sig.Email == "" && e != "" {
			sig.Email = e
			r.logger.DebugContext(ctx, "resolved user email", "source", src.name)
		}
	}

	if !sig.IsComplete() {
		return Signature{}, WrapError(ErrNoUserConfig,
			"set user.name and user.email in git config, pass them explicitly, or export GIT_AUTHOR_NAME and GIT_AUTHOR_EMAIL")
	}

	return sig, nil
}

func userFromConfig(cfg *config.Config) (string, string) {
	if cfg == nil {
		return "", ""
	}
	return cfg.User.Name, cfg.User.Email
}
