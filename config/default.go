// Package config loads releasy configuration files.
// This file contains the default configuration scaffolded by init.
package config

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/chokrifaysal/releasy/fs"
	"github.com/chokrifaysal/releasy/semver"
)

// Default returns the configuration written by init: one staging target
// with a test pre-hook and a notification post-hook.
func Default() *Config {
	return &Config{
		LogPath:   "logs/releasy.log",
		Verbose:   true,
		StatusDir: "status",
		Release: Release{
			Type:            "patch",
			PrereleaseLabel: semver.DefaultPrereleaseLabel,
			CreateTag:       true,
			CreateChangelog: true,
			ChangelogPath:   "CHANGELOG.md",
			GroupByType:     true,
			NotifyOnSuccess: true,
			NotifyOnFailure: true,
		},
		Targets: []Target{
			{
				Name:        "staging",
				Description: "Staging environment",
				ScriptPath:  "scripts/deploy-staging.sh",
				WorkingDir:  ".",
				StatusFile:  "status/staging.json",
				Timeout:     300,
				VerifySSL:   true,
				EnvVars:     []string{"DEPLOY_ENV=staging", "APP_DEBUG=true"},
				Hooks: Hooks{
					Pre: []Hook{{
						ID:          "test",
						Name:        "Test deployment",
						Description: "Run test deployment",
						Script:      "scripts/test-deployment.sh",
						WorkingDir:  ".",
						Timeout:     60,
						RetryCount:  3,
						RetryDelay:  5,
						Env:         []string{"DEPLOY_TEST=true"},
					}},
					Post: []Hook{{
						ID:          "notify",
						Name:        "Send notification",
						Description: "Notify about deployment",
						Script:      "scripts/notify.sh",
						WorkingDir:  ".",
						Timeout:     30,
						RetryCount:  2,
						RetryDelay:  5,
						Env:         []string{"DEPLOY_NOTIFY=true"},
					}},
				},
			},
		},
	}
}

// Marshal encodes c in format.
func (c *Config) Marshal(format Format) ([]byte, error) {
	if format == FormatYAML {
		return yaml.Marshal(c)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// WriteDefault writes Default to path in the format implied by its
// extension. It fails with ErrExists rather than overwrite a file.
func WriteDefault(fsys fs.Filesystem, path string) error {
	exists, err := fsys.Exists(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrExists, path)
	}

	data, err := Default().Marshal(FormatOf(path))
	if err != nil {
		return fmt.Errorf("encode default configuration: %w", err)
	}
	return fs.WriteFileAtomic(fsys, path, data, 0o644)
}
