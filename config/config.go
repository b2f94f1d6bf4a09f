// Package config loads releasy configuration files.
//
// Configuration is JSON (default) or YAML. Every document is unified with an
// embedded CUE schema that fills defaults and rejects unknown or mistyped
// fields before anything is decoded:
//
//	{
//	  "log_path": "logs/releasy.log",
//	  "status_dir": "status",
//	  "release": {"type": "minor", "build_command": "make"},
//	  "targets": [
//	    {
//	      "name": "staging",
//	      "script_path": "scripts/deploy-staging.sh",
//	      "env_vars": ["DEPLOY_ENV=staging"],
//	      "hooks": {"pre": [{"id": "test", "script": "make test"}]}
//	    }
//	  ]
//	}
//
// Durations (timeout, retry_delay) are whole seconds.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/chokrifaysal/releasy/deploy"
	"github.com/chokrifaysal/releasy/semver"
)

// Config is a decoded configuration file.
type Config struct {
	LogPath     string   `json:"log_path,omitempty"    yaml:"log_path,omitempty"`
	DryRun      bool     `json:"dry_run"               yaml:"dry_run"`
	Verbose     bool     `json:"verbose"               yaml:"verbose"`
	StatusDir   string   `json:"status_dir"            yaml:"status_dir"`
	MetricsFile string   `json:"metrics_file,omitempty" yaml:"metrics_file,omitempty"`
	Release     Release  `json:"release"               yaml:"release"`
	Targets     []Target `json:"targets"               yaml:"targets"`
}

// Release configures the release flow.
type Release struct {
	Type            string `json:"type"                      yaml:"type"`
	CustomVersion   string `json:"custom_version,omitempty"  yaml:"custom_version,omitempty"`
	PrereleaseLabel string `json:"prerelease_label"          yaml:"prerelease_label"`
	CreateTag       bool   `json:"create_tag"                yaml:"create_tag"`
	CreateChangelog bool   `json:"create_changelog"          yaml:"create_changelog"`
	ChangelogPath   string `json:"changelog_path"            yaml:"changelog_path"`
	GroupByType     bool   `json:"group_by_type"             yaml:"group_by_type"`
	IncludeAuthors  bool   `json:"include_authors"           yaml:"include_authors"`
	BuildCommand    string `json:"build_command,omitempty"   yaml:"build_command,omitempty"`
	TestCommand     string `json:"test_command,omitempty"    yaml:"test_command,omitempty"`
	PublishCommand  string `json:"publish_command,omitempty" yaml:"publish_command,omitempty"`
	NotifyCommand   string `json:"notify_command,omitempty"  yaml:"notify_command,omitempty"`
	NotifyOnSuccess bool   `json:"notify_on_success"         yaml:"notify_on_success"`
	NotifyOnFailure bool   `json:"notify_on_failure"         yaml:"notify_on_failure"`
	DeployTarget    string `json:"deploy_target,omitempty"   yaml:"deploy_target,omitempty"`
}

// Kind returns the increment kind of the release.
func (r Release) Kind() (semver.Kind, error) {
	return semver.ParseKind(r.Type)
}

// IncrementArg returns the argument semver.Increment takes for kind: the
// custom version for custom releases, the label for prereleases.
func (r Release) IncrementArg(kind semver.Kind) string {
	switch kind {
	case semver.Custom:
		return r.CustomVersion
	case semver.Prerelease:
		return r.PrereleaseLabel
	default:
		return ""
	}
}

// Target is a deployment target as written in the configuration.
type Target struct {
	Name              string   `json:"name"                         yaml:"name"`
	Description       string   `json:"description,omitempty"        yaml:"description,omitempty"`
	ScriptPath        string   `json:"script_path,omitempty"        yaml:"script_path,omitempty"`
	WorkingDir        string   `json:"working_dir,omitempty"        yaml:"working_dir,omitempty"`
	StatusFile        string   `json:"status_file,omitempty"        yaml:"status_file,omitempty"`
	EnvFile           string   `json:"env_file,omitempty"           yaml:"env_file,omitempty"`
	Timeout           int      `json:"timeout"                      yaml:"timeout"`
	VerifySSL         bool     `json:"verify_ssl"                   yaml:"verify_ssl"`
	VersionConstraint string   `json:"version_constraint,omitempty" yaml:"version_constraint,omitempty"`
	Env               []string `json:"env,omitempty"                yaml:"env,omitempty"`
	EnvVars           []string `json:"env_vars,omitempty"           yaml:"env_vars,omitempty"`
	Hooks             Hooks    `json:"hooks"                        yaml:"hooks"`
}

// Hooks groups a target's hooks by phase.
type Hooks struct {
	Pre  []Hook `json:"pre,omitempty"  yaml:"pre,omitempty"`
	Post []Hook `json:"post,omitempty" yaml:"post,omitempty"`
}

// Hook is a hook as written in the configuration.
type Hook struct {
	ID          string   `json:"id,omitempty"          yaml:"id,omitempty"`
	Name        string   `json:"name,omitempty"        yaml:"name,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Script      string   `json:"script"                yaml:"script"`
	WorkingDir  string   `json:"working_dir,omitempty" yaml:"working_dir,omitempty"`
	Timeout     int      `json:"timeout"               yaml:"timeout"`
	RetryCount  int      `json:"retry_count"           yaml:"retry_count"`
	RetryDelay  int      `json:"retry_delay"           yaml:"retry_delay"`
	Env         []string `json:"env,omitempty"         yaml:"env,omitempty"`
}

// Target returns the target called name.
func (c *Config) Target(name string) (Target, bool) {
	for _, t := range c.Targets {
		if t.Name == name {
			return t, true
		}
	}
	return Target{}, false
}

// StatusFile returns where target name persists its state: its own
// status_file, or <status_dir>/<name>.json.
func (c *Config) StatusFile(name string) string {
	if t, ok := c.Target(name); ok && t.StatusFile != "" {
		return t.StatusFile
	}
	if c.StatusDir == "" {
		return ""
	}
	return filepath.Join(c.StatusDir, name+".json")
}

// DeployTargets converts the configured targets for the deployer.
func (c *Config) DeployTargets() []deploy.Target {
	out := make([]deploy.Target, 0, len(c.Targets))
	for _, t := range c.Targets {
		env := make([]string, 0, len(t.EnvVars)+len(t.Env))
		env = append(env, t.EnvVars...)
		env = append(env, t.Env...)

		out = append(out, deploy.Target{
			Name:              t.Name,
			Description:       t.Description,
			ScriptPath:        t.ScriptPath,
			WorkingDir:        t.WorkingDir,
			Env:               env,
			EnvFile:           t.EnvFile,
			StatusFile:        c.StatusFile(t.Name),
			Timeout:           seconds(t.Timeout),
			VerifySSL:         t.VerifySSL,
			VersionConstraint: t.VersionConstraint,
			PreHooks:          convertHooks(t.Hooks.Pre),
			PostHooks:         convertHooks(t.Hooks.Post),
		})
	}
	return out
}

// validate checks what the schema cannot express.
func (c *Config) validate() error {
	seen := make(map[string]bool, len(c.Targets))
	for _, t := range c.Targets {
		if seen[t.Name] {
			return fmt.Errorf("%w: duplicate target %q", ErrInvalidConfig, t.Name)
		}
		seen[t.Name] = true

		if t.VersionConstraint != "" {
			if _, err := semver.Satisfies(semver.Version{}, t.VersionConstraint); err != nil {
				return fmt.Errorf("%w: target %q: %w", ErrInvalidConfig, t.Name, err)
			}
		}
	}

	if c.Release.Type == "custom" {
		if _, err := semver.Parse(c.Release.CustomVersion); err != nil {
			return fmt.Errorf("%w: release.custom_version: %w", ErrInvalidConfig, err)
		}
	}

	if c.Release.DeployTarget != "" {
		if _, ok := c.Target(c.Release.DeployTarget); !ok {
			return fmt.Errorf("%w: release.deploy_target %q is not a configured target", ErrInvalidConfig, c.Release.DeployTarget)
		}
	}

	for _, t := range c.DeployTargets() {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}

func convertHooks(hooks []Hook) []deploy.Hook {
	if len(hooks) == 0 {
		return nil
	}
	out := make([]deploy.Hook, 0, len(hooks))
	for _, h := range hooks {
		out = append(out, deploy.Hook{
			ID:          h.ID,
			Name:        h.Name,
			Description: h.Description,
			Script:      h.Script,
			WorkingDir:  h.WorkingDir,
			Env:         h.Env,
			Timeout:     seconds(h.Timeout),
			RetryDelay:  seconds(h.RetryDelay),
			RetryCount:  h.RetryCount,
		})
	}
	return out
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
