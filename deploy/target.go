// Package deploy provides deployment target definitions.
// This file contains Target and Hook, their defaults and validation.
package deploy

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultHookTimeout bounds a single hook attempt.
	DefaultHookTimeout = 300 * time.Second

	// DefaultRetryCount is the number of extra attempts a failing hook gets.
	DefaultRetryCount = 3

	// DefaultRetryDelay is the pause between hook attempts.
	DefaultRetryDelay = 5 * time.Second
)

// Hook is a shell command run before or after the deployment script.
type Hook struct {
	ID          string
	Name        string
	Description string
	Script      string
	WorkingDir  string

	// Env holds KEY=VALUE overrides applied only to the hook's process.
	Env []string

	// Timeout bounds each attempt. Zero disables the limit.
	Timeout    time.Duration
	RetryDelay time.Duration
	RetryCount int
}

// NewHook returns a hook with default timeout and retry settings.
func NewHook(name, script string) Hook {
	return Hook{
		ID:         name,
		Name:       name,
		Script:     script,
		Timeout:    DefaultHookTimeout,
		RetryCount: DefaultRetryCount,
		RetryDelay: DefaultRetryDelay,
	}
}

// Label returns the most descriptive identifier available.
func (h Hook) Label() string {
	switch {
	case h.Name != "":
		return h.Name
	case h.ID != "":
		return h.ID
	default:
		return "unnamed"
	}
}

// Validate checks the hook is runnable.
func (h Hook) Validate() error {
	if strings.TrimSpace(h.Script) == "" {
		return fmt.Errorf("%w: hook %q has no script", ErrInvalidConfig, h.Label())
	}
	if h.RetryCount < 0 {
		return fmt.Errorf("%w: hook %q has negative retry_count", ErrInvalidConfig, h.Label())
	}
	if h.Timeout < 0 || h.RetryDelay < 0 {
		return fmt.Errorf("%w: hook %q has negative duration", ErrInvalidConfig, h.Label())
	}
	for _, kv := range h.Env {
		if err := validateEnv(kv); err != nil {
			return fmt.Errorf("%w: hook %q: %w", ErrInvalidConfig, h.Label(), err)
		}
	}
	return nil
}

// Target is a named deployment environment.
type Target struct {
	Name        string
	Description string

	// ScriptPath is run through the shell. Empty means there is no main step.
	ScriptPath string
	WorkingDir string

	// Env holds KEY=VALUE overrides applied to every process of the target.
	Env []string

	// EnvFile is a dotenv file loaded before Env.
	EnvFile string

	// StatusFile is where deployment state is persisted. Empty disables persistence.
	StatusFile string

	// Timeout bounds the deployment script. Zero disables the limit.
	Timeout time.Duration

	// VerifySSL is exported to child processes as RELEASY_VERIFY_SSL.
	VerifySSL bool

	// VersionConstraint restricts deployable versions, e.g. ">=1.0.0".
	VersionConstraint string

	PreHooks  []Hook
	PostHooks []Hook
}

// Validate checks the target and its hooks.
func (t Target) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: target has no name", ErrInvalidConfig)
	}
	if t.Timeout < 0 {
		return fmt.Errorf("%w: target %q has negative timeout", ErrInvalidConfig, t.Name)
	}
	for _, kv := range t.Env {
		if err := validateEnv(kv); err != nil {
			return fmt.Errorf("%w: target %q: %w", ErrInvalidConfig, t.Name, err)
		}
	}
	for _, hooks := range [][]Hook{t.PreHooks, t.PostHooks} {
		for _, h := range hooks {
			if err := h.Validate(); err != nil {
				return fmt.Errorf("target %q: %w", t.Name, err)
			}
		}
	}
	return nil
}

func validateEnv(kv string) error {
	key, _, ok := strings.Cut(kv, "=")
	if !ok || key == "" {
		return fmt.Errorf("env entry %q is not KEY=VALUE", kv)
	}
	return nil
}
