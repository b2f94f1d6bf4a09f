// Package deploy provides deployment status tracking and persistence.
// This file contains the Status state machine values and the JSON status file.
package deploy

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/chokrifaysal/releasy/errors"
	"github.com/chokrifaysal/releasy/fs"
)

// Status is the state of the current deployment.
type Status int

const (
	StatusNone Status = iota
	StatusPending
	StatusRunning
	StatusSuccess
	StatusFailed
	StatusRolledBack
)

var statusNames = map[Status]string{
	StatusNone:       "none",
	StatusPending:    "pending",
	StatusRunning:    "running",
	StatusSuccess:    "success",
	StatusFailed:     "failed",
	StatusRolledBack: "rolled_back",
}

// String returns the status file spelling of s.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Terminal reports whether s ends a deployment.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed || s == StatusRolledBack
}

// ParseStatus is the inverse of Status.String.
func ParseStatus(name string) (Status, error) {
	for s, n := range statusNames {
		if n == name {
			return s, nil
		}
	}
	return StatusNone, fmt.Errorf("%w: unknown status %q", ErrStatusFile, name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// HistoryEntry records one finished deployment.
type HistoryEntry struct {
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
	Status    Status `json:"status"`
	User      string `json:"user"`
}

// StatusFile is the persisted state of a target.
type StatusFile struct {
	CurrentVersion  string         `json:"current_version"`
	PreviousVersion *string        `json:"previous_version"`
	Status          Status         `json:"status"`
	LastDeployment  string         `json:"last_deployment"`
	History         []HistoryEntry `json:"history"`
}

// Previous returns the previous version, or "" when there is none.
func (s *StatusFile) Previous() string {
	if s.PreviousVersion == nil {
		return ""
	}
	return *s.PreviousVersion
}

// ReadStatusFile loads the status file at path. A missing file yields an
// error wrapping os.ErrNotExist.
func ReadStatusFile(fsys fs.Filesystem, path string) (*StatusFile, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrStatusFile, path, err)
	}

	var sf StatusFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return nil, errors.WrapWithContext(
			fmt.Errorf("%w: %w", ErrStatusFile, err),
			errors.CodeFormat,
			"malformed status file",
			map[string]interface{}{"path": path},
		)
	}
	return &sf, nil
}

// update is one transition to merge into a status file.
type update struct {
	current  string
	previous string
	status   Status
	user     string
	at       time.Time
}

// writeStatus merges u into the status file at path. Unreadable or missing
// files start fresh. Terminal transitions append to the history.
func writeStatus(fsys fs.Filesystem, path string, u update) (*StatusFile, error) {
	sf, err := ReadStatusFile(fsys, path)
	if err != nil {
		sf = &StatusFile{}
	}

	stamp := u.at.UTC().Format(time.RFC3339)
	sf.CurrentVersion = u.current
	sf.PreviousVersion = nil
	if u.previous != "" {
		prev := u.previous
		sf.PreviousVersion = &prev
	}
	sf.Status = u.status
	sf.LastDeployment = stamp

	if u.status.Terminal() {
		sf.History = append(sf.History, HistoryEntry{
			Version:   u.current,
			Timestamp: stamp,
			Status:    u.status,
			User:      u.user,
		})
	}
	if sf.History == nil {
		sf.History = []HistoryEntry{}
	}

	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStatusFile, err)
	}
	data = append(data, '\n')

	if err := fs.WriteFileAtomic(fsys, path, data, 0o644); err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrStatusFile, path, err)
	}
	return sf, nil
}

// IsNotExist reports whether err means the status file does not exist.
func IsNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
