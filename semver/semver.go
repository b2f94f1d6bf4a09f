// Package semver provides semantic version parsing, comparison and increment.
//
// Versions follow MAJOR.MINOR.PATCH[-PRERELEASE][+BUILD]. Numeric components
// carry no leading zeros; prerelease and build are dot-separated identifiers
// made of [0-9A-Za-z-].
package semver

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a parsed semantic version.
type Version struct {
	Major      uint64
	Minor      uint64
	Patch      uint64
	Prerelease string
	Build      string
}

// Parse parses text into a Version.
// Every failure wraps ErrInvalidFormat and, when the offending component is
// known, the component-specific sentinel as well.
func Parse(text string) (Version, error) {
	var v Version

	if text == "" {
		return v, fmt.Errorf("%w: empty string", ErrInvalidFormat)
	}

	core := text
	if i := strings.IndexByte(core, '+'); i >= 0 {
		v.Build = core[i+1:]
		core = core[:i]
		if err := checkIdentifiers(v.Build); err != nil {
			return Version{}, fmt.Errorf("%w: %w %q: %s", ErrInvalidFormat, ErrInvalidBuild, text, err.Error())
		}
	}

	if i := strings.IndexByte(core, '-'); i >= 0 {
		v.Prerelease = core[i+1:]
		core = core[:i]
		if err := checkIdentifiers(v.Prerelease); err != nil {
			return Version{}, fmt.Errorf("%w: %w %q: %s", ErrInvalidFormat, ErrInvalidPrerelease, text, err.Error())
		}
	}

	parts := strings.Split(core, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("%w: %q must have three numeric components", ErrInvalidFormat, text)
	}

	components := []struct {
		dst *uint64
		err error
	}{
		{&v.Major, ErrInvalidMajor},
		{&v.Minor, ErrInvalidMinor},
		{&v.Patch, ErrInvalidPatch},
	}
	for i, c := range components {
		n, err := parseNumeric(parts[i])
		if err != nil {
			return Version{}, fmt.Errorf("%w: %w %q: %s", ErrInvalidFormat, c.err, text, err.Error())
		}
		*c.dst = n
	}

	return v, nil
}

// MustParse is like Parse but panics on error.
func MustParse(text string) Version {
	v, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return v
}

// Validate re-checks the character-set invariants of a hand-built Version.
func (v Version) Validate() error {
	if v.Prerelease != "" {
		if err := checkIdentifiers(v.Prerelease); err != nil {
			return fmt.Errorf("%w: %w: %s", ErrInvalidFormat, ErrInvalidPrerelease, err.Error())
		}
	}
	if v.Build != "" {
		if err := checkIdentifiers(v.Build); err != nil {
			return fmt.Errorf("%w: %w: %s", ErrInvalidFormat, ErrInvalidBuild, err.Error())
		}
	}
	return nil
}

// String returns the canonical form of the version.
func (v Version) String() string {
	var b strings.Builder
	b.WriteString(strconv.FormatUint(v.Major, 10))
	b.WriteByte('.')
	b.WriteString(strconv.FormatUint(v.Minor, 10))
	b.WriteByte('.')
	b.WriteString(strconv.FormatUint(v.Patch, 10))
	if v.Prerelease != "" {
		b.WriteByte('-')
		b.WriteString(v.Prerelease)
	}
	if v.Build != "" {
		b.WriteByte('+')
		b.WriteString(v.Build)
	}
	return b.String()
}

// Core returns the version without prerelease and build metadata.
func (v Version) Core() Version {
	return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch}
}

// IsZero reports whether v is the zero value.
func (v Version) IsZero() bool {
	return v == Version{}
}

// ParseTag parses a tag name, accepting an optional leading "v".
func ParseTag(name string) (Version, error) {
	return Parse(strings.TrimPrefix(name, "v"))
}

// IsVersionTag reports whether name, stripped of an optional leading "v",
// parses as a version.
func IsVersionTag(name string) bool {
	_, err := ParseTag(name)
	return err == nil
}

// TagName returns the tag name written for v.
func TagName(v Version) string {
	return "v" + v.String()
}

func parseNumeric(s string) (uint64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty component")
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("non-digit %q", s[i])
		}
	}
	if len(s) > 1 && s[0] == '0' {
		return 0, fmt.Errorf("leading zero in %q", s)
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("out of range %q", s)
	}
	return n, nil
}

func checkIdentifiers(s string) error {
	if s == "" {
		return fmt.Errorf("empty identifier list")
	}
	for _, id := range strings.Split(s, ".") {
		if id == "" {
			return fmt.Errorf("empty identifier")
		}
		for i := 0; i < len(id); i++ {
			c := id[i]
			isAlnum := (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
			if !isAlnum && c != '-' {
				return fmt.Errorf("invalid character %q in %q", c, id)
			}
		}
	}
	return nil
}
