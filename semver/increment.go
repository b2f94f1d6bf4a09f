// Package semver provides semantic version parsing, comparison and increment.
// This file contains version increments.
package semver

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultPrereleaseLabel is the label Prerelease uses when none is given.
const DefaultPrereleaseLabel = "rc"

// Kind selects which component Increment bumps.
type Kind int

const (
	// Patch increments the patch component.
	Patch Kind = iota
	// Minor increments the minor component and resets patch.
	Minor
	// Major increments the major component and resets minor and patch.
	Major
	// Custom replaces the version with a caller-supplied greater version.
	Custom
	// Prerelease moves to the next "<label>.N" prerelease.
	Prerelease
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case Patch:
		return "patch"
	case Minor:
		return "minor"
	case Major:
		return "major"
	case Custom:
		return "custom"
	case Prerelease:
		return "prerelease"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind parses "major", "minor", "patch", "custom" or "prerelease"
// (case-insensitive).
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "patch":
		return Patch, nil
	case "minor":
		return Minor, nil
	case "major":
		return Major, nil
	case "custom":
		return Custom, nil
	case "prerelease":
		return Prerelease, nil
	default:
		return 0, fmt.Errorf("%w: unknown increment kind %q", ErrInvalidIncrement, s)
	}
}

// Bump is the result of an increment. Previous holds the version the
// increment started from so callers can roll back to it.
type Bump struct {
	Previous Version
	Current  Version
}

// Increment returns the next version of v for the given kind.
//
// Major, Minor and Patch drop prerelease and build metadata and fail when the
// bumped component is already math.MaxUint64. For Custom, arg is the new
// version and must compare strictly greater than v. For Prerelease, arg is
// the label (DefaultPrereleaseLabel when empty):
//
//	1.2.3        -> 1.2.4-rc.1
//	1.2.4-rc.1   -> 1.2.4-rc.2
//	1.2.4-beta.3 -> 1.2.4-rc.1
//
// Every successful increment compares strictly greater than v.
func Increment(v Version, kind Kind, arg string) (Bump, error) {
	if err := v.Validate(); err != nil {
		return Bump{}, err
	}

	next := v.Core()
	switch kind {
	case Major:
		if next.Major == math.MaxUint64 {
			return Bump{}, fmt.Errorf("%w: major component of %s overflows", ErrInvalidIncrement, v)
		}
		next.Major++
		next.Minor = 0
		next.Patch = 0
	case Minor:
		if next.Minor == math.MaxUint64 {
			return Bump{}, fmt.Errorf("%w: minor component of %s overflows", ErrInvalidIncrement, v)
		}
		next.Minor++
		next.Patch = 0
	case Patch:
		if next.Patch == math.MaxUint64 {
			return Bump{}, fmt.Errorf("%w: patch component of %s overflows", ErrInvalidIncrement, v)
		}
		next.Patch++
	case Custom:
		parsed, err := Parse(arg)
		if err != nil {
			return Bump{}, fmt.Errorf("%w: %w", ErrInvalidIncrement, err)
		}
		next = parsed
	case Prerelease:
		pre, err := nextPrerelease(v, arg)
		if err != nil {
			return Bump{}, err
		}
		next = pre
	default:
		return Bump{}, fmt.Errorf("%w: unknown increment kind %d", ErrInvalidIncrement, int(kind))
	}

	if Compare(next, v) <= 0 {
		return Bump{}, fmt.Errorf("%w: %s is not greater than %s", ErrInvalidIncrement, next, v)
	}

	return Bump{Previous: v, Current: next}, nil
}

func nextPrerelease(v Version, label string) (Version, error) {
	if label == "" {
		label = DefaultPrereleaseLabel
	}
	if strings.Contains(label, ".") {
		return Version{}, fmt.Errorf("%w: prerelease label %q must be a single identifier", ErrInvalidIncrement, label)
	}
	if err := checkIdentifiers(label); err != nil {
		return Version{}, fmt.Errorf("%w: prerelease label %q: %s", ErrInvalidIncrement, label, err.Error())
	}

	next := v.Core()
	if v.Prerelease == "" {
		if next.Patch == math.MaxUint64 {
			return Version{}, fmt.Errorf("%w: patch component of %s overflows", ErrInvalidIncrement, v)
		}
		next.Patch++
		next.Prerelease = label + ".1"
		return next, nil
	}

	n := uint64(0)
	if rest, ok := strings.CutPrefix(v.Prerelease, label+"."); ok {
		if counter, err := strconv.ParseUint(rest, 10, 64); err == nil {
			n = counter
		}
	}
	if n == math.MaxUint64 {
		return Version{}, fmt.Errorf("%w: prerelease counter of %s overflows", ErrInvalidIncrement, v)
	}
	next.Prerelease = label + "." + strconv.FormatUint(n+1, 10)
	return next, nil
}
