// Package semver provides semantic version parsing, comparison and increment.
// This file contains version ordering and constraint matching.
package semver

import (
	"fmt"
	"strings"

	msemver "github.com/Masterminds/semver/v3"
)

// Compare returns -1, 0 or 1 as a is less than, equal to, or greater than b.
//
// Major, minor and patch compare numerically. A version without a prerelease
// is greater than one with a prerelease. Two prereleases compare as plain
// strings, so "rc.10" sorts before "rc.2". Build metadata is ignored.
func Compare(a, b Version) int {
	if c := compareUint(a.Major, b.Major); c != 0 {
		return c
	}
	if c := compareUint(a.Minor, b.Minor); c != 0 {
		return c
	}
	if c := compareUint(a.Patch, b.Patch); c != 0 {
		return c
	}

	switch {
	case a.Prerelease == b.Prerelease:
		return 0
	case a.Prerelease == "":
		return 1
	case b.Prerelease == "":
		return -1
	default:
		return strings.Compare(a.Prerelease, b.Prerelease)
	}
}

// CompareStrict orders a and b using full SemVer 2.0.0 precedence, where
// numeric prerelease identifiers compare numerically.
func CompareStrict(a, b Version) int {
	return toMasterminds(a).Compare(toMasterminds(b))
}

// LessThan reports whether a sorts before b under Compare.
func (v Version) LessThan(other Version) bool {
	return Compare(v, other) < 0
}

// Equal reports whether v and other compare equal under Compare.
func (v Version) Equal(other Version) bool {
	return Compare(v, other) == 0
}

// Satisfies reports whether v matches a constraint such as ">=1.0.0, <2.0.0".
// An empty constraint matches every version.
func Satisfies(v Version, constraint string) (bool, error) {
	if strings.TrimSpace(constraint) == "" {
		return true, nil
	}

	c, err := msemver.NewConstraint(constraint)
	if err != nil {
		return false, fmt.Errorf("%w %q: %s", ErrInvalidConstraint, constraint, err.Error())
	}

	return c.Check(toMasterminds(v)), nil
}

func toMasterminds(v Version) *msemver.Version {
	return msemver.New(v.Major, v.Minor, v.Patch, v.Prerelease, v.Build)
}

func compareUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
