package semver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncrement(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		kind    Kind
		custom  string
		want    string
		wantErr bool
	}{
		{name: "patch", from: "1.2.3", kind: Patch, want: "1.2.4"},
		{name: "minor resets patch", from: "1.2.3", kind: Minor, want: "1.3.0"},
		{name: "major resets minor and patch", from: "1.2.3", kind: Major, want: "2.0.0"},
		{name: "drops prerelease and build", from: "1.2.3-rc.1+b7", kind: Patch, want: "1.2.4"},
		{name: "custom greater", from: "1.2.3", kind: Custom, custom: "1.5.0-beta", want: "1.5.0-beta"},
		{name: "custom equal", from: "1.2.3", kind: Custom, custom: "1.2.3", wantErr: true},
		{name: "custom lower", from: "1.2.3", kind: Custom, custom: "1.0.0", wantErr: true},
		{name: "custom prerelease of same core", from: "1.2.3", kind: Custom, custom: "1.2.3-rc.1", wantErr: true},
		{name: "custom unparseable", from: "1.2.3", kind: Custom, custom: "next", wantErr: true},
		{name: "unknown kind", from: "1.2.3", kind: Kind(42), wantErr: true},
		{name: "prerelease from release", from: "1.2.3", kind: Prerelease, want: "1.2.4-rc.1"},
		{name: "prerelease counter", from: "1.2.4-rc.1", kind: Prerelease, want: "1.2.4-rc.2"},
		{name: "prerelease custom label", from: "1.2.3", kind: Prerelease, custom: "beta", want: "1.2.4-beta.1"},
		{name: "prerelease label switch", from: "1.2.4-beta.3", kind: Prerelease, want: "1.2.4-rc.1"},
		{name: "prerelease bare label", from: "1.2.4-rc", kind: Prerelease, want: "1.2.4-rc.1"},
		{name: "prerelease drops build", from: "1.2.4-rc.1+b7", kind: Prerelease, want: "1.2.4-rc.2"},
		{name: "prerelease label sorting lower", from: "1.2.4-zeta", kind: Prerelease, wantErr: true},
		{name: "prerelease counter crossing digits", from: "1.2.4-rc.9", kind: Prerelease, wantErr: true},
		{name: "prerelease dotted label", from: "1.2.3", kind: Prerelease, custom: "rc.x", wantErr: true},
		{name: "prerelease invalid label", from: "1.2.3", kind: Prerelease, custom: "r c", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from := MustParse(tt.from)
			bump, err := Increment(from, tt.kind, tt.custom)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidIncrement)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, bump.Current.String())
			assert.Equal(t, from, bump.Previous)
		})
	}
}

func TestIncrementMonotonic(t *testing.T) {
	for _, s := range orderingCorpus {
		v := MustParse(s)
		for _, kind := range []Kind{Patch, Minor, Major} {
			bump, err := Increment(v, kind, "")
			require.NoError(t, err)
			assert.Equal(t, 1, Compare(bump.Current, v), "%s %s -> %s", kind, v, bump.Current)
		}
	}
}

func TestIncrementOverflow(t *testing.T) {
	const maxComponent = ^uint64(0)

	tests := []struct {
		name string
		from Version
		kind Kind
	}{
		{name: "patch", from: Version{Major: 1, Patch: maxComponent}, kind: Patch},
		{name: "minor", from: Version{Major: 1, Minor: maxComponent}, kind: Minor},
		{name: "major", from: Version{Major: maxComponent}, kind: Major},
		{name: "prerelease of release", from: Version{Major: 1, Patch: maxComponent}, kind: Prerelease},
		{name: "prerelease counter", from: Version{Major: 1, Prerelease: "rc.18446744073709551615"}, kind: Prerelease},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := Parse(tt.from.String())
			require.NoError(t, err, "the largest component is valid input")
			require.Equal(t, tt.from, parsed)

			_, err = Increment(tt.from, tt.kind, "")
			assert.ErrorIs(t, err, ErrInvalidIncrement)
		})
	}

	bump, err := Increment(Version{Major: 1, Minor: maxComponent, Patch: maxComponent}, Major, "")
	require.NoError(t, err, "lower components reset on a major bump")
	assert.Equal(t, "2.0.0", bump.Current.String())
}

func TestIncrementCustomGuard(t *testing.T) {
	for _, s := range orderingCorpus {
		v := MustParse(s)
		for _, c := range orderingCorpus {
			_, err := Increment(v, Custom, c)
			if Compare(MustParse(c), v) <= 0 {
				assert.ErrorIs(t, err, ErrInvalidIncrement, "%s -> %s", v, c)
			} else {
				assert.NoError(t, err, "%s -> %s", v, c)
			}
		}
	}
}

func TestIncrementRejectsInvalidVersion(t *testing.T) {
	_, err := Increment(Version{Major: 1, Prerelease: "bad char"}, Patch, "")
	assert.ErrorIs(t, err, ErrInvalidPrerelease)
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{Patch, Minor, Major, Custom, Prerelease} {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	got, err := ParseKind(" MAJOR ")
	require.NoError(t, err)
	assert.Equal(t, Major, got)

	_, err = ParseKind("huge")
	assert.ErrorIs(t, err, ErrInvalidIncrement)
}
