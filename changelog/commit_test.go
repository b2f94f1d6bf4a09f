package changelog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommit(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    CommitInfo
		wantErr bool
	}{
		{
			name:    "type only",
			message: "feat: add widgets",
			want:    CommitInfo{Type: TypeFeat, Description: "add widgets"},
		},
		{
			name:    "scope",
			message: "fix(api): handle nil",
			want:    CommitInfo{Type: TypeFix, Scope: "api", Description: "handle nil"},
		},
		{
			name:    "breaking marker",
			message: "feat!: drop v1 endpoints",
			want:    CommitInfo{Type: TypeFeat, Description: "drop v1 endpoints", IsBreaking: true},
		},
		{
			name:    "scope and breaking marker",
			message: "refactor(core)!: rename packages",
			want:    CommitInfo{Type: TypeRefactor, Scope: "core", Description: "rename packages", IsBreaking: true},
		},
		{
			name:    "unknown type",
			message: "feature: wrong type",
			want:    CommitInfo{Type: TypeUnknown, Description: "wrong type"},
		},
		{
			name:    "type is case sensitive",
			message: "Fix: capitalised",
			want:    CommitInfo{Type: TypeUnknown, Description: "capitalised"},
		},
		{
			name:    "splits on first colon only",
			message: "docs: note: colons are fine",
			want:    CommitInfo{Type: TypeDocs, Description: "note: colons are fine"},
		},
		{
			name:    "leading whitespace trimmed",
			message: "chore:\t  tidy",
			want:    CommitInfo{Type: TypeChore, Description: "tidy"},
		},
		{
			name:    "no colon",
			message: "Merge branch 'main'",
			wantErr: true,
		},
		{
			name:    "colon only in body",
			message: "initial import\n\nsee: README",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCommit(tt.message)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want.Type, got.Type)
			assert.Equal(t, tt.want.Scope, got.Scope)
			assert.Equal(t, tt.want.Description, got.Description)
			assert.Equal(t, tt.want.IsBreaking, got.IsBreaking)
		})
	}
}

func TestParseCommit_BodyAndFooters(t *testing.T) {
	t.Run("body and footer", func(t *testing.T) {
		got, err := ParseCommit("fix(api): handle nil\n\nThe handler panicked on nil input.\n\nRefs: #42\n")
		require.NoError(t, err)
		assert.Equal(t, "handle nil", got.Description)
		assert.Contains(t, got.Body, "The handler panicked on nil input.")
		assert.NotContains(t, got.Description, "\n")
		assert.False(t, got.IsBreaking)
	})

	t.Run("breaking change footer", func(t *testing.T) {
		got, err := ParseCommit("feat: new config format\n\nBREAKING CHANGE: the old format is rejected\n")
		require.NoError(t, err)
		assert.True(t, got.IsBreaking)
		assert.Equal(t, TypeFeat, got.Type)
	})
}

func TestParseCommitType(t *testing.T) {
	for _, typ := range TypeOrder {
		if typ == TypeUnknown {
			continue
		}
		assert.Equal(t, typ, ParseCommitType(string(typ)))
	}
	assert.Equal(t, TypeUnknown, ParseCommitType("unknown"))
	assert.Equal(t, TypeUnknown, ParseCommitType(""))
}
