package git

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rerrors "github.com/chokrifaysal/releasy/errors"
)

func TestSentinelErrors_Is(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		target   error
		expected bool
	}{
		// Direct sentinel errors
		{"ErrRepoNotFound direct", ErrRepoNotFound, ErrRepoNotFound, true},
		{"ErrDirtyRepo direct", ErrDirtyRepo, ErrDirtyRepo, true},
		{"ErrNoTags direct", ErrNoTags, ErrNoTags, true},
		{"ErrTagExists direct", ErrTagExists, ErrTagExists, true},
		{"ErrTagMissing direct", ErrTagMissing, ErrTagMissing, true},
		{"ErrRollbackFailed direct", ErrRollbackFailed, ErrRollbackFailed, true},

		// Wrapped errors
		{"ErrDirtyRepo wrapped", WrapError(ErrDirtyRepo, "create tag"), ErrDirtyRepo, true},
		{"ErrInvalidTag wrapped", WrapErrorf(ErrInvalidTag, "tag %s", "v1.0.0"), ErrInvalidTag, true},

		// Non-matching errors sharing a code
		{"ErrNoTags vs ErrTagMissing", ErrNoTags, ErrTagMissing, false},
		{"ErrDirtyRepo vs ErrRollbackFailed", ErrDirtyRepo, ErrRollbackFailed, false},

		// Nil handling
		{"WrapError with nil", WrapError(nil, "context"), ErrDirtyRepo, false},
		{"WrapErrorf with nil", WrapErrorf(nil, "context"), ErrDirtyRepo, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := errors.Is(tt.err, tt.target)
			assert.Equal(t, tt.expected, result,
				"errors.Is(%v, %v) should be %v", tt.err, tt.target, tt.expected)
		})
	}
}

func TestSentinelErrors_Codes(t *testing.T) {
	tests := []struct {
		err  error
		code rerrors.ErrorCode
	}{
		{ErrRepoNotFound, rerrors.CodeNotFound},
		{ErrDirtyRepo, rerrors.CodeState},
		{ErrNoTags, rerrors.CodeNotFound},
		{ErrInvalidTag, rerrors.CodeFormat},
		{ErrTagExists, rerrors.CodeAlreadyExists},
		{ErrRollbackFailed, rerrors.CodeState},
		{ErrNoUserConfig, rerrors.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.code, rerrors.CodeOf(WrapError(tt.err, "outer")))
		})
	}
}

func TestWrapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		msg      string
		expected string
	}{
		{
			name:     "wrap ErrDirtyRepo",
			err:      ErrDirtyRepo,
			msg:      "cannot create tag",
			expected: "cannot create tag: repository has uncommitted changes",
		},
		{
			name:     "wrap nil error",
			err:      nil,
			msg:      "context",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := WrapError(tt.err, tt.msg)

			if tt.err == nil {
				assert.Nil(t, wrapped, "WrapError(nil) should return nil")
				return
			}

			require.NotNil(t, wrapped, "WrapError(%v) should not return nil", tt.err)
			assert.Equal(t, tt.expected, wrapped.Error())
			assert.True(t, errors.Is(wrapped, tt.err),
				"wrapped error should match original sentinel")
		})
	}
}

func TestWrapErrorf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		format   string
		args     []any
		expected string
	}{
		{
			name:     "wrap with multiple args",
			err:      ErrTagMissing,
			format:   "tag %s in %s",
			args:     []any{"v1.0.0", "repo"},
			expected: "tag v1.0.0 in repo: tag does not exist",
		},
		{
			name:     "wrap nil error",
			err:      nil,
			format:   "context %s",
			args:     []any{"arg"},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := WrapErrorf(tt.err, tt.format, tt.args...)

			if tt.err == nil {
				assert.Nil(t, wrapped, "WrapErrorf(nil) should return nil")
				return
			}

			require.NotNil(t, wrapped)
			assert.Equal(t, tt.expected, wrapped.Error())
			assert.True(t, errors.Is(wrapped, tt.err))
		})
	}
}
