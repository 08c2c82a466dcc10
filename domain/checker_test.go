package domain_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specwatch/specwatch/domain"
)

func TestComputeBump(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		latest   string
		previous string
		expected domain.VersionBump
	}{
		{
			name:     "should return none for identical versions",
			latest:   "13.2.0",
			previous: "13.2.0",
			expected: domain.BumpNone,
		},
		{
			name:     "should return patch when only patch differs",
			latest:   "13.2.1",
			previous: "13.2.0",
			expected: domain.BumpPatch,
		},
		{
			name:     "should return minor when minor differs",
			latest:   "13.2.0",
			previous: "13.1.5",
			expected: domain.BumpMinor,
		},
		{
			name:     "should return major when major differs",
			latest:   "14.0.0",
			previous: "13.9.9",
			expected: domain.BumpMajor,
		},
		{
			name:     "should prefer major over minor and patch",
			latest:   "14.1.2",
			previous: "13.0.0",
			expected: domain.BumpMajor,
		},
		{
			name:     "should prefer minor over patch",
			latest:   "13.3.7",
			previous: "13.2.0",
			expected: domain.BumpMinor,
		},
		{
			name:     "should accept tags with a v prefix",
			latest:   "v2.1.0",
			previous: "v2.0.0",
			expected: domain.BumpMinor,
		},
		{
			name:     "should handle mixed prefixed and bare tags",
			latest:   "v2.0.1",
			previous: "2.0.0",
			expected: domain.BumpPatch,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// given
			latest := domain.Release{Tag: tt.latest}
			previous := domain.Release{Tag: tt.previous}

			// when
			bump, err := domain.ComputeBump(latest, previous)

			// then
			require.NoError(t, err)
			assert.Equal(t, tt.expected, bump)
		})
	}

	t.Run("should fail with version format error for unparseable latest tag", func(t *testing.T) {
		t.Parallel()

		// when
		_, err := domain.ComputeBump(
			domain.Release{Tag: "nightly-build"},
			domain.Release{Tag: "13.1.5"},
		)

		// then
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrVersionFormat)
	})

	t.Run("should fail with version format error for unparseable previous tag", func(t *testing.T) {
		t.Parallel()

		// when
		_, err := domain.ComputeBump(
			domain.Release{Tag: "13.2.0"},
			domain.Release{Tag: "latest"},
		)

		// then
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrVersionFormat)
	})
}

func TestCommitRefPrefix(t *testing.T) {
	t.Parallel()

	t.Run("should return the first 10 characters of a long reference", func(t *testing.T) {
		t.Parallel()

		// given
		release := domain.Release{Tag: "13.2.0", CommitRef: "abcdef1234567"}

		// when
		prefix, err := domain.CommitRefPrefix(release)

		// then
		require.NoError(t, err)
		assert.Equal(t, "abcdef1234", prefix)
	})

	t.Run("should return a reference of exactly 10 characters unchanged", func(t *testing.T) {
		t.Parallel()

		// given
		release := domain.Release{CommitRef: "abcdef1234"}

		// when
		prefix, err := domain.CommitRefPrefix(release)

		// then
		require.NoError(t, err)
		assert.Equal(t, "abcdef1234", prefix)
	})

	t.Run("should fail with invalid reference error for a short reference", func(t *testing.T) {
		t.Parallel()

		// given
		release := domain.Release{CommitRef: "abc123"}

		// when
		_, err := domain.CommitRefPrefix(release)

		// then
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidReference)
	})

	t.Run("should fail with invalid reference error for an empty reference", func(t *testing.T) {
		t.Parallel()

		// when
		_, err := domain.CommitRefPrefix(domain.Release{})

		// then
		assert.ErrorIs(t, err, domain.ErrInvalidReference)
	})
}

func TestIsUpdateAvailable(t *testing.T) {
	t.Parallel()

	latest := domain.Release{Tag: "13.2.0", CommitRef: "abcdef1234567"}

	writeSpec := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "api.yaml")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		return path
	}

	t.Run("should report no update when recorded reference matches the prefix", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeSpec(t, "info:\n  title: Widgets API\n  x-upstream-commit: abcdef1234\n")

		// when
		available, err := domain.IsUpdateAvailable(latest, path)

		// then
		require.NoError(t, err)
		assert.False(t, available)
	})

	t.Run("should report update when recorded reference differs", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeSpec(t, "info:\n  title: Widgets API\n  x-upstream-commit: \"9999999999\"\n")

		// when
		available, err := domain.IsUpdateAvailable(latest, path)

		// then
		require.NoError(t, err)
		assert.True(t, available)
	})

	t.Run("should report update when the artifact does not exist", func(t *testing.T) {
		t.Parallel()

		// given
		path := filepath.Join(t.TempDir(), "missing.yaml")

		// when
		available, err := domain.IsUpdateAvailable(latest, path)

		// then
		require.NoError(t, err)
		assert.True(t, available)
	})

	t.Run("should fail with parse error when the reference field is absent", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeSpec(t, "info:\n  title: Widgets API\n")

		// when
		_, err := domain.IsUpdateAvailable(latest, path)

		// then
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrParse)
	})

	t.Run("should fail with parse error when the artifact is not valid YAML", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeSpec(t, "{info: [unclosed")

		// when
		_, err := domain.IsUpdateAvailable(latest, path)

		// then
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrParse)
	})

	t.Run("should fail with invalid reference error when the latest ref is too short", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeSpec(t, "info:\n  x-upstream-commit: abcdef1234\n")
		short := domain.Release{Tag: "13.2.0", CommitRef: "abc"}

		// when
		_, err := domain.IsUpdateAvailable(short, path)

		// then
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidReference)
	})
}

func TestReadRecordedReference(t *testing.T) {
	t.Parallel()

	t.Run("should read the reference from a JSON artifact", func(t *testing.T) {
		t.Parallel()

		// given
		path := filepath.Join(t.TempDir(), "api.json")
		content := `{"info": {"title": "Widgets API", "x-upstream-commit": "abcdef1234"}}`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		// when
		ref, err := domain.ReadRecordedReference(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, "abcdef1234", ref)
	})
}

func TestVersionBumpString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		bump     domain.VersionBump
		expected string
	}{
		{domain.BumpNone, "none"},
		{domain.BumpPatch, "patch"},
		{domain.BumpMinor, "minor"},
		{domain.BumpMajor, "major"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run("should format "+tt.expected, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, tt.bump.String())
		})
	}
}
