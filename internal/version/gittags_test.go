package version

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeRunner(out string, err error, seen *[]string) runner {
	return func(_ context.Context, dir, name string, args ...string) ([]byte, error) {
		if seen != nil {
			*seen = append([]string{dir, name}, args...)
		}
		return []byte(out), err
	}
}

func TestPick(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		tags []string
		want string
	}{
		{"none", nil, ""},
		{"semver order beats listing order", []string{"v1.10.0", "v1.2.0", "v1.9.3"}, "v1.10.0"},
		{"bare numbers", []string{"1.0.0", "2.0.0-rc.1", "1.5.0"}, "2.0.0-rc.1"},
		{"prerelease below release", []string{"v2.0.0", "v2.0.0-beta"}, "v2.0.0"},
		{"no semver uses last tag", []string{"release-a", "release-b"}, "release-b"},
		{"mixed", []string{"nightly", "v0.3.0", "latest"}, "v0.3.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Pick(tt.tags))
		})
	}
}

func TestGitTags_Resolve(t *testing.T) {
	t.Parallel()
	var seen []string
	g := &GitTags{RepoPath: "/repo", run: fakeRunner("v0.1.0\nv0.2.0\n\n", nil, &seen)}

	v, err := g.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v0.2.0", v)
	assert.Equal(t, []string{"/repo", "git", "tag", "-l"}, seen)
}

func TestGitTags_CustomCommand(t *testing.T) {
	t.Parallel()
	var seen []string
	g := &GitTags{Command: "  git tag --list v*  ", run: fakeRunner("v3.0.0\n", nil, &seen)}

	v, err := g.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v3.0.0", v)
	assert.Equal(t, []string{"", "git", "tag", "--list", "v*"}, seen)
}

func TestGitTags_NoTags(t *testing.T) {
	t.Parallel()
	g := &GitTags{run: fakeRunner("", nil, nil)}
	v, err := g.Resolve(context.Background())
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestGitTags_CommandFails(t *testing.T) {
	t.Parallel()
	boom := errors.New("not a git repository")
	g := &GitTags{run: fakeRunner("", boom, nil)}
	_, err := g.Resolve(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `"git tag -l"`)
}
