package repo

import (
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGitRemoteId(t *testing.T) {
	cases := map[string]string{
		"git@github.com:lab47/packages.git":     "github.com/lab47/packages",
		"https://github.com/lab47/packages.git": "github.com/lab47/packages",
		"https://example.com/team/repo":         "example.com/team/repo",
		"/srv/git/local.git":                    "local",
	}

	for in, out := range cases {
		id, err := gitRemoteId(in)
		require.NoError(t, err)
		assert.Equal(t, out, id, in)
	}
}

func TestDetectName(t *testing.T) {
	t.Run("falls back to the directory name", func(t *testing.T) {
		name, err := DetectName(filepath.Join(t.TempDir(), "not", "yet", "made"))
		require.NoError(t, err)

		assert.Equal(t, "made", name)
	})

	t.Run("uses the origin remote of an enclosing checkout", func(t *testing.T) {
		top := t.TempDir()

		gr, err := git.PlainInit(top, false)
		require.NoError(t, err)

		_, err = gr.CreateRemote(&config.RemoteConfig{
			Name: "origin",
			URLs: []string{"git@github.com:lab47/ipak-packages.git"},
		})
		require.NoError(t, err)

		name, err := DetectName(filepath.Join(top, "repo"))
		require.NoError(t, err)

		assert.Equal(t, "github.com/lab47/ipak-packages", name)
	})

	t.Run("ignores a checkout without an origin", func(t *testing.T) {
		top := t.TempDir()

		_, err := git.PlainInit(top, false)
		require.NoError(t, err)

		name, err := DetectName(filepath.Join(top, "sub", "repo"))
		require.NoError(t, err)

		assert.Equal(t, "repo", name)
	})
}
