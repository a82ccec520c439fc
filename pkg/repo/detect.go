package repo

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/pkg/errors"
)

// DetectName picks a repository name for a repository about to be created
// at path. If path sits inside a git checkout with an origin remote, the
// remote's host and path are used. Otherwise the base name of path is.
func DetectName(path string) (string, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return "", errors.WithStack(err)
	}

	id, err := gitOriginId(nearestExisting(filepath.Dir(path)))
	if err != nil {
		return "", err
	}

	if id != "" {
		return id, nil
	}

	// welp. the directory name it is
	return filepath.Base(path), nil
}

func nearestExisting(dir string) string {
	for {
		if _, err := os.Stat(dir); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}

		dir = parent
	}
}

func gitOriginId(dir string) (string, error) {
	gr, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		if err == git.ErrRepositoryNotExists {
			return "", nil
		}

		return "", errors.Wrapf(err, "opening git repository at %s", dir)
	}

	remote, err := gr.Remote("origin")
	if err != nil {
		if err == git.ErrRemoteNotFound {
			return "", nil
		}

		return "", errors.WithStack(err)
	}

	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", nil
	}

	return gitRemoteId(urls[0])
}

var scpSyntaxRe = regexp.MustCompile(`^([a-zA-Z0-9_]+)@([a-zA-Z0-9._-]+):(.*)$`)

// gitRemoteId turns a remote url, scp style or not, into host/path.
func gitRemoteId(configUrl string) (string, error) {
	var id string

	if m := scpSyntaxRe.FindStringSubmatch(configUrl); m != nil {
		id = fmt.Sprintf("%s/%s", m[2], m[3])
	} else {
		u, err := url.Parse(configUrl)
		if err != nil {
			return "", errors.WithStack(err)
		}

		if u.Host == "" {
			// a local remote, there is no host to anchor on
			id = filepath.Base(u.Path)
		} else {
			id = u.Host + "/" + strings.TrimPrefix(u.Path, "/")
		}
	}

	return strings.TrimSuffix(id, ".git"), nil
}
