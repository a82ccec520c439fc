package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lab47.dev/ipmrepo/pkg/ipak"
	"lab47.dev/ipmrepo/pkg/metadata"
	"lab47.dev/ipmrepo/pkg/repo"
)

func invoke(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer

	code := run(args, &stdout, &stderr)

	return code, stdout.String(), stderr.String()
}

func writePackage(t *testing.T, dir, name, version string) string {
	var pd metadata.PackageData
	pd.About.Package.Name = name
	pd.About.Package.Version = version
	pd.About.Package.Description = "test package " + name
	pd.Architecture = []string{"amd64"}

	path := filepath.Join(dir, name+"-"+version+ipak.Extension)

	f, err := os.Create(path)
	require.NoError(t, err)

	defer f.Close()

	require.NoError(t, ipak.Write(f, &pd, ipak.Gzip, ipak.File{
		Name: "bin/" + name,
		Mode: 0755,
		Data: []byte("#!/bin/sh\necho " + name + "\n"),
	}))

	return path
}

func TestRun(t *testing.T) {
	t.Run("init, add, list and remove", func(t *testing.T) {
		top := t.TempDir()
		root := filepath.Join(top, "repo")

		code, _, errOut := invoke("-v", "init", "main", root)
		require.Equal(t, 0, code, errOut)
		assert.Contains(t, errOut, "Repository initialized at "+root)

		nested := filepath.Join(root, "packages")
		t.Setenv(RepoEnv, nested)

		src := t.TempDir()

		code, _, errOut = invoke("add", writePackage(t, src, "zlib", "1.2.13"))
		require.Equal(t, 0, code, errOut)

		code, _, errOut = invoke("add", writePackage(t, src, "curl", "8.1.0"))
		require.Equal(t, 0, code, errOut)

		assert.FileExists(t, filepath.Join(root, "packages", "zlib-1.2.13", "zlib-1.2.13.ipak"))

		code, out, errOut := invoke("list")
		require.Equal(t, 0, code, errOut)
		assert.Equal(t, "curl - 8.1.0\nzlib - 1.2.13\n", out)

		code, out, errOut = invoke("list", "--long")
		require.Equal(t, 0, code, errOut)
		assert.Contains(t, out, "NAME")
		assert.Contains(t, out, "blake2b-256:")
		assert.Contains(t, out, "zlib")

		code, _, errOut = invoke("remove", "zlib", "1.2.13")
		require.Equal(t, 0, code, errOut)

		code, out, _ = invoke("list")
		require.Equal(t, 0, code)
		assert.Equal(t, "curl - 8.1.0\n", out)

		code, _, errOut = invoke("remove", "zlib", "1.2.13")
		assert.Equal(t, 1, code)
		assert.Equal(t, "! Error: Package not found: zlib-1.2.13\n", errOut)
	})

	t.Run("rejects duplicate packages", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "repo")

		_, err := repo.Init("dups", root)
		require.NoError(t, err)

		t.Setenv(RepoEnv, root)

		pkg := writePackage(t, t.TempDir(), "jq", "1.6.0")

		code, _, errOut := invoke("add", pkg)
		require.Equal(t, 0, code, errOut)

		code, _, errOut = invoke("add", pkg)
		assert.Equal(t, 1, code)
		assert.Equal(t, "! Error: Package jq version 1.6.0 already exists.\n", errOut)
	})

	t.Run("reports a missing repository", func(t *testing.T) {
		t.Setenv(RepoEnv, t.TempDir())

		code, out, errOut := invoke("list")
		assert.Equal(t, 1, code)
		assert.Empty(t, out)
		assert.Equal(t, "! Error: "+repo.ErrConfigNotFound.Error()+"\n", errOut)
	})

	t.Run("init refuses an existing directory", func(t *testing.T) {
		dir := t.TempDir()

		code, _, errOut := invoke("init", "x", dir)
		assert.Equal(t, 1, code)
		assert.Contains(t, errOut, "Repository already exists at "+dir)

		_, err := os.Stat(filepath.Join(dir, repo.ConfigFile))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("inspect prints package metadata", func(t *testing.T) {
		pkg := writePackage(t, t.TempDir(), "ripgrep", "13.0.0")

		code, out, errOut := invoke("inspect", pkg)
		require.Equal(t, 0, code, errOut)
		assert.Contains(t, out, "ripgrep-13.0.0")
		assert.Contains(t, out, "test package ripgrep")
		assert.Contains(t, out, "amd64")

		code, out, errOut = invoke("inspect", "--raw", pkg)
		require.Equal(t, 0, code, errOut)
		assert.Contains(t, out, "PackageStat")
		assert.Contains(t, out, `"ripgrep"`)
	})

	t.Run("build is reserved", func(t *testing.T) {
		code, _, errOut := invoke("build")
		assert.Equal(t, 1, code)
		assert.Equal(t, "! Error: build is not implemented\n", errOut)
	})

	t.Run("verbosity flags conflict", func(t *testing.T) {
		code, _, errOut := invoke("-q", "build", "--debug")
		assert.Equal(t, 1, code)
		assert.Contains(t, errOut, "--quiet cannot be used")

		code, _, errOut = invoke("-v", "--debug", "build")
		assert.Equal(t, 1, code)
		assert.Contains(t, errOut, "--verbose cannot be used")
	})

	t.Run("prints the version", func(t *testing.T) {
		code, _, errOut := invoke("--version")
		assert.Equal(t, 0, code)
		assert.Contains(t, errOut, Version)
	})

	t.Run("rejects a bad start directory", func(t *testing.T) {
		t.Setenv(RepoEnv, filepath.Join(t.TempDir(), "missing"))

		code, _, errOut := invoke("list")
		assert.Equal(t, 1, code)
		assert.Contains(t, errOut, RepoEnv)
	})
}
