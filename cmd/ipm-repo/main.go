package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mitchellh/cli"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"lab47.dev/ipmrepo/pkg/cmd"
)

const (
	Version = "0.1.0"

	// RepoEnv points repository discovery somewhere other than the
	// working directory.
	RepoEnv = "IPM_REPO"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	g := &cmd.Globals{
		Stdout: stdout,
		Stderr: stderr,
	}

	fs := pflag.NewFlagSet("ipm-repo", pflag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.SetOutput(stderr)
	fs.Usage = func() {}

	g.Verbosity.Register(fs)
	version := fs.Bool("version", false, "Print the version")

	rest := args

	err := fs.Parse(args)
	switch {
	case err == nil && *version:
		rest = []string{"--version"}
	case err == nil:
		rest = fs.Args()
	case errors.Is(err, pflag.ErrHelp):
		rest = []string{"--help"}
	default:
		fmt.Fprintf(stderr, "! Error: %s\n", err)
		return 1
	}

	g.Dir, err = startDir()
	if err != nil {
		fmt.Fprintf(stderr, "! Error: %s\n", err)
		return 1
	}

	c := cli.NewCLI("ipm-repo", Version)
	c.Args = rest
	c.HelpWriter = stderr
	c.ErrorWriter = stderr
	c.Commands = commands(g)

	exitStatus, err := c.Run()
	if err != nil {
		fmt.Fprintf(stderr, "! Error: %s\n", err)
		return 1
	}

	return exitStatus
}

func startDir() (string, error) {
	if dir := os.Getenv(RepoEnv); dir != "" {
		dir, err := homedir.Expand(dir)
		if err != nil {
			return "", errors.Wrapf(err, "expanding %s", RepoEnv)
		}

		fi, err := os.Stat(dir)
		if err != nil {
			return "", errors.Wrapf(err, "checking %s", RepoEnv)
		}

		if !fi.IsDir() {
			return "", errors.Errorf("%s is not a directory: %s", RepoEnv, dir)
		}

		return dir, nil
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", errors.WithStack(err)
	}

	return dir, nil
}
