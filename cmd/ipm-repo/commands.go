package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mitchellh/cli"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"lab47.dev/ipmrepo/pkg/cmd"
	"lab47.dev/ipmrepo/pkg/humanize"
	"lab47.dev/ipmrepo/pkg/repo"
)

var ErrNotImplemented = errors.New("build is not implemented")

func commands(g *cmd.Globals) map[string]cli.CommandFactory {
	return map[string]cli.CommandFactory{
		"init": func() (cli.Command, error) {
			return cmd.New(
				"init",
				"Initializes a new repository",
				g,
				initF,
			), nil
		},
		"add": func() (cli.Command, error) {
			return cmd.New(
				"add",
				"Adds a package to the repository",
				g,
				addF,
			), nil
		},
		"remove": func() (cli.Command, error) {
			return cmd.New(
				"remove",
				"Removes a package from the repository",
				g,
				removeF,
			), nil
		},
		"list": func() (cli.Command, error) {
			return cmd.New(
				"list",
				"Lists all packages in the repository",
				g,
				listF,
			), nil
		},
		"inspect": func() (cli.Command, error) {
			return cmd.New(
				"inspect",
				"Output information about a package file",
				g,
				inspectF,
			), nil
		},
		"build": func() (cli.Command, error) {
			return cmd.New(
				"build",
				"Builds the package index from the packages directory",
				g,
				buildF,
			), nil
		},
	}
}

func initF(ctx context.Context, env *cmd.Env, opts struct {
	Pos struct {
		Name      string `positional-arg-name:"name" description:"The name of the repository to create"`
		Directory string `positional-arg-name:"directory" description:"The directory to create the repository in"`
	} `positional-args:"yes"`
}) error {
	name := opts.Pos.Name
	if name == "" {
		name = "."
	}

	dir := opts.Pos.Directory
	if dir == "" {
		dir = "."
	}

	dir, err := homedir.Expand(dir)
	if err != nil {
		return err
	}

	if name == "." {
		name, err = repo.DetectName(dir)
		if err != nil {
			return err
		}

		env.L.Debug("detected repository name", "name", name)
	}

	r, err := repo.Init(name, dir, repo.WithLogger(env.L))
	if err != nil {
		return err
	}

	env.L.Info("Repository initialized at " + r.Path)

	return nil
}

func addF(ctx context.Context, env *cmd.Env, opts struct {
	Pos struct {
		PackagePath string `positional-arg-name:"package_path" description:"The path to the package file to add" required:"yes"`
	} `positional-args:"yes"`
}) error {
	path, err := homedir.Expand(opts.Pos.PackagePath)
	if err != nil {
		return err
	}

	r, err := repo.Load(env.Dir, repo.WithLogger(env.L))
	if err != nil {
		return err
	}

	err = r.AddPackage(ctx, path)
	if err != nil {
		return err
	}

	env.L.Info("Package added to repository.")

	return nil
}

func removeF(ctx context.Context, env *cmd.Env, opts struct {
	Pos struct {
		Name    string `positional-arg-name:"name" description:"The name of the package to remove" required:"yes"`
		Version string `positional-arg-name:"version" description:"The version of the package to remove" required:"yes"`
	} `positional-args:"yes"`
}) error {
	r, err := repo.Load(env.Dir, repo.WithLogger(env.L))
	if err != nil {
		return err
	}

	err = r.RemovePackage(opts.Pos.Name, opts.Pos.Version)
	if err != nil {
		return err
	}

	env.L.Info("Package removed from repository.")

	return nil
}

func listF(ctx context.Context, env *cmd.Env, opts struct {
	Long bool `short:"l" long:"long" description:"show size, digest and modification time"`
}) error {
	r, err := repo.Load(env.Dir, repo.WithLogger(env.L))
	if err != nil {
		return err
	}

	if !opts.Long {
		pkgs, err := r.ListPackages(ctx)
		if err != nil {
			return err
		}

		for _, pd := range pkgs {
			fmt.Fprintf(env.Stdout, "%s - %s\n", pd.Name(), pd.Version())
		}

		return nil
	}

	stats, err := r.Describe(ctx)
	if err != nil {
		return err
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(env.Stdout)
	tw.AppendHeader(table.Row{"Name", "Version", "Size", "Digest", "Modified"})

	for _, st := range stats {
		tw.AppendRow(table.Row{
			st.Data.Name(),
			st.Data.Version(),
			humanize.Format(st.Size),
			st.Digest,
			st.Modified.Format("2006-01-02 15:04:05"),
		})
	}

	tw.Render()

	return nil
}

func inspectF(ctx context.Context, env *cmd.Env, opts struct {
	Raw bool `short:"r" long:"raw" description:"dump the decoded metadata structure"`

	Pos struct {
		File string `positional-arg-name:"file" required:"yes"`
	} `positional-args:"yes"`
}) error {
	path, err := homedir.Expand(opts.Pos.File)
	if err != nil {
		return err
	}

	ps, err := repo.Inspect(ctx, nil, path)
	if err != nil {
		return err
	}

	if opts.Raw {
		spew.Fdump(env.Stdout, ps)
		return nil
	}

	pd := ps.Data

	tw := table.NewWriter()
	tw.SetOutputMirror(env.Stdout)
	tw.SetStyle(table.StyleLight)

	tw.AppendRows([]table.Row{
		{"Name", pd.Name()},
		{"Version", pd.Version()},
		{"Entry", pd.ID()},
		{"Description", pd.About.Package.Description},
		{"Author", pd.About.Author.Name},
		{"Architecture", strings.Join(pd.Architecture, ", ")},
		{"Mode", pd.Mode},
		{"Dependencies", strings.Join(pd.Relation.Depend, ", ")},
		{"Size", humanize.Format(ps.Size)},
		{"Digest", ps.Digest},
	})

	tw.Render()

	return nil
}

func buildF(ctx context.Context, env *cmd.Env, opts struct{}) error {
	return ErrNotImplemented
}
