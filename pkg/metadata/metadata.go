package metadata

import (
	"context"
	"strings"
)

type Package struct {
	Name        string `yaml:"name" json:"name"`
	Version     string `yaml:"version" json:"version"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

type Author struct {
	Name string `yaml:"name,omitempty" json:"name,omitempty"`
	ID   string `yaml:"id,omitempty" json:"id,omitempty"`
}

type About struct {
	Package Package `yaml:"package" json:"package"`
	Author  Author  `yaml:"author,omitempty" json:"author,omitempty"`
}

type Relation struct {
	Depend     []string `yaml:"depend,omitempty" json:"depend,omitempty"`
	DependCmds []string `yaml:"depend_cmds,omitempty" json:"depend_cmds,omitempty"`
	Suggests   []string `yaml:"suggests,omitempty" json:"suggests,omitempty"`
	Recommends []string `yaml:"recommends,omitempty" json:"recommends,omitempty"`
	Conflicts  []string `yaml:"conflicts,omitempty" json:"conflicts,omitempty"`
	Virtuals   []string `yaml:"virtuals,omitempty" json:"virtuals,omitempty"`
	Provide    []string `yaml:"provide,omitempty" json:"provide,omitempty"`
}

// PackageData is the descriptor carried inside a package archive.
type PackageData struct {
	About        About    `yaml:"about" json:"about"`
	Architecture []string `yaml:"architecture,omitempty" json:"architecture,omitempty"`
	Mode         string   `yaml:"mode,omitempty" json:"mode,omitempty"`
	Relation     Relation `yaml:"relation,omitempty" json:"relation,omitempty"`
}

func (p *PackageData) Name() string {
	return p.About.Package.Name
}

func (p *PackageData) Version() string {
	return p.About.Package.Version
}

// ID returns the name used for the package's entry directory.
func (p *PackageData) ID() string {
	return p.Name() + "-" + p.Version()
}

// Extractor reads the descriptor out of the archive at path.
type Extractor interface {
	Extract(ctx context.Context, path string) (*PackageData, error)
}

type ExtractorFunc func(ctx context.Context, path string) (*PackageData, error)

func (f ExtractorFunc) Extract(ctx context.Context, path string) (*PackageData, error) {
	return f(ctx, path)
}

// ValidSegment reports whether s can be used as a single path segment.
func ValidSegment(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}

	return !strings.ContainsAny(s, "/\\\x00")
}
