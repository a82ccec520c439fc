package repo

import (
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
	"lab47.dev/ipmrepo/pkg/ipak"
	"lab47.dev/ipmrepo/pkg/metadata"
)

// Repository is a handle on a repository root: a directory holding
// config.toml and a packages directory with one entry per package version.
type Repository struct {
	Path   string
	Config *Config

	extractor metadata.Extractor
	logger    hclog.Logger
}

type Option func(r *Repository)

// WithExtractor sets how package metadata is read from archives. The
// default reads .ipak files.
func WithExtractor(ex metadata.Extractor) Option {
	return func(r *Repository) {
		r.extractor = ex
	}
}

func WithLogger(L hclog.Logger) Option {
	return func(r *Repository) {
		r.logger = L
	}
}

func newRepository(path string, cfg *Config, opts []Option) *Repository {
	r := &Repository{
		Path:      path,
		Config:    cfg,
		extractor: ipak.Extractor{},
		logger:    hclog.NewNullLogger(),
	}

	for _, o := range opts {
		o(r)
	}

	return r
}

func (r *Repository) L() hclog.Logger {
	return r.logger
}

// Init creates a new repository at path. path must not exist yet; it and
// any missing parents are created.
func Init(name, path string, opts ...Option) (*Repository, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return nil, ioError(path, err)
	}

	if _, err := os.Lstat(path); err == nil {
		return nil, &Error{Kind: KindAlreadyExists, Path: path}
	} else if !os.IsNotExist(err) {
		return nil, ioError(path, err)
	}

	cfg := &Config{
		Name:    name,
		Version: DefaultVersion,
	}

	data, err := encodeConfig(cfg)
	if err != nil {
		return nil, &Error{Kind: KindSerialization, Path: filepath.Join(path, ConfigFile), Err: err}
	}

	err = os.MkdirAll(path, 0755)
	if err != nil {
		return nil, ioError(path, err)
	}

	err = os.MkdirAll(filepath.Join(path, PackagesDir), 0755)
	if err != nil {
		return nil, ioError(path, err)
	}

	err = ioutil.WriteFile(filepath.Join(path, ConfigFile), data, 0644)
	if err != nil {
		return nil, ioError(path, err)
	}

	r := newRepository(path, cfg, opts)

	r.L().Debug("initialized repository", "path", path, "name", name)

	return r, nil
}

// Load finds the repository that owns start: the nearest directory, start
// included, that holds a config.toml.
func Load(start string, opts ...Option) (*Repository, error) {
	start, err := filepath.Abs(start)
	if err != nil {
		return nil, ioError(start, err)
	}

	dir := start

	for {
		path := filepath.Join(dir, ConfigFile)

		if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
			data, err := ioutil.ReadFile(path)
			if err != nil {
				return nil, ioError(path, err)
			}

			cfg, err := decodeConfig(data)
			if err != nil {
				return nil, &Error{Kind: KindSerialization, Path: path, Err: err}
			}

			r := newRepository(dir, cfg, opts)

			r.L().Debug("loaded repository", "path", dir, "start", start, "name", cfg.Name)

			return r, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, &Error{
				Kind: KindConfigNotFound,
				Path: start,
				Err:  errors.Errorf("no %s above %s", ConfigFile, start),
			}
		}

		dir = parent
	}
}

func (r *Repository) PackagesPath() string {
	return filepath.Join(r.Path, PackagesDir)
}

// EntryPath is the directory a package version is stored in. The name and
// version are joined with a single hyphen and not escaped, so "a-b" "1.0.0"
// and "a" "b-1.0.0" share an entry.
func (r *Repository) EntryPath(name, version string) string {
	return filepath.Join(r.PackagesPath(), name+"-"+version)
}
