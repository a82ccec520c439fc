package repo

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
	"lab47.dev/ipmrepo/pkg/fileutils"
	"lab47.dev/ipmrepo/pkg/ipak"
	"lab47.dev/ipmrepo/pkg/metadata"
)

// AddPackage copies the archive at packagePath into the entry for the
// name and version it declares. An existing entry is never overwritten.
//
// A failure while copying can leave the entry directory behind, empty or
// holding a partial archive.
func (r *Repository) AddPackage(ctx context.Context, packagePath string) error {
	pd, err := r.extractor.Extract(ctx, packagePath)
	if err != nil {
		return extractError(packagePath, err)
	}

	name, version := pd.Name(), pd.Version()

	if !metadata.ValidSegment(name) || !metadata.ValidSegment(version) {
		return &Error{Kind: KindInvalidPackage, Path: packagePath, Name: name, Version: version}
	}

	dir := r.EntryPath(name, version)

	if _, err := os.Lstat(dir); err == nil {
		return &Error{Kind: KindPackageAlreadyExists, Path: dir, Name: name, Version: version}
	} else if !os.IsNotExist(err) {
		return ioError(dir, err)
	}

	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return ioError(dir, err)
	}

	target := filepath.Join(dir, filepath.Base(packagePath))

	c := &fileutils.Copy{Ctx: ctx, L: r.L()}

	n, err := c.File(packagePath, target)
	if err != nil {
		return ioError(target, err)
	}

	r.L().Info("added package", "name", name, "version", version, "path", target, "bytes", n)

	return nil
}

// RemovePackage deletes the entry for name and version along with its
// archive.
func (r *Repository) RemovePackage(name, version string) error {
	if !metadata.ValidSegment(name) || !metadata.ValidSegment(version) {
		return &Error{Kind: KindInvalidPackage, Name: name, Version: version}
	}

	dir := r.EntryPath(name, version)

	if _, err := os.Lstat(dir); err != nil {
		if os.IsNotExist(err) {
			return &Error{Kind: KindPackageNotFound, Path: dir, Name: name, Version: version}
		}

		return ioError(dir, err)
	}

	err := os.RemoveAll(dir)
	if err != nil {
		return ioError(dir, err)
	}

	r.L().Info("removed package", "name", name, "version", version, "path", dir)

	return nil
}

// ListPackages returns the metadata of every archive stored in the
// repository, one result per archive. Any unreadable archive fails the
// whole listing.
func (r *Repository) ListPackages(ctx context.Context) ([]*metadata.PackageData, error) {
	stats, err := r.scan(ctx, false)
	if err != nil {
		return nil, err
	}

	out := make([]*metadata.PackageData, len(stats))

	for i, st := range stats {
		out[i] = st.Data
	}

	return out, nil
}

// PackageStat is an archive in the store along with its metadata.
type PackageStat struct {
	Data     *metadata.PackageData
	Path     string
	Size     int64
	Digest   string
	Modified time.Time
}

// Describe is ListPackages plus the size, mtime and digest of each archive.
func (r *Repository) Describe(ctx context.Context) ([]*PackageStat, error) {
	return r.scan(ctx, true)
}

func (r *Repository) archives() ([]string, error) {
	root := r.PackagesPath()

	fi, err := os.Stat(root)
	if err != nil {
		return nil, ioError(root, err)
	}

	if !fi.IsDir() {
		return nil, ioError(root, errors.Errorf("not a directory: %s", root))
	}

	matches, err := doublestar.Glob(os.DirFS(root), "*/*"+ipak.Extension, doublestar.WithFailOnIOErrors())
	if err != nil {
		return nil, ioError(root, err)
	}

	var paths []string

	for _, m := range matches {
		path := filepath.Join(root, filepath.FromSlash(m))

		fi, err := os.Stat(path)
		if err != nil {
			return nil, ioError(path, err)
		}

		if !fi.Mode().IsRegular() {
			continue
		}

		paths = append(paths, path)
	}

	return paths, nil
}

func (r *Repository) scan(ctx context.Context, stat bool) ([]*PackageStat, error) {
	paths, err := r.archives()
	if err != nil {
		return nil, err
	}

	var out []*PackageStat

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, ioError(path, err)
		}

		pd, err := r.extractor.Extract(ctx, path)
		if err != nil {
			return nil, extractError(path, err)
		}

		ps := &PackageStat{Data: pd, Path: path}

		if stat {
			err = statArchive(ps)
			if err != nil {
				return nil, ioError(path, err)
			}
		}

		r.L().Debug("found package", "name", pd.Name(), "version", pd.Version(), "path", path)

		out = append(out, ps)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]

		if a.Data.Name() != b.Data.Name() {
			return a.Data.Name() < b.Data.Name()
		}

		if c := compareVersions(a.Data.Version(), b.Data.Version()); c != 0 {
			return c < 0
		}

		return a.Path < b.Path
	})

	return out, nil
}

// compareVersions orders semantic versions numerically and falls back to
// plain string order for anything else.
func compareVersions(a, b string) int {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)

	if errA == nil && errB == nil {
		return va.Compare(vb)
	}

	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func statArchive(ps *PackageStat) error {
	f, err := os.Open(ps.Path)
	if err != nil {
		return err
	}

	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return err
	}

	h, _ := blake2b.New256(nil)

	_, err = io.Copy(h, f)
	if err != nil {
		return err
	}

	ps.Size = fi.Size()
	ps.Modified = fi.ModTime()
	ps.Digest = "blake2b-256:" + base58.Encode(h.Sum(nil))

	return nil
}

// Inspect describes a single archive, which does not have to be stored
// in a repository.
func Inspect(ctx context.Context, ex metadata.Extractor, path string) (*PackageStat, error) {
	if ex == nil {
		ex = ipak.Extractor{}
	}

	pd, err := ex.Extract(ctx, path)
	if err != nil {
		return nil, extractError(path, err)
	}

	ps := &PackageStat{Data: pd, Path: path}

	err = statArchive(ps)
	if err != nil {
		return nil, ioError(path, err)
	}

	return ps, nil
}
