package ipak

import (
	"archive/tar"
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path"

	"github.com/Masterminds/semver/v3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/goccy/go-yaml"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
	"lab47.dev/ipmrepo/pkg/metadata"
)

const (
	Extension    = ".ipak"
	MetadataPath = "ipak/project.yaml"

	// sniffSize matches the read limit mimetype uses by default.
	sniffSize = 3072

	maxMetadataSize = 1 << 20
)

var (
	ErrNoMetadata      = errors.New("archive has no " + MetadataPath)
	ErrUnknownFormat   = errors.New("unrecognized archive format")
	ErrInvalidMetadata = errors.New("invalid package metadata")
)

type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("unable to read package %s: %s", e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Extractor reads package metadata out of .ipak archives on disk.
type Extractor struct{}

var _ metadata.Extractor = Extractor{}

func (Extractor) Extract(ctx context.Context, path string) (*metadata.PackageData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}

	defer f.Close()

	pd, err := Read(ctx, f)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}

	return pd, nil
}

// Read decodes the metadata document from an archive stream. The stream
// may be a bare tar or a gzip or zstd compressed one.
func Read(ctx context.Context, in io.Reader) (*metadata.PackageData, error) {
	tr, closer, err := openTar(in)
	if err != nil {
		return nil, err
	}

	defer closer()

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		hdr, err := tr.Next()
		if err != nil {
			if err == io.EOF {
				return nil, ErrNoMetadata
			}

			return nil, errors.Wrapf(err, "reading tar stream")
		}

		if hdr.Typeflag != tar.TypeReg || path.Clean(hdr.Name) != MetadataPath {
			continue
		}

		data, err := ioutil.ReadAll(io.LimitReader(tr, maxMetadataSize))
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", MetadataPath)
		}

		return Decode(data)
	}
}

func openTar(in io.Reader) (*tar.Reader, func(), error) {
	br := bufio.NewReaderSize(in, sniffSize)

	head, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, nil, errors.Wrapf(err, "reading archive header")
	}

	mt := mimetype.Detect(head)

	switch {
	case mt.Is("application/gzip"):
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "opening gzip stream")
		}

		return tar.NewReader(gz), func() { gz.Close() }, nil
	case mt.Is("application/zstd"):
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "opening zstd stream")
		}

		return tar.NewReader(zr), zr.Close, nil
	case mt.Is("application/x-tar"):
		return tar.NewReader(br), func() {}, nil
	default:
		return nil, nil, errors.Wrapf(ErrUnknownFormat, "detected %s", mt.String())
	}
}

// Decode parses a metadata document and normalizes the version.
func Decode(data []byte) (*metadata.PackageData, error) {
	var pd metadata.PackageData

	err := yaml.Unmarshal(data, &pd)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", MetadataPath)
	}

	pkg := &pd.About.Package

	if !metadata.ValidSegment(pkg.Name) {
		return nil, errors.Wrapf(ErrInvalidMetadata, "bad package name %q", pkg.Name)
	}

	ver, err := semver.NewVersion(pkg.Version)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidMetadata, "bad package version %q: %s", pkg.Version, err)
	}

	pkg.Version = ver.String()

	return &pd, nil
}
