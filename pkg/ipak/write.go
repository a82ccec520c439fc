package ipak

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"sort"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
	"lab47.dev/ipmrepo/pkg/metadata"
)

type Compression int

const (
	None Compression = iota
	Gzip
	Zstd
)

// File is an extra payload entry written alongside the metadata.
type File struct {
	Name string
	Mode int64
	Data []byte
}

// Write packs pd and files into an archive on w. Entries are written in
// name order with a fixed mtime so the output is reproducible.
func Write(w io.Writer, pd *metadata.PackageData, comp Compression, files ...File) error {
	meta, err := yaml.Marshal(pd)
	if err != nil {
		return errors.Wrapf(err, "encoding %s", MetadataPath)
	}

	var (
		out   io.Writer = w
		flush func() error
	)

	switch comp {
	case Gzip:
		gz := gzip.NewWriter(w)
		out, flush = gz, gz.Close
	case Zstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return errors.WithStack(err)
		}
		out, flush = zw, zw.Close
	}

	tw := tar.NewWriter(out)

	entries := append([]File{{Name: MetadataPath, Mode: 0644, Data: meta}}, files...)

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})

	for _, ent := range entries {
		mode := ent.Mode
		if mode == 0 {
			mode = 0644
		}

		err = tw.WriteHeader(&tar.Header{
			Name:     ent.Name,
			Mode:     mode,
			Size:     int64(len(ent.Data)),
			Typeflag: tar.TypeReg,
			Format:   tar.FormatPAX,
			ModTime:  time.Unix(0, 0),
		})
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = tw.Write(ent.Data)
		if err != nil {
			return errors.WithStack(err)
		}
	}

	err = tw.Close()
	if err != nil {
		return errors.WithStack(err)
	}

	if flush != nil {
		return errors.WithStack(flush())
	}

	return nil
}
