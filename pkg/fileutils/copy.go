package fileutils

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
	"lab47.dev/ipmrepo/pkg/progress"
)

// Copy duplicates regular files, keeping their permission bits and mtime.
type Copy struct {
	Ctx context.Context
	L   hclog.Logger

	// ModeOr is or'd into the destination's permission bits.
	ModeOr os.FileMode
}

func (c *Copy) ctx() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}

	return c.Ctx
}

func (c *Copy) logger() hclog.Logger {
	if c.L == nil {
		return hclog.NewNullLogger()
	}

	return c.L
}

// File copies from to to. to must not already exist. It returns the number
// of bytes written.
func (c *Copy) File(from, to string) (int64, error) {
	ctx := c.ctx()

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	c.logger().Trace("copy file", "from", from, "to", to)

	f, err := os.Open(from)
	if err != nil {
		return 0, err
	}

	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return 0, err
	}

	if !fi.Mode().IsRegular() {
		return 0, errors.Errorf("not a regular file: %s", from)
	}

	tg, err := os.OpenFile(
		to,
		os.O_WRONLY|os.O_CREATE|os.O_EXCL,
		fi.Mode().Perm()|c.ModeOr.Perm(),
	)
	if err != nil {
		return 0, err
	}

	bar := progress.Count(ctx, fi.Size(), "copy "+filepath.Base(from))
	defer bar.Close()

	n, err := io.Copy(io.MultiWriter(tg, bar), &ctxReader{ctx: ctx, r: f})
	if err != nil {
		tg.Close()
		return n, err
	}

	err = tg.Close()
	if err != nil {
		return n, err
	}

	err = os.Chtimes(to, time.Now(), fi.ModTime())
	if err != nil {
		return n, err
	}

	return n, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(b []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}

	return c.r.Read(b)
}
