package progress

import (
	"context"
	"fmt"
	"io"
	"time"

	pb "github.com/schollz/progressbar/v3"
)

type sinkKey struct{}

type sink struct {
	w io.Writer
}

// Open returns a context that renders progress bars to w. Without it,
// Count hands back a bar that discards everything.
func Open(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, sinkKey{}, sink{w})
}

type Progress struct {
	bar *pb.ProgressBar
}

var _ io.Writer = (*Progress)(nil)

// Write advances the bar by len(b), so a Progress can sit in an io.MultiWriter.
func (p *Progress) Write(b []byte) (int, error) {
	if p.bar != nil {
		p.bar.Add64(int64(len(b)))
	}

	return len(b), nil
}

func (p *Progress) Close() {
	if p.bar == nil {
		return
	}

	p.bar.Close()
}

// Count starts a byte-counting bar of total bytes.
func Count(ctx context.Context, total int64, desc string) *Progress {
	v, ok := ctx.Value(sinkKey{}).(sink)
	if !ok {
		return &Progress{}
	}

	bar := pb.NewOptions64(
		total,
		pb.OptionSetDescription(desc),
		pb.OptionSetWriter(v.w),
		pb.OptionSetWidth(20),
		pb.OptionThrottle(65*time.Millisecond),
		pb.OptionShowBytes(true),
		pb.OptionSetTheme(
			pb.Theme{Saucer: "=", SaucerPadding: " ", BarStart: "[", BarEnd: "]"},
		),
		pb.OptionOnCompletion(func() {
			fmt.Fprint(v.w, "\n")
		}),
	)
	bar.RenderBlank()

	return &Progress{bar: bar}
}
