package progress

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCount(t *testing.T) {
	t.Run("discards without a sink", func(t *testing.T) {
		p := Count(context.Background(), 10, "x")
		defer p.Close()

		n, err := p.Write([]byte("hello"))
		require.NoError(t, err)
		assert.Equal(t, 5, n)
	})

	t.Run("renders to the sink", func(t *testing.T) {
		var out bytes.Buffer

		ctx := Open(context.Background(), &out)

		p := Count(ctx, 11, "copy a.ipak")

		_, err := io.Copy(p, strings.NewReader("hello world"))
		require.NoError(t, err)

		p.Close()

		assert.Contains(t, out.String(), "copy a.ipak")
	})
}
