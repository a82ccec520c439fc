package metadata

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidSegment(t *testing.T) {
	for _, s := range []string{"a", "hello-world", "1.0.0", "1.0.0-rc.1", "x_y"} {
		assert.True(t, ValidSegment(s), s)
	}

	for _, s := range []string{"", ".", "..", "a/b", "a\\b", "a\x00b", "../x"} {
		assert.False(t, ValidSegment(s), s)
	}
}

func TestPackageData(t *testing.T) {
	var pd PackageData
	pd.About.Package.Name = "a"
	pd.About.Package.Version = "1.0.0"

	assert.Equal(t, "a", pd.Name())
	assert.Equal(t, "1.0.0", pd.Version())
	assert.Equal(t, "a-1.0.0", pd.ID())

	var ex Extractor = ExtractorFunc(func(ctx context.Context, path string) (*PackageData, error) {
		return &pd, nil
	})

	got, err := ex.Extract(context.Background(), "whatever.ipak")
	require.NoError(t, err)
	assert.Same(t, &pd, got)
}
