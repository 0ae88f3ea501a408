package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/shelf/internal/storage"
)

func TestBackendRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	b, err := Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	assert.Equal(t, filepath.Join(dir, FileName), b.Path())
	assert.Equal(t, "sqlite", b.Name())
	require.NoError(t, b.Ping(ctx))

	_, err = b.Get(ctx, "missing")
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	require.NoError(t, b.Set(ctx, "k", []byte(`[1]`)))
	require.NoError(t, b.Set(ctx, "k", []byte(`[1,2]`)))

	got, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `[1,2]`, string(got))
}

func TestBackendPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	b, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, b.Set(ctx, "shelf:resources", []byte(`[]`)))
	require.NoError(t, b.Close())

	b, err = Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	got, err := b.Get(ctx, "shelf:resources")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))
}
