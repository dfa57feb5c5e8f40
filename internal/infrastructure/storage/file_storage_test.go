package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalFileStorage_SaveReadExists(t *testing.T) {
	base := t.TempDir()
	s := NewLocalFileStorage(base, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "receipts/a.png", []byte("png-bytes")))
	assert.True(t, s.Exists(ctx, "receipts/a.png"))
	assert.False(t, s.Exists(ctx, "receipts"), "directories are not files")
	assert.False(t, s.Exists(ctx, "receipts/missing.png"))

	got, err := s.Read(ctx, "receipts/a.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), got)

	entries, err := os.ReadDir(filepath.Join(base, "receipts"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")

	require.NoError(t, s.Save(ctx, "receipts/a.png", []byte("replaced")))
	got, err = s.Read(ctx, "receipts/a.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("replaced"), got)
}

func TestLocalFileStorage_RejectsEscapes(t *testing.T) {
	s := NewLocalFileStorage(t.TempDir(), zap.NewNop())
	ctx := context.Background()

	for _, p := range []string{"../evil.png", "receipts/../../evil.png", "", "."} {
		assert.Error(t, s.Save(ctx, p, []byte("x")), "path %q", p)
		_, err := s.Read(ctx, p)
		assert.Error(t, err, "path %q", p)
		assert.False(t, s.Exists(ctx, p), "path %q", p)
	}
}

func TestLocalFileStorage_SaveHonoursCancellation(t *testing.T) {
	s := NewLocalFileStorage(t.TempDir(), zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Save(ctx, "a.png", []byte("x")), context.Canceled)
}
