package local

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalBackend_AbsolutePaths(t *testing.T) {
	ctx := context.Background()
	lb := NewLocalBackend()
	require.NoError(t, lb.Open(ctx))

	name := filepath.Join(t.TempDir(), "plain.txt")
	require.NoError(t, lb.WriteFile(ctx, name, []byte("on disk"), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600))

	raw, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, "on disk", string(raw))

	info, err := os.Stat(name)
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(0o600), info.Mode().Perm())
}

func TestLocalBackend_MissingDirectory(t *testing.T) {
	ctx := context.Background()
	lb := NewLocalBackendAt(t.TempDir())

	err := lb.WriteFile(ctx, "/missing/dir/file.txt", []byte("x"), os.O_CREATE|os.O_WRONLY, 0o644)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Contains(t, err.Error(), "no such file or directory")
}

func TestLocalBackend_OpenRootIsFile(t *testing.T) {
	root := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(root, nil, 0o644))

	err := NewLocalBackendAt(root).Open(context.Background())
	assert.Error(t, err)
}
