package vfile_test

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mwantia/vfile"
	"github.com/mwantia/vfile/backend/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type callbackResult struct {
	file vfile.VirtualFile
	err  error
}

// collect returns a Callback and a channel receiving its single result.
func collect(t *testing.T) (vfile.Callback, <-chan callbackResult) {
	t.Helper()

	var calls atomic.Int32
	results := make(chan callbackResult, 2)

	return func(file vfile.VirtualFile, err error) {
		if calls.Add(1) > 1 {
			t.Errorf("callback invoked more than once")
		}
		results <- callbackResult{file: file, err: err}
	}, results
}

func receive(t *testing.T, results <-chan callbackResult) callbackResult {
	t.Helper()

	select {
	case r := <-results:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("callback was never invoked")
		return callbackResult{}
	}
}

func TestRead_Future(t *testing.T) {
	dir := writeFixture(t, "readme.md", readme)

	future := vfile.Read(context.Background(), filepath.Join(dir, "readme.md"), vfile.WithEncoding("utf8"))

	file, err := future.Wait()
	require.NoError(t, err)
	assert.Equal(t, readme, file.Value().String())

	select {
	case <-future.Done():
	default:
		t.Fatal("Done must be closed after Wait returns")
	}
	assert.NoError(t, future.Err())

	// Waiting again returns the same settled result
	again, err := future.Wait()
	require.NoError(t, err)
	assert.Same(t, file, again)
}

func TestRead_FutureMissing(t *testing.T) {
	future := vfile.Read(context.Background(), filepath.Join(t.TempDir(), "missing.md"))

	file, err := future.Await(context.Background())
	require.Error(t, err)
	assert.Nil(t, file)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Contains(t, err.Error(), "no such file")
	assert.ErrorIs(t, future.Err(), fs.ErrNotExist)
}

func TestReadCallback(t *testing.T) {
	dir := writeFixture(t, "readme.md", readme)
	cb, results := collect(t)

	vfile.ReadCallback(context.Background(), filepath.Join(dir, "readme.md"), cb)

	r := receive(t, results)
	require.NoError(t, r.err)
	require.NotNil(t, r.file)
	assert.Equal(t, []byte(readme), r.file.Value().Bytes())
}

func TestReadCallback_Missing(t *testing.T) {
	cb, results := collect(t)

	vfile.ReadCallback(context.Background(), filepath.Join(t.TempDir(), "missing.md"), cb, vfile.WithEncoding("utf8"))

	r := receive(t, results)
	require.Error(t, r.err)
	assert.Nil(t, r.file)
	assert.True(t, errors.Is(r.err, fs.ErrNotExist))
	assert.Contains(t, r.err.Error(), "no such file")
}

func TestWrite_Future(t *testing.T) {
	name := filepath.Join(t.TempDir(), "fixture.txt")

	file, err := vfile.Write(context.Background(), vfile.Options{Path: name, Value: "bär"}).Wait()
	require.NoError(t, err)
	assert.Equal(t, name, file.Path())

	raw, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, "bär", string(raw))
}

func TestWriteCallback(t *testing.T) {
	name := filepath.Join(t.TempDir(), "fixture.txt")
	cb, results := collect(t)

	vfile.WriteCallback(context.Background(), vfile.Options{Path: name}, cb)

	r := receive(t, results)
	require.NoError(t, r.err)
	assert.Equal(t, name, r.file.Path())

	info, err := os.Stat(name)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestAsync_NoPath(t *testing.T) {
	ctx := context.Background()

	futures := map[string]*vfile.Future{
		"read":  vfile.Read(ctx, nil),
		"write": vfile.Write(ctx, vfile.Options{Value: "x"}),
	}
	for name, future := range futures {
		t.Run(name, func(t *testing.T) {
			_, err := future.Wait()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "path")
			assert.ErrorIs(t, err, vfile.ErrInvalidPath)
		})
	}

	readCb, readResults := collect(t)
	vfile.ReadCallback(ctx, vfile.New(), readCb)
	r := receive(t, readResults)
	assert.Nil(t, r.file)
	assert.ErrorIs(t, r.err, vfile.ErrInvalidPath)
	assert.Contains(t, r.err.Error(), "path")

	writeCb, writeResults := collect(t)
	vfile.WriteCallback(ctx, vfile.New(), writeCb)
	r = receive(t, writeResults)
	assert.Nil(t, r.file)
	assert.ErrorIs(t, r.err, vfile.ErrInvalidPath)
	assert.Contains(t, r.err.Error(), "path")
}

func TestAsync_InvalidDescription(t *testing.T) {
	_, err := vfile.Read(context.Background(), 42).Wait()
	assert.ErrorIs(t, err, vfile.ErrInvalidDescription)

	cb, results := collect(t)
	vfile.WriteCallback(context.Background(), 42, cb)
	r := receive(t, results)
	assert.ErrorIs(t, r.err, vfile.ErrInvalidDescription)
}

// blockingFS holds every write until release is closed.
type blockingFS struct {
	*memory.MemoryBackend
	release chan struct{}
}

func (b *blockingFS) WriteFile(ctx context.Context, name string, data []byte, flag int, perm fs.FileMode) error {
	<-b.release
	return b.MemoryBackend.WriteFile(ctx, name, data, flag, perm)
}

func TestFuture_AwaitCanceled(t *testing.T) {
	fsys := &blockingFS{MemoryBackend: memory.NewMemoryBackend(), release: make(chan struct{})}
	future := vfile.Write(context.Background(), vfile.Options{Path: "/slow.txt", Value: "x"}, vfile.WithFilesystem(fsys))

	assert.NoError(t, future.Err(), "pending futures report no error")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := future.Await(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	// The write itself is not aborted
	close(fsys.release)
	_, err = future.Wait()
	require.NoError(t, err)
	assert.Equal(t, []string{"/slow.txt"}, fsys.Keys())
}

func TestAsync_NilCallback(t *testing.T) {
	name := filepath.Join(t.TempDir(), "quiet.txt")
	vfile.WriteCallback(context.Background(), vfile.Options{Path: name, Value: "x"}, nil)

	assert.Eventually(t, func() bool {
		_, err := os.Stat(name)
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)
}

func TestAsync_ConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	const n = 16
	futures := make([]*vfile.Future, n)
	for i := 0; i < n; i++ {
		name := filepath.Join(dir, fmt.Sprintf("file-%02d.txt", i))
		futures[i] = vfile.Write(ctx, vfile.Options{Path: name, Value: fmt.Sprintf("content %d", i)})
	}

	for i, future := range futures {
		_, err := future.Wait()
		require.NoError(t, err)

		file, err := vfile.Read(ctx, filepath.Join(dir, fmt.Sprintf("file-%02d.txt", i)), vfile.WithEncoding("utf8")).Wait()
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("content %d", i), file.Value().String())
	}
}
