package vfile_test

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/mwantia/vfile"
	"github.com/mwantia/vfile/backend/memory"
	"github.com/mwantia/vfile/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const readme = "# vfile\n\nRead and write virtual files.\n"

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	return dir
}

func TestReadSync_Bytes(t *testing.T) {
	dir := writeFixture(t, "readme.md", readme)

	file, err := vfile.ReadSync(context.Background(), filepath.Join(dir, "readme.md"))
	require.NoError(t, err)

	require.True(t, file.Value().IsBytes())
	assert.Equal(t, []byte(readme), file.Value().Bytes())
}

func TestReadSync_Encoding(t *testing.T) {
	dir := writeFixture(t, "readme.md", readme)

	file, err := vfile.ReadSync(context.Background(), vfile.Options{Path: "readme.md", Cwd: dir}, vfile.WithEncoding("utf8"))
	require.NoError(t, err)

	require.True(t, file.Value().IsText())
	assert.Equal(t, readme, file.Value().String())
	assert.Equal(t, "readme.md", file.Path(), "the path is kept as given")
}

func TestReadSync_SameFile(t *testing.T) {
	dir := writeFixture(t, "readme.md", readme)

	given := newFile(t, filepath.Join(dir, "readme.md"))
	file, err := vfile.ReadSync(context.Background(), given)
	require.NoError(t, err)
	assert.Same(t, given, file)
	assert.Equal(t, readme, given.String())
}

func TestReadSync_Missing(t *testing.T) {
	given := newFile(t, filepath.Join(t.TempDir(), "missing.md"))
	given.SetValue(vfile.Text("keep"))

	file, err := vfile.ReadSync(context.Background(), given)
	require.Error(t, err)
	assert.Nil(t, file)

	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Contains(t, err.Error(), "no such file")
	assert.Equal(t, vfile.KindIO, vfile.KindOf(err))

	var ioErr *vfile.IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "read", ioErr.Op)

	assert.Equal(t, "keep", given.String(), "a failed read leaves the value untouched")
}

func TestSync_NoPath(t *testing.T) {
	for name, op := range map[string]func() (vfile.VirtualFile, error){
		"read": func() (vfile.VirtualFile, error) { return vfile.ReadSync(context.Background(), nil) },
		"write": func() (vfile.VirtualFile, error) {
			return vfile.WriteSync(context.Background(), vfile.Options{Value: "x"})
		},
	} {
		t.Run(name, func(t *testing.T) {
			file, err := op()
			require.Error(t, err)
			assert.Nil(t, file)
			assert.Contains(t, err.Error(), "path")
			assert.ErrorIs(t, err, vfile.ErrInvalidPath)
		})
	}
}

func TestWriteSync_Text(t *testing.T) {
	dir := t.TempDir()

	file, err := vfile.WriteSync(context.Background(), map[string]any{
		"path":  "fixture.txt",
		"cwd":   dir,
		"value": "bär",
	})
	require.NoError(t, err)
	assert.Equal(t, "bär", file.Value().String())

	raw, err := os.ReadFile(filepath.Join(dir, "fixture.txt"))
	require.NoError(t, err)
	assert.Equal(t, "bär", string(raw))
}

func TestWriteSync_EmptyValue(t *testing.T) {
	name := filepath.Join(t.TempDir(), "empty.txt")

	_, err := vfile.WriteSync(context.Background(), name)
	require.NoError(t, err)

	info, err := os.Stat(name)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestWriteSync_Overwrites(t *testing.T) {
	dir := writeFixture(t, "fixture.txt", "a much longer previous content")
	name := filepath.Join(dir, "fixture.txt")

	_, err := vfile.WriteSync(context.Background(), vfile.Options{Path: name, Value: "short"})
	require.NoError(t, err)

	raw, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, "short", string(raw))
}

func TestWriteSync_MissingDirectory(t *testing.T) {
	name := filepath.Join(t.TempDir(), "missing", "fixture.txt")

	_, err := vfile.WriteSync(context.Background(), vfile.Options{Path: name, Value: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Equal(t, vfile.KindIO, vfile.KindOf(err))
}

func TestWriteSync_Flags(t *testing.T) {
	ctx := context.Background()
	dir := writeFixture(t, "log.txt", "one\n")
	name := filepath.Join(dir, "log.txt")

	_, err := vfile.WriteSync(ctx, vfile.Options{Path: name, Value: "two\n"}, vfile.WithFlag("a"))
	require.NoError(t, err)

	raw, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\n", string(raw))

	_, err = vfile.WriteSync(ctx, vfile.Options{Path: name, Value: "three"}, vfile.WithFlag("wx"))
	assert.ErrorIs(t, err, fs.ErrExist)
}

func TestWriteSync_Mode(t *testing.T) {
	name := filepath.Join(t.TempDir(), "secret.txt")

	_, err := vfile.WriteSync(context.Background(), vfile.Options{Path: name, Value: "x"}, vfile.WithMode(0o600))
	require.NoError(t, err)

	info, err := os.Stat(name)
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(0o600), info.Mode().Perm())
}

func TestWriteRead_Encodings(t *testing.T) {
	tests := []struct {
		encoding string
		text     string
		disk     []byte
	}{
		{"utf8", "bär", []byte("bär")},
		{"latin1", "bär", []byte{'b', 0xe4, 'r'}},
		{"utf16le", "hi", []byte{'h', 0, 'i', 0}},
		{"hex", "6869", []byte("hi")},
		{"base64", "aGk=", []byte("hi")},
	}

	for _, tt := range tests {
		t.Run(tt.encoding, func(t *testing.T) {
			ctx := context.Background()
			name := filepath.Join(t.TempDir(), "fixture.txt")

			_, err := vfile.WriteSync(ctx, vfile.Options{Path: name, Value: tt.text}, vfile.WithEncoding(tt.encoding))
			require.NoError(t, err)

			raw, err := os.ReadFile(name)
			require.NoError(t, err)
			assert.Equal(t, tt.disk, raw)

			file, err := vfile.ReadSync(ctx, name, vfile.WithEncoding(tt.encoding))
			require.NoError(t, err)
			assert.Equal(t, tt.text, file.Value().String())
		})
	}
}

func TestWriteSync_BytesIgnoreEncoding(t *testing.T) {
	name := filepath.Join(t.TempDir(), "raw.bin")
	content := []byte{0x00, 0xff, 0x10}

	_, err := vfile.WriteSync(context.Background(), vfile.Options{Path: name, Value: content}, vfile.WithEncoding("hex"))
	require.NoError(t, err)

	raw, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, content, raw)
}

func TestSync_Filesystem(t *testing.T) {
	ctx := context.Background()
	mem := memory.NewMemoryBackend()

	file, err := vfile.NewVFile(vfile.Options{Path: "notes.md", Cwd: "/virtual", Value: "# notes"})
	require.NoError(t, err)

	_, err = vfile.WriteSync(ctx, file, vfile.WithFilesystem(mem))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("/virtual", "notes.md")}, mem.Keys())

	read, err := vfile.ReadSync(ctx, vfile.Options{Path: "notes.md", Cwd: "/virtual"}, vfile.WithFilesystem(mem), vfile.WithEncoding("utf8"))
	require.NoError(t, err)
	assert.Equal(t, "# notes", read.Value().String())
}

func TestSync_DefaultFilesystem(t *testing.T) {
	ctx := context.Background()
	mem := memory.NewMemoryBackend()

	vfile.SetDefaultFilesystem(mem)
	t.Cleanup(func() { vfile.SetDefaultFilesystem(nil) })

	_, err := vfile.WriteSync(ctx, vfile.Options{Path: "/only/in/memory.txt", Value: "x"})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Clean("/only/in/memory.txt")}, mem.Keys())

	_, err = os.Stat("/only/in/memory.txt")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestSync_Logger(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	logger := log.NewWriterLogger("vfile", log.Debug, &buf)

	name := filepath.Join(t.TempDir(), "logged.txt")
	_, err := vfile.WriteSync(ctx, vfile.Options{Path: name, Value: "abc"}, vfile.WithLogger(logger))
	require.NoError(t, err)

	_, err = vfile.ReadSync(ctx, name+".missing", vfile.WithLogger(logger))
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, "DEBUG [vfile] wrote "+name+" (3 bytes) to local")
	assert.Contains(t, out, "WARN  [vfile] vfile: read "+name+".missing")
}

func TestReadSync_TruncatingFlag(t *testing.T) {
	ctx := context.Background()
	mem := memory.NewMemoryBackend()
	dir := writeFixture(t, "a.txt", "hello")

	_, err := vfile.WriteSync(ctx, vfile.Options{Path: "/a.txt", Value: "hello"}, vfile.WithFilesystem(mem))
	require.NoError(t, err)

	for name, read := range map[string]func() (vfile.VirtualFile, error){
		"local": func() (vfile.VirtualFile, error) {
			return vfile.ReadSync(ctx, filepath.Join(dir, "a.txt"), vfile.WithFlag("w+"))
		},
		"memory": func() (vfile.VirtualFile, error) {
			return vfile.ReadSync(ctx, "/a.txt", vfile.WithFlag("w+"), vfile.WithFilesystem(mem))
		},
	} {
		t.Run(name, func(t *testing.T) {
			file, err := read()
			require.NoError(t, err)
			assert.Empty(t, file.Value().Bytes())
		})
	}

	again, err := vfile.ReadSync(ctx, "/a.txt", vfile.WithFilesystem(mem))
	require.NoError(t, err)
	assert.Empty(t, again.Value().Bytes(), "the memory backend keeps the truncation")
}

func TestWriteSync_InvalidContent(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	logger := log.NewWriterLogger("vfile", log.Warn, &buf)

	name := filepath.Join(t.TempDir(), "bad.txt")
	_, err := vfile.WriteSync(ctx, vfile.Options{Path: name, Value: "a!b"}, vfile.WithEncoding("base64"), vfile.WithLogger(logger))
	require.Error(t, err)
	assert.ErrorIs(t, err, vfile.ErrInvalidContent)
	assert.Equal(t, vfile.KindInvalidInput, vfile.KindOf(err))
	assert.Contains(t, buf.String(), "WARN  [vfile] vfile: invalid content for encoding: write "+name+" as base64")

	_, err = os.Stat(name)
	assert.ErrorIs(t, err, fs.ErrNotExist, "nothing is written when encoding fails")
}
