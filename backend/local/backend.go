package local

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mwantia/vfile/backend"
)

// LocalBackend reads and writes files on the host filesystem.
// With an empty root, names are used as given; otherwise every name is
// placed below root.
type LocalBackend struct {
	root string
}

// NewLocalBackend returns a backend operating directly on the host paths.
func NewLocalBackend() *LocalBackend {
	return &LocalBackend{}
}

// NewLocalBackendAt returns a backend that stores every file below root.
func NewLocalBackendAt(root string) *LocalBackend {
	return &LocalBackend{
		root: filepath.Clean(root),
	}
}

// Name returns the identifier name defined for this backend
func (*LocalBackend) Name() string {
	return "local"
}

// Open verifies the root directory, if one is configured.
func (lb *LocalBackend) Open(ctx context.Context) error {
	if lb.root == "" {
		return nil
	}

	info, err := os.Stat(lb.root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return &fs.PathError{Op: "open", Path: lb.root, Err: errors.New("not a directory")}
	}

	return nil
}

// Close is part of the lifecycle behaviour; there is nothing to release.
func (lb *LocalBackend) Close(ctx context.Context) error {
	return nil
}

// GetCapabilities returns a list of capabilities supported by this backend.
func (lb *LocalBackend) GetCapabilities() *backend.BackendCapabilities {
	return backend.GetAllCapabilities()
}

// ReadFile opens name with flag and reads it to the end.
func (lb *LocalBackend) ReadFile(ctx context.Context, name string, flag int) ([]byte, error) {
	file, err := os.OpenFile(lb.resolvePath(name), flag, 0o666)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(file)
}

// WriteFile opens name with flag and writes data in full.
func (lb *LocalBackend) WriteFile(ctx context.Context, name string, data []byte, flag int, perm fs.FileMode) error {
	file, err := os.OpenFile(lb.resolvePath(name), flag, perm)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}

	return err
}

// resolvePath joins the backend root with the given name.
func (lb *LocalBackend) resolvePath(name string) string {
	if lb.root == "" {
		return name
	}

	return filepath.Join(lb.root, filepath.Clean(name))
}
