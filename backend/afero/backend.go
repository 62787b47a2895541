package afero

import (
	"context"
	"io"
	"io/fs"

	"github.com/mwantia/vfile/backend"
	"github.com/spf13/afero"
)

// AferoBackend performs whole-file I/O on any afero.Fs, including layered
// and copy-on-write filesystems built from it.
type AferoBackend struct {
	fs afero.Fs
}

func NewAferoBackend(fsys afero.Fs) *AferoBackend {
	return &AferoBackend{fs: fsys}
}

// NewMemoryAferoBackend returns a backend on an empty afero.MemMapFs.
func NewMemoryAferoBackend() *AferoBackend {
	return NewAferoBackend(afero.NewMemMapFs())
}

// Name returns the identifier name defined for this backend
func (ab *AferoBackend) Name() string {
	return "afero:" + ab.fs.Name()
}

func (ab *AferoBackend) Open(ctx context.Context) error {
	return nil
}

func (ab *AferoBackend) Close(ctx context.Context) error {
	return nil
}

// GetCapabilities returns a list of capabilities supported by this backend
func (ab *AferoBackend) GetCapabilities() *backend.BackendCapabilities {
	return &backend.BackendCapabilities{
		Capabilities: []backend.BackendCapability{
			backend.CapabilityDirectories,
			backend.CapabilityPermissions,
			backend.CapabilityAppend,
			backend.CapabilityExclusive,
		},
	}
}

func (ab *AferoBackend) ReadFile(ctx context.Context, name string, flag int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := ab.fs.OpenFile(name, flag, 0o666)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}

func (ab *AferoBackend) WriteFile(ctx context.Context, name string, data []byte, flag int, perm fs.FileMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := ab.fs.OpenFile(name, flag, perm)
	if err != nil {
		return err
	}

	_, err = f.Write(data)
	if cerr := f.Close(); err == nil {
		err = cerr
	}

	return err
}
