package billy

import (
	"context"
	"io"
	"io/fs"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/mwantia/vfile/backend"
)

// BillyBackend performs whole-file I/O on any billy.Filesystem, such as
// a git worktree or an in-memory memfs.
type BillyBackend struct {
	fs billy.Filesystem
}

// NewBillyBackend wraps fsys.
func NewBillyBackend(fsys billy.Filesystem) *BillyBackend {
	return &BillyBackend{fs: fsys}
}

// NewMemoryBillyBackend returns a backend on an empty memfs.
func NewMemoryBillyBackend() *BillyBackend {
	return NewBillyBackend(memfs.New())
}

// NewOSBillyBackend returns a backend rooted at root on the host filesystem.
func NewOSBillyBackend(root string) *BillyBackend {
	return NewBillyBackend(osfs.New(root))
}

// Name returns the identifier name defined for this backend
func (*BillyBackend) Name() string {
	return "billy"
}

func (bb *BillyBackend) Open(ctx context.Context) error {
	_, err := bb.fs.Stat(bb.fs.Root())
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (bb *BillyBackend) Close(ctx context.Context) error {
	return nil
}

// GetCapabilities returns a list of capabilities supported by this backend
func (bb *BillyBackend) GetCapabilities() *backend.BackendCapabilities {
	return &backend.BackendCapabilities{
		Capabilities: []backend.BackendCapability{
			backend.CapabilityDirectories,
			backend.CapabilityAppend,
			backend.CapabilityExclusive,
		},
	}
}

func (bb *BillyBackend) ReadFile(ctx context.Context, name string, flag int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := bb.fs.OpenFile(name, flag, 0o666)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}

func (bb *BillyBackend) WriteFile(ctx context.Context, name string, data []byte, flag int, perm fs.FileMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := bb.fs.OpenFile(name, flag, perm)
	if err != nil {
		return err
	}

	_, err = f.Write(data)
	if cerr := f.Close(); err == nil {
		err = cerr
	}

	return err
}
