package backend

import (
	"context"
	"io/fs"
)

// Backend is used as lifecycle entrypoint for other backend implementations.
type Backend interface {
	// Name returns the identifier name defined for this backend.
	Name() string
	// Open is part of the lifecycle behaviour and gets called before first use.
	Open(ctx context.Context) error
	// Close is part of the lifecycle behaviour and releases held resources.
	Close(ctx context.Context) error

	// GetCapabilities returns a list of capabilities supported by this backend.
	GetCapabilities() *BackendCapabilities
}

// Filesystem performs whole-file reads and writes by absolute path.
// Failures should wrap the io/fs sentinels (fs.ErrNotExist, fs.ErrExist,
// fs.ErrPermission) so callers can match them with errors.Is.
type Filesystem interface {
	Backend

	// ReadFile returns the full content of name, opened with flag.
	ReadFile(ctx context.Context, name string, flag int) ([]byte, error)

	// WriteFile writes data to name, opened with flag. perm is used when
	// the file is created.
	WriteFile(ctx context.Context, name string, data []byte, flag int, perm fs.FileMode) error
}
