package vfile

import (
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/mwantia/vfile/backend"
	"github.com/mwantia/vfile/backend/local"
	"github.com/mwantia/vfile/log"
)

// IOOptions controls a single read or write.
type IOOptions struct {
	Encoding   Encoding
	Flag       int
	Mode       fs.FileMode
	Filesystem backend.Filesystem
	Logger     *log.Logger
}

type IOOption func(*IOOptions) error

var (
	defaultMu         sync.RWMutex
	defaultFilesystem backend.Filesystem = local.NewLocalBackend()
	defaultLogger                        = log.Discard()
)

// SetDefaultFilesystem changes the filesystem used when no WithFilesystem
// option is given. Passing nil restores the local filesystem.
func SetDefaultFilesystem(fsys backend.Filesystem) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if fsys == nil {
		fsys = local.NewLocalBackend()
	}
	defaultFilesystem = fsys
}

// SetDefaultLogger changes the logger used when no WithLogger option is
// given. Passing nil silences logging again.
func SetDefaultLogger(logger *log.Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if logger == nil {
		logger = log.Discard()
	}
	defaultLogger = logger
}

func newDefaultIOOptions(flag int) *IOOptions {
	defaultMu.RLock()
	defer defaultMu.RUnlock()

	return &IOOptions{
		Encoding:   EncodingNone,
		Flag:       flag,
		Mode:       0o666,
		Filesystem: defaultFilesystem,
		Logger:     defaultLogger,
	}
}

func applyIOOptions(flag int, opts []IOOption) (*IOOptions, error) {
	options := newDefaultIOOptions(flag)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	return options, nil
}

// WithEncoding decodes read content into text, or encodes text content
// before writing. Names are parsed with ParseEncoding.
func WithEncoding(name string) IOOption {
	return func(opts *IOOptions) error {
		enc, err := ParseEncoding(name)
		if err != nil {
			return err
		}

		opts.Encoding = enc
		return nil
	}
}

// WithFlag sets the open flag using the familiar string form:
// "r", "r+", "rs+", "w", "wx", "w+", "wx+", "a", "ax", "a+", "ax+".
func WithFlag(flag string) IOOption {
	return func(opts *IOOptions) error {
		f, err := ParseFlag(flag)
		if err != nil {
			return err
		}

		opts.Flag = f
		return nil
	}
}

// WithMode sets the permission bits used when a write creates the file.
func WithMode(mode fs.FileMode) IOOption {
	return func(opts *IOOptions) error {
		opts.Mode = mode.Perm()
		return nil
	}
}

// WithFilesystem performs the operation against fsys instead of the
// default filesystem.
func WithFilesystem(fsys backend.Filesystem) IOOption {
	return func(opts *IOOptions) error {
		if fsys == nil {
			return fmt.Errorf("%w: filesystem cannot be nil", ErrInvalidDescription)
		}

		opts.Filesystem = fsys
		return nil
	}
}

// WithLogger logs the outcome of the operation to logger.
func WithLogger(logger *log.Logger) IOOption {
	return func(opts *IOOptions) error {
		if logger == nil {
			logger = log.Discard()
		}

		opts.Logger = logger
		return nil
	}
}

var flags = map[string]int{
	"r":   os.O_RDONLY,
	"rs":  os.O_RDONLY | os.O_SYNC,
	"sr":  os.O_RDONLY | os.O_SYNC,
	"r+":  os.O_RDWR,
	"rs+": os.O_RDWR | os.O_SYNC,
	"sr+": os.O_RDWR | os.O_SYNC,
	"w":   os.O_TRUNC | os.O_CREATE | os.O_WRONLY,
	"wx":  os.O_TRUNC | os.O_CREATE | os.O_WRONLY | os.O_EXCL,
	"xw":  os.O_TRUNC | os.O_CREATE | os.O_WRONLY | os.O_EXCL,
	"w+":  os.O_TRUNC | os.O_CREATE | os.O_RDWR,
	"wx+": os.O_TRUNC | os.O_CREATE | os.O_RDWR | os.O_EXCL,
	"xw+": os.O_TRUNC | os.O_CREATE | os.O_RDWR | os.O_EXCL,
	"a":   os.O_APPEND | os.O_CREATE | os.O_WRONLY,
	"ax":  os.O_APPEND | os.O_CREATE | os.O_WRONLY | os.O_EXCL,
	"xa":  os.O_APPEND | os.O_CREATE | os.O_WRONLY | os.O_EXCL,
	"as":  os.O_APPEND | os.O_CREATE | os.O_WRONLY | os.O_SYNC,
	"sa":  os.O_APPEND | os.O_CREATE | os.O_WRONLY | os.O_SYNC,
	"a+":  os.O_APPEND | os.O_CREATE | os.O_RDWR,
	"ax+": os.O_APPEND | os.O_CREATE | os.O_RDWR | os.O_EXCL,
	"xa+": os.O_APPEND | os.O_CREATE | os.O_RDWR | os.O_EXCL,
	"as+": os.O_APPEND | os.O_CREATE | os.O_RDWR | os.O_SYNC,
	"sa+": os.O_APPEND | os.O_CREATE | os.O_RDWR | os.O_SYNC,
}

// ParseFlag converts a flag string into os.O_* bits.
func ParseFlag(flag string) (int, error) {
	f, ok := flags[flag]
	if !ok {
		return 0, fmt.Errorf("%w: '%s'", ErrInvalidFlag, flag)
	}

	return f, nil
}
