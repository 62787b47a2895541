package vfile

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// VirtualFile is the capability contract shared by every virtual file
// implementation. Any value providing these methods is treated as an
// existing virtual file and passed through ToVFile unchanged, so other
// implementations of the contract interoperate with the I/O functions.
type VirtualFile interface {
	// Path returns the current path, or "" when unset.
	Path() string
	// Cwd returns the base directory for a relative path.
	Cwd() string
	// Value returns the current content.
	Value() Value
	// SetValue replaces the content.
	SetValue(v Value)
	// Messages returns the diagnostics attached to the file.
	Messages() []*Message
}

// IsVirtualFile reports whether v satisfies the VirtualFile contract.
func IsVirtualFile(v any) bool {
	f, ok := v.(VirtualFile)
	return ok && f != nil
}

// VFile is the in-memory representation of a file: its location, its
// content and the diagnostics attached to it. A VFile never holds an open
// descriptor and is not safe for concurrent mutation.
type VFile struct {
	history  []string
	cwd      string
	wd       string
	value    Value
	data     map[string]any
	messages []*Message
}

var _ VirtualFile = (*VFile)(nil)

// New returns an empty VFile whose cwd is the current working directory.
func New() *VFile {
	wd := processCwd()
	return &VFile{
		cwd:  wd,
		wd:   wd,
		data: make(map[string]any),
	}
}

// NewVFile creates a VFile from opts. Path parts are applied in the order
// History, Path, Basename, Stem, Extname, Dirname so a path can be composed
// from parts alone.
func NewVFile(opts Options) (*VFile, error) {
	f := New()

	if opts.Cwd != "" {
		f.cwd = opts.Cwd
	}

	if len(opts.History) > 0 {
		f.history = slices.Clone(opts.History)
	}

	steps := []struct {
		value string
		set   func(string) error
	}{
		{opts.Path, f.SetPath},
		{opts.Basename, f.SetBasename},
		{opts.Stem, f.SetStem},
		{opts.Extname, f.SetExtname},
		{opts.Dirname, f.SetDirname},
	}
	for _, step := range steps {
		if step.value == "" {
			continue
		}
		if err := step.set(step.value); err != nil {
			return nil, err
		}
	}

	value, ok := valueOf(opts.Value)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported value type %T", ErrInvalidDescription, opts.Value)
	}
	f.value = value

	for k, v := range opts.Data {
		f.data[k] = v
	}

	return f, nil
}

func processCwd() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}

	return wd
}

func (f *VFile) anchor() string {
	if f.wd == "" {
		return processCwd()
	}

	return f.wd
}

// Path returns the current path, the last entry of History.
func (f *VFile) Path() string {
	if len(f.history) == 0 {
		return ""
	}

	return f.history[len(f.history)-1]
}

// SetPath changes the path, recording it in History when it differs.
func (f *VFile) SetPath(p string) error {
	if p == "" {
		return fmt.Errorf("%w: 'path' cannot be empty", ErrInvalidPath)
	}

	if p != f.Path() {
		f.history = append(f.history, p)
	}

	return nil
}

// History returns every path the file has had, oldest first.
func (f *VFile) History() []string {
	return slices.Clone(f.history)
}

func (f *VFile) Cwd() string {
	return f.cwd
}

func (f *VFile) SetCwd(cwd string) {
	f.cwd = cwd
}

func (f *VFile) Value() Value {
	return f.value
}

func (f *VFile) SetValue(v Value) {
	f.value = v
}

// Data returns the free-form data map shared with consumers of the file.
func (f *VFile) Data() map[string]any {
	if f.data == nil {
		f.data = make(map[string]any)
	}

	return f.data
}

// Basename returns the last element of the path, e.g. "index.min.js".
func (f *VFile) Basename() string {
	p := trimTrailingSeparators(f.Path())
	if p == "" {
		return ""
	}

	base := filepath.Base(p)
	if len(base) == 1 && os.IsPathSeparator(base[0]) {
		return ""
	}

	return base
}

// SetBasename replaces the last element of the path.
func (f *VFile) SetBasename(basename string) error {
	if err := assertPart(basename, "basename"); err != nil {
		return err
	}

	return f.SetPath(filepath.Join(f.Dirname(), basename))
}

// Stem returns the basename without its extension, e.g. "index.min".
func (f *VFile) Stem() string {
	return strings.TrimSuffix(f.Basename(), f.Extname())
}

// SetStem replaces the basename while keeping the extension.
func (f *VFile) SetStem(stem string) error {
	if err := assertPart(stem, "stem"); err != nil {
		return err
	}

	return f.SetPath(filepath.Join(f.Dirname(), stem+f.Extname()))
}

// Extname returns the extension including the dot, e.g. ".js".
// Dotfiles like ".bashrc" have no extension.
func (f *VFile) Extname() string {
	base := f.Basename()
	i := strings.LastIndexByte(base, '.')
	if i <= 0 || strings.Trim(base, ".") == "" {
		return ""
	}

	return base[i:]
}

// SetExtname replaces the extension. An empty extname removes it.
func (f *VFile) SetExtname(extname string) error {
	if err := assertPathSet(f.Path(), "extname"); err != nil {
		return err
	}

	if extname != "" {
		if extname[0] != '.' {
			return fmt.Errorf("%w: 'extname' must start with '.'", ErrInvalidPart)
		}
		if strings.Contains(extname[1:], ".") {
			return fmt.Errorf("%w: 'extname' cannot contain multiple dots", ErrInvalidPart)
		}
	}

	return f.SetPath(filepath.Join(f.Dirname(), f.Stem()+extname))
}

// Dirname returns the directory part of the path, "." for a bare name and
// "" when the path is unset.
func (f *VFile) Dirname() string {
	p := trimTrailingSeparators(f.Path())
	if p == "" {
		return ""
	}

	return filepath.Dir(p)
}

// SetDirname moves the file to another directory, keeping the basename.
func (f *VFile) SetDirname(dirname string) error {
	if err := assertPathSet(f.Path(), "dirname"); err != nil {
		return err
	}

	return f.SetPath(filepath.Join(dirname, f.Basename()))
}

// String returns the content as UTF-8 text.
func (f *VFile) String() string {
	return f.value.String()
}

// Text returns the content as text in the given encoding. Text content is
// returned as-is; byte content is decoded.
func (f *VFile) Text(enc Encoding) (string, error) {
	if f.value.IsText() {
		return f.value.String(), nil
	}

	return enc.Decode(f.value.Bytes())
}

func trimTrailingSeparators(p string) string {
	for len(p) > 1 && os.IsPathSeparator(p[len(p)-1]) {
		p = p[:len(p)-1]
	}

	return p
}
