package memory

import (
	"context"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/mwantia/vfile/backend"
	"github.com/tidwall/btree"
)

// MemoryBackend keeps files in an ordered in-memory map keyed by path.
// It has no directories: any absolute path can be written.
type MemoryBackend struct {
	mu sync.RWMutex

	objects *btree.Map[string, *object]
}

type object struct {
	content    []byte
	mode       fs.FileMode
	modifyTime time.Time
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		objects: btree.NewMap[string, *object](0),
	}
}

// Name returns the identifier name defined for this backend
func (*MemoryBackend) Name() string {
	return "memory"
}

// Open is part of the lifecycle behaviour and gets called before first use.
func (mb *MemoryBackend) Open(ctx context.Context) error {
	// No initialization needed - backend is ready to use
	return nil
}

// Close drops every stored file.
func (mb *MemoryBackend) Close(ctx context.Context) error {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	mb.objects.Clear()
	return nil
}

// GetCapabilities returns a list of capabilities supported by this backend.
func (mb *MemoryBackend) GetCapabilities() *backend.BackendCapabilities {
	return &backend.BackendCapabilities{
		Capabilities: []backend.BackendCapability{
			backend.CapabilityPermissions,
			backend.CapabilityAppend,
			backend.CapabilityExclusive,
		},
		MaxObjectSize: 10485760, // 10 MB
	}
}

func (mb *MemoryBackend) ReadFile(ctx context.Context, name string, flag int) ([]byte, error) {
	if needsWriteLock(flag) {
		mb.mu.Lock()
		defer mb.mu.Unlock()
	} else {
		mb.mu.RLock()
		defer mb.mu.RUnlock()
	}

	obj, exists := mb.objects.Get(name)

	var existing []byte
	mode := fs.FileMode(0o666)
	if exists {
		existing = obj.content
		mode = obj.mode
	}

	content, persist, err := backend.PrepareRead(name, existing, exists, flag)
	if err != nil {
		return nil, err
	}

	if persist {
		mb.objects.Set(name, &object{
			content:    content,
			mode:       mode,
			modifyTime: time.Now(),
		})
	}

	out := make([]byte, len(content))
	copy(out, content)
	return out, nil
}

func (mb *MemoryBackend) WriteFile(ctx context.Context, name string, data []byte, flag int, perm fs.FileMode) error {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	obj, exists := mb.objects.Get(name)

	var existing []byte
	mode := perm
	if exists {
		existing = obj.content
		mode = obj.mode
	}

	content, err := backend.PrepareWrite(name, existing, exists, data, flag)
	if err != nil {
		return err
	}

	if !mb.GetCapabilities().Allows(int64(len(content))) {
		return &fs.PathError{Op: "write", Path: name, Err: backend.ErrTooLarge}
	}

	mb.objects.Set(name, &object{
		content:    content,
		mode:       mode,
		modifyTime: time.Now(),
	})

	return nil
}

// Stat returns the size, mode and modification time stored for name.
func (mb *MemoryBackend) Stat(name string) (size int64, mode fs.FileMode, modifyTime time.Time, err error) {
	mb.mu.RLock()
	defer mb.mu.RUnlock()

	obj, exists := mb.objects.Get(name)
	if !exists {
		return 0, 0, time.Time{}, backend.NotExist("stat", name)
	}

	return int64(len(obj.content)), obj.mode, obj.modifyTime, nil
}

// Keys returns all stored paths in lexical order.
func (mb *MemoryBackend) Keys() []string {
	mb.mu.RLock()
	defer mb.mu.RUnlock()

	return mb.objects.Keys()
}

func needsWriteLock(flag int) bool {
	return flag&(os.O_CREATE|os.O_TRUNC) != 0
}
