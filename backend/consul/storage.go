package consul

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/hashicorp/consul/api"
	"github.com/mwantia/vfile/backend"
)

func (cb *ConsulBackend) ReadFile(ctx context.Context, name string, flag int) ([]byte, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	key := cb.buildKey(name)
	opts := (&api.QueryOptions{}).WithContext(ctx)

	pair, _, err := cb.kv.Get(key, opts)
	if err != nil {
		return nil, err
	}

	var (
		existing []byte
		index    uint64
	)
	if pair != nil {
		existing = pair.Value
		index = pair.ModifyIndex
	}

	content, persist, err := backend.PrepareRead(name, existing, pair != nil, flag)
	if err != nil {
		return nil, err
	}

	if persist {
		if err := cb.put(ctx, name, key, content, index); err != nil {
			return nil, err
		}
	}

	return content, nil
}

func (cb *ConsulBackend) WriteFile(ctx context.Context, name string, data []byte, flag int, perm fs.FileMode) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	key := cb.buildKey(name)
	opts := (&api.QueryOptions{}).WithContext(ctx)

	pair, _, err := cb.kv.Get(key, opts)
	if err != nil {
		return err
	}

	var (
		existing []byte
		index    uint64
	)
	if pair != nil {
		existing = pair.Value
		index = pair.ModifyIndex
	}

	content, err := backend.PrepareWrite(name, existing, pair != nil, data, flag)
	if err != nil {
		return err
	}

	if !cb.GetCapabilities().Allows(int64(len(content))) {
		return &fs.PathError{Op: "write", Path: name, Err: backend.ErrTooLarge}
	}

	return cb.put(ctx, name, key, content, index)
}

// put stores content with a check-and-set on index so a concurrent writer
// from another process is detected. Index 0 only succeeds for new keys.
func (cb *ConsulBackend) put(ctx context.Context, name, key string, content []byte, index uint64) error {
	pair := &api.KVPair{
		Key:         key,
		Value:       content,
		ModifyIndex: index,
	}

	ok, _, err := cb.kv.CAS(pair, (&api.WriteOptions{}).WithContext(ctx))
	if err != nil {
		return err
	}
	if !ok {
		return &fs.PathError{Op: "write", Path: name, Err: fmt.Errorf("consul: key modified concurrently")}
	}

	return nil
}
