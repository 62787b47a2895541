package vfile

import "context"

// Callback receives the settled result of ReadCallback or WriteCallback:
// (nil, err) on failure and (file, nil) on success.
type Callback func(file VirtualFile, err error)

// Future is the pending result of Read or Write. It settles exactly once.
type Future struct {
	done chan struct{}
	file VirtualFile
	err  error
}

func goFuture(op func() (VirtualFile, error)) *Future {
	f := &Future{done: make(chan struct{})}

	go func() {
		defer close(f.done)
		f.file, f.err = op()
	}()

	return f
}

// Done is closed once the operation has settled.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the operation settles and returns its result.
func (f *Future) Wait() (VirtualFile, error) {
	<-f.done
	return f.file, f.err
}

// Await is like Wait but stops waiting when ctx is done. The operation
// itself keeps running and still settles the future.
func (f *Future) Await(ctx context.Context) (VirtualFile, error) {
	select {
	case <-f.done:
		return f.file, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Err returns the error of a settled future, or nil while it is pending.
func (f *Future) Err() error {
	select {
	case <-f.done:
		return f.err
	default:
		return nil
	}
}

// Read is the asynchronous form of ReadSync. Every failure, including an
// invalid description or a missing path, is reported through the future.
func Read(ctx context.Context, description any, opts ...IOOption) *Future {
	return goFuture(func() (VirtualFile, error) {
		return readFile(ctx, description, opts)
	})
}

// Write is the asynchronous form of WriteSync.
func Write(ctx context.Context, description any, opts ...IOOption) *Future {
	return goFuture(func() (VirtualFile, error) {
		return writeFile(ctx, description, opts)
	})
}

// ReadCallback reads in the background and calls cb exactly once.
func ReadCallback(ctx context.Context, description any, cb Callback, opts ...IOOption) {
	go settle(cb, func() (VirtualFile, error) {
		return readFile(ctx, description, opts)
	})
}

// WriteCallback writes in the background and calls cb exactly once.
func WriteCallback(ctx context.Context, description any, cb Callback, opts ...IOOption) {
	go settle(cb, func() (VirtualFile, error) {
		return writeFile(ctx, description, opts)
	})
}

func settle(cb Callback, op func() (VirtualFile, error)) {
	file, err := op()
	if cb == nil {
		return
	}
	if err != nil {
		cb(nil, err)
		return
	}
	cb(file, nil)
}
