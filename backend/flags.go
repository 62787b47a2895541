package backend

import (
	"errors"
	"io/fs"
	"os"
)

// ErrTooLarge is returned when content exceeds a backend's MaxObjectSize.
var ErrTooLarge = errors.New("backend: object too large")

// NotExist returns the error key-value backends report for a missing name.
func NotExist(op, name string) error {
	return &fs.PathError{Op: op, Path: name, Err: fs.ErrNotExist}
}

// Exist returns the error key-value backends report when os.O_EXCL is set
// and name is already present.
func Exist(op, name string) error {
	return &fs.PathError{Op: op, Path: name, Err: fs.ErrExist}
}

// PrepareRead applies flag to a read of a key-value object. It reports the
// content to return and whether that content must be stored first, which is
// the case when os.O_CREATE creates the object or os.O_TRUNC empties it.
func PrepareRead(name string, existing []byte, exists bool, flag int) (content []byte, store bool, err error) {
	if !exists {
		if flag&os.O_CREATE == 0 {
			return nil, false, NotExist("open", name)
		}
		return []byte{}, true, nil
	}

	if flag&os.O_CREATE != 0 && flag&os.O_EXCL != 0 {
		return nil, false, Exist("open", name)
	}

	if flag&os.O_TRUNC != 0 {
		return []byte{}, true, nil
	}

	return existing, false, nil
}

// PrepareWrite merges data into the existing content of a key-value object
// the way a whole-file write with flag would on disk:
//
//   - missing without os.O_CREATE fails with fs.ErrNotExist
//   - present with os.O_CREATE|os.O_EXCL fails with fs.ErrExist
//   - os.O_APPEND appends
//   - os.O_TRUNC replaces
//   - otherwise data overwrites the start of the existing content
func PrepareWrite(name string, existing []byte, exists bool, data []byte, flag int) ([]byte, error) {
	if !exists && flag&os.O_CREATE == 0 {
		return nil, NotExist("open", name)
	}

	if exists && flag&os.O_CREATE != 0 && flag&os.O_EXCL != 0 {
		return nil, Exist("open", name)
	}

	switch {
	case !exists || flag&os.O_TRUNC != 0:
		return clone(data), nil
	case flag&os.O_APPEND != 0:
		out := make([]byte, 0, len(existing)+len(data))
		out = append(out, existing...)
		return append(out, data...), nil
	default:
		out := make([]byte, max(len(existing), len(data)))
		copy(out, existing)
		copy(out, data)
		return out, nil
	}
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
