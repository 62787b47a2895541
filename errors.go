package vfile

import (
	"errors"
	"fmt"
)

// Standard errors returned by the factory and the I/O functions.
var (
	// Description errors
	ErrInvalidDescription = errors.New("vfile: invalid description")
	ErrInvalidURL         = errors.New("vfile: invalid file url")

	// Path errors
	ErrInvalidPath = errors.New("vfile: invalid path")
	ErrInvalidPart = errors.New("vfile: invalid path part")

	// Option errors
	ErrUnknownEncoding = errors.New("vfile: unknown encoding")
	ErrInvalidFlag     = errors.New("vfile: invalid flag")

	// Content errors
	ErrInvalidContent = errors.New("vfile: invalid content for encoding")
)

// ErrorKind classifies errors so callers can match on a stable code
// instead of on messages.
type ErrorKind string

const (
	// KindInvalidPath indicates the file had no usable path for I/O.
	KindInvalidPath ErrorKind = "INVALID_PATH"
	// KindIO indicates the filesystem rejected the read or write.
	KindIO ErrorKind = "IO_FAILURE"
	// KindInvalidInput indicates a malformed description, option or content.
	KindInvalidInput ErrorKind = "INVALID_INPUT"
	// KindUnknown is returned by KindOf for errors not produced here.
	KindUnknown ErrorKind = "UNKNOWN"
)

// PathError reports that a path could not be resolved for an operation.
type PathError struct {
	Op     string
	Reason string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("vfile: %s: invalid path: %s", e.Op, e.Reason)
}

func (e *PathError) Unwrap() error {
	return ErrInvalidPath
}

func (e *PathError) Kind() ErrorKind {
	return KindInvalidPath
}

// IOError wraps the error returned by the filesystem unchanged.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("vfile: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

func (e *IOError) Kind() ErrorKind {
	return KindIO
}

// KindOf returns the ErrorKind carried by err or any error it wraps.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}

	var kinded interface{ Kind() ErrorKind }
	if errors.As(err, &kinded) {
		return kinded.Kind()
	}

	for _, sentinel := range []error{ErrInvalidDescription, ErrInvalidURL, ErrInvalidPart, ErrUnknownEncoding, ErrInvalidFlag, ErrInvalidContent} {
		if errors.Is(err, sentinel) {
			return KindInvalidInput
		}
	}
	if errors.Is(err, ErrInvalidPath) {
		return KindInvalidPath
	}

	return KindUnknown
}
