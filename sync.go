package vfile

import (
	"context"
	"fmt"
	"os"
)

// ReadSync reads the file described by description and sets its value.
// Without an encoding the value holds the raw bytes; with one it holds the
// decoded text. The file is returned with its value populated only when the
// whole read succeeded.
func ReadSync(ctx context.Context, description any, opts ...IOOption) (VirtualFile, error) {
	return readFile(ctx, description, opts)
}

// WriteSync writes the value of the file described by description.
// An absent value writes an empty file. Text is encoded with the configured
// encoding (utf8 when none is set); bytes are written unchanged.
func WriteSync(ctx context.Context, description any, opts ...IOOption) (VirtualFile, error) {
	return writeFile(ctx, description, opts)
}

func readFile(ctx context.Context, description any, opts []IOOption) (VirtualFile, error) {
	options, err := applyIOOptions(os.O_RDONLY, opts)
	if err != nil {
		return nil, err
	}

	logger := options.Logger

	file, err := ToVFile(description)
	if err != nil {
		logger.Warn("read: %v", err)
		return nil, err
	}

	name, err := resolve("read", file)
	if err != nil {
		logger.Warn("%v", err)
		return nil, err
	}

	content, err := options.Filesystem.ReadFile(ctx, name, options.Flag)
	if err != nil {
		err = &IOError{Op: "read", Path: name, Err: err}
		logger.Warn("%v", err)
		return nil, err
	}

	value := Bytes(content)
	if options.Encoding != EncodingNone {
		text, err := options.Encoding.Decode(content)
		if err != nil {
			err = fmt.Errorf("%w: read %s as %s: %v", ErrInvalidContent, name, options.Encoding, err)
			logger.Warn("%v", err)
			return nil, err
		}
		value = Text(text)
	}

	file.SetValue(value)
	logger.Debug("read %s (%d bytes) from %s", name, len(content), options.Filesystem.Name())

	return file, nil
}

func writeFile(ctx context.Context, description any, opts []IOOption) (VirtualFile, error) {
	options, err := applyIOOptions(os.O_TRUNC|os.O_CREATE|os.O_WRONLY, opts)
	if err != nil {
		return nil, err
	}

	logger := options.Logger

	file, err := ToVFile(description)
	if err != nil {
		logger.Warn("write: %v", err)
		return nil, err
	}

	name, err := resolve("write", file)
	if err != nil {
		logger.Warn("%v", err)
		return nil, err
	}

	data, err := encodeValue(file.Value(), options.Encoding)
	if err != nil {
		err = fmt.Errorf("%w: write %s as %s: %v", ErrInvalidContent, name, options.Encoding, err)
		logger.Warn("%v", err)
		return nil, err
	}

	if err := options.Filesystem.WriteFile(ctx, name, data, options.Flag, options.Mode); err != nil {
		err = &IOError{Op: "write", Path: name, Err: err}
		logger.Warn("%v", err)
		return nil, err
	}

	logger.Debug("wrote %s (%d bytes) to %s", name, len(data), options.Filesystem.Name())

	return file, nil
}

func encodeValue(v Value, enc Encoding) ([]byte, error) {
	switch {
	case v.IsText():
		return enc.Encode(v.String())
	case v.IsBytes():
		return v.Bytes(), nil
	default:
		return []byte{}, nil
	}
}
