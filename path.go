package vfile

import (
	"fmt"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
)

// Resolve returns the absolute path used for I/O on f.
// An absolute path is returned as-is (cleaned) and the cwd is never consulted.
// A relative path is joined onto the cwd; a relative cwd is anchored at the
// working directory captured when the file was created.
func Resolve(f VirtualFile) (string, error) {
	return resolve("resolve", f)
}

func resolve(op string, f VirtualFile) (string, error) {
	if f == nil || isNilPointer(f) {
		return "", &PathError{Op: op, Reason: "no file given"}
	}

	p := f.Path()
	if p == "" {
		return "", &PathError{Op: op, Reason: "path is not set"}
	}

	if filepath.IsAbs(p) {
		return filepath.Clean(p), nil
	}

	base := f.Cwd()
	if !filepath.IsAbs(base) {
		base = filepath.Join(anchorOf(f), base)
	}

	return filepath.Join(base, p), nil
}

// anchorOf returns the working directory recorded for f at construction.
func anchorOf(f VirtualFile) string {
	if a, ok := f.(interface{ anchor() string }); ok {
		return a.anchor()
	}

	// Foreign implementations get the directory at resolution time.
	return processCwd()
}

// URLToPath converts a file URL into a local filesystem path.
func URLToPath(u *url.URL) (string, error) {
	if u == nil {
		return "", fmt.Errorf("%w: nil url", ErrInvalidURL)
	}

	if u.Scheme != "file" {
		return "", fmt.Errorf("%w: scheme must be 'file', got '%s'", ErrInvalidURL, u.Scheme)
	}

	raw := u.EscapedPath()
	if u.Opaque != "" {
		raw = u.Opaque
	}

	lower := strings.ToLower(raw)
	if strings.Contains(lower, "%2f") || (runtime.GOOS == "windows" && strings.Contains(lower, "%5c")) {
		return "", fmt.Errorf("%w: path must not include encoded separators: %s", ErrInvalidURL, raw)
	}

	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	if runtime.GOOS == "windows" {
		return windowsURLPath(u.Host, decoded)
	}

	if u.Host != "" && u.Host != "localhost" {
		return "", fmt.Errorf("%w: host must be 'localhost' or empty, got '%s'", ErrInvalidURL, u.Host)
	}

	return decoded, nil
}

func windowsURLPath(host, p string) (string, error) {
	p = strings.ReplaceAll(p, "/", `\`)
	if host != "" && host != "localhost" {
		// UNC path: \\server\share
		return `\\` + host + p, nil
	}

	// "\C:\dir" → "C:\dir"
	if len(p) >= 3 && p[0] == '\\' && p[2] == ':' {
		letter := p[1] | 0x20
		if letter >= 'a' && letter <= 'z' {
			return p[1:], nil
		}
	}

	return "", fmt.Errorf("%w: path must be absolute", ErrInvalidURL)
}

// assertPart rejects empty or separator-containing basenames and stems.
func assertPart(part, name string) error {
	if part == "" {
		return fmt.Errorf("%w: '%s' cannot be empty", ErrInvalidPart, name)
	}

	if strings.ContainsRune(part, filepath.Separator) || (filepath.Separator != '/' && strings.ContainsRune(part, '/')) {
		return fmt.Errorf("%w: '%s' cannot be a path: did not expect '%c'", ErrInvalidPart, name, filepath.Separator)
	}

	return nil
}

// assertPathSet rejects setting a part relative to an unset path.
func assertPathSet(p, name string) error {
	if p == "" {
		return fmt.Errorf("%w: setting '%s' requires 'path' to be set too", ErrInvalidPath, name)
	}

	return nil
}
