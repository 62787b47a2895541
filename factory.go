package vfile

import (
	"fmt"
	"net/url"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
)

// Options describes a file to construct. Empty strings count as unset.
// Value accepts a Value, a string (text) or a []byte (bytes).
type Options struct {
	Path     string         `mapstructure:"path"`
	Cwd      string         `mapstructure:"cwd"`
	History  []string       `mapstructure:"history"`
	Basename string         `mapstructure:"basename"`
	Stem     string         `mapstructure:"stem"`
	Extname  string         `mapstructure:"extname"`
	Dirname  string         `mapstructure:"dirname"`
	Value    any            `mapstructure:"value"`
	Data     map[string]any `mapstructure:"data"`
}

// ToVFile normalizes description into a virtual file. It accepts:
//
//   - nil: an empty file without path
//   - string or []byte: used as the path
//   - *url.URL or url.URL: a file URL converted with URLToPath
//   - Options or *Options: passed to NewVFile
//   - map[string]any: decoded into Options ("contents" is read as "value")
//   - any VirtualFile: returned unchanged
//
// ToVFile performs no I/O.
func ToVFile(description any) (VirtualFile, error) {
	switch d := description.(type) {
	case nil:
		return New(), nil
	case VirtualFile:
		if d == nil || isNilPointer(d) {
			return New(), nil
		}
		return d, nil
	case string:
		return NewVFile(Options{Path: d})
	case []byte:
		return NewVFile(Options{Path: string(d)})
	case *url.URL:
		return fromURL(d)
	case url.URL:
		return fromURL(&d)
	case Options:
		return NewVFile(d)
	case *Options:
		if d == nil {
			return New(), nil
		}
		return NewVFile(*d)
	case map[string]any:
		opts, err := decodeOptions(d)
		if err != nil {
			return nil, err
		}
		return NewVFile(opts)
	default:
		return nil, fmt.Errorf("%w: unsupported type %T", ErrInvalidDescription, description)
	}
}

func fromURL(u *url.URL) (*VFile, error) {
	p, err := URLToPath(u)
	if err != nil {
		return nil, err
	}

	return NewVFile(Options{Path: p})
}

func decodeOptions(m map[string]any) (Options, error) {
	var opts Options

	if _, ok := m["value"]; !ok {
		if contents, ok := m["contents"]; ok {
			m = cloneMap(m)
			m["value"] = contents
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &opts,
		WeaklyTypedInput: true,
		DecodeHook:       urlToPathHook,
	})
	if err != nil {
		return opts, err
	}

	if err := decoder.Decode(m); err != nil {
		return opts, fmt.Errorf("%w: %v", ErrInvalidDescription, err)
	}

	return opts, nil
}

// urlToPathHook lets descriptor maps carry a *url.URL as their path.
func urlToPathHook(from, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.String {
		return data, nil
	}

	switch u := data.(type) {
	case *url.URL:
		return URLToPath(u)
	case url.URL:
		return URLToPath(&u)
	default:
		return data, nil
	}
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m)+1)
	for k, v := range m {
		out[k] = v
	}

	return out
}

// isNilPointer catches typed nil *VFile values wrapped in the interface.
func isNilPointer(f VirtualFile) bool {
	v, ok := f.(*VFile)
	return ok && v == nil
}
