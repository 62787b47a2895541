package vfile

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Encoding names how file bytes are turned into text and back.
// The empty Encoding keeps content as raw bytes.
type Encoding string

const (
	EncodingNone      Encoding = ""
	EncodingUTF8      Encoding = "utf8"
	EncodingHex       Encoding = "hex"
	EncodingBase64    Encoding = "base64"
	EncodingBase64URL Encoding = "base64url"
	EncodingLatin1    Encoding = "latin1"
	EncodingASCII     Encoding = "ascii"
	EncodingUTF16LE   Encoding = "utf16le"
)

var encodingAliases = map[string]Encoding{
	"":          EncodingNone,
	"buffer":    EncodingNone,
	"utf8":      EncodingUTF8,
	"utf-8":     EncodingUTF8,
	"hex":       EncodingHex,
	"base64":    EncodingBase64,
	"base64url": EncodingBase64URL,
	"latin1":    EncodingLatin1,
	"binary":    EncodingLatin1,
	"ascii":     EncodingASCII,
	"utf16le":   EncodingUTF16LE,
	"utf-16le":  EncodingUTF16LE,
	"ucs2":      EncodingUTF16LE,
	"ucs-2":     EncodingUTF16LE,
}

// ParseEncoding normalizes an encoding name, accepting the usual aliases
// (e.g. "UTF-8", "binary", "ucs2").
func ParseEncoding(name string) (Encoding, error) {
	enc, ok := encodingAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return EncodingNone, fmt.Errorf("%w: %s", ErrUnknownEncoding, name)
	}

	return enc, nil
}

// Decode turns raw file bytes into text.
func (e Encoding) Decode(b []byte) (string, error) {
	switch e {
	case EncodingNone, EncodingUTF8:
		return string(b), nil
	case EncodingHex:
		return hex.EncodeToString(b), nil
	case EncodingBase64:
		return base64.StdEncoding.EncodeToString(b), nil
	case EncodingBase64URL:
		return base64.RawURLEncoding.EncodeToString(b), nil
	case EncodingASCII:
		out := make([]byte, len(b))
		for i, c := range b {
			out[i] = c & 0x7f
		}
		return string(out), nil
	case EncodingLatin1, EncodingUTF16LE:
		return e.codec().NewDecoder().String(string(b))
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownEncoding, string(e))
	}
}

// Encode turns text into the bytes that are written to disk.
func (e Encoding) Encode(s string) ([]byte, error) {
	switch e {
	case EncodingNone, EncodingUTF8:
		return []byte(s), nil
	case EncodingHex:
		// Like Node, decoding stops at the first invalid pair.
		n := len(s) &^ 1
		out := make([]byte, 0, n/2)
		for i := 0; i < n; i += 2 {
			b, err := hex.DecodeString(s[i : i+2])
			if err != nil {
				break
			}
			out = append(out, b...)
		}
		return out, nil
	case EncodingBase64, EncodingBase64URL:
		return decodeBase64(s)
	case EncodingASCII:
		// Node writes ascii like latin1: the low byte of each code point.
		out := make([]byte, 0, len(s))
		for _, r := range s {
			out = append(out, byte(r))
		}
		return out, nil
	case EncodingLatin1:
		// Characters outside latin1 keep their low byte instead of failing.
		out := make([]byte, 0, len(s))
		for _, r := range s {
			out = append(out, byte(r))
		}
		return out, nil
	case EncodingUTF16LE:
		return e.codec().NewEncoder().Bytes([]byte(s))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEncoding, string(e))
	}
}

func (e Encoding) codec() encoding.Encoding {
	if e == EncodingLatin1 {
		return charmap.ISO8859_1
	}

	return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
}

// decodeBase64 accepts both alphabets, with or without padding.
func decodeBase64(s string) ([]byte, error) {
	s = strings.TrimRight(strings.TrimSpace(s), "=")
	s = strings.NewReplacer("-", "+", "_", "/").Replace(s)

	return base64.RawStdEncoding.DecodeString(s)
}
