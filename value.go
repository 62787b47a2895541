package vfile

// Value holds the content of a virtual file.
// It is either absent, raw bytes or decoded text; the zero value is absent.
type Value struct {
	kind  valueKind
	bytes []byte
	text  string
}

type valueKind uint8

const (
	valueNone valueKind = iota
	valueBytes
	valueText
)

// Bytes returns a Value holding raw bytes. A nil slice still counts as set.
func Bytes(b []byte) Value {
	return Value{kind: valueBytes, bytes: b}
}

// Text returns a Value holding text.
func Text(s string) Value {
	return Value{kind: valueText, text: s}
}

// IsZero reports whether no content is set.
func (v Value) IsZero() bool {
	return v.kind == valueNone
}

// IsBytes reports whether the content is raw bytes.
func (v Value) IsBytes() bool {
	return v.kind == valueBytes
}

// IsText reports whether the content is text.
func (v Value) IsText() bool {
	return v.kind == valueText
}

// Bytes returns the content as bytes. Text is converted as UTF-8.
func (v Value) Bytes() []byte {
	switch v.kind {
	case valueBytes:
		return v.bytes
	case valueText:
		return []byte(v.text)
	default:
		return nil
	}
}

// String returns the content as text. Bytes are interpreted as UTF-8.
func (v Value) String() string {
	switch v.kind {
	case valueBytes:
		return string(v.bytes)
	case valueText:
		return v.text
	default:
		return ""
	}
}

// Len returns the length of the content in bytes.
func (v Value) Len() int {
	switch v.kind {
	case valueBytes:
		return len(v.bytes)
	case valueText:
		return len(v.text)
	default:
		return 0
	}
}

// valueOf converts the loosely typed content accepted in descriptions.
func valueOf(content any) (Value, bool) {
	switch c := content.(type) {
	case nil:
		return Value{}, true
	case Value:
		return c, true
	case *Value:
		if c == nil {
			return Value{}, true
		}
		return *c, true
	case string:
		return Text(c), true
	case []byte:
		return Bytes(c), true
	default:
		return Value{}, false
	}
}
