package vfile

import (
	"fmt"
	"strings"
)

// Severity of a Message.
type Severity uint8

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityFatal:
		return "error"
	default:
		return "unknown"
	}
}

// Message is a diagnostic attached to a file by whatever processes it.
type Message struct {
	Reason   string
	File     string
	Line     int
	Column   int
	Source   string
	RuleID   string
	Severity Severity
}

// Error formats the message as "file:line:column: reason".
func (m *Message) Error() string {
	var b strings.Builder

	b.WriteString(m.File)
	if m.Line > 0 {
		fmt.Fprintf(&b, ":%d", m.Line)
		if m.Column > 0 {
			fmt.Fprintf(&b, ":%d", m.Column)
		}
	}
	if b.Len() > 0 {
		b.WriteString(": ")
	}

	b.WriteString(m.Reason)
	return b.String()
}

func (f *VFile) Messages() []*Message {
	return f.messages
}

// Message attaches a warning to the file and returns it so the caller can
// fill in the place and origin.
func (f *VFile) Message(reason string) *Message {
	return f.addMessage(reason, SeverityWarning)
}

// Info attaches an informational message.
func (f *VFile) Info(reason string) *Message {
	return f.addMessage(reason, SeverityInfo)
}

// Fail attaches a fatal message and returns it as an error.
func (f *VFile) Fail(reason string) error {
	return f.addMessage(reason, SeverityFatal)
}

func (f *VFile) addMessage(reason string, severity Severity) *Message {
	m := &Message{
		Reason:   reason,
		File:     f.Path(),
		Severity: severity,
	}

	f.messages = append(f.messages, m)
	return m
}
