package config

import "fmt"

// StreamMode selects how one standard stream of the child is wired.
type StreamMode string

const (
	// StreamDiscard connects the stream to the null device.
	StreamDiscard StreamMode = "discard"
	// StreamInherit shares the parent's stream.
	StreamInherit StreamMode = "inherit"
	// StreamPipe creates a pipe readable (or writable) by the parent.
	StreamPipe StreamMode = "pipe"
)

// ParseStreamMode maps a configured name to a StreamMode.
//
// Accepted aliases:
//   - "" and "null" -> "discard"
//   - "parent" -> "inherit"
func ParseStreamMode(s string) (StreamMode, error) {
	switch s {
	case "", "null", string(StreamDiscard):
		return StreamDiscard, nil
	case "parent", string(StreamInherit):
		return StreamInherit, nil
	case string(StreamPipe):
		return StreamPipe, nil
	default:
		return "", fmt.Errorf("unknown stream mode %q", s)
	}
}

// Normalize returns the mode with the zero value resolved to StreamDiscard.
func (m StreamMode) Normalize() StreamMode {
	if m == "" {
		return StreamDiscard
	}

	return m
}
