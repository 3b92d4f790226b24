package protocol

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownProtocol is returned when a target format name is not supported.
var ErrUnknownProtocol = errors.New("protocol: unknown protocol")

// Protocol identifies an output wire format.
type Protocol string

const (
	HTTP   Protocol = "http"
	Gemini Protocol = "gemini"
)

// All returns the supported protocols in their canonical order.
func All() []Protocol {
	return []Protocol{HTTP, Gemini}
}

// Parse resolves a protocol from its name.
func Parse(name string) (Protocol, error) {
	switch Protocol(strings.ToLower(strings.TrimSpace(name))) {
	case HTTP:
		return HTTP, nil
	case Gemini:
		return Gemini, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownProtocol, name)
	}
}

// ParseList resolves every name, dropping duplicates while keeping the
// order in which protocols were requested.
func ParseList(names []string) ([]Protocol, error) {
	out := make([]Protocol, 0, len(names))
	seen := map[Protocol]struct{}{}
	for _, name := range names {
		p, err := Parse(name)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out, nil
}

// FileSuffix returns the native file extension for the protocol.
func (p Protocol) FileSuffix() string {
	switch p {
	case HTTP:
		return "html"
	case Gemini:
		return "gmi"
	default:
		return ""
	}
}

// Scheme returns the URL scheme used when linking generated documents.
func (p Protocol) Scheme(ssl bool) string {
	switch p {
	case HTTP:
		if ssl {
			return "https"
		}
		return "http"
	case Gemini:
		return "gemini"
	default:
		return ""
	}
}

// Valid reports whether p is a supported protocol.
func (p Protocol) Valid() bool {
	return p.FileSuffix() != ""
}

func (p Protocol) String() string {
	return string(p)
}
