package interfaces

import (
	"context"
	"errors"
)

// ErrUnsupportedConversion is returned when a converter cannot translate
// between the requested formats.
var ErrUnsupportedConversion = errors.New("conversion between formats is not supported")

// BodyConverter translates a document body from its source markup into the
// markup of a target protocol.
type BodyConverter interface {
	// Convert returns body rendered for targetProtocol. sourceFormat is the
	// document file extension (e.g. "md").
	Convert(ctx context.Context, body, sourceFormat, targetProtocol string) (string, error)
}

// Summarizer extracts the short teaser shown in index listings.
type Summarizer interface {
	Summarize(body, targetProtocol string) (string, error)
}
