package markdown

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-picogen/internal/logging"
	"github.com/goliatone/go-picogen/internal/protocol"
	"github.com/goliatone/go-picogen/pkg/interfaces"
)

// Converter implements interfaces.BodyConverter and interfaces.Summarizer.
type Converter struct {
	html    *HTMLRenderer
	gemtext *GemtextRenderer
	logger  interfaces.Logger
}

var (
	_ interfaces.BodyConverter = (*Converter)(nil)
	_ interfaces.Summarizer    = (*Converter)(nil)
)

// NewConverter constructs a Converter. opts tune the HTML output only.
func NewConverter(logger interfaces.Logger, opts ...HTMLOption) *Converter {
	return &Converter{
		html:    NewHTMLRenderer(opts...),
		gemtext: NewGemtextRenderer(),
		logger:  logging.Ensure(logger),
	}
}

// Convert renders body from sourceFormat (a file extension) into the markup
// of targetProtocol. Bodies already written in the target markup are
// returned as is. On failure the unconverted body is returned with the
// error so callers can degrade.
func (c *Converter) Convert(ctx context.Context, body, sourceFormat, targetProtocol string) (string, error) {
	if err := ctx.Err(); err != nil {
		return body, err
	}
	target, err := protocol.Parse(targetProtocol)
	if err != nil {
		return body, fmt.Errorf("%w: %v", interfaces.ErrUnsupportedConversion, err)
	}
	source := strings.ToLower(strings.TrimPrefix(sourceFormat, "."))
	if source == target.FileSuffix() {
		return body, nil
	}
	if source != "md" && source != "markdown" {
		return body, fmt.Errorf("%w: %s to %s", interfaces.ErrUnsupportedConversion, source, target)
	}

	c.logger.Debug("markdown.convert", "source", source, "target", target.String(), "bytes", len(body))
	switch target {
	case protocol.HTTP:
		rendered, err := c.html.Render([]byte(body))
		if err != nil {
			return body, err
		}
		return rendered, nil
	case protocol.Gemini:
		return c.gemtext.Render([]byte(body)), nil
	default:
		return body, fmt.Errorf("%w: %s to %s", interfaces.ErrUnsupportedConversion, source, target)
	}
}

// Summarize implements interfaces.Summarizer.
func (c *Converter) Summarize(body, targetProtocol string) (string, error) {
	target, err := protocol.Parse(targetProtocol)
	if err != nil {
		return "", fmt.Errorf("%w: %v", interfaces.ErrUnsupportedConversion, err)
	}
	return Summarize(body, target)
}
