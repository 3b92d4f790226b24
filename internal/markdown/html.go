package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
)

type htmlSettings struct {
	extensions []goldmark.Extender
	renderer   []renderer.Option
	escapeRaw  bool
}

// HTMLOption adjusts the goldmark engine behind HTMLRenderer.
type HTMLOption func(*htmlSettings)

// WithFootnotes enables [^1] style footnotes.
func WithFootnotes() HTMLOption {
	return func(s *htmlSettings) { s.extensions = append(s.extensions, extension.Footnote) }
}

// WithDefinitionLists enables PHP Markdown Extra definition lists.
func WithDefinitionLists() HTMLOption {
	return func(s *htmlSettings) { s.extensions = append(s.extensions, extension.DefinitionList) }
}

// WithHardWraps renders soft line breaks as <br>.
func WithHardWraps() HTMLOption {
	return func(s *htmlSettings) { s.renderer = append(s.renderer, html.WithHardWraps()) }
}

// WithoutRawHTML replaces raw HTML in documents with a comment.
func WithoutRawHTML() HTMLOption {
	return func(s *htmlSettings) { s.escapeRaw = true }
}

// HTMLRenderer turns Markdown document bodies into HTML fragments. GitHub
// flavoured Markdown is always on and headings receive generated ids.
type HTMLRenderer struct {
	md goldmark.Markdown
}

// NewHTMLRenderer builds the goldmark engine once; the renderer is safe for
// concurrent use.
func NewHTMLRenderer(opts ...HTMLOption) *HTMLRenderer {
	settings := &htmlSettings{extensions: []goldmark.Extender{extension.GFM}}
	for _, opt := range opts {
		opt(settings)
	}
	if !settings.escapeRaw {
		settings.renderer = append(settings.renderer, html.WithUnsafe())
	}
	return &HTMLRenderer{md: goldmark.New(
		goldmark.WithExtensions(settings.extensions...),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(settings.renderer...),
	)}
}

// Render converts source into HTML.
func (r *HTMLRenderer) Render(source []byte) (string, error) {
	var out bytes.Buffer
	if err := r.md.Convert(source, &out); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return out.String(), nil
}
