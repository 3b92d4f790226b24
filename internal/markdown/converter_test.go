package markdown

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-picogen/internal/protocol"
	"github.com/goliatone/go-picogen/pkg/interfaces"
)

func TestConvertMarkdownToHTML(t *testing.T) {
	converter := NewConverter(nil)

	out, err := converter.Convert(context.Background(), "# Title\n\nHello *world*.\n", "md", "http")
	require.NoError(t, err)
	assert.Contains(t, out, `<h1 id="title">Title</h1>`)
	assert.Contains(t, out, "<p>Hello <em>world</em>.</p>")
}

func TestConvertKeepsNativeBodies(t *testing.T) {
	converter := NewConverter(nil)

	out, err := converter.Convert(context.Background(), "=> gemini://example.org\n", "gmi", "gemini")
	require.NoError(t, err)
	assert.Equal(t, "=> gemini://example.org\n", out)
}

func TestConvertUnsupportedDegradesToRawBody(t *testing.T) {
	converter := NewConverter(nil)

	out, err := converter.Convert(context.Background(), "raw", "rst", "http")
	require.Error(t, err)
	assert.True(t, errors.Is(err, interfaces.ErrUnsupportedConversion))
	assert.Equal(t, "raw", out)

	out, err = converter.Convert(context.Background(), "raw", "md", "gopher")
	assert.ErrorIs(t, err, interfaces.ErrUnsupportedConversion)
	assert.Equal(t, "raw", out)
}

func TestConvertPlaceholdersSurviveHTMLRendering(t *testing.T) {
	converter := NewConverter(nil)

	out, err := converter.Convert(context.Background(), "Visit {{ later }}\n", "md", "http")
	require.NoError(t, err)
	assert.Contains(t, out, "{{ later }}")
}

func TestGemtextRenderer(t *testing.T) {
	source := strings.Join([]string{
		"# Title",
		"",
		"#### Deep heading",
		"",
		"Read [the docs](https://example.org/docs) and <b>more</b>.",
		"",
		"- one",
		"- [two](gemini://two.example)",
		"",
		"1. first",
		"2. second",
		"",
		"> quoted",
		"",
		"```go",
		"fmt.Println(1)",
		"```",
		"",
		"![a cat](/cat.png)",
		"",
	}, "\n")

	out := NewGemtextRenderer().Render([]byte(source))

	want := strings.Join([]string{
		"# Title",
		"",
		"### Deep heading",
		"",
		"Read the docs and more.",
		"=> https://example.org/docs the docs",
		"",
		"* one",
		"* two",
		"=> gemini://two.example two",
		"",
		"1. first",
		"2. second",
		"",
		"> quoted",
		"",
		"```go",
		"fmt.Println(1)",
		"```",
		"",
		"=> /cat.png a cat",
		"",
	}, "\n")
	assert.Equal(t, want, out)
}

func TestSummarizeHTMLUsesFirstParagraph(t *testing.T) {
	summary, err := Summarize("<h1>T</h1><p>First <a href=\"#\">para</a></p><p>Second</p>", protocol.HTTP)
	require.NoError(t, err)
	assert.Equal(t, "First para", summary)

	summary, err = Summarize("<h1>No paragraphs</h1>", protocol.HTTP)
	require.NoError(t, err)
	assert.Empty(t, summary)
}

func TestSummarizeGemtextUsesFirstLineRun(t *testing.T) {
	summary, err := Summarize("\n\n# Heading\nline two\n\nlater\n", protocol.Gemini)
	require.NoError(t, err)
	assert.Equal(t, "# Heading\nline two", summary)
}

func TestSummarizeGemtextKeepsWhitespaceOnlyLines(t *testing.T) {
	summary, err := Summarize("first\n  \nsecond\n\nthird\n", protocol.Gemini)
	require.NoError(t, err)
	assert.Equal(t, "first\n  \nsecond", summary)

	summary, err = Summarize("\n\n\t\nopening\n", protocol.Gemini)
	require.NoError(t, err)
	assert.Equal(t, "\t\nopening", summary)
}

func TestConverterSummarizeRejectsUnknownProtocol(t *testing.T) {
	_, err := NewConverter(nil).Summarize("x", "gopher")
	assert.ErrorIs(t, err, interfaces.ErrUnsupportedConversion)
}

func TestHTMLRendererOptions(t *testing.T) {
	source := []byte("line one\nline two <span>raw</span>[^1]\n\n[^1]: note\n")

	plain, err := NewHTMLRenderer().Render(source)
	require.NoError(t, err)
	assert.Contains(t, plain, "<span>raw</span>")
	assert.NotContains(t, plain, "<br")

	tuned, err := NewHTMLRenderer(WithHardWraps(), WithoutRawHTML(), WithFootnotes()).Render(source)
	require.NoError(t, err)
	assert.Contains(t, tuned, "<br")
	assert.NotContains(t, tuned, "<span>raw</span>")
	assert.Contains(t, tuned, `class="footnotes"`)
}

func TestHTMLRendererKeepsGeminiLinks(t *testing.T) {
	out, err := NewHTMLRenderer().Render([]byte("[capsule](gemini://example.org/)\n"))
	require.NoError(t, err)
	assert.Contains(t, out, `<a href="gemini://example.org/">capsule</a>`)
}
