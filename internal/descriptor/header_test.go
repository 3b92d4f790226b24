package descriptor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeaderReadsContiguousAnnotations(t *testing.T) {
	source := []byte("<!-- title: Hello -->\n<!--tags:go, cli-->\n\n<!-- ignored: yes -->\nBody line\n")

	header, body, err := ParseHeader(source)
	require.NoError(t, err)

	assert.Equal(t, []string{"title", "tags"}, header.Keys)
	assert.Equal(t, "Hello", header.Values["title"])
	assert.Equal(t, "go, cli", header.Values["tags"])
	assert.Equal(t, "\n<!-- ignored: yes -->\nBody line\n", body)
}

func TestParseHeaderWithoutAnnotations(t *testing.T) {
	header, body, err := ParseHeader([]byte("# Title\n"))
	require.NoError(t, err)
	assert.Empty(t, header.Keys)
	assert.Equal(t, "# Title\n", body)
}

func TestParseHeaderSplitsOnFirstColonOnly(t *testing.T) {
	header, _, err := ParseHeader([]byte("<!-- link: https://example.com -->\n"))
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", header.Values["link"])
}

func TestParseHeaderReadsFrontMatter(t *testing.T) {
	source := []byte("---\ntitle: Capsule\ntags: [gemini, smolweb]\ndraft: false\ndate: 2024-02-03\n---\n<!-- author: ana -->\ntext\n")

	header, body, err := ParseHeader(source)
	require.NoError(t, err)

	assert.Equal(t, "Capsule", header.Values["title"])
	assert.Equal(t, "gemini, smolweb", header.Values["tags"])
	assert.Equal(t, "2024-02-03", header.Values["date"])
	assert.Equal(t, "ana", header.Values["author"])
	_, hasDraft := header.Values["draft"]
	assert.False(t, hasDraft, "false drafts are not annotations")
	assert.Equal(t, "text\n", body)
}
