package markdown

import (
	"bufio"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/goliatone/go-picogen/internal/protocol"
	"github.com/goliatone/go-picogen/pkg/interfaces"
)

// Summarize returns the teaser of a converted body. HTML bodies yield the
// text of their first paragraph; gemtext bodies yield the first run of
// non-empty lines. A line holding only whitespace does not end the run.
func Summarize(body string, target protocol.Protocol) (string, error) {
	switch target {
	case protocol.HTTP:
		return firstParagraphText(body)
	case protocol.Gemini:
		return firstLineRun(body), nil
	default:
		return "", fmt.Errorf("%w: summary for %q", interfaces.ErrUnsupportedConversion, target)
	}
}

func firstLineRun(body string) string {
	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), len(body)+1)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			if len(lines) > 0 {
				break
			}
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func firstParagraphText(body string) (string, error) {
	root, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("markdown summary: %w", err)
	}
	paragraph := findFirst(root, atom.P)
	if paragraph == nil {
		return "", nil
	}
	var b strings.Builder
	collectText(paragraph, &b)
	return b.String(), nil
}

func findFirst(node *html.Node, tag atom.Atom) *html.Node {
	if node.Type == html.ElementNode && node.DataAtom == tag {
		return node
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if found := findFirst(child, tag); found != nil {
			return found
		}
	}
	return nil
}

func collectText(node *html.Node, b *strings.Builder) {
	if node.Type == html.TextNode {
		b.WriteString(node.Data)
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		collectText(child, b)
	}
}
