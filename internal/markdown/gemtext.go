package markdown

import (
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// gemtextLink is a link collected from inline content. Gemtext has no inline
// links, so they are written as `=>` lines after the block they came from.
type gemtextLink struct {
	URL   string
	Label string
}

// GemtextRenderer converts Markdown into gemtext.
type GemtextRenderer struct {
	engine goldmark.Markdown
}

// NewGemtextRenderer returns a renderer using the CommonMark parser.
func NewGemtextRenderer() *GemtextRenderer {
	return &GemtextRenderer{engine: goldmark.New()}
}

// Render converts source into gemtext. Blocks are separated by one blank
// line and raw HTML is dropped.
func (r *GemtextRenderer) Render(source []byte) string {
	doc := r.engine.Parser().Parse(text.NewReader(source))
	w := &gemtextWriter{source: source}
	blocks := w.blocks(doc)
	if len(blocks) == 0 {
		return ""
	}
	return strings.Join(blocks, "\n\n") + "\n"
}

type gemtextWriter struct {
	source []byte
}

func (w *gemtextWriter) blocks(parent ast.Node) []string {
	var out []string
	for node := parent.FirstChild(); node != nil; node = node.NextSibling() {
		if block := w.block(node); block != "" {
			out = append(out, block)
		}
	}
	return out
}

func (w *gemtextWriter) block(node ast.Node) string {
	switch n := node.(type) {
	case *ast.Heading:
		var links []gemtextLink
		content := strings.TrimSpace(w.inline(n, &links))
		level := n.Level
		if level > 3 {
			level = 3
		}
		return withLinks(strings.Repeat("#", level)+" "+content, links)
	case *ast.Paragraph, *ast.TextBlock:
		var links []gemtextLink
		content := strings.TrimSpace(w.inline(n, &links))
		return withLinks(content, links)
	case *ast.List:
		var links []gemtextLink
		lines := w.list(n, &links)
		return withLinks(strings.Join(lines, "\n"), links)
	case *ast.Blockquote:
		inner := strings.Join(w.blocks(n), "\n\n")
		return quote(inner)
	case *ast.FencedCodeBlock:
		return "```" + string(n.Language(w.source)) + "\n" + w.lines(n) + "```"
	case *ast.CodeBlock:
		return "```\n" + w.lines(n) + "```"
	case *ast.ThematicBreak:
		return "---"
	case *ast.HTMLBlock:
		return ""
	default:
		return strings.Join(w.blocks(n), "\n\n")
	}
}

func (w *gemtextWriter) list(list *ast.List, links *[]gemtextLink) []string {
	var lines []string
	number := list.Start
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		var parts []string
		var nested []string
		for child := item.FirstChild(); child != nil; child = child.NextSibling() {
			if sub, ok := child.(*ast.List); ok {
				nested = append(nested, w.list(sub, links)...)
				continue
			}
			if content := strings.TrimSpace(w.inline(child, links)); content != "" {
				parts = append(parts, content)
			}
		}
		marker := "* "
		if list.IsOrdered() {
			marker = strconv.Itoa(number) + ". "
			number++
		}
		lines = append(lines, marker+strings.Join(parts, " "))
		lines = append(lines, nested...)
	}
	return lines
}

func (w *gemtextWriter) lines(node ast.Node) string {
	var b strings.Builder
	segments := node.Lines()
	for i := 0; i < segments.Len(); i++ {
		segment := segments.At(i)
		b.Write(segment.Value(w.source))
	}
	code := b.String()
	if code != "" && !strings.HasSuffix(code, "\n") {
		code += "\n"
	}
	return code
}

func (w *gemtextWriter) inline(parent ast.Node, links *[]gemtextLink) string {
	var b strings.Builder
	for node := parent.FirstChild(); node != nil; node = node.NextSibling() {
		switch n := node.(type) {
		case *ast.Text:
			b.Write(n.Segment.Value(w.source))
			switch {
			case n.HardLineBreak():
				b.WriteByte('\n')
			case n.SoftLineBreak():
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(n.Value)
		case *ast.CodeSpan:
			b.WriteByte('`')
			b.WriteString(w.inline(n, links))
			b.WriteByte('`')
		case *ast.Link:
			label := w.inline(n, links)
			b.WriteString(label)
			*links = append(*links, gemtextLink{URL: string(n.Destination), Label: label})
		case *ast.AutoLink:
			url := string(n.URL(w.source))
			b.WriteString(url)
			*links = append(*links, gemtextLink{URL: url})
		case *ast.Image:
			alt := w.inline(n, links)
			if alt == "" {
				alt = string(n.Title)
			}
			*links = append(*links, gemtextLink{URL: string(n.Destination), Label: alt})
		case *ast.RawHTML:
		default:
			b.WriteString(w.inline(n, links))
		}
	}
	return b.String()
}

func withLinks(content string, links []gemtextLink) string {
	lines := make([]string, 0, len(links)+1)
	if content != "" {
		lines = append(lines, content)
	}
	for _, link := range links {
		line := "=> " + link.URL
		if label := strings.TrimSpace(link.Label); label != "" && label != link.URL {
			line += " " + label
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func quote(content string) string {
	if content == "" {
		return ""
	}
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if line == "" {
			lines[i] = ">"
			continue
		}
		lines[i] = "> " + line
	}
	return strings.Join(lines, "\n")
}
