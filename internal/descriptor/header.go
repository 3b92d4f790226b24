package descriptor

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

var annotationPattern = regexp.MustCompile(`^\s*<!--\s*(.+?)\s*:\s*(.+?)\s*-->\s*$`)

var yamlFrontMatter = frontmatter.NewFormat("---", "---", yaml.Unmarshal)

// Header is the parsed annotation block of a content file.
type Header struct {
	Values map[string]string
	Keys   []string
}

func (h *Header) set(key, value string) {
	if h.Values == nil {
		h.Values = map[string]string{}
	}
	if _, exists := h.Values[key]; !exists {
		h.Keys = append(h.Keys, key)
	}
	h.Values[key] = value
}

// ParseHeader splits source into its annotation header and body. An
// optional YAML front matter block is read first; the contiguous
// `<!-- key: value -->` lines that follow are annotations and the first
// line that does not match starts the body.
func ParseHeader(source []byte) (Header, string, error) {
	header := Header{Values: map[string]string{}}

	rest := source
	if bytes.HasPrefix(bytes.TrimLeft(source, "\ufeff"), []byte("---")) {
		meta := map[string]any{}
		body, err := frontmatter.Parse(bytes.NewReader(source), &meta, yamlFrontMatter)
		if err != nil {
			return Header{}, "", fmt.Errorf("descriptor: parse front matter: %w", err)
		}
		applyFrontMatter(&header, meta)
		rest = body
	}

	text := string(rest)
	for {
		line, remainder, found := strings.Cut(text, "\n")
		match := annotationPattern.FindStringSubmatch(strings.TrimSuffix(line, "\r"))
		if match == nil {
			break
		}
		header.set(match[1], match[2])
		if !found {
			text = ""
			break
		}
		text = remainder
	}
	return header, text, nil
}

func applyFrontMatter(header *Header, meta map[string]any) {
	keys := make([]string, 0, len(meta))
	for key := range meta {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		value, ok := frontMatterValue(meta[key])
		if !ok {
			continue
		}
		header.set(key, value)
	}
}

// frontMatterValue flattens a YAML value into annotation form. Lists join
// with commas so they behave like multi-value taxonomy annotations.
func frontMatterValue(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return strings.TrimSpace(v), true
	case bool:
		if !v {
			return "", false
		}
		return "true", true
	case time.Time:
		return v.Format(dateLayout), true
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := frontMatterValue(item); ok && s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", "), len(parts) > 0
	case map[string]any:
		return "", false
	default:
		return strings.TrimSpace(fmt.Sprint(v)), true
	}
}
