// Package templates loads the flat template set of a target format and
// resolves one level of parent/child composition.
package templates

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-picogen/internal/logging"
	"github.com/goliatone/go-picogen/internal/placeholder"
	"github.com/goliatone/go-picogen/pkg/interfaces"
)

// ChildSeparator splits a composite template name into child and parent:
// `post_base` is the child `post` of the parent `base`.
const ChildSeparator = "_"

const templateNotFoundCode = "TEMPLATE_NOT_FOUND"

// ErrTemplateNotFound is returned when a referenced template does not exist.
var ErrTemplateNotFound = errors.New("templates: template not found")

// Set is a composed, read-only template table.
type Set struct {
	templates map[string]string
}

// NewSet wraps an already composed name to content table.
func NewSet(entries map[string]string) *Set {
	copied := make(map[string]string, len(entries))
	for name, content := range entries {
		copied[name] = content
	}
	return &Set{templates: copied}
}

// Get returns the template registered under name.
func (s *Set) Get(name string) (string, error) {
	if s != nil {
		if content, ok := s.templates[name]; ok {
			return content, nil
		}
	}
	return "", goerrors.Wrap(fmt.Errorf("%w: %q", ErrTemplateNotFound, name), goerrors.CategoryNotFound, "template "+name+" is not defined").
		WithTextCode(templateNotFoundCode).
		WithMetadata(map[string]any{"template": name})
}

// Has reports whether name is registered.
func (s *Set) Has(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.templates[name]
	return ok
}

// Names returns the registered names sorted.
func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.templates))
	for name := range s.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Composer reads template files from a filesystem.
type Composer struct {
	fs     fs.FS
	logger interfaces.Logger
}

// NewComposer constructs a Composer over filesystem.
func NewComposer(filesystem fs.FS, logger interfaces.Logger) *Composer {
	return &Composer{fs: filesystem, logger: logging.Ensure(logger)}
}

// Load reads every `*.*` file directly inside dir and composes the result.
// A template's name is its file name up to the first dot.
func (c *Composer) Load(ctx context.Context, dir string) (*Set, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	matches, err := doublestar.Glob(c.fs, path.Join(dir, "*.*"), doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("templates: glob %s: %w", dir, err)
	}
	sort.Strings(matches)

	raw := make(map[string]string, len(matches))
	for _, match := range matches {
		data, err := fs.ReadFile(c.fs, match)
		if err != nil {
			return nil, fmt.Errorf("templates: read %s: %w", match, err)
		}
		name, _, _ := strings.Cut(path.Base(match), ".")
		if _, exists := raw[name]; exists {
			c.logger.Warn("templates.duplicate", "template", name, "path", match)
		}
		raw[name] = string(data)
		c.logger.Debug("templates.loaded", "template", name, "path", match)
	}
	return Compose(raw, c.logger)
}

// Compose resolves child templates into their parents. The child's raw
// content replaces the parent's `{{ body }}` token and nothing else. The
// composite is registered under the child's base name and replaces the
// parent's entry; when a parent has several children the last one in name
// order owns the parent entry. Composites are never composed again. A name
// whose parent is not loaded is registered as an ordinary template.
func Compose(raw map[string]string, logger interfaces.Logger) (*Set, error) {
	logger = logging.Ensure(logger)

	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	composed := make(map[string]string, len(raw))
	var children []string
	for _, name := range names {
		if strings.Contains(name, ChildSeparator) {
			children = append(children, name)
			continue
		}
		composed[name] = raw[name]
	}

	for _, name := range children {
		child, parent, _ := strings.Cut(name, ChildSeparator)
		parentContent, ok := raw[parent]
		if !ok || strings.Contains(parent, ChildSeparator) {
			composed[name] = raw[name]
			logger.Debug("templates.standalone", "template", name, "parent", parent)
			continue
		}
		merged := placeholder.Fill(parentContent, placeholder.Merge(placeholder.Document(map[string]any{"body": raw[name]})))
		if _, standalone := raw[child]; standalone {
			logger.Warn("templates.child.shadows", "template", child, "composite", name)
		}
		composed[child] = merged
		composed[parent] = merged
		logger.Debug("templates.composed", "template", child, "parent", parent)
	}
	return &Set{templates: composed}, nil
}
