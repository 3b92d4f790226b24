package descriptor

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// LoaderConfig configures content discovery.
type LoaderConfig struct {
	// Root is the directory inside the filesystem holding content files.
	Root string
	// Exclude lists doublestar patterns, relative to Root, that are skipped.
	Exclude []string
}

// Loader walks a content tree and assembles descriptors for every
// supported file.
type Loader struct {
	fs        fs.FS
	root      string
	exclude   []string
	assembler *Assembler
}

// LoadResult groups the outcome of a content walk.
type LoadResult struct {
	// Documents are the assembled non-draft descriptors in path order.
	Documents []*Descriptor
	// Drafts lists the relative paths of skipped drafts.
	Drafts []string
	// Ignored lists files whose extension does not apply to the format.
	Ignored []string
}

// NewLoader constructs a Loader reading from filesystem.
func NewLoader(filesystem fs.FS, cfg LoaderConfig, assembler *Assembler) *Loader {
	root := path.Clean(strings.TrimSpace(cfg.Root))
	if root == "" {
		root = "."
	}
	exclude := make([]string, 0, len(cfg.Exclude))
	for _, pattern := range cfg.Exclude {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" || !doublestar.ValidatePattern(pattern) {
			continue
		}
		exclude = append(exclude, pattern)
	}
	return &Loader{
		fs:        filesystem,
		root:      root,
		exclude:   exclude,
		assembler: assembler,
	}
}

// Load walks the content root. Files are visited in lexical path order so
// taxonomy values keep a stable first-seen order between runs.
func (l *Loader) Load(ctx context.Context) (*LoadResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var paths []string
	walkErr := fs.WalkDir(l.fs, l.root, func(current string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		rel := l.relative(current)
		if d.IsDir() {
			if rel != "" && l.excluded(rel) {
				return fs.SkipDir
			}
			return nil
		}
		if l.excluded(rel) {
			return nil
		}
		paths = append(paths, rel)
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("descriptor loader walk %s: %w", l.root, walkErr)
	}
	sort.Strings(paths)

	result := &LoadResult{}
	for _, rel := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !l.assembler.Supported(path.Base(rel)) {
			result.Ignored = append(result.Ignored, rel)
			continue
		}
		data, err := fs.ReadFile(l.fs, path.Join(l.root, rel))
		if err != nil {
			return nil, fmt.Errorf("descriptor loader read %s: %w", rel, err)
		}
		doc, err := l.assembler.Assemble(rel, data)
		if err != nil {
			return nil, err
		}
		if doc.IsDraft() {
			result.Drafts = append(result.Drafts, rel)
			continue
		}
		result.Documents = append(result.Documents, doc)
	}
	return result, nil
}

func (l *Loader) relative(current string) string {
	if current == l.root {
		return ""
	}
	if l.root == "." {
		return current
	}
	rel := strings.TrimPrefix(current, l.root)
	return strings.TrimPrefix(rel, "/")
}

func (l *Loader) excluded(rel string) bool {
	for _, pattern := range l.exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
