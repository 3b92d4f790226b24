package descriptor

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-picogen/internal/protocol"
)

const invalidDateCode = "DOCUMENT_DATE_INVALID"

// ErrInvalidDate is returned when a document declares a date that is not
// YYYY-MM-DD. It aborts the run for the current format.
var ErrInvalidDate = errors.New("descriptor: malformed date")

// markupExtensions are converted to the target protocol before rendering.
var markupExtensions = map[string]struct{}{
	"md":       {},
	"markdown": {},
}

// IsMarkup reports whether ext is a generic markup extension.
func IsMarkup(ext string) bool {
	_, ok := markupExtensions[strings.ToLower(ext)]
	return ok
}

// Options configures an Assembler for one target format.
type Options struct {
	Protocol         protocol.Protocol
	TargetDir        string
	BasePath         string
	CustomDateFormat string
	DateLocale       string
	PageViews        PageViews
	Location         *time.Location
}

// Assembler turns content files into descriptors.
type Assembler struct {
	opts Options
}

// NewAssembler returns an Assembler for opts.
func NewAssembler(opts Options) *Assembler {
	if opts.TargetDir == "" {
		opts.TargetDir = "target"
	}
	if opts.BasePath == "" {
		opts.BasePath = "/"
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Assembler{opts: opts}
}

// SplitName splits a base file name into its name and extension using the
// first two dot separated segments.
func SplitName(base string) (string, string) {
	parts := strings.Split(base, ".")
	if len(parts) < 2 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

// Supported reports whether a file with this base name is processed for the
// assembler's protocol.
func (a *Assembler) Supported(base string) bool {
	_, ext := SplitName(base)
	if ext == "" {
		return false
	}
	return IsMarkup(ext) || ext == a.opts.Protocol.FileSuffix()
}

// Assemble builds the descriptor for the file at relPath, a slash separated
// path relative to the content root. Drafts are returned without path or
// date processing so callers can drop them.
func (a *Assembler) Assemble(relPath string, source []byte) (*Descriptor, error) {
	header, body, err := ParseHeader(source)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", relPath, err)
	}

	name, ext := SplitName(path.Base(relPath))
	d := &Descriptor{
		Annotations:    header.Values,
		AnnotationKeys: header.Keys,
		SourcePath:     relPath,
		Body:           body,
		FileName:       name,
		FileExt:        ext,
		Template:       header.Values[FieldTemplate],
	}
	if d.IsDraft() {
		return d, nil
	}

	if err := a.applyDate(d); err != nil {
		return nil, err
	}
	a.applyPaths(d, relPath)
	d.PageViews = a.opts.PageViews.Lookup(d.RelativeDirPath)
	return d, nil
}

func (a *Assembler) applyDate(d *Descriptor) error {
	value, ok := d.Annotation(FieldDate)
	if !ok {
		value = DefaultDate
	}
	date, err := ParseDate(value, a.opts.Location)
	if err != nil {
		return goerrors.Wrap(fmt.Errorf("%w: %q in %s", ErrInvalidDate, value, d.SourcePath), goerrors.CategoryValidation, "document date must be YYYY-MM-DD").
			WithTextCode(invalidDateCode).
			WithMetadata(map[string]any{"path": d.SourcePath, "date": value})
	}
	d.Date = value
	d.RFC3339Date = RFC3339(date)
	if a.opts.CustomDateFormat != "" {
		d.FormattedDate = FormatStrftime(date, a.opts.CustomDateFormat, a.opts.DateLocale)
	}
	return nil
}

func (a *Assembler) applyPaths(d *Descriptor, relPath string) {
	suffix := a.opts.Protocol.FileSuffix()
	indexFile := "index." + suffix
	dir := path.Dir(relPath)
	if dir == "." {
		dir = ""
	}

	if d.FileName == "index" {
		d.TargetPath = filepath.Join(a.opts.TargetDir, suffix, filepath.FromSlash(dir), indexFile)
		d.RelativePath = JoinURLPath(a.opts.BasePath, dir, indexFile)
		d.RelativeDirPath = JoinURLPath(a.opts.BasePath, dir)
		return
	}
	d.TargetPath = filepath.Join(a.opts.TargetDir, suffix, filepath.FromSlash(dir), d.FileName, indexFile)
	d.RelativePath = JoinURLPath(a.opts.BasePath, dir, d.FileName, indexFile)
	d.RelativeDirPath = JoinURLPath(a.opts.BasePath, dir, d.FileName)
}

// JoinURLPath appends parts to base with single slashes. An empty part adds
// a trailing slash and an absolute part restarts the path.
func JoinURLPath(base string, parts ...string) string {
	out := base
	for _, part := range parts {
		if strings.HasPrefix(part, "/") {
			out = part
			continue
		}
		if out == "" || strings.HasSuffix(out, "/") {
			out += part
			continue
		}
		out += "/" + part
	}
	return out
}
