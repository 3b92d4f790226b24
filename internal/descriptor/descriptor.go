package descriptor

import (
	"maps"
	"strconv"
	"strings"
)

// DefaultDate is assigned to documents that do not declare a date.
const DefaultDate = "1970-01-01"

// Fields exposed to templates in addition to the document annotations.
const (
	FieldBody            = "body"
	FieldFileName        = "file_name"
	FieldFileExt         = "file_ext"
	FieldDate            = "date"
	FieldRFC3339Date     = "rfc3339_date"
	FieldFormattedDate   = "formatted_date"
	FieldTargetPath      = "target_path"
	FieldRelativePath    = "relative_path"
	FieldRelativeDirPath = "relative_dir_path"
	FieldPageViews       = "page_views"
	FieldTemplate        = "template"
	FieldSummary         = "summary"
	FieldDraft           = "draft"
)

// Descriptor is the structured record assembled from one content file.
type Descriptor struct {
	// Annotations are the header key/value pairs in declaration order.
	Annotations map[string]string
	// AnnotationKeys preserves the order annotations were declared in.
	AnnotationKeys []string

	SourcePath      string
	Body            string
	FileName        string
	FileExt         string
	Date            string
	RFC3339Date     string
	FormattedDate   string
	TargetPath      string
	RelativePath    string
	RelativeDirPath string
	PageViews       int
	Template        string

	summary    string
	summarized bool
}

// Annotation returns the trimmed header value declared for key.
func (d *Descriptor) Annotation(key string) (string, bool) {
	if d == nil || d.Annotations == nil {
		return "", false
	}
	value, ok := d.Annotations[key]
	return value, ok
}

// IsDraft reports whether the document declares a draft annotation. Any
// value marks the document as a draft.
func (d *Descriptor) IsDraft() bool {
	_, ok := d.Annotation(FieldDraft)
	return ok
}

// Name returns the source file name including its extension.
func (d *Descriptor) Name() string {
	if d.FileExt == "" {
		return d.FileName
	}
	return d.FileName + "." + d.FileExt
}

// Summary returns the teaser computed for the current body.
func (d *Descriptor) Summary() (string, bool) {
	return d.summary, d.summarized
}

// WithBody returns a copy of d carrying body and its summary. The receiver
// is left untouched so index renders never leak into document output.
func (d *Descriptor) WithBody(body, summary string) *Descriptor {
	clone := d.Clone()
	clone.Body = body
	clone.summary = summary
	clone.summarized = true
	return clone
}

// Clone returns a deep copy of d.
func (d *Descriptor) Clone() *Descriptor {
	if d == nil {
		return nil
	}
	clone := *d
	clone.Annotations = maps.Clone(d.Annotations)
	clone.AnnotationKeys = append([]string(nil), d.AnnotationKeys...)
	return &clone
}

// Vars returns the descriptor as a template scope layer. Computed fields
// override annotations of the same name.
func (d *Descriptor) Vars() map[string]any {
	vars := make(map[string]any, len(d.Annotations)+13)
	for key, value := range d.Annotations {
		vars[key] = value
	}
	vars[FieldBody] = d.Body
	vars[FieldFileName] = d.FileName
	vars[FieldFileExt] = d.FileExt
	vars[FieldDate] = d.Date
	vars[FieldRFC3339Date] = d.RFC3339Date
	if d.FormattedDate != "" {
		vars[FieldFormattedDate] = d.FormattedDate
	}
	vars[FieldTargetPath] = d.TargetPath
	vars[FieldRelativePath] = d.RelativePath
	vars[FieldRelativeDirPath] = d.RelativeDirPath
	vars[FieldPageViews] = d.PageViews
	vars[FieldTemplate] = d.Template
	if d.summarized {
		vars[FieldSummary] = d.summary
	}
	return vars
}

// Field returns the value a descriptor exposes under name.
func (d *Descriptor) Field(name string) (any, bool) {
	switch name {
	case FieldPageViews:
		return d.PageViews, true
	case FieldDate:
		return d.Date, true
	}
	value, ok := d.Vars()[name]
	return value, ok
}

// Compare orders two descriptors by field. Numeric values compare as
// numbers, everything else as strings. A missing field sorts as the empty
// string.
func Compare(a, b *Descriptor, field string) int {
	av, _ := a.Field(field)
	bv, _ := b.Field(field)
	if an, ok := numeric(av); ok {
		if bn, ok := numeric(bv); ok {
			switch {
			case an < bn:
				return -1
			case an > bn:
				return 1
			default:
				return 0
			}
		}
	}
	return strings.Compare(text(av), text(bv))
}

func numeric(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

func text(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}
