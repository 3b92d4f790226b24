package runtimeconfig

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	ErrConfigNotFound         = errors.New("picogen config: configuration file not found")
	ErrConfigFormat           = errors.New("picogen config: unsupported configuration format")
	ErrConfigInvalid          = errors.New("picogen config: configuration is invalid")
	ErrDuplicateTaxonomy      = errors.New("picogen config: taxonomy ids must be unique")
	ErrDuplicateIndex         = errors.New("picogen config: index ids must be unique within a taxonomy")
	ErrInlinedIndexUnknown    = errors.New("picogen config: inlined_index_id must reference a value index of the same taxonomy")
	ErrLimitInvalid           = errors.New("picogen config: limit must be a non-negative integer")
	ErrLoggingProviderUnknown = errors.New("picogen config: logging provider is invalid")
	ErrLoggingLevelInvalid    = errors.New("picogen config: logging level is invalid")
	ErrLoggingFormatInvalid   = errors.New("picogen config: logging format is invalid")
)

// OutputType selects whether an index is rendered into the output pool or
// written to its own file.
type OutputType string

const (
	OutputVariable OutputType = "variable"
	OutputFile     OutputType = "file"
)

const (
	OrderAscending  = "asc"
	OrderDescending = "desc"

	// OrderByCount sorts value lists by the number of documents per value.
	OrderByCount = "count"
	// DefaultIndexOrderBy is the descriptor field value indexes sort on.
	DefaultIndexOrderBy = "date"
	// DefaultTemplateName is used when the site does not declare default_template.
	DefaultTemplateName = "default"
)

// reservedKeys are structural and never exposed as template variables.
var reservedKeys = map[string]struct{}{
	"taxonomies": {},
	"logging":    {},
	"exclude":    {},
}

// Config is the site configuration document.
type Config struct {
	BasePath         string        `json:"base_path"`
	SSLEnabled       bool          `json:"ssl_enabled"`
	DefaultTemplate  string        `json:"default_template"`
	PageViewsFile    string        `json:"page_views_file,omitempty"`
	CustomDateFormat string        `json:"custom_date_format,omitempty"`
	DateLocale       string        `json:"date_locale,omitempty"`
	Exclude          []string      `json:"exclude,omitempty"`
	Logging          LoggingConfig `json:"logging"`
	Taxonomies       []Taxonomy    `json:"taxonomies,omitempty"`

	// Variables holds every non-structural top-level key of the document,
	// including unknown ones, so templates can reference them directly.
	Variables map[string]any `json:"-"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `json:"provider,omitempty"`
	Level     string   `json:"level,omitempty"`
	Format    string   `json:"format,omitempty"`
	AddSource bool     `json:"add_source,omitempty"`
	Focus     []string `json:"focus,omitempty"`
}

// Taxonomy declares one classification axis.
type Taxonomy struct {
	ID               string                `json:"id"`
	Title            string                `json:"title"`
	DocumentTemplate string                `json:"document_template,omitempty"`
	Indexes          []IndexDefinition     `json:"indexes,omitempty"`
	ValueLists       []ValueListDefinition `json:"value_lists,omitempty"`
}

// IndexDefinition describes a value index: one output per taxonomy value
// listing the documents carrying that value.
type IndexDefinition struct {
	ID              string            `json:"id"`
	OutputType      OutputType        `json:"output_type"`
	Template        string            `json:"template"`
	ItemTemplate    string            `json:"item_template"`
	OrderBy         string            `json:"order_by,omitempty"`
	OrderDirection  string            `json:"order_direction,omitempty"`
	Limit           Limit             `json:"limit"`
	OutputSuffix    string            `json:"output_suffix,omitempty"`
	CustomVariables map[string]string `json:"custom_variables,omitempty"`
}

// ValueListDefinition describes a value list: one output per taxonomy
// listing all of its values.
type ValueListDefinition struct {
	ID             string     `json:"id"`
	OutputType     OutputType `json:"output_type"`
	Template       string     `json:"template"`
	ItemTemplate   string     `json:"item_template"`
	OrderBy        string     `json:"order_by,omitempty"`
	OrderDirection string     `json:"order_direction,omitempty"`
	Limit          Limit      `json:"limit"`
	OutputSuffix   string     `json:"output_suffix,omitempty"`
	InlinedIndexID string     `json:"inlined_index_id,omitempty"`
}

// SortKey returns the descriptor field a value index orders by.
func (d IndexDefinition) SortKey() string {
	if key := strings.TrimSpace(d.OrderBy); key != "" {
		return key
	}
	return DefaultIndexOrderBy
}

// Ascending reports whether the index sorts in ascending order. Value indexes
// default to descending.
func (d IndexDefinition) Ascending() bool {
	return strings.EqualFold(strings.TrimSpace(d.OrderDirection), OrderAscending)
}

// Sorted reports whether the value list declares an order. Lists without a
// direction keep the order in which values were first seen.
func (d ValueListDefinition) Sorted() bool {
	return strings.TrimSpace(d.OrderDirection) != ""
}

// Ascending reports whether the value list sorts in ascending order.
func (d ValueListDefinition) Ascending() bool {
	return strings.EqualFold(strings.TrimSpace(d.OrderDirection), OrderAscending)
}

// ByCount reports whether values are ordered by their document count.
func (d ValueListDefinition) ByCount() bool {
	return strings.EqualFold(strings.TrimSpace(d.OrderBy), OrderByCount)
}

// Limit is an optional non-negative item cap. It decodes from JSON numbers
// and numeric strings.
type Limit struct {
	value int
	set   bool
}

// NewLimit returns a limit capped at n.
func NewLimit(n int) Limit {
	return Limit{value: n, set: true}
}

// IsSet reports whether a limit was configured.
func (l Limit) IsSet() bool { return l.set }

// Value returns the configured cap, or zero when unset.
func (l Limit) Value() int { return l.value }

// Apply returns how many of total items survive the limit.
func (l Limit) Apply(total int) int {
	if !l.set || l.value > total {
		return total
	}
	return l.value
}

func (l *Limit) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*l = Limit{}
		return nil
	}
	raw := string(trimmed)
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil || f != float64(int(f)) {
			return fmt.Errorf("%w: %s", ErrLimitInvalid, raw)
		}
		n = int(f)
	}
	if n < 0 {
		return fmt.Errorf("%w: %d", ErrLimitInvalid, n)
	}
	*l = NewLimit(n)
	return nil
}

func (l Limit) MarshalJSON() ([]byte, error) {
	if !l.set {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(l.value)), nil
}

// DefaultConfig returns the settings applied when the document omits them.
func DefaultConfig() Config {
	return Config{
		BasePath:        "/",
		DefaultTemplate: DefaultTemplateName,
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
		Variables: map[string]any{},
	}
}

// FindTaxonomy returns the taxonomy declared with id.
func (cfg Config) FindTaxonomy(id string) (Taxonomy, bool) {
	for _, taxonomy := range cfg.Taxonomies {
		if taxonomy.ID == id {
			return taxonomy, true
		}
	}
	return Taxonomy{}, false
}

// TemplateVariables returns a copy of the configuration scope layer.
func (cfg Config) TemplateVariables() map[string]any {
	out := make(map[string]any, len(cfg.Variables)+4)
	for key, value := range cfg.Variables {
		out[key] = value
	}
	return out
}

// Validate performs structural and cross-reference checks.
func (cfg Config) Validate() error {
	if err := validation.ValidateStruct(&cfg,
		validation.Field(&cfg.DefaultTemplate, validation.Required),
		validation.Field(&cfg.Taxonomies),
	); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}

	seen := map[string]struct{}{}
	for _, taxonomy := range cfg.Taxonomies {
		if _, ok := seen[taxonomy.ID]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateTaxonomy, taxonomy.ID)
		}
		seen[taxonomy.ID] = struct{}{}
		if err := taxonomy.validateReferences(); err != nil {
			return err
		}
	}

	if provider := normalize(cfg.Logging.Provider); provider != "" && !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
		return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
	}
	return nil
}

// Validate implements validation.Validatable.
func (t Taxonomy) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.ID, validation.Required, validation.By(noWhitespace)),
		validation.Field(&t.Title, validation.Required),
		validation.Field(&t.Indexes),
		validation.Field(&t.ValueLists),
	)
}

func (t Taxonomy) validateReferences() error {
	ids := map[string]OutputType{}
	for _, index := range t.Indexes {
		if _, ok := ids[index.ID]; ok {
			return fmt.Errorf("%w: %s/%s", ErrDuplicateIndex, t.ID, index.ID)
		}
		ids[index.ID] = index.OutputType
	}
	lists := map[string]struct{}{}
	for _, list := range t.ValueLists {
		if _, ok := lists[list.ID]; ok {
			return fmt.Errorf("%w: %s/%s", ErrDuplicateIndex, t.ID, list.ID)
		}
		lists[list.ID] = struct{}{}
		if list.InlinedIndexID == "" {
			continue
		}
		if _, ok := ids[list.InlinedIndexID]; !ok {
			return fmt.Errorf("%w: %s/%s references %s", ErrInlinedIndexUnknown, t.ID, list.ID, list.InlinedIndexID)
		}
	}
	return nil
}

// Validate implements validation.Validatable.
func (d IndexDefinition) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.ID, validation.Required, validation.By(noWhitespace)),
		validation.Field(&d.OutputType, validation.Required, validation.In(OutputVariable, OutputFile)),
		validation.Field(&d.Template, validation.Required),
		validation.Field(&d.ItemTemplate, validation.Required),
		validation.Field(&d.OrderDirection, validation.In(OrderAscending, OrderDescending)),
	)
}

// Validate implements validation.Validatable.
func (d ValueListDefinition) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.ID, validation.Required, validation.By(noWhitespace)),
		validation.Field(&d.OutputType, validation.Required, validation.In(OutputVariable, OutputFile)),
		validation.Field(&d.Template, validation.Required),
		validation.Field(&d.ItemTemplate, validation.Required),
		validation.Field(&d.OrderBy, validation.In("value", OrderByCount)),
		validation.Field(&d.OrderDirection, validation.In(OrderAscending, OrderDescending)),
	)
}

func noWhitespace(value any) error {
	s, _ := value.(string)
	if strings.ContainsAny(s, " \t\r\n") {
		return validation.NewError("picogen.config.identifier_whitespace", "must not contain whitespace")
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
