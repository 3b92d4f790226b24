package runtimeconfig

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	goerrors "github.com/goliatone/go-errors"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

const (
	configNotFoundCode   = "CONFIG_NOT_FOUND"
	configReadFailedCode = "CONFIG_READ_FAILED"
	configDecodeCode     = "CONFIG_DECODE_FAILED"
	configSchemaCode     = "CONFIG_SCHEMA_INVALID"
	configInvalidCode    = "CONFIG_INVALID"
)

// Format identifies the encoding of a configuration document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

//go:embed schema.json
var schemaSource []byte

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// SchemaIssue captures a single schema violation.
type SchemaIssue struct {
	Location string
	Message  string
}

// SchemaError reports every schema violation found in a document.
type SchemaError struct {
	Issues []SchemaIssue
}

func (e *SchemaError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := issue.Location
		if location == "" {
			location = "#"
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	return strings.Join(parts, "; ")
}

func (e *SchemaError) Unwrap() error {
	return ErrConfigInvalid
}

// FormatFromPath infers the document format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrConfigFormat, path)
	}
}

// Load reads, validates and decodes the configuration file at path.
func Load(path string) (*Config, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "unsupported configuration file").
			WithTextCode(configDecodeCode)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerrors.Wrap(ErrConfigNotFound, goerrors.CategoryNotFound, "create "+path+" before generating").
				WithTextCode(configNotFoundCode).
				WithMetadata(map[string]any{"path": path})
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "read configuration").
			WithTextCode(configReadFailedCode).
			WithMetadata(map[string]any{"path": path})
	}
	cfg, err := Parse(data, format)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes a configuration document. The raw document is checked
// against the embedded JSON schema before it is bound to Config.
func Parse(data []byte, format Format) (*Config, error) {
	doc, err := decodeDocument(data, format)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "decode configuration").
			WithTextCode(configDecodeCode)
	}
	if err := validateDocument(doc); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "configuration does not match schema").
			WithTextCode(configSchemaCode)
	}

	encoded, err := json.Marshal(doc)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "encode configuration").
			WithTextCode(configDecodeCode)
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(encoded, &cfg); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "bind configuration").
			WithTextCode(configDecodeCode)
	}
	cfg.Variables = collectVariables(doc)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "configuration is invalid").
			WithTextCode(configInvalidCode)
	}
	return &cfg, nil
}

// decodeDocument returns the document as JSON-compatible values.
func decodeDocument(data []byte, format Format) (map[string]any, error) {
	switch format {
	case FormatJSON:
		var doc map[string]any
		decoder := json.NewDecoder(bytes.NewReader(data))
		if err := decoder.Decode(&doc); err != nil {
			return nil, err
		}
		if doc == nil {
			doc = map[string]any{}
		}
		return doc, nil
	case FormatYAML:
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		if raw == nil {
			return map[string]any{}, nil
		}
		normalized, err := jsonCompatible(raw)
		if err != nil {
			return nil, err
		}
		doc, ok := normalized.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: top-level value must be a mapping", ErrConfigFormat)
		}
		return doc, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrConfigFormat, format)
	}
}

// jsonCompatible round-trips a YAML value through JSON so the schema
// validator only sees the value types encoding/json produces.
func jsonCompatible(value any) (any, error) {
	encoded, err := json.Marshal(stringKeys(value))
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(encoded, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func stringKeys(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = stringKeys(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[fmt.Sprint(key)] = stringKeys(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = stringKeys(item)
		}
		return out
	default:
		return v
	}
}

func validateDocument(doc map[string]any) error {
	schema, err := configSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(any(doc)); err != nil {
		var validationErr *jsonschema.ValidationError
		if errors.As(err, &validationErr) {
			return &SchemaError{Issues: collectSchemaIssues(validationErr)}
		}
		return err
	}
	return nil
}

func configSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("config.schema.json", bytes.NewReader(schemaSource)); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = compiler.Compile("config.schema.json")
	})
	return compiledSchema, schemaErr
}

func collectSchemaIssues(err *jsonschema.ValidationError) []SchemaIssue {
	issues := []SchemaIssue{}
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, SchemaIssue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}

func collectVariables(doc map[string]any) map[string]any {
	vars := make(map[string]any, len(doc))
	for key, value := range doc {
		if _, reserved := reservedKeys[key]; reserved {
			continue
		}
		vars[key] = value
	}
	return vars
}

func applyDefaults(cfg *Config) {
	defaults := DefaultConfig()
	if strings.TrimSpace(cfg.BasePath) == "" {
		cfg.BasePath = defaults.BasePath
	}
	if strings.TrimSpace(cfg.DefaultTemplate) == "" {
		cfg.DefaultTemplate = defaults.DefaultTemplate
	}
	if cfg.Variables == nil {
		cfg.Variables = map[string]any{}
	}
	if _, ok := cfg.Variables["base_path"]; !ok {
		cfg.Variables["base_path"] = cfg.BasePath
	}
	if _, ok := cfg.Variables["default_template"]; !ok {
		cfg.Variables["default_template"] = cfg.DefaultTemplate
	}
	if _, ok := cfg.Variables["ssl_enabled"]; !ok {
		cfg.Variables["ssl_enabled"] = cfg.SSLEnabled
	}
}
