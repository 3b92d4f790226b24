package logging

import (
	"maps"
	"strings"

	"github.com/goliatone/go-picogen/pkg/interfaces"
)

// Module names a logger namespace. Providers receive it verbatim and every
// entry carries it under the "module" field.
type Module string

const (
	Root      Module = "picogen"
	Generator Module = "picogen.generator"
	Templates Module = "picogen.templates"
	Taxonomy  Module = "picogen.taxonomy"
	Indexes   Module = "picogen.indexes"
	Markdown  Module = "picogen.markdown"
	Watch     Module = "picogen.watch"
)

// Child appends a dotted segment, e.g. Root.Child("commands").
func (m Module) Child(segment string) Module {
	segment = strings.Trim(strings.TrimSpace(segment), ".")
	if segment == "" {
		return m
	}
	if m == "" {
		return Module(segment)
	}
	return Module(string(m) + "." + segment)
}

// For resolves the logger for module. A nil provider, or one that returns
// nil, yields a no-op logger.
func For(provider interfaces.LoggerProvider, module Module) interfaces.Logger {
	if module == "" {
		module = Root
	}
	var logger interfaces.Logger
	if provider != nil {
		logger = provider.GetLogger(string(module))
	}
	return WithFields(Ensure(logger), map[string]any{"module": string(module)})
}

// Document tags logger with the source path, target format and template of
// the document being rendered. Blank values are left out.
func Document(logger interfaces.Logger, path, format, template string) interfaces.Logger {
	fields := make(map[string]any, 3)
	for key, value := range map[string]string{"path": path, "format": format, "template": template} {
		if value = strings.TrimSpace(value); value != "" {
			fields[key] = value
		}
	}
	return WithFields(logger, fields)
}

// WithFields returns logger with fields attached. Loggers without the
// FieldsLogger extension are returned unchanged.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return logger
	}
	fl, ok := logger.(interfaces.FieldsLogger)
	if !ok {
		return logger
	}
	return fl.WithFields(maps.Clone(fields))
}
