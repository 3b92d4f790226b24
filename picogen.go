package picogen

import (
	"context"
	"io/fs"
	"os"
	"strings"

	"github.com/goliatone/go-picogen/internal/generator"
	"github.com/goliatone/go-picogen/internal/logging"
	"github.com/goliatone/go-picogen/internal/markdown"
	"github.com/goliatone/go-picogen/internal/protocol"
	"github.com/goliatone/go-picogen/pkg/interfaces"
)

// Protocol exports the target format identifier.
type Protocol = protocol.Protocol

const (
	HTTP   = protocol.HTTP
	Gemini = protocol.Gemini
)

// GeneratorService exports the static site generator contract.
type GeneratorService = generator.Service

// GeneratorConfig exports the project layout settings.
type GeneratorConfig = generator.Config

// BuildOptions exports the generator run options.
type BuildOptions = generator.BuildOptions

// BuildResult exports the generator run report.
type BuildResult = generator.BuildResult

// ArtifactWriter exports the output sink contract.
type ArtifactWriter = generator.ArtifactWriter

// MetricsRecorder exports the generator metrics contract.
type MetricsRecorder = generator.MetricsRecorder

// Option customises a Module.
type Option func(*moduleOptions)

type moduleOptions struct {
	root      string
	generator generator.Config
	source    fs.FS
	writer    generator.ArtifactWriter
	converter interfaces.BodyConverter
	metrics   generator.MetricsRecorder
	logging   interfaces.LoggerProvider
}

// WithRoot sets the project directory. It defaults to the working directory.
func WithRoot(root string) Option {
	return func(o *moduleOptions) {
		o.root = strings.TrimSpace(root)
	}
}

// WithGeneratorConfig overrides the project layout.
func WithGeneratorConfig(cfg GeneratorConfig) Option {
	return func(o *moduleOptions) {
		o.generator = cfg
	}
}

// WithSource reads content, templates and static files from source instead
// of the root directory.
func WithSource(source fs.FS) Option {
	return func(o *moduleOptions) {
		o.source = source
	}
}

// WithWriter sends artifacts to writer instead of the root directory.
func WithWriter(writer ArtifactWriter) Option {
	return func(o *moduleOptions) {
		o.writer = writer
	}
}

// WithConverter replaces the goldmark body converter.
func WithConverter(converter interfaces.BodyConverter) Option {
	return func(o *moduleOptions) {
		o.converter = converter
	}
}

// WithMetrics records build counters on recorder.
func WithMetrics(recorder MetricsRecorder) Option {
	return func(o *moduleOptions) {
		o.metrics = recorder
	}
}

// WithLoggerProvider routes module logs through provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(o *moduleOptions) {
		o.logging = provider
	}
}

// Module represents the top level picogen runtime facade.
type Module struct {
	config    *Config
	generator generator.Service
	logging   interfaces.LoggerProvider
}

// New wires a generator for the site described by cfg.
func New(cfg *Config, opts ...Option) (*Module, error) {
	if cfg == nil {
		return nil, generator.ErrSiteConfigRequired
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := moduleOptions{root: ".", generator: generator.DefaultConfig()}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	if options.root == "" {
		options.root = "."
	}
	if options.source == nil {
		options.source = os.DirFS(options.root)
	}
	if options.writer == nil {
		options.writer = generator.NewFilesystemWriter(options.root)
	}

	var summarizer interfaces.Summarizer
	if options.converter == nil {
		converter := markdown.NewConverter(logging.For(options.logging, logging.Markdown))
		options.converter = converter
		summarizer = converter
	} else if s, ok := options.converter.(interfaces.Summarizer); ok {
		summarizer = s
	}

	service := generator.NewService(options.generator, generator.Dependencies{
		Site:       cfg,
		Source:     options.source,
		Writer:     options.writer,
		Converter:  options.converter,
		Summarizer: summarizer,
		Metrics:    options.metrics,
		Logging:    options.logging,
	})
	return &Module{config: cfg, generator: service, logging: options.logging}, nil
}

// Config returns the site configuration the module was built with.
func (m *Module) Config() *Config {
	if m == nil {
		return nil
	}
	return m.config
}

// Generator returns the configured generator service.
func (m *Module) Generator() GeneratorService {
	if m == nil {
		return nil
	}
	return m.generator
}

// Logging returns the logger provider, which may be nil.
func (m *Module) Logging() interfaces.LoggerProvider {
	if m == nil {
		return nil
	}
	return m.logging
}

// Generate builds the given formats in order.
func (m *Module) Generate(ctx context.Context, targets ...Protocol) (*BuildResult, error) {
	if len(targets) == 0 {
		return nil, generator.ErrNoProtocols
	}
	return m.generator.Build(ctx, BuildOptions{Protocols: targets})
}

// Clean removes the output directory of each format.
func (m *Module) Clean(ctx context.Context, targets ...Protocol) error {
	for _, target := range targets {
		if err := m.generator.Clean(ctx, target); err != nil {
			return err
		}
	}
	return nil
}
