package generator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-picogen/internal/descriptor"
	"github.com/goliatone/go-picogen/internal/indexes"
	"github.com/goliatone/go-picogen/internal/logging"
	"github.com/goliatone/go-picogen/internal/placeholder"
	"github.com/goliatone/go-picogen/internal/protocol"
	"github.com/goliatone/go-picogen/internal/runtimeconfig"
	"github.com/goliatone/go-picogen/internal/taxonomy"
	"github.com/goliatone/go-picogen/internal/templates"
	"github.com/goliatone/go-picogen/pkg/interfaces"
)

const buildFailedCode = "BUILD_FAILED"

var (
	// ErrSiteConfigRequired is returned when no site configuration is wired.
	ErrSiteConfigRequired = errors.New("generator: site configuration is required")
	// ErrConverterRequired is returned when no body converter is wired.
	ErrConverterRequired = errors.New("generator: body converter is required")
	// ErrNoProtocols is returned when a build names no target format.
	ErrNoProtocols = errors.New("generator: at least one protocol is required")
)

// Service runs full site generations.
type Service interface {
	Build(ctx context.Context, opts BuildOptions) (*BuildResult, error)
	Clean(ctx context.Context, target protocol.Protocol) error
}

// Config locates the project directories, relative to the source
// filesystem and the writer root.
type Config struct {
	ContentDir   string
	TemplatesDir string
	StaticDir    string
	TargetDir    string
	// CleanBuild removes target/<suffix> before generating.
	CleanBuild bool
	CopyStatic bool
	// Location is used to parse document dates.
	Location *time.Location
}

// DefaultConfig mirrors the conventional project layout.
func DefaultConfig() Config {
	return Config{
		ContentDir:   "content",
		TemplatesDir: "templates",
		StaticDir:    "static",
		TargetDir:    "target",
		CleanBuild:   true,
		CopyStatic:   true,
	}
}

// BuildOptions narrows a generator run.
type BuildOptions struct {
	Protocols []protocol.Protocol
	DryRun    bool
}

// FormatResult reports one target format.
type FormatResult struct {
	Protocol    protocol.Protocol
	Documents   int
	Indexes     int
	Assets      int
	Drafts      []string
	Ignored     []string
	PoolEntries []string
	Duration    time.Duration
}

// BuildResult reports aggregated build metadata.
type BuildResult struct {
	RunID       uuid.UUID
	Formats     []FormatResult
	Rendered    []RenderedPage
	Diagnostics []RenderDiagnostic
	Duration    time.Duration
	DryRun      bool
}

// Dependencies lists the collaborators the generator needs.
type Dependencies struct {
	Site       *runtimeconfig.Config
	Source     fs.FS
	Writer     ArtifactWriter
	Converter  interfaces.BodyConverter
	Summarizer interfaces.Summarizer
	PageViews  descriptor.PageViews
	Metrics    MetricsRecorder
	Logging    interfaces.LoggerProvider
}

// NewService wires a generator.
func NewService(cfg Config, deps Dependencies) Service {
	defaults := DefaultConfig()
	if cfg.ContentDir == "" {
		cfg.ContentDir = defaults.ContentDir
	}
	if cfg.TemplatesDir == "" {
		cfg.TemplatesDir = defaults.TemplatesDir
	}
	if cfg.StaticDir == "" {
		cfg.StaticDir = defaults.StaticDir
	}
	if cfg.TargetDir == "" {
		cfg.TargetDir = defaults.TargetDir
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if deps.Source == nil {
		deps.Source = os.DirFS(".")
	}
	if deps.Writer == nil {
		deps.Writer = NewFilesystemWriter(".")
	}
	if deps.Metrics == nil {
		deps.Metrics = noopMetrics{}
	}
	return &service{
		cfg:    cfg,
		deps:   deps,
		logger: logging.For(deps.Logging, logging.Generator),
		now:    time.Now,
	}
}

type service struct {
	cfg    Config
	deps   Dependencies
	logger interfaces.Logger
	now    func() time.Time
}

// Build generates every requested format in order. A fatal error aborts
// the run; formats after the failing one are not generated.
func (s *service) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.deps.Site == nil {
		return nil, ErrSiteConfigRequired
	}
	if s.deps.Converter == nil {
		return nil, ErrConverterRequired
	}
	if len(opts.Protocols) == 0 {
		return nil, ErrNoProtocols
	}

	start := s.now()
	result := &BuildResult{
		RunID:  uuid.New(),
		DryRun: opts.DryRun,
	}
	logger := logging.WithFields(s.logger, map[string]any{"run_id": result.RunID.String()})

	writer := s.deps.Writer
	if opts.DryRun {
		writer = noopWriter{}
	}

	pageViews, err := s.pageViews()
	if err != nil {
		return result, err
	}

	for _, target := range opts.Protocols {
		run := &formatRun{
			svc:       s,
			target:    target,
			suffix:    target.FileSuffix(),
			writer:    writer,
			pageViews: pageViews,
			logger:    logging.WithFields(logger, map[string]any{"format": target.String()}),
			result:    result,
			dirCache:  map[string]struct{}{},
		}
		formatStart := s.now()
		if err := run.execute(ctx); err != nil {
			result.Duration = s.now().Sub(start)
			run.logger.Error("generator.format.failed", "phase", run.phase.String(), "error", err)
			return result, goerrors.Wrap(err, goerrors.CategoryOperation, "generation of "+target.String()+" failed during "+run.phase.String()).
				WithTextCode(buildFailedCode).
				WithMetadata(map[string]any{"format": target.String(), "phase": run.phase.String()})
		}
		run.stats.Protocol = target
		run.stats.Duration = s.now().Sub(formatStart)
		result.Formats = append(result.Formats, run.stats)
		s.deps.Metrics.BuildCompleted(target.String(), run.stats.Duration)
		run.logger.Info("generator.format.completed",
			"documents", run.stats.Documents,
			"indexes", run.stats.Indexes,
			"assets", run.stats.Assets,
			"duration", run.stats.Duration,
		)
	}

	result.Duration = s.now().Sub(start)
	return result, nil
}

// Clean removes the output directory of target.
func (s *service) Clean(ctx context.Context, target protocol.Protocol) error {
	if !target.Valid() {
		return fmt.Errorf("%w: %q", protocol.ErrUnknownProtocol, target)
	}
	return s.deps.Writer.RemoveAll(ctx, formatRoot(s.cfg.TargetDir, target.FileSuffix()))
}

func (s *service) pageViews() (descriptor.PageViews, error) {
	if s.deps.PageViews != nil {
		return s.deps.PageViews, nil
	}
	file := strings.TrimSpace(s.deps.Site.PageViewsFile)
	if file == "" {
		return descriptor.PageViews{}, nil
	}
	data, err := fs.ReadFile(s.deps.Source, path.Clean(filepath.ToSlash(file)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("generator.page_views.missing", "path", file)
			return descriptor.PageViews{}, nil
		}
		return nil, err
	}
	return descriptor.ParsePageViews(strings.NewReader(string(data)))
}

// formatRun holds the state of one format's generation. It is discarded
// when the format completes.
type formatRun struct {
	svc       *service
	target    protocol.Protocol
	suffix    string
	writer    ArtifactWriter
	pageViews descriptor.PageViews
	logger    interfaces.Logger
	result    *BuildResult
	dirCache  map[string]struct{}

	phase     Phase
	templates *templates.Set
	dynamic   map[string]any
	docs      []*descriptor.Descriptor
	groups    *taxonomy.Groups
	plan      indexes.Plan
	pool      *indexes.Pool
	engine    *indexes.Engine
	stats     FormatResult
}

func (r *formatRun) execute(ctx context.Context) error {
	steps := map[Phase]func(context.Context) error{
		PhaseInit:                    r.init,
		PhaseAssembleDescriptors:     r.assemble,
		PhaseClassifyIndexes:         r.classify,
		PhaseGenerateVariableIndexes: r.generateVariableIndexes,
		PhaseGenerateFileIndexes:     r.generateFileIndexes,
		PhaseGenerateDocumentFiles:   r.generateDocuments,
	}
	for _, phase := range phaseOrder {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.phase = phase
		r.logger.Debug("generator.phase", "phase", phase.String())
		if err := steps[phase](ctx); err != nil {
			return err
		}
	}
	r.phase = PhaseDone
	return nil
}

func (r *formatRun) site() *runtimeconfig.Config {
	return r.svc.deps.Site
}

func (r *formatRun) outputRoot() string {
	return formatRoot(r.svc.cfg.TargetDir, r.suffix)
}

func (r *formatRun) warn(path, template, message string, err error) {
	r.result.Diagnostics = append(r.result.Diagnostics, RenderDiagnostic{
		Format:   r.target.String(),
		Phase:    r.phase,
		Path:     path,
		Template: template,
		Message:  message,
		Err:      err,
	})
}

func (r *formatRun) init(ctx context.Context) error {
	cfg := r.svc.cfg
	if cfg.CleanBuild {
		if err := r.writer.RemoveAll(ctx, r.outputRoot()); err != nil {
			return fmt.Errorf("generator: clean %s: %w", r.outputRoot(), err)
		}
	}
	if err := ensureDir(ctx, r.writer, r.dirCache, r.outputRoot()); err != nil {
		return err
	}

	if cfg.CopyStatic {
		summary, copied, err := copyStatic(ctx, r.svc.deps.Source, r.writer, path.Join(cfg.StaticDir, r.suffix), r.outputRoot(), r.target.String(), r.dirCache)
		if err != nil {
			return fmt.Errorf("generator: copy static assets: %w", err)
		}
		r.stats.Assets = summary.Built
		r.result.Rendered = append(r.result.Rendered, copied...)
	}

	composer := templates.NewComposer(r.svc.deps.Source, logging.For(r.svc.deps.Logging, logging.Templates))
	set, err := composer.Load(ctx, path.Join(cfg.TemplatesDir, r.suffix))
	if err != nil {
		return err
	}
	r.templates = set

	now := r.svc.now().In(cfg.Location)
	r.dynamic = map[string]any{
		"scheme":       r.target.Scheme(r.site().SSLEnabled),
		"current_year": strconv.Itoa(now.Year()),
		"rfc3339_now":  descriptor.RFC3339(now),
	}
	r.pool = indexes.NewPool()
	return nil
}

func (r *formatRun) assemble(ctx context.Context) error {
	site := r.site()
	assembler := descriptor.NewAssembler(descriptor.Options{
		Protocol:         r.target,
		TargetDir:        r.svc.cfg.TargetDir,
		BasePath:         site.BasePath,
		CustomDateFormat: site.CustomDateFormat,
		DateLocale:       site.DateLocale,
		PageViews:        r.pageViews,
		Location:         r.svc.cfg.Location,
	})
	loader := descriptor.NewLoader(r.svc.deps.Source, descriptor.LoaderConfig{
		Root:    r.svc.cfg.ContentDir,
		Exclude: site.Exclude,
	}, assembler)
	loaded, err := loader.Load(ctx)
	if err != nil {
		return err
	}
	r.docs = loaded.Documents
	r.stats.Drafts = loaded.Drafts
	r.stats.Ignored = loaded.Ignored
	for _, draft := range loaded.Drafts {
		r.logger.Debug("generator.draft.skipped", "path", draft)
	}

	groups, warnings := taxonomy.NewGrouper(site, logging.For(r.svc.deps.Logging, logging.Taxonomy)).Group(r.docs)
	r.groups = groups
	for _, warning := range warnings {
		r.warn(warning.Path, "", warning.Message, nil)
	}

	config := site.TemplateVariables()
	for _, doc := range r.docs {
		prefilled := placeholder.Fill(doc.Body, placeholder.Merge(
			placeholder.Config(config),
			placeholder.Dynamic(r.dynamic),
			placeholder.Document(doc.Vars()),
		))
		converted, err := r.svc.deps.Converter.Convert(ctx, prefilled, doc.FileExt, r.target.String())
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			r.svc.deps.Metrics.ConversionFailed(r.target.String())
			r.logger.Error("generator.convert.failed", "path", doc.SourcePath, "error", err)
			r.warn(doc.SourcePath, doc.Template, "body left unconverted", err)
			converted = prefilled
		}
		doc.Body = converted
	}
	return nil
}

func (r *formatRun) classify(context.Context) error {
	r.plan = indexes.Classify(r.site().Taxonomies)
	r.engine = indexes.NewEngine(indexes.EngineConfig{
		Protocol:   r.target,
		TargetDir:  r.svc.cfg.TargetDir,
		Config:     r.site().TemplateVariables(),
		Dynamic:    r.dynamic,
		Templates:  r.templates,
		Summarizer: r.svc.deps.Summarizer,
		Logger:     logging.For(r.svc.deps.Logging, logging.Indexes),
	})
	r.logger.Debug("generator.indexes.classified",
		"variable_indexes", len(r.plan.VariableIndexes),
		"variable_lists", len(r.plan.VariableLists),
		"file_indexes", len(r.plan.FileIndexes),
		"file_lists", len(r.plan.FileLists),
	)
	return nil
}

func (r *formatRun) generateVariableIndexes(ctx context.Context) error {
	for _, job := range r.plan.VariablePhase() {
		if err := ctx.Err(); err != nil {
			return err
		}
		outputs, err := r.engine.Render(job, r.groups, r.pool)
		if err != nil {
			return err
		}
		for _, out := range outputs {
			if err := r.pool.Put(out.Key, out.Content); err != nil {
				r.logger.Warn("generator.pool.duplicate", "key", out.Key, "value", out.Value)
				r.warn(out.Key, "", "two taxonomy values share a normalized form, keeping the first", err)
				continue
			}
			r.stats.Indexes++
			r.svc.deps.Metrics.IndexGenerated(r.target.String(), job.Kind(), string(job.Output()))
			r.logger.Debug("generator.variable.generated", "key", out.Key)
		}
	}
	r.stats.PoolEntries = r.pool.Keys()
	return nil
}

func (r *formatRun) generateFileIndexes(ctx context.Context) error {
	claimed := map[string]string{}
	for _, job := range r.plan.FilePhase() {
		if err := ctx.Err(); err != nil {
			return err
		}
		outputs, err := r.engine.Render(job, r.groups, r.pool)
		if err != nil {
			return err
		}
		for _, out := range outputs {
			if first, taken := claimed[out.Path]; taken {
				r.logger.Warn("generator.file.duplicate", "path", out.Path, "key", out.Key, "kept", first)
				r.warn(out.Path, "", "two taxonomy values share a normalized form, keeping the first",
					fmt.Errorf("%w: %s", indexes.ErrDuplicateOutput, out.Path))
				continue
			}
			claimed[out.Path] = out.Key
			page, err := r.write(ctx, out.Path, out.Content, categoryIndex, map[string]string{
				"taxonomy": job.Taxonomy().ID,
				"index":    job.ID(),
				"value":    out.Value,
			})
			if err != nil {
				return err
			}
			page.Kind = job.Kind()
			page.Source = out.Key
			r.result.Rendered = append(r.result.Rendered, page)
			r.stats.Indexes++
			r.svc.deps.Metrics.IndexGenerated(r.target.String(), job.Kind(), string(job.Output()))
			r.logger.Info(fmt.Sprintf("Generated %s => %s", out.Key, out.Path))
		}
	}
	return nil
}

func (r *formatRun) generateDocuments(ctx context.Context) error {
	config := r.site().TemplateVariables()
	outputs := placeholder.Outputs(r.pool.Snapshot())
	for _, doc := range r.docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		outcome, err := r.renderDocument(ctx, doc, config, outputs)
		if err != nil {
			return err
		}
		if outcome.diagnostic != nil {
			r.result.Diagnostics = append(r.result.Diagnostics, *outcome.diagnostic)
		}
		r.result.Rendered = append(r.result.Rendered, outcome.page)
		r.stats.Documents++
		r.svc.deps.Metrics.DocumentGenerated(r.target.String())
		r.logger.Info(fmt.Sprintf("Generated %s => %s", doc.Name(), doc.TargetPath))
	}
	return nil
}

func (r *formatRun) renderDocument(ctx context.Context, doc *descriptor.Descriptor, config map[string]any, outputs placeholder.Layer) (renderOutcome, error) {
	start := r.svc.now()
	docLogger := logging.Document(r.logger, doc.SourcePath, r.target.String(), doc.Template)
	outcome := renderOutcome{}

	tpl, err := r.templates.Get(doc.Template)
	if err != nil {
		return outcome, fmt.Errorf("generator: document %s: %w", doc.SourcePath, err)
	}

	body := placeholder.Fill(doc.Body, placeholder.Merge(
		placeholder.Config(config),
		outputs,
		placeholder.Dynamic(r.dynamic),
		placeholder.Document(doc.Vars()),
	))
	summary := ""
	if r.svc.deps.Summarizer != nil {
		if summary, err = r.svc.deps.Summarizer.Summarize(body, r.target.String()); err != nil {
			docLogger.Warn("generator.summary.failed", "error", err)
			outcome.diagnostic = &RenderDiagnostic{
				Format:   r.target.String(),
				Phase:    r.phase,
				Path:     doc.SourcePath,
				Template: doc.Template,
				Message:  "summary unavailable",
				Err:      err,
			}
			summary = ""
		}
	}
	rendered := placeholder.Fill(tpl, placeholder.Merge(
		placeholder.Config(config),
		outputs,
		placeholder.Dynamic(r.dynamic),
		placeholder.Document(doc.WithBody(body, summary).Vars()),
	))

	page, err := r.write(ctx, doc.TargetPath, rendered, categoryDocument, map[string]string{
		"source":   doc.SourcePath,
		"template": doc.Template,
	})
	if err != nil {
		return outcome, err
	}
	page.Kind = KindDocument
	page.Source = doc.SourcePath
	page.Template = doc.Template
	page.Duration = r.svc.now().Sub(start)
	outcome.page = page
	docLogger.Debug("generator.document.rendered", "output", doc.TargetPath, "bytes", page.Bytes)
	return outcome, nil
}

func (r *formatRun) write(ctx context.Context, target, content string, category writeCategory, metadata map[string]string) (RenderedPage, error) {
	if err := ensureDir(ctx, r.writer, r.dirCache, filepath.Dir(target)); err != nil {
		return RenderedPage{}, err
	}
	checksum := computeHashFromString(content)
	req := WriteFileRequest{
		Path:        target,
		Content:     strings.NewReader(content),
		Size:        int64(len(content)),
		Format:      r.target.String(),
		Category:    category,
		ContentType: detectAssetContentType(target),
		Checksum:    checksum,
		Metadata:    metadata,
	}
	if err := r.writer.WriteFile(ctx, req); err != nil {
		return RenderedPage{}, fmt.Errorf("generator: write %s: %w", target, err)
	}
	return RenderedPage{
		Format:   r.target.String(),
		Output:   target,
		Checksum: checksum,
		Bytes:    len(content),
	}, nil
}

func ensureDir(ctx context.Context, writer ArtifactWriter, cache map[string]struct{}, dir string) error {
	dir = strings.Trim(dir, " ")
	if dir == "" || dir == "." {
		return nil
	}
	if cache != nil {
		if _, ok := cache[dir]; ok {
			return nil
		}
		cache[dir] = struct{}{}
	}
	return writer.EnsureDir(ctx, dir)
}

func computeHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func computeHashFromString(content string) string {
	return computeHash([]byte(content))
}
