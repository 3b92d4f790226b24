package indexes

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goliatone/go-picogen/internal/descriptor"
	"github.com/goliatone/go-picogen/internal/logging"
	"github.com/goliatone/go-picogen/internal/placeholder"
	"github.com/goliatone/go-picogen/internal/protocol"
	"github.com/goliatone/go-picogen/internal/runtimeconfig"
	"github.com/goliatone/go-picogen/internal/taxonomy"
	"github.com/goliatone/go-picogen/internal/templates"
	"github.com/goliatone/go-picogen/pkg/interfaces"
)

// Variables exposed to index templates.
const (
	VarTaxonomyID              = "taxonomy_id"
	VarTaxonomyTitle           = "taxonomy_title"
	VarTitle                   = "title"
	VarTaxonomyValue           = "taxonomy_value"
	VarTaxonomyValueLower      = "taxonomy_value_lower"
	VarTaxonomyValueNormalized = "taxonomy_value_normalized"
	VarTaxonomyValuePostsCount = "taxonomy_value_posts_count"
	VarTaxonomyValuePostsIndex = "taxonomy_value_posts_index"
	VarBody                    = "body"
)

// EngineConfig wires the collaborators an Engine renders with.
type EngineConfig struct {
	Protocol   protocol.Protocol
	TargetDir  string
	Config     map[string]any
	Dynamic    map[string]any
	Templates  *templates.Set
	Summarizer interfaces.Summarizer
	Logger     interfaces.Logger
}

// Engine renders index jobs for one format.
type Engine struct {
	protocol   protocol.Protocol
	targetDir  string
	config     map[string]any
	dynamic    map[string]any
	templates  *templates.Set
	summarizer interfaces.Summarizer
	logger     interfaces.Logger
}

// Output is one rendered aggregate. Key is set for every output; Path only
// for file outputs.
type Output struct {
	Job     Job
	Value   string
	Key     string
	Path    string
	Content string
}

// NewEngine constructs an Engine.
func NewEngine(cfg EngineConfig) *Engine {
	targetDir := cfg.TargetDir
	if targetDir == "" {
		targetDir = "target"
	}
	return &Engine{
		protocol:   cfg.Protocol,
		targetDir:  targetDir,
		config:     cfg.Config,
		dynamic:    cfg.Dynamic,
		templates:  cfg.Templates,
		summarizer: cfg.Summarizer,
		logger:     logging.Ensure(cfg.Logger),
	}
}

// Render produces the outputs of job. Value indexes yield one output per
// taxonomy value and value lists a single output.
func (e *Engine) Render(job Job, groups *taxonomy.Groups, pool *Pool) ([]Output, error) {
	group, ok := groups.Get(job.Taxonomy().ID)
	if !ok {
		return nil, fmt.Errorf("indexes: taxonomy %q has no group", job.Taxonomy().ID)
	}

	switch j := job.(type) {
	case VariableValueIndex:
		return e.renderValueIndexes(j, j.Tax, j.Def, group, pool, false)
	case FileValueIndex:
		return e.renderValueIndexes(j, j.Tax, j.Def, group, pool, true)
	case VariableValueList:
		return e.renderValueListOutput(j, j.Tax, j.Def, group, pool, false)
	case FileValueList:
		return e.renderValueListOutput(j, j.Tax, j.Def, group, pool, true)
	default:
		return nil, fmt.Errorf("indexes: unsupported job %T", job)
	}
}

func (e *Engine) renderValueIndexes(job Job, tax runtimeconfig.Taxonomy, def runtimeconfig.IndexDefinition, group *taxonomy.Group, pool *Pool, toFile bool) ([]Output, error) {
	buckets := group.Buckets()
	outputs := make([]Output, 0, len(buckets))
	for _, bucket := range buckets {
		content, err := e.RenderValueIndex(tax, def, bucket, pool)
		if err != nil {
			return nil, err
		}
		out := Output{
			Job:     job,
			Value:   bucket.Value,
			Key:     ValueIndexKey(tax.ID, def.ID, bucket.Normalized),
			Content: content,
		}
		if toFile {
			out.Path = e.ValueIndexPath(tax, def, bucket.Normalized)
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}

func (e *Engine) renderValueListOutput(job Job, tax runtimeconfig.Taxonomy, def runtimeconfig.ValueListDefinition, group *taxonomy.Group, pool *Pool, toFile bool) ([]Output, error) {
	content, err := e.RenderValueList(tax, def, group, pool)
	if err != nil {
		return nil, err
	}
	out := Output{
		Job:     job,
		Key:     ValueListKey(tax.ID, def.ID),
		Content: content,
	}
	if toFile {
		out.Path = e.ValueListPath(tax, def)
	}
	return []Output{out}, nil
}

// ValueIndexPath is the file a value index writes for one value.
func (e *Engine) ValueIndexPath(tax runtimeconfig.Taxonomy, def runtimeconfig.IndexDefinition, normalized string) string {
	suffix := e.protocol.FileSuffix()
	return filepath.Join(e.targetDir, suffix, tax.ID, normalized, def.ID+"."+outputSuffix(def.OutputSuffix, suffix))
}

// ValueListPath is the file a value list writes.
func (e *Engine) ValueListPath(tax runtimeconfig.Taxonomy, def runtimeconfig.ValueListDefinition) string {
	suffix := e.protocol.FileSuffix()
	return filepath.Join(e.targetDir, suffix, tax.ID, def.ID+"."+outputSuffix(def.OutputSuffix, suffix))
}

func outputSuffix(configured, fallback string) string {
	if configured = strings.TrimPrefix(strings.TrimSpace(configured), "."); configured != "" {
		return configured
	}
	return fallback
}

func taxonomyVars(tax runtimeconfig.Taxonomy) map[string]any {
	return map[string]any{
		VarTaxonomyID:    tax.ID,
		VarTaxonomyTitle: tax.Title,
		VarTitle:         tax.Title,
	}
}

func valueVars(bucket *taxonomy.Bucket) map[string]any {
	return map[string]any{
		VarTaxonomyValue:           bucket.Value,
		VarTaxonomyValueLower:      strings.ToLower(bucket.Value),
		VarTaxonomyValueNormalized: bucket.Normalized,
	}
}

// RenderValueIndex renders the documents of one taxonomy value through the
// definition's item and wrapper templates.
func (e *Engine) RenderValueIndex(tax runtimeconfig.Taxonomy, def runtimeconfig.IndexDefinition, bucket *taxonomy.Bucket, pool *Pool) (string, error) {
	itemTemplate, err := e.templates.Get(def.ItemTemplate)
	if err != nil {
		return "", err
	}
	wrapperTemplate, err := e.templates.Get(def.Template)
	if err != nil {
		return "", err
	}

	docs := append([]*descriptor.Descriptor(nil), bucket.Documents...)
	key := def.SortKey()
	ascending := def.Ascending()
	sort.SliceStable(docs, func(i, j int) bool {
		cmp := descriptor.Compare(docs[i], docs[j], key)
		if ascending {
			return cmp < 0
		}
		return cmp > 0
	})
	docs = docs[:def.Limit.Apply(len(docs))]

	tVars := taxonomyVars(tax)
	tvVars := valueVars(bucket)
	tvVars[VarTitle] = strings.TrimSpace(tax.Title + " " + bucket.Value)
	outputs := placeholder.Outputs(pool.Snapshot())

	var body strings.Builder
	for _, doc := range docs {
		scope := placeholder.Merge(
			placeholder.Config(e.config),
			placeholder.Taxonomy(tVars),
			placeholder.TaxonomyValue(tvVars),
			outputs,
			placeholder.Dynamic(e.dynamic),
			placeholder.Document(doc.Vars()),
		)
		filled := placeholder.Fill(doc.Body, scope)
		item := doc.WithBody(filled, e.summarize(doc, filled))
		body.WriteString(placeholder.Fill(itemTemplate, placeholder.Merge(
			placeholder.Config(e.config),
			placeholder.Taxonomy(tVars),
			placeholder.TaxonomyValue(tvVars),
			outputs,
			placeholder.Dynamic(e.dynamic),
			placeholder.Document(item.Vars()),
		)))
	}

	wrapperVars := map[string]any{VarBody: body.String()}
	base := placeholder.Merge(
		placeholder.Config(e.config),
		placeholder.Taxonomy(tVars),
		placeholder.TaxonomyValue(tvVars),
		outputs,
		placeholder.Dynamic(e.dynamic),
		placeholder.Document(wrapperVars),
	)
	custom := make(map[string]any, len(def.CustomVariables))
	for name, source := range def.CustomVariables {
		custom[name] = placeholder.Fill(source, base)
	}

	e.logger.Debug("indexes.value_index.rendered",
		"taxonomy", tax.ID,
		"index", def.ID,
		"value", bucket.Value,
		"documents", len(docs),
	)
	return placeholder.Fill(wrapperTemplate, placeholder.Merge(
		placeholder.Config(e.config),
		placeholder.Taxonomy(tVars),
		placeholder.TaxonomyValue(tvVars),
		outputs,
		placeholder.Dynamic(e.dynamic),
		placeholder.Document(wrapperVars),
		placeholder.Document(custom),
	)), nil
}

// RenderValueList renders every value of a taxonomy through the
// definition's item and wrapper templates.
func (e *Engine) RenderValueList(tax runtimeconfig.Taxonomy, def runtimeconfig.ValueListDefinition, group *taxonomy.Group, pool *Pool) (string, error) {
	itemTemplate, err := e.templates.Get(def.ItemTemplate)
	if err != nil {
		return "", err
	}
	wrapperTemplate, err := e.templates.Get(def.Template)
	if err != nil {
		return "", err
	}

	buckets := group.Buckets()
	if def.Sorted() {
		byCount := def.ByCount()
		ascending := def.Ascending()
		sort.SliceStable(buckets, func(i, j int) bool {
			var cmp int
			if byCount {
				cmp = buckets[i].Count() - buckets[j].Count()
			} else {
				cmp = strings.Compare(buckets[i].Value, buckets[j].Value)
			}
			if ascending {
				return cmp < 0
			}
			return cmp > 0
		})
	}
	buckets = buckets[:def.Limit.Apply(len(buckets))]

	tVars := taxonomyVars(tax)
	outputs := placeholder.Outputs(pool.Snapshot())

	var body strings.Builder
	for _, bucket := range buckets {
		vars := valueVars(bucket)
		vars[VarTaxonomyValuePostsCount] = bucket.Count()
		if def.InlinedIndexID != "" {
			inlined, err := pool.Get(ValueIndexKey(tax.ID, def.InlinedIndexID, bucket.Normalized))
			if err != nil {
				return "", err
			}
			vars[VarTaxonomyValuePostsIndex] = inlined
		}
		body.WriteString(placeholder.Fill(itemTemplate, placeholder.Merge(
			placeholder.Config(e.config),
			placeholder.Taxonomy(tVars),
			placeholder.TaxonomyValue(vars),
			outputs,
			placeholder.Dynamic(e.dynamic),
		)))
	}

	e.logger.Debug("indexes.value_list.rendered",
		"taxonomy", tax.ID,
		"list", def.ID,
		"values", len(buckets),
	)
	return placeholder.Fill(wrapperTemplate, placeholder.Merge(
		placeholder.Config(e.config),
		placeholder.Taxonomy(tVars),
		outputs,
		placeholder.Dynamic(e.dynamic),
		placeholder.Document(map[string]any{VarBody: body.String()}),
	)), nil
}

func (e *Engine) summarize(doc *descriptor.Descriptor, body string) string {
	if e.summarizer == nil {
		return ""
	}
	summary, err := e.summarizer.Summarize(body, e.protocol.String())
	if err != nil {
		e.logger.Warn("indexes.summary.failed", "path", doc.SourcePath, "error", err)
		return ""
	}
	return summary
}
