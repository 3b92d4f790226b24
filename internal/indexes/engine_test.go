package indexes

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-picogen/internal/descriptor"
	"github.com/goliatone/go-picogen/internal/protocol"
	"github.com/goliatone/go-picogen/internal/runtimeconfig"
	"github.com/goliatone/go-picogen/internal/taxonomy"
	"github.com/goliatone/go-picogen/internal/templates"
)

type firstLineSummarizer struct{}

func (firstLineSummarizer) Summarize(body, _ string) (string, error) {
	line, _, _ := strings.Cut(body, "\n")
	return line, nil
}

func post(path, title, date, tags string) *descriptor.Descriptor {
	return &descriptor.Descriptor{
		SourcePath:  path,
		Annotations: map[string]string{"title": title, "tags": tags},
		Body:        title + " body {{ site }}\nmore",
		Date:        date,
	}
}

func newTestEngine(t *testing.T, set map[string]string) *Engine {
	t.Helper()
	return NewEngine(EngineConfig{
		Protocol:   protocol.HTTP,
		TargetDir:  "target",
		Config:     map[string]any{"site": "Notes"},
		Dynamic:    map[string]any{"current_year": 2024},
		Templates:  templates.NewSet(set),
		Summarizer: firstLineSummarizer{},
	})
}

func group(t *testing.T, tax runtimeconfig.Taxonomy, docs ...*descriptor.Descriptor) (*taxonomy.Groups, *taxonomy.Group) {
	t.Helper()
	cfg := runtimeconfig.DefaultConfig()
	cfg.Taxonomies = []runtimeconfig.Taxonomy{tax}
	groups, _ := taxonomy.NewGrouper(&cfg, nil).Group(docs)
	g, ok := groups.Get(tax.ID)
	require.True(t, ok)
	return groups, g
}

func TestRenderValueIndexSortsByDateDescendingByDefault(t *testing.T) {
	tax := runtimeconfig.Taxonomy{ID: "tags", Title: "Tag"}
	_, g := group(t, tax,
		post("a.md", "A", "2024-01-01", "go"),
		post("c.md", "C", "2024-03-01", "go"),
		post("b.md", "B", "2024-02-01", "go"),
	)
	engine := newTestEngine(t, map[string]string{
		"list": "<ul>{{ body }}</ul>",
		"item": "<li>{{ title }}</li>",
	})
	bucket, _ := g.Bucket("go")

	desc, err := engine.RenderValueIndex(tax, runtimeconfig.IndexDefinition{ID: "posts", Template: "list", ItemTemplate: "item"}, bucket, NewPool())
	require.NoError(t, err)
	assert.Equal(t, "<ul><li>C</li><li>B</li><li>A</li></ul>", desc)

	asc, err := engine.RenderValueIndex(tax, runtimeconfig.IndexDefinition{ID: "posts", Template: "list", ItemTemplate: "item", OrderDirection: "asc", Limit: runtimeconfig.NewLimit(2)}, bucket, NewPool())
	require.NoError(t, err)
	assert.Equal(t, "<ul><li>A</li><li>B</li></ul>", asc)
}

func TestRenderValueIndexFillsBodySummaryAndCustomVariables(t *testing.T) {
	tax := runtimeconfig.Taxonomy{ID: "tags", Title: "Tag"}
	doc := post("a.md", "A", "2024-01-01", "go")
	_, g := group(t, tax, doc)
	engine := newTestEngine(t, map[string]string{
		"feed":  "{{ feed_title }}|{{ title }}|{{ body }}",
		"entry": "[{{ summary }}]({{ body }})",
	})
	bucket, _ := g.Bucket("go")

	out, err := engine.RenderValueIndex(tax, runtimeconfig.IndexDefinition{
		ID:              "feed",
		Template:        "feed",
		ItemTemplate:    "entry",
		CustomVariables: map[string]string{"feed_title": "{{ site }} / {{ taxonomy_value }} {{ unknown }}"},
	}, bucket, NewPool())
	require.NoError(t, err)
	assert.Equal(t, "Notes / go {{ unknown }}|Tag go|[A body Notes](A body Notes\nmore)", out)
	assert.Equal(t, "A body {{ site }}\nmore", doc.Body, "descriptors are never mutated")
}

func TestRenderValueListSortsByCount(t *testing.T) {
	tax := runtimeconfig.Taxonomy{ID: "tags", Title: "Tag"}
	_, g := group(t, tax,
		post("1.md", "1", "2024-01-01", "b, a"),
		post("2.md", "2", "2024-01-02", "a, c"),
		post("3.md", "3", "2024-01-03", "a, c"),
	)
	engine := newTestEngine(t, map[string]string{
		"cloud": "{{ body }}",
		"tag":   "{{ taxonomy_value }}:{{ taxonomy_value_posts_count }};",
	})

	out, err := engine.RenderValueList(tax, runtimeconfig.ValueListDefinition{ID: "cloud", Template: "cloud", ItemTemplate: "tag", OrderBy: "count", OrderDirection: "desc"}, g, NewPool())
	require.NoError(t, err)
	assert.Equal(t, "a:3;c:2;b:1;", out)

	alpha, err := engine.RenderValueList(tax, runtimeconfig.ValueListDefinition{ID: "cloud", Template: "cloud", ItemTemplate: "tag", OrderDirection: "asc"}, g, NewPool())
	require.NoError(t, err)
	assert.Equal(t, "a:3;b:1;c:2;", alpha)

	unsorted, err := engine.RenderValueList(tax, runtimeconfig.ValueListDefinition{ID: "cloud", Template: "cloud", ItemTemplate: "tag"}, g, NewPool())
	require.NoError(t, err)
	assert.Equal(t, "b:1;a:3;c:2;", unsorted)
}

func TestValueListInlinesVariableValueIndex(t *testing.T) {
	tax := runtimeconfig.Taxonomy{
		ID:    "topic",
		Title: "Topic",
		Indexes: []runtimeconfig.IndexDefinition{
			{ID: "posts", OutputType: runtimeconfig.OutputVariable, Template: "posts", ItemTemplate: "post"},
		},
		ValueLists: []runtimeconfig.ValueListDefinition{
			{ID: "all", OutputType: runtimeconfig.OutputFile, Template: "all", ItemTemplate: "value", InlinedIndexID: "posts"},
		},
	}
	groups, _ := group(t, tax,
		&descriptor.Descriptor{SourcePath: "go.md", Annotations: map[string]string{"title": "Go", "topic": "Go Lang"}, Date: "2024-01-01"},
		&descriptor.Descriptor{SourcePath: "rust.md", Annotations: map[string]string{"title": "Rust", "topic": "rust"}, Date: "2024-01-02"},
	)
	engine := newTestEngine(t, map[string]string{
		"posts": "<ol>{{ body }}</ol>",
		"post":  "<li>{{ title }}</li>",
		"all":   "<section>{{ body }}</section>",
		"value": "<h2>{{ taxonomy_value_normalized }}</h2>{{ taxonomy_value_posts_index }}",
	})
	plan := Classify([]runtimeconfig.Taxonomy{tax})
	pool := NewPool()

	for _, job := range plan.VariablePhase() {
		outputs, err := engine.Render(job, groups, pool)
		require.NoError(t, err)
		for _, out := range outputs {
			require.NoError(t, pool.Put(out.Key, out.Content))
		}
	}
	goIndex, err := pool.Get("topic_posts_go-lang")
	require.NoError(t, err)

	fileJobs := plan.FilePhase()
	require.Len(t, fileJobs, 1)
	outputs, err := engine.Render(fileJobs[0], groups, pool)
	require.NoError(t, err)
	require.Len(t, outputs, 1)
	assert.Contains(t, outputs[0].Content, goIndex)
	assert.Equal(t, "<section><h2>go-lang</h2><ol><li>Go</li></ol><h2>rust</h2><ol><li>Rust</li></ol></section>", outputs[0].Content)
	assert.Equal(t, filepath.Join("target", "html", "topic", "all.html"), outputs[0].Path)
}

func TestValueListFailsOnUnresolvedInlineReference(t *testing.T) {
	tax := runtimeconfig.Taxonomy{ID: "topic", Title: "Topic"}
	_, g := group(t, tax, &descriptor.Descriptor{SourcePath: "a.md", Annotations: map[string]string{"topic": "go"}})
	engine := newTestEngine(t, map[string]string{"all": "{{ body }}", "value": "{{ taxonomy_value }}"})

	_, err := engine.RenderValueList(tax, runtimeconfig.ValueListDefinition{ID: "all", Template: "all", ItemTemplate: "value", InlinedIndexID: "posts"}, g, NewPool())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnresolvedInlineReference))
	assert.True(t, goerrors.IsCategory(err, goerrors.CategoryNotFound))
}

func TestRenderFailsOnMissingTemplate(t *testing.T) {
	tax := runtimeconfig.Taxonomy{ID: "tags", Title: "Tag"}
	_, g := group(t, tax, post("a.md", "A", "2024-01-01", "go"))
	bucket, _ := g.Bucket("go")

	_, err := newTestEngine(t, map[string]string{"list": "{{ body }}"}).
		RenderValueIndex(tax, runtimeconfig.IndexDefinition{ID: "posts", Template: "list", ItemTemplate: "missing"}, bucket, NewPool())
	assert.ErrorIs(t, err, templates.ErrTemplateNotFound)
}

func TestValueIndexFilePaths(t *testing.T) {
	engine := newTestEngine(t, nil)
	tax := runtimeconfig.Taxonomy{ID: "tags"}

	assert.Equal(t, filepath.Join("target", "html", "tags", "go", "posts.html"),
		engine.ValueIndexPath(tax, runtimeconfig.IndexDefinition{ID: "posts"}, "go"))
	assert.Equal(t, filepath.Join("target", "html", "tags", "go", "feed.xml"),
		engine.ValueIndexPath(tax, runtimeconfig.IndexDefinition{ID: "feed", OutputSuffix: ".xml"}, "go"))
}

func TestClassifyBucketsByKindAndOutput(t *testing.T) {
	plan := Classify([]runtimeconfig.Taxonomy{{
		ID: "tags",
		Indexes: []runtimeconfig.IndexDefinition{
			{ID: "a", OutputType: runtimeconfig.OutputFile},
			{ID: "b", OutputType: runtimeconfig.OutputVariable},
		},
		ValueLists: []runtimeconfig.ValueListDefinition{
			{ID: "c", OutputType: runtimeconfig.OutputVariable},
			{ID: "d", OutputType: runtimeconfig.OutputFile},
		},
	}})

	assert.Equal(t, 4, plan.Len())
	variable := plan.VariablePhase()
	require.Len(t, variable, 2)
	assert.Equal(t, KindValueIndex, variable[0].Kind())
	assert.Equal(t, "b", variable[0].ID())
	assert.Equal(t, KindValueList, variable[1].Kind())

	file := plan.FilePhase()
	require.Len(t, file, 2)
	assert.Equal(t, "a", file[0].ID())
	assert.Equal(t, runtimeconfig.OutputFile, file[1].Output())
}

func TestPoolIsAppendOnly(t *testing.T) {
	pool := NewPool()
	require.NoError(t, pool.Put("tags_cloud", "one"))
	assert.ErrorIs(t, pool.Put("tags_cloud", "two"), ErrDuplicateOutput)

	value, err := pool.Get("tags_cloud")
	require.NoError(t, err)
	assert.Equal(t, "one", value)
	assert.Equal(t, []string{"tags_cloud"}, pool.Keys())
}
