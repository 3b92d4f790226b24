package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-picogen/internal/descriptor"
	"github.com/goliatone/go-picogen/internal/runtimeconfig"
)

func doc(path string, annotations map[string]string) *descriptor.Descriptor {
	return &descriptor.Descriptor{SourcePath: path, Annotations: annotations}
}

func testConfig() *runtimeconfig.Config {
	cfg := runtimeconfig.DefaultConfig()
	cfg.DefaultTemplate = "page"
	cfg.Taxonomies = []runtimeconfig.Taxonomy{
		{ID: "tags", Title: "Tag", DocumentTemplate: "post"},
		{ID: "series", Title: "Series", DocumentTemplate: "episode"},
		{ID: "topic", Title: "Topic"},
	}
	return &cfg
}

func TestSplitValuesTrimsAndDropsEmptyEntries(t *testing.T) {
	assert.Equal(t, []string{"x", "y", "z"}, SplitValues("x, y,z"))
	assert.Equal(t, []string{"go"}, SplitValues(" go ,, "))
	assert.Empty(t, SplitValues(""))
}

func TestGroupBuildsBucketsInFirstSeenOrder(t *testing.T) {
	a := doc("a.md", map[string]string{"tags": "go, cli"})
	b := doc("b.md", map[string]string{"tags": "cli"})
	c := doc("c.md", map[string]string{"topic": "Rust Lang"})

	groups, _ := NewGrouper(testConfig(), nil).Group([]*descriptor.Descriptor{a, b, c})

	tags, ok := groups.Get("tags")
	require.True(t, ok)
	require.Equal(t, 2, tags.Len())
	buckets := tags.Buckets()
	assert.Equal(t, "go", buckets[0].Value)
	assert.Equal(t, "cli", buckets[1].Value)
	assert.Equal(t, []*descriptor.Descriptor{a, b}, buckets[1].Documents)

	topic, _ := groups.Get("topic")
	bucket, ok := topic.Bucket("Rust Lang")
	require.True(t, ok)
	assert.Equal(t, "rust-lang", bucket.Normalized)
}

func TestGroupKeepsEmptyTaxonomies(t *testing.T) {
	groups, _ := NewGrouper(testConfig(), nil).Group(nil)

	series, ok := groups.Get("series")
	require.True(t, ok)
	assert.Zero(t, series.Len())
	assert.Len(t, groups.All(), 3)
}

func TestGroupResolvesTemplates(t *testing.T) {
	explicit := doc("explicit.md", map[string]string{"tags": "go", "template": "custom"})
	tagged := doc("tagged.md", map[string]string{"tags": "go"})
	both := doc("both.md", map[string]string{"tags": "go", "series": "intro"})
	plain := doc("plain.md", map[string]string{"topic": "misc"})

	_, warnings := NewGrouper(testConfig(), nil).Group([]*descriptor.Descriptor{explicit, tagged, both, plain})

	assert.Equal(t, "custom", explicit.Template)
	assert.Equal(t, "post", tagged.Template)
	assert.Equal(t, "episode", both.Template)
	assert.Equal(t, "page", plain.Template)

	require.Len(t, warnings, 2)
	assert.Equal(t, "both.md", warnings[0].Path)
	assert.Equal(t, "plain.md", warnings[1].Path)
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"Go":          "go",
		"Small  Web":  "small-web",
		"Čeština":     "cestina",
		"Ölçü":        "olcu",
		" Rust Lang ": "rust-lang",
		"C++":         "c",
		"++":          "++",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), "Normalize(%q)", in)
	}
}

func TestNormalizedFormsCanCollide(t *testing.T) {
	a := doc("a.md", map[string]string{"tags": "C"})
	b := doc("b.md", map[string]string{"tags": "C++"})

	groups, _ := NewGrouper(testConfig(), nil).Group([]*descriptor.Descriptor{a, b})
	tags, _ := groups.Get("tags")

	require.Equal(t, 2, tags.Len(), "raw values stay distinct buckets")
	buckets := tags.Buckets()
	assert.Equal(t, buckets[0].Normalized, buckets[1].Normalized)
}
