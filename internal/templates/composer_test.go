package templates

import (
	"context"
	"testing"
	"testing/fstest"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeSubstitutesChildIntoParentBody(t *testing.T) {
	set, err := Compose(map[string]string{
		"base":      "<head>{{ body }}</head>",
		"post_base": "<p>hi</p>",
	}, nil)
	require.NoError(t, err)

	post, err := set.Get("post")
	require.NoError(t, err)
	assert.Equal(t, "<head><p>hi</p></head>", post)

	base, err := set.Get("base")
	require.NoError(t, err)
	assert.Equal(t, "<head><p>hi</p></head>", base)
}

func TestComposeOnlyFillsBody(t *testing.T) {
	set, err := Compose(map[string]string{
		"base":      "<title>{{ title }}</title>{{body}}",
		"post_base": "<h1>{{ title }}</h1>{{ body }}",
	}, nil)
	require.NoError(t, err)

	post, err := set.Get("post")
	require.NoError(t, err)
	assert.Equal(t, "<title>{{ title }}</title><h1>{{ title }}</h1>{{ body }}", post)
}

func TestComposeSiblingsUseRawParent(t *testing.T) {
	set, err := Compose(map[string]string{
		"base":      "[{{ body }}]",
		"page_base": "page",
		"post_base": "post",
	}, nil)
	require.NoError(t, err)

	page, _ := set.Get("page")
	post, _ := set.Get("post")
	assert.Equal(t, "[page]", page)
	assert.Equal(t, "[post]", post)
}

func TestComposeKeepsChildWithoutParentStandalone(t *testing.T) {
	set, err := Compose(map[string]string{
		"cloud_item": "<li>{{ taxonomy_value }}</li>",
		"cloud":      "<ul>{{ body }}</ul>",
	}, nil)
	require.NoError(t, err)

	item, err := set.Get("cloud_item")
	require.NoError(t, err)
	assert.Equal(t, "<li>{{ taxonomy_value }}</li>", item)

	cloud, err := set.Get("cloud")
	require.NoError(t, err)
	assert.Equal(t, "<ul>{{ body }}</ul>", cloud)
	assert.False(t, set.Has("item"))
}

func TestComposeTreatsNestedParentAsStandalone(t *testing.T) {
	set, err := Compose(map[string]string{"post_base_wide": "x", "base_wide": "<main>{{ body }}</main>"}, nil)
	require.NoError(t, err)
	assert.True(t, set.Has("post_base_wide"))
	assert.False(t, set.Has("post"))
}

func TestSetGetMissingTemplate(t *testing.T) {
	set := NewSet(map[string]string{"default": "x"})
	_, err := set.Get("nope")
	assert.ErrorIs(t, err, ErrTemplateNotFound)
	assert.True(t, goerrors.IsCategory(err, goerrors.CategoryNotFound))
	assert.True(t, set.Has("default"))
	assert.Equal(t, []string{"default"}, set.Names())
}

func TestComposerLoadReadsFlatDirectory(t *testing.T) {
	files := fstest.MapFS{
		"templates/html/default.html":      {Data: []byte("<main>{{ body }}</main>")},
		"templates/html/post_default.html": {Data: []byte("<article>{{ body }}</article>")},
		"templates/html/item.partial.html": {Data: []byte("<li>{{ title }}</li>")},
		"templates/html/nested/skip.html":  {Data: []byte("ignored")},
		"templates/gmi/default.gmi":        {Data: []byte("{{ body }}")},
	}

	set, err := NewComposer(files, nil).Load(context.Background(), "templates/html")
	require.NoError(t, err)

	assert.Equal(t, []string{"default", "item", "post"}, set.Names())
	post, err := set.Get("post")
	require.NoError(t, err)
	assert.Equal(t, "<main><article>{{ body }}</article></main>", post)
}
