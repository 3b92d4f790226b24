package picogen_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-picogen"
	"github.com/goliatone/go-picogen/internal/generator"
)

type memoryWriter struct {
	files map[string]string
}

func (w *memoryWriter) EnsureDir(context.Context, string) error { return nil }
func (w *memoryWriter) RemoveAll(context.Context, string) error { return nil }

func (w *memoryWriter) WriteFile(_ context.Context, req generator.WriteFileRequest) error {
	data, err := io.ReadAll(req.Content)
	if err != nil {
		return err
	}
	if w.files == nil {
		w.files = map[string]string{}
	}
	w.files[req.Path] = string(data)
	return nil
}

func TestModuleGeneratesFromSource(t *testing.T) {
	cfg := picogen.DefaultConfig()
	cfg.DefaultTemplate = "page"
	cfg.Variables = map[string]any{"site_title": "Capsule"}

	source := fstest.MapFS{
		"content/index.md":         {Data: []byte("<!-- title: Home -->\nHello from {{ site_title }}.\n")},
		"templates/gmi/page.gmi":   {Data: []byte("# {{ title }}\n\n{{ body }}")},
		"templates/html/page.html": {Data: []byte("<h1>{{ title }}</h1>{{ body }}")},
	}
	writer := &memoryWriter{}

	module, err := picogen.New(&cfg, picogen.WithSource(source), picogen.WithWriter(writer))
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	if module.Config() != &cfg {
		t.Fatalf("expected module to keep the configuration")
	}

	result, err := module.Generate(context.Background(), picogen.Gemini, picogen.HTTP)
	if err != nil {
		t.Fatalf("Generate() returned error: %v", err)
	}
	if len(result.Formats) != 2 || result.Formats[0].Protocol != picogen.Gemini {
		t.Fatalf("expected gemini then http, got %+v", result.Formats)
	}

	var capsule, page string
	for path, body := range writer.files {
		switch {
		case strings.HasSuffix(path, "index.gmi"):
			capsule = body
		case strings.HasSuffix(path, "index.html"):
			page = body
		}
	}
	if !strings.HasPrefix(capsule, "# Home\n") || !strings.Contains(capsule, "Hello from Capsule.") {
		t.Fatalf("unexpected gemtext output %q", capsule)
	}
	if !strings.Contains(page, "<h1>Home</h1><p>Hello from Capsule.</p>") {
		t.Fatalf("unexpected html output %q", page)
	}
}

func TestModuleGenerateRequiresProtocols(t *testing.T) {
	cfg := picogen.DefaultConfig()
	module, err := picogen.New(&cfg, picogen.WithSource(fstest.MapFS{}), picogen.WithWriter(&memoryWriter{}))
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	if _, err := module.Generate(context.Background()); !errors.Is(err, generator.ErrNoProtocols) {
		t.Fatalf("expected ErrNoProtocols, got %v", err)
	}
}

func TestNewRejectsMissingConfig(t *testing.T) {
	if _, err := picogen.New(nil); !errors.Is(err, generator.ErrSiteConfigRequired) {
		t.Fatalf("expected ErrSiteConfigRequired, got %v", err)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := picogen.DefaultConfig()
	cfg.Taxonomies = []picogen.Taxonomy{{ID: "tags", Title: "Tag"}, {ID: "tags", Title: "Again"}}

	if _, err := picogen.New(&cfg); !errors.Is(err, picogen.ErrDuplicateTaxonomy) {
		t.Fatalf("expected ErrDuplicateTaxonomy, got %v", err)
	}
}

func TestParseProtocols(t *testing.T) {
	targets, err := picogen.ParseProtocols("http", "gemini")
	if err != nil {
		t.Fatalf("ParseProtocols() returned error: %v", err)
	}
	if len(targets) != 2 || targets[0] != picogen.HTTP || targets[1] != picogen.Gemini {
		t.Fatalf("unexpected protocols %v", targets)
	}
	if _, err := picogen.ParseProtocols("gopher"); !errors.Is(err, picogen.ErrUnknownProtocol) {
		t.Fatalf("expected ErrUnknownProtocol, got %v", err)
	}
}
