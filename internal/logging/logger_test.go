package logging

import (
	"context"
	"testing"

	"github.com/goliatone/go-picogen/pkg/interfaces"
)

type fieldRecorder struct {
	fields []map[string]any
}

func (r *fieldRecorder) Trace(string, ...any) {}
func (r *fieldRecorder) Debug(string, ...any) {}
func (r *fieldRecorder) Info(string, ...any)  {}
func (r *fieldRecorder) Warn(string, ...any)  {}
func (r *fieldRecorder) Error(string, ...any) {}
func (r *fieldRecorder) Fatal(string, ...any) {}

func (r *fieldRecorder) WithFields(fields map[string]any) interfaces.Logger {
	r.fields = append(r.fields, fields)
	return r
}

func (r *fieldRecorder) WithContext(context.Context) interfaces.Logger { return r }

type namedProvider struct {
	names  []string
	logger interfaces.Logger
}

func (p *namedProvider) GetLogger(name string) interfaces.Logger {
	p.names = append(p.names, name)
	return p.logger
}

func TestForWithoutProviderDiscards(t *testing.T) {
	logger := For(nil, Generator)
	if _, ok := logger.(discard); !ok {
		t.Fatalf("expected discard logger, got %T", logger)
	}
	logger.WithContext(context.Background()).Info("dropped")
}

func TestForTagsModule(t *testing.T) {
	rec := &fieldRecorder{}
	provider := &namedProvider{logger: rec}

	For(provider, Templates)

	if len(provider.names) != 1 || provider.names[0] != "picogen.templates" {
		t.Fatalf("unexpected provider lookups %v", provider.names)
	}
	if len(rec.fields) != 1 || rec.fields[0]["module"] != "picogen.templates" {
		t.Fatalf("expected module field, got %v", rec.fields)
	}
}

func TestForNilProviderLoggerFallsBack(t *testing.T) {
	provider := &namedProvider{}
	if _, ok := For(provider, "").(discard); !ok {
		t.Fatalf("expected discard logger when provider returns nil")
	}
	if provider.names[0] != string(Root) {
		t.Fatalf("expected blank module to resolve to root, got %v", provider.names)
	}
}

func TestModuleChild(t *testing.T) {
	cases := map[string]struct {
		base    Module
		segment string
		want    Module
	}{
		"nested":  {Root, "commands", "picogen.commands"},
		"dotted":  {Root.Child("commands"), ".static ", "picogen.commands.static"},
		"blank":   {Watch, "  ", Watch},
		"no base": {"", "custom", "custom"},
	}
	for name, tc := range cases {
		if got := tc.base.Child(tc.segment); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", name, tc.want, got)
		}
	}
}

func TestDocumentSkipsBlankValues(t *testing.T) {
	rec := &fieldRecorder{}

	Document(rec, "content/posts/hello.md", " ", "post")

	if len(rec.fields) != 1 {
		t.Fatalf("expected one WithFields call, got %d", len(rec.fields))
	}
	got := rec.fields[0]
	if got["path"] != "content/posts/hello.md" || got["template"] != "post" {
		t.Fatalf("unexpected fields %v", got)
	}
	if _, ok := got["format"]; ok {
		t.Fatalf("blank format should be omitted, got %v", got)
	}
}

func TestWithFieldsCopiesInput(t *testing.T) {
	rec := &fieldRecorder{}
	fields := map[string]any{"run": 1}

	WithFields(rec, fields)
	fields["run"] = 2

	if rec.fields[0]["run"] != 1 {
		t.Fatalf("expected WithFields to pass a copy, got %v", rec.fields[0])
	}
}

func TestContextFieldsMerge(t *testing.T) {
	ctx := ContextWithFields(context.Background(), map[string]any{"run_id": "a"})
	ctx = ContextWithFields(ctx, map[string]any{"format": "gemini"})

	fields := ContextFields(ctx)
	if fields["run_id"] != "a" || fields["format"] != "gemini" {
		t.Fatalf("expected merged fields, got %v", fields)
	}
	fields["run_id"] = "mutated"
	if ContextFields(ctx)["run_id"] != "a" {
		t.Fatalf("expected ContextFields to return a copy")
	}
}
