package staticcmd

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-picogen/internal/generator"
	"github.com/goliatone/go-picogen/internal/protocol"
)

func TestBuildSiteHandler_Execute_Build(t *testing.T) {
	cmd := loadBuildFixture(t, "build_basic.json")

	var capturedOpts generator.BuildOptions
	callbackInvoked := false

	svc := &fakeGeneratorService{
		buildFunc: func(ctx context.Context, opts generator.BuildOptions) (*generator.BuildResult, error) {
			capturedOpts = opts
			return &generator.BuildResult{Formats: []generator.FormatResult{{Protocol: protocol.HTTP, Documents: 3}}}, nil
		},
	}

	handler := NewBuildSiteHandler(svc, nil)

	cmd.ResultCallback = func(env ResultEnvelope) {
		callbackInvoked = true
		if env.Result == nil {
			t.Fatalf("expected build result, got nil")
		}
		if env.Result.Formats[0].Documents != 3 {
			t.Fatalf("expected 3 documents, got %d", env.Result.Formats[0].Documents)
		}
		if env.Metadata["operation"] != "build" {
			t.Fatalf("expected operation build, got %v", env.Metadata["operation"])
		}
	}

	if err := handler.Execute(context.Background(), cmd); err != nil {
		t.Fatalf("execute build: %v", err)
	}

	if capturedOpts.DryRun {
		t.Fatalf("expected DryRun false")
	}
	want := []protocol.Protocol{protocol.HTTP, protocol.Gemini}
	if diff := cmp.Diff(want, capturedOpts.Protocols); diff != "" {
		t.Fatalf("protocols mismatch (-want +got):\n%s", diff)
	}
	if !callbackInvoked {
		t.Fatal("expected callback to be invoked")
	}
}

func TestBuildSiteHandler_Execute_DryRun(t *testing.T) {
	cmd := loadBuildFixture(t, "build_dry_run.json")

	var capturedOpts generator.BuildOptions
	svc := &fakeGeneratorService{
		buildFunc: func(ctx context.Context, opts generator.BuildOptions) (*generator.BuildResult, error) {
			capturedOpts = opts
			return &generator.BuildResult{DryRun: true}, nil
		},
	}

	var operation any
	cmd.ResultCallback = func(env ResultEnvelope) {
		operation = env.Metadata["operation"]
	}

	if err := NewBuildSiteHandler(svc, nil).Execute(context.Background(), cmd); err != nil {
		t.Fatalf("execute dry run: %v", err)
	}
	if !capturedOpts.DryRun {
		t.Fatal("expected DryRun to be forwarded")
	}
	if operation != "dry_run" {
		t.Fatalf("expected operation dry_run, got %v", operation)
	}
}

func TestBuildSiteHandler_Execute_PropagatesBuildError(t *testing.T) {
	buildErr := goerrors.Wrap(errors.New("missing template"), goerrors.CategoryNotFound, "template post is not defined")
	svc := &fakeGeneratorService{
		buildFunc: func(ctx context.Context, opts generator.BuildOptions) (*generator.BuildResult, error) {
			return &generator.BuildResult{}, buildErr
		},
	}

	callbackInvoked := false
	cmd := BuildSiteCommand{
		Protocols:      []string{"http"},
		ResultCallback: func(ResultEnvelope) { callbackInvoked = true },
	}

	err := NewBuildSiteHandler(svc, nil).Execute(context.Background(), cmd)
	if !goerrors.IsCategory(err, goerrors.CategoryNotFound) {
		t.Fatalf("expected not found category to survive, got %v", err)
	}
	if !callbackInvoked {
		t.Fatal("expected callback to receive the partial result")
	}
}

func TestBuildSiteHandler_Execute_ServiceRequired(t *testing.T) {
	err := NewBuildSiteHandler(nil, nil).Execute(context.Background(), BuildSiteCommand{Protocols: []string{"http"}})
	if !errors.Is(err, ErrServiceRequired) {
		t.Fatalf("expected ErrServiceRequired, got %v", err)
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
}

func TestBuildSiteCommandValidate(t *testing.T) {
	cmd := loadBuildFixture(t, "build_unknown_protocol.json")
	if err := cmd.Validate(); err == nil {
		t.Fatal("expected validation error for unknown protocol")
	}
	if err := (BuildSiteCommand{}).Validate(); err == nil {
		t.Fatal("expected validation error when no protocol is given")
	}
	if err := (BuildSiteCommand{Protocols: []string{"gemini"}}).Validate(); err != nil {
		t.Fatalf("expected gemini to validate, got %v", err)
	}
}

func TestBuildSiteHandler_Execute_RejectsInvalidCommand(t *testing.T) {
	called := false
	svc := &fakeGeneratorService{
		buildFunc: func(ctx context.Context, opts generator.BuildOptions) (*generator.BuildResult, error) {
			called = true
			return &generator.BuildResult{}, nil
		},
	}

	err := NewBuildSiteHandler(svc, nil).Execute(context.Background(), loadBuildFixture(t, "build_unknown_protocol.json"))
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if called {
		t.Fatal("expected build not to run")
	}
}

func TestCleanSiteHandler_Execute(t *testing.T) {
	var cleaned []protocol.Protocol
	svc := &fakeGeneratorService{
		cleanFunc: func(ctx context.Context, target protocol.Protocol) error {
			cleaned = append(cleaned, target)
			return nil
		},
	}

	handler := NewCleanSiteHandler(svc, nil)
	if err := handler.Execute(context.Background(), CleanSiteCommand{Protocols: []string{"gemini", "http"}}); err != nil {
		t.Fatalf("execute clean: %v", err)
	}
	if diff := cmp.Diff([]protocol.Protocol{protocol.Gemini, protocol.HTTP}, cleaned); diff != "" {
		t.Fatalf("cleaned protocols mismatch (-want +got):\n%s", diff)
	}
}

func TestCleanSiteCommandValidate(t *testing.T) {
	if err := (CleanSiteCommand{Protocols: []string{"finger"}}).Validate(); err == nil {
		t.Fatal("expected validation error for unknown protocol")
	}
}

func loadBuildFixture(t *testing.T, name string) BuildSiteCommand {
	t.Helper()
	var cmd BuildSiteCommand
	loadFixture(t, name, &cmd)
	return cmd
}

func loadFixture(t *testing.T, name string, target any) {
	t.Helper()
	path := filepath.Join("testdata", name)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		t.Fatalf("unmarshal fixture %s: %v", name, err)
	}
}

type fakeGeneratorService struct {
	buildFunc func(context.Context, generator.BuildOptions) (*generator.BuildResult, error)
	cleanFunc func(context.Context, protocol.Protocol) error
}

func (f *fakeGeneratorService) Build(ctx context.Context, opts generator.BuildOptions) (*generator.BuildResult, error) {
	if f.buildFunc != nil {
		return f.buildFunc(ctx, opts)
	}
	return &generator.BuildResult{}, nil
}

func (f *fakeGeneratorService) Clean(ctx context.Context, target protocol.Protocol) error {
	if f.cleanFunc != nil {
		return f.cleanFunc(ctx, target)
	}
	return nil
}
