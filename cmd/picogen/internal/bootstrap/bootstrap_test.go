package bootstrap

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-picogen/internal/runtimeconfig"
)

func TestResolveConfigPathPrefersExplicit(t *testing.T) {
	root := t.TempDir()
	if got := ResolveConfigPath(root, "site.yml"); got != filepath.Join(root, "site.yml") {
		t.Fatalf("expected explicit path under root, got %s", got)
	}
	abs := filepath.Join(t.TempDir(), "other.json")
	if got := ResolveConfigPath(root, abs); got != abs {
		t.Fatalf("expected absolute path to be kept, got %s", got)
	}
}

func TestResolveConfigPathProbesCandidates(t *testing.T) {
	root := t.TempDir()
	if got := ResolveConfigPath(root, ""); got != filepath.Join(root, "config.json") {
		t.Fatalf("expected config.json fallback, got %s", got)
	}
	if err := os.WriteFile(filepath.Join(root, "config.yaml"), []byte("site_title: x\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if got := ResolveConfigPath(root, ""); got != filepath.Join(root, "config.yaml") {
		t.Fatalf("expected config.yaml, got %s", got)
	}
}

func TestBuildModuleMissingConfig(t *testing.T) {
	_, err := BuildModule(Options{Root: t.TempDir()})
	if !errors.Is(err, runtimeconfig.ErrConfigNotFound) {
		t.Fatalf("expected ErrConfigNotFound, got %v", err)
	}
}

func TestBuildModuleWiresHandlers(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "config.json"), []byte(`{"site_title": "Notes"}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	var out bytes.Buffer
	module, err := BuildModule(Options{Root: root, Stdout: &out, LogLevel: "debug"})
	if err != nil {
		t.Fatalf("build module: %v", err)
	}
	if module.Service == nil || module.Build == nil || module.Clean == nil {
		t.Fatalf("expected service and handlers, got %+v", module)
	}
	if module.Config.TemplateVariables()["site_title"] != "Notes" {
		t.Fatalf("expected configuration to be loaded, got %v", module.Config.Variables)
	}
	module.Logger.Debug("bootstrap.ready")
	if !strings.Contains(out.String(), "bootstrap.ready") {
		t.Fatalf("expected console provider to write to stdout, got %q", out.String())
	}
}

func TestNewLoggerProviderSelection(t *testing.T) {
	if _, err := NewLoggerProvider(runtimeconfig.LoggingConfig{}, "loud", "", nil); err == nil {
		t.Fatal("expected unknown level to be rejected")
	}
	if _, err := NewLoggerProvider(runtimeconfig.LoggingConfig{}, "", "json", nil); err != nil {
		t.Fatalf("expected go-logger json provider, got %v", err)
	}
	if _, err := NewLoggerProvider(runtimeconfig.LoggingConfig{Provider: "syslog"}, "", "", nil); !errors.Is(err, runtimeconfig.ErrLoggingProviderUnknown) {
		t.Fatalf("expected ErrLoggingProviderUnknown, got %v", err)
	}
}
