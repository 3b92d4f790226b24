// Package gologger exposes github.com/goliatone/go-logger as a picogen
// logger provider.
package gologger

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-picogen/internal/logging"
	"github.com/goliatone/go-picogen/internal/runtimeconfig"
	"github.com/goliatone/go-picogen/pkg/interfaces"
)

// Config selects the level, encoding and focus of the go-logger root.
type Config struct {
	Level     string
	Format    string
	AddSource bool
	// Focus restricts output to the named loggers, e.g. "picogen.watch".
	Focus []string
}

func jsonEncoder() glog.Option { return glog.WithLoggerTypeJSON() }

var encoders = map[string]func() glog.Option{
	"":        jsonEncoder,
	"json":    jsonEncoder,
	"console": func() glog.Option { return glog.WithLoggerTypeConsole() },
	"pretty":  func() glog.Option { return glog.WithLoggerTypePretty() },
}

var levels = map[string]string{
	"trace":   glog.Trace,
	"debug":   glog.Debug,
	"info":    glog.Info,
	"warn":    glog.Warn,
	"warning": glog.Warn,
	"error":   glog.Error,
	"fatal":   glog.Fatal,
}

// Provider hands out named go-logger children. Children are cached so a
// watch session reuses the same logger across rebuilds.
type Provider struct {
	root *glog.BaseLogger

	mu       sync.Mutex
	children map[string]interfaces.Logger
}

var _ interfaces.LoggerProvider = (*Provider)(nil)

// NewProvider builds the go-logger root from cfg. Unknown levels fall back
// to the go-logger default; unknown formats are rejected.
func NewProvider(cfg Config) (*Provider, error) {
	encoder, ok := encoders[strings.ToLower(strings.TrimSpace(cfg.Format))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", runtimeconfig.ErrLoggingFormatInvalid, cfg.Format)
	}
	options := []glog.Option{encoder()}
	if level, ok := levels[strings.ToLower(strings.TrimSpace(cfg.Level))]; ok {
		options = append(options, glog.WithLevel(level))
	}
	if cfg.AddSource {
		options = append(options, glog.WithAddSource(true))
	}

	root := glog.NewLogger(options...)
	focus := slices.DeleteFunc(trimAll(cfg.Focus), func(name string) bool { return name == "" })
	if len(focus) > 0 {
		root.Focus(focus...)
	}
	return &Provider{root: root, children: map[string]interfaces.Logger{}}, nil
}

// GetLogger returns the child registered under name, or the root logger for
// a blank name.
func (p *Provider) GetLogger(name string) interfaces.Logger {
	if p == nil || p.root == nil {
		return logging.NoOp()
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return adapt(p.root)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if child, ok := p.children[name]; ok {
		return child
	}
	child := adapt(p.root.GetLogger(name))
	p.children[name] = child
	return child
}

func trimAll(values []string) []string {
	out := make([]string, len(values))
	for i, value := range values {
		out[i] = strings.TrimSpace(value)
	}
	return out
}

// pairLogger covers go-logger values that only accept key/value pairs.
type pairLogger interface {
	With(args ...any) *glog.BaseLogger
}

type glogEntry struct {
	inner glog.Logger
}

func adapt(inner glog.Logger) interfaces.Logger {
	if inner == nil {
		return logging.NoOp()
	}
	return glogEntry{inner: inner}
}

func (e glogEntry) Trace(msg string, args ...any) { e.inner.Trace(msg, args...) }
func (e glogEntry) Debug(msg string, args ...any) { e.inner.Debug(msg, args...) }
func (e glogEntry) Info(msg string, args ...any)  { e.inner.Info(msg, args...) }
func (e glogEntry) Warn(msg string, args ...any)  { e.inner.Warn(msg, args...) }
func (e glogEntry) Error(msg string, args ...any) { e.inner.Error(msg, args...) }
func (e glogEntry) Fatal(msg string, args ...any) { e.inner.Fatal(msg, args...) }

func (e glogEntry) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return e
	}
	switch inner := e.inner.(type) {
	case glog.FieldsLogger:
		return adapt(inner.WithFields(maps.Clone(fields)))
	case pairLogger:
		keys := slices.Sorted(maps.Keys(fields))
		pairs := make([]any, 0, 2*len(keys))
		for _, key := range keys {
			pairs = append(pairs, key, fields[key])
		}
		return adapt(inner.With(pairs...))
	}
	return e
}

func (e glogEntry) WithContext(ctx context.Context) interfaces.Logger {
	if ctx == nil {
		return e
	}
	return adapt(e.inner.WithContext(ctx))
}
