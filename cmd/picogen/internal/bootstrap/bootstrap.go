package bootstrap

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/goliatone/go-picogen"
	"github.com/goliatone/go-picogen/internal/commands"
	staticcmd "github.com/goliatone/go-picogen/internal/commands/static"
	"github.com/goliatone/go-picogen/internal/generator"
	"github.com/goliatone/go-picogen/internal/logging"
	"github.com/goliatone/go-picogen/internal/logging/console"
	"github.com/goliatone/go-picogen/internal/logging/gologger"
	"github.com/goliatone/go-picogen/internal/runtimeconfig"
	"github.com/goliatone/go-picogen/pkg/interfaces"
)

// ConfigCandidates are probed, in order, when no configuration path is given.
var ConfigCandidates = []string{"config.json", "config.yaml", "config.yml"}

// Options captures configuration for picogen CLI bootstraps.
type Options struct {
	// Root is the project directory holding content, templates and static.
	Root string
	// ConfigPath is resolved against Root unless absolute.
	ConfigPath string
	LogLevel   string
	// LogFormat selects the go-logger provider (json, console or pretty).
	LogFormat      string
	CleanBuild     bool
	Metrics        generator.MetricsRecorder
	LoggerProvider interfaces.LoggerProvider
	Stdout         io.Writer
}

// Module bundles the loaded configuration with the wired generator and
// command handlers.
type Module struct {
	Root       string
	ConfigPath string
	Config     *runtimeconfig.Config
	Site       *picogen.Module
	Service    generator.Service
	Logging    interfaces.LoggerProvider
	Logger     interfaces.Logger
	Build      *staticcmd.BuildSiteHandler
	Clean      *staticcmd.CleanSiteHandler
}

// BuildModule loads the site configuration and wires a generator for it.
func BuildModule(opts Options) (*Module, error) {
	root := strings.TrimSpace(opts.Root)
	if root == "" {
		root = "."
	}
	configPath := ResolveConfigPath(root, opts.ConfigPath)

	cfg, err := runtimeconfig.Load(configPath)
	if err != nil {
		return nil, err
	}

	provider := opts.LoggerProvider
	if provider == nil {
		provider, err = NewLoggerProvider(cfg.Logging, opts.LogLevel, opts.LogFormat, opts.Stdout)
		if err != nil {
			return nil, err
		}
	}

	genCfg := generator.DefaultConfig()
	genCfg.CleanBuild = opts.CleanBuild
	site, err := picogen.New(cfg,
		picogen.WithRoot(root),
		picogen.WithGeneratorConfig(genCfg),
		picogen.WithMetrics(opts.Metrics),
		picogen.WithLoggerProvider(provider),
	)
	if err != nil {
		return nil, err
	}
	service := site.Generator()

	logger := logging.For(provider, logging.Root)
	return &Module{
		Root:       root,
		ConfigPath: configPath,
		Config:     cfg,
		Site:       site,
		Service:    service,
		Logging:    provider,
		Logger:     logger,
		Build:      staticcmd.NewBuildSiteHandler(service, commands.CommandLogger(provider, "static")),
		Clean:      staticcmd.NewCleanSiteHandler(service, commands.CommandLogger(provider, "static")),
	}, nil
}

// ResolveConfigPath returns the configuration file to load. An explicit
// path wins; otherwise the first existing candidate under root is used,
// falling back to config.json so the not-found error names it.
func ResolveConfigPath(root, explicit string) string {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		if filepath.IsAbs(explicit) {
			return explicit
		}
		return filepath.Join(root, explicit)
	}
	for _, candidate := range ConfigCandidates {
		path := filepath.Join(root, candidate)
		if _, err := os.Stat(path); err == nil {
			return path
		} else if !errors.Is(err, fs.ErrNotExist) {
			return path
		}
	}
	return filepath.Join(root, ConfigCandidates[0])
}

// NewLoggerProvider picks the console provider unless go-logger is
// requested by configuration or an explicit format. Flag values override
// the configuration.
func NewLoggerProvider(cfg runtimeconfig.LoggingConfig, level, format string, out io.Writer) (interfaces.LoggerProvider, error) {
	if level = strings.TrimSpace(level); level == "" {
		level = cfg.Level
	}
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if format = strings.TrimSpace(format); format != "" {
		provider = "gologger"
	} else {
		format = cfg.Format
	}

	switch provider {
	case "gologger":
		p, err := gologger.NewProvider(gologger.Config{
			Level:     level,
			Format:    format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	case "", "console":
		minLevel, ok := console.ParseLevel(level)
		if !ok {
			return nil, fmt.Errorf("logging: unsupported level %q", level)
		}
		return console.NewProvider(console.Options{
			Writer:   out,
			MinLevel: &minLevel,
			Color:    isTerminal(out),
		}), nil
	default:
		return nil, fmt.Errorf("%w: %s", runtimeconfig.ErrLoggingProviderUnknown, provider)
	}
}

func isTerminal(out io.Writer) bool {
	if out == nil {
		out = os.Stdout
	}
	file, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}
