package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-picogen/cmd/picogen/internal/bootstrap"
	"github.com/goliatone/go-picogen/internal/commands"
	staticcmd "github.com/goliatone/go-picogen/internal/commands/static"
	"github.com/goliatone/go-picogen/internal/generator"
	"github.com/goliatone/go-picogen/internal/logging"
	"github.com/goliatone/go-picogen/internal/metrics"
	"github.com/goliatone/go-picogen/internal/protocol"
	"github.com/goliatone/go-picogen/internal/runtimeconfig"
	"github.com/goliatone/go-picogen/internal/watch"
	"github.com/goliatone/go-picogen/pkg/interfaces"
)

// watchRebuildRetries covers editors that save in several writes.
const watchRebuildRetries = 1

type generateFlags struct {
	watch       bool
	metricsFile string
	clean       bool
	dryRun      bool
}

func newGenerateCommand(global *globalFlags) *cobra.Command {
	flags := &generateFlags{}
	cmd := &cobra.Command{
		Use:   "generate <protocol> [protocol...]",
		Short: "Generate the site for http and/or gemini",
		Example: `  picogen generate http
  picogen generate http gemini --metrics-file picogen.prom
  picogen generate gemini --watch`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), cmd.OutOrStdout(), global, flags, args)
		},
	}
	cmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "Regenerate after changes to content, templates, static or the config")
	cmd.Flags().StringVar(&flags.metricsFile, "metrics-file", "", "Write Prometheus textfile metrics to this path after each run")
	cmd.Flags().BoolVar(&flags.clean, "clean", true, "Remove target/<suffix> before generating")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Render everything without writing files")
	return cmd
}

func runGenerate(ctx context.Context, out io.Writer, global *globalFlags, flags *generateFlags, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	targets, err := protocol.ParseList(args)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(targets))
	for _, target := range targets {
		names = append(names, target.String())
	}

	var (
		collector *metrics.Collector
		recorder  generator.MetricsRecorder
	)
	if path := strings.TrimSpace(flags.metricsFile); path != "" {
		collector = metrics.NewCollector()
		recorder = collector
	}

	opts := bootstrap.Options{
		Root:       global.root,
		ConfigPath: global.configPath,
		LogLevel:   global.logLevel,
		LogFormat:  global.logFormat,
		CleanBuild: flags.clean,
		Metrics:    recorder,
		Stdout:     out,
	}

	var provider interfaces.LoggerProvider
	build := func(ctx context.Context, retries int) error {
		module, err := moduleBuilder(opts)
		if err != nil {
			return err
		}
		provider = module.Logging
		msg := staticcmd.BuildSiteCommand{
			Protocols: names,
			DryRun:    flags.dryRun,
			ResultCallback: func(env staticcmd.ResultEnvelope) {
				printSummary(out, env.Result)
			},
		}
		if retries > 0 {
			err = commands.Dispatch[staticcmd.BuildSiteCommand](ctx, module.Build, msg, retries)
		} else {
			err = module.Build.Execute(ctx, msg)
		}
		if collector != nil {
			if werr := collector.WriteToTextfile(flags.metricsFile); werr != nil {
				module.Logger.Error("metrics.write.failed", "path", flags.metricsFile, "error", werr)
				if err == nil {
					err = werr
				}
			}
		}
		return err
	}

	err = build(ctx, 0)
	if !flags.watch {
		return err
	}
	if err != nil {
		fmt.Fprintf(out, "generation failed, watching for changes: %v\n", err)
	}
	if provider == nil {
		if provider, err = bootstrap.NewLoggerProvider(runtimeconfig.LoggingConfig{}, global.logLevel, global.logFormat, out); err != nil {
			return err
		}
	}
	return watchAndRegenerate(ctx, global, provider, func(ctx context.Context) error {
		return build(ctx, watchRebuildRetries)
	})
}

func watchAndRegenerate(ctx context.Context, global *globalFlags, provider interfaces.LoggerProvider, generate watch.RebuildFunc) error {
	root := global.root
	if strings.TrimSpace(root) == "" {
		root = "."
	}
	defaults := generator.DefaultConfig()
	cfg := watch.Config{
		Dirs: []string{
			filepath.Join(root, defaults.ContentDir),
			filepath.Join(root, defaults.TemplatesDir),
			filepath.Join(root, defaults.StaticDir),
		},
		Files: []string{bootstrap.ResolveConfigPath(root, global.configPath)},
	}
	watcher, err := watch.New(cfg, generate, logging.For(provider, logging.Watch))
	if err != nil {
		return err
	}
	return watcher.Run(ctx)
}

func printSummary(out io.Writer, result *generator.BuildResult) {
	if result == nil {
		return
	}
	prefix := ""
	if result.DryRun {
		prefix = "[dry run] "
	}
	for _, format := range result.Formats {
		fmt.Fprintf(out, "%s%s: %d documents, %d indexes, %d assets, %d drafts skipped in %s\n",
			prefix,
			format.Protocol,
			format.Documents,
			format.Indexes,
			format.Assets,
			len(format.Drafts),
			format.Duration.Round(time.Millisecond),
		)
	}
	if n := len(result.Diagnostics); n > 0 {
		fmt.Fprintf(out, "%s%d warnings\n", prefix, n)
	}
}
