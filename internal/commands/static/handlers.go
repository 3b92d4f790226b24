package staticcmd

import (
	"context"
	"errors"

	"github.com/goliatone/go-picogen/internal/commands"
	"github.com/goliatone/go-picogen/internal/generator"
	"github.com/goliatone/go-picogen/internal/logging"
	"github.com/goliatone/go-picogen/internal/protocol"
	"github.com/goliatone/go-picogen/pkg/interfaces"
)

// ErrServiceRequired is returned when a handler has no generator wired.
var ErrServiceRequired = errors.New("staticcmd: generator service is required")

// BuildSiteHandler orchestrates generator builds using the shared command handler foundation.
type BuildSiteHandler struct {
	inner *commands.Handler[BuildSiteCommand]
}

// NewBuildSiteHandler constructs a handler wired to the provided generator service.
func NewBuildSiteHandler(service generator.Service, logger interfaces.Logger, opts ...commands.HandlerOption[BuildSiteCommand]) *BuildSiteHandler {
	baseLogger := logging.Ensure(logger)

	exec := func(ctx context.Context, msg BuildSiteCommand) error {
		if service == nil {
			return ErrServiceRequired
		}
		targets, err := msg.Targets()
		if err != nil {
			return err
		}

		result, err := service.Build(ctx, generator.BuildOptions{
			Protocols: targets,
			DryRun:    msg.DryRun,
		})
		metadata := map[string]any{
			"operation": "build",
			"protocols": protocolNames(targets),
		}
		if msg.DryRun {
			metadata["operation"] = "dry_run"
		}
		invokeCallback(msg.ResultCallback, ResultEnvelope{Result: result, Metadata: metadata})
		if err != nil {
			return err
		}
		for _, diag := range result.Diagnostics {
			baseLogger.Warn("static.build.warning",
				"format", diag.Format,
				"phase", diag.Phase.String(),
				"path", diag.Path,
				"template", diag.Template,
				"message", diag.Message,
				"error", diag.Err,
			)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[BuildSiteCommand]{
		commands.WithLogger[BuildSiteCommand](baseLogger),
		commands.WithOperation[BuildSiteCommand]("static.build"),
		commands.WithMessageFields(func(msg BuildSiteCommand) map[string]any {
			fields := map[string]any{
				"protocols": len(msg.Protocols),
			}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[BuildSiteCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &BuildSiteHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[BuildSiteCommand].
func (h *BuildSiteHandler) Execute(ctx context.Context, msg BuildSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CleanSiteHandler clears generator artifacts.
type CleanSiteHandler struct {
	inner *commands.Handler[CleanSiteCommand]
}

// NewCleanSiteHandler constructs a handler that cleans generator output.
func NewCleanSiteHandler(service generator.Service, logger interfaces.Logger, opts ...commands.HandlerOption[CleanSiteCommand]) *CleanSiteHandler {
	baseLogger := logging.Ensure(logger)

	exec := func(ctx context.Context, msg CleanSiteCommand) error {
		if service == nil {
			return ErrServiceRequired
		}
		targets, err := protocol.ParseList(msg.Protocols)
		if err != nil {
			return err
		}
		for _, target := range targets {
			if err := service.Clean(ctx, target); err != nil {
				return err
			}
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[CleanSiteCommand]{
		commands.WithLogger[CleanSiteCommand](baseLogger),
		commands.WithOperation[CleanSiteCommand]("static.clean"),
		commands.WithTelemetry(commands.DefaultTelemetry[CleanSiteCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &CleanSiteHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[CleanSiteCommand].
func (h *CleanSiteHandler) Execute(ctx context.Context, msg CleanSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

func protocolNames(targets []protocol.Protocol) []string {
	out := make([]string, 0, len(targets))
	for _, target := range targets {
		out = append(out, target.String())
	}
	return out
}

func invokeCallback(cb ResultCallback, envelope ResultEnvelope) {
	if cb == nil {
		return
	}
	cb(envelope)
}
