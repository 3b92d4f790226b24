package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-picogen/internal/logging"
	"github.com/goliatone/go-picogen/pkg/interfaces"
)

// TelemetryStatus is the outcome of one command execution.
type TelemetryStatus string

const (
	TelemetryStatusSuccess TelemetryStatus = "success"
	TelemetryStatusFailed  TelemetryStatus = "failed"
	// TelemetryStatusContextError marks runs stopped by cancellation or the
	// command timeout.
	TelemetryStatusContextError TelemetryStatus = "context_error"
)

// TelemetryInfo describes one finished execution.
type TelemetryInfo struct {
	Command   string
	Operation string
	Fields    map[string]any
	Duration  time.Duration
	Error     error
	Status    TelemetryStatus
	Logger    interfaces.Logger
}

// Telemetry is invoked once after every execution, successful or not.
type Telemetry[T command.Message] func(ctx context.Context, msg T, info TelemetryInfo)

// outcome maps the result of a command body onto a status and a
// categorized error.
func outcome(ctx context.Context, err error) (TelemetryStatus, error) {
	switch {
	case err != nil && isContextError(err):
		return TelemetryStatusContextError, wrapContextError(err)
	case err != nil:
		return TelemetryStatusFailed, wrapExecuteError(err)
	case ctx.Err() != nil:
		return TelemetryStatusContextError, wrapContextError(ctx.Err())
	}
	return TelemetryStatusSuccess, nil
}

// DefaultTelemetry logs one line per execution. Interrupted runs are logged
// as warnings.
func DefaultTelemetry[T command.Message](logger interfaces.Logger) Telemetry[T] {
	logger = logging.Ensure(logger)
	return func(_ context.Context, _ T, info TelemetryInfo) {
		entry := logger
		if len(info.Fields) > 0 {
			entry = logging.WithFields(entry, info.Fields)
		}
		args := []any{"status", string(info.Status), "duration", info.Duration.Round(time.Millisecond).String()}
		switch info.Status {
		case TelemetryStatusSuccess:
			entry.Info("command.execute.success", args...)
		case TelemetryStatusContextError:
			entry.Warn("command.execute.interrupted", append(args, "error", info.Error)...)
		default:
			entry.Error("command.execute.failed", append(args, "error", info.Error)...)
		}
	}
}
