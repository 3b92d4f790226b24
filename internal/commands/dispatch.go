package commands

import (
	"context"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
)

// Dispatch subscribes handler for the duration of one go-command dispatch
// of msg. A failed execution is retried up to retries more times.
func Dispatch[T command.Message](ctx context.Context, handler command.Commander[T], msg T, retries int) error {
	if retries < 0 {
		retries = 0
	}
	sub := dispatcher.SubscribeCommand(handler, runner.WithMaxRetries(retries))
	defer sub.Unsubscribe()
	return dispatcher.Dispatch(ctx, msg)
}
