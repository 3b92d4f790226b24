package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-picogen/internal/protocol"
)

const (
	codeCommandInvalid   = "PICOGEN_COMMAND_INVALID"
	codeCommandCancelled = "PICOGEN_COMMAND_CANCELLED"
	codeCommandTimedOut  = "PICOGEN_COMMAND_TIMED_OUT"
	codeCommandContext   = "PICOGEN_COMMAND_CONTEXT"
	codeUnknownTarget    = "PICOGEN_UNKNOWN_TARGET"
	codeCommandFailed    = "PICOGEN_COMMAND_FAILED"
)

type failure struct {
	target   error
	category goerrors.Category
	code     string
	message  string
}

var contextFailures = []failure{
	{target: context.Canceled, category: goerrors.CategoryCommand, code: codeCommandCancelled, message: "site command cancelled"},
	{target: context.DeadlineExceeded, category: goerrors.CategoryCommand, code: codeCommandTimedOut, message: "site command exceeded its timeout"},
}

// executeFailures classify uncategorized errors returned by a command body.
var executeFailures = []failure{
	{target: protocol.ErrUnknownProtocol, category: goerrors.CategoryBadInput, code: codeUnknownTarget, message: "unknown target protocol"},
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// categorize leaves errors that already carry a go-errors category alone so
// generator categories such as not_found reach the caller unchanged.
func categorize(err error, f failure) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, f.category, f.message).WithTextCode(f.code)
}

func classify(err error, known []failure, fallback failure) error {
	for _, f := range known {
		if errors.Is(err, f.target) {
			return categorize(err, f)
		}
	}
	return categorize(err, fallback)
}

func wrapValidationError(err error) error {
	return categorize(err, failure{category: goerrors.CategoryValidation, code: codeCommandInvalid, message: "site command is invalid"})
}

func wrapContextError(err error) error {
	return classify(err, contextFailures, failure{category: goerrors.CategoryCommand, code: codeCommandContext, message: "site command context failed"})
}

func wrapExecuteError(err error) error {
	return classify(err, executeFailures, failure{category: goerrors.CategoryCommand, code: codeCommandFailed, message: "site command failed"})
}
