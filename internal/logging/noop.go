package logging

import (
	"context"

	"github.com/goliatone/go-picogen/pkg/interfaces"
)

type discard struct{}

var _ interfaces.FieldsLogger = discard{}

// NoOp returns a logger that drops every entry.
func NoOp() interfaces.Logger { return discard{} }

// Ensure substitutes NoOp for a nil logger.
func Ensure(logger interfaces.Logger) interfaces.Logger {
	if logger == nil {
		return discard{}
	}
	return logger
}

func (discard) Trace(string, ...any) {}
func (discard) Debug(string, ...any) {}
func (discard) Info(string, ...any)  {}
func (discard) Warn(string, ...any)  {}
func (discard) Error(string, ...any) {}
func (discard) Fatal(string, ...any) {}

func (d discard) WithFields(map[string]any) interfaces.Logger   { return d }
func (d discard) WithContext(context.Context) interfaces.Logger { return d }
