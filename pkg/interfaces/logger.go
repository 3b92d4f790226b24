package interfaces

import "context"

// Leveled is the set of severity methods shared by every picogen logger.
// Args are alternating key/value pairs.
type Leveled interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
}

// Logger is satisfied by go-logger's glog.Logger once wrapped, and by the
// console logger.
type Logger interface {
	Leveled
	WithContext(ctx context.Context) Logger
}

// FieldsLogger is implemented by loggers that can carry structured fields.
type FieldsLogger interface {
	Logger
	WithFields(fields map[string]any) Logger
}

// LoggerProvider resolves a logger by dotted module name, for example
// "picogen.generator".
type LoggerProvider interface {
	GetLogger(name string) Logger
}
