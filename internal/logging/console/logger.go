package console

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-picogen/internal/logging"
	"github.com/goliatone/go-picogen/pkg/interfaces"
)

// Options configures NewProvider.
type Options struct {
	// Writer defaults to stdout.
	Writer io.Writer
	// TimeFunc defaults to time.Now. Timestamps are printed in UTC.
	TimeFunc func() time.Time
	// MinLevel defaults to LevelInfo.
	MinLevel *Level
	// Color paints the level label.
	Color bool
}

// sink is shared by every logger handed out by one provider.
type sink struct {
	mu    sync.Mutex
	out   io.Writer
	now   func() time.Time
	min   Level
	color bool
}

type provider struct {
	sink *sink
}

// NewProvider returns a provider writing one logfmt-style line per entry:
// timestamp, level, message, then fields sorted by key.
func NewProvider(opts Options) interfaces.LoggerProvider {
	s := &sink{out: opts.Writer, now: opts.TimeFunc, min: LevelInfo, color: opts.Color}
	if s.out == nil {
		s.out = os.Stdout
	}
	if s.now == nil {
		s.now = time.Now
	}
	if opts.MinLevel != nil {
		s.min = *opts.MinLevel
	}
	return provider{sink: s}
}

func (p provider) GetLogger(name string) interfaces.Logger {
	return &logger{sink: p.sink, fields: map[string]any{"logger": name}}
}

type logger struct {
	sink   *sink
	fields map[string]any
	ctx    context.Context
}

var _ interfaces.FieldsLogger = (*logger)(nil)

func (l *logger) Trace(msg string, args ...any) { l.write(LevelTrace, msg, args) }
func (l *logger) Debug(msg string, args ...any) { l.write(LevelDebug, msg, args) }
func (l *logger) Info(msg string, args ...any)  { l.write(LevelInfo, msg, args) }
func (l *logger) Warn(msg string, args ...any)  { l.write(LevelWarn, msg, args) }
func (l *logger) Error(msg string, args ...any) { l.write(LevelError, msg, args) }
func (l *logger) Fatal(msg string, args ...any) { l.write(LevelFatal, msg, args) }

func (l *logger) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return l
	}
	merged := maps.Clone(l.fields)
	maps.Copy(merged, fields)
	return &logger{sink: l.sink, fields: merged, ctx: l.ctx}
}

func (l *logger) WithContext(ctx context.Context) interfaces.Logger {
	return &logger{sink: l.sink, fields: l.fields, ctx: ctx}
}

func (l *logger) write(level Level, msg string, args []any) {
	if l.sink == nil || level < l.sink.min {
		return
	}
	fields := maps.Clone(l.fields)
	maps.Copy(fields, logging.ContextFields(l.ctx))
	pairFields(fields, args)

	label := level.String()
	if c := Palette(level); c != nil && l.sink.color {
		label = c.Sprint(label)
	}
	line := render(l.sink.now().UTC(), label, msg, fields)

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	_, _ = io.WriteString(l.sink.out, line)
}

// pairFields folds key/value args into dst. Values without a usable string
// key are stored under field_<n>, n being the pair position.
func pairFields(dst map[string]any, args []any) {
	for i := 0; i < len(args); i += 2 {
		positional := fmt.Sprintf("field_%d", i/2)
		if i+1 == len(args) {
			dst[positional] = args[i]
			return
		}
		if key, ok := args[i].(string); ok && key != "" {
			dst[key] = args[i+1]
		} else {
			dst[positional] = args[i+1]
		}
	}
}

func render(ts time.Time, label, msg string, fields map[string]any) string {
	var b strings.Builder
	b.WriteString(ts.Format(time.RFC3339Nano))
	b.WriteString(" " + label + " " + msg)
	for _, key := range slices.Sorted(maps.Keys(fields)) {
		b.WriteString(" " + key + "=" + value(fields[key]))
	}
	b.WriteByte('\n')
	return b.String()
}

func value(v any) string {
	var s string
	switch v := v.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(v)
	case time.Duration:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		s = v.UTC().Format(time.RFC3339Nano)
	case error:
		s = v.Error()
	default:
		s = fmt.Sprint(v)
	}
	if s == "" || strings.ContainsFunc(s, func(r rune) bool { return r <= ' ' || r == '=' }) {
		return strconv.Quote(s)
	}
	return s
}
