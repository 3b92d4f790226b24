package console

import (
	"strings"

	"github.com/fatih/color"
)

// Level is the severity of a console entry.
type Level uint8

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = [...]string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return levelNames[LevelInfo]
}

// ParseLevel accepts the level names used in site configuration. A blank
// value is INFO.
func ParseLevel(value string) (Level, bool) {
	value = strings.ToUpper(strings.TrimSpace(value))
	switch value {
	case "":
		return LevelInfo, true
	case "WARNING":
		return LevelWarn, true
	}
	for i, name := range levelNames {
		if name == value {
			return Level(i), true
		}
	}
	return LevelInfo, false
}

// Palette returns the color used for the level label, or nil when the label
// is printed plain.
func Palette(level Level) *color.Color {
	var c *color.Color
	switch level {
	case LevelInfo:
		c = color.New(color.Bold, color.FgGreen)
	case LevelWarn:
		c = color.New(color.Bold, color.FgYellow)
	case LevelError, LevelFatal:
		c = color.New(color.Bold, color.FgRed)
	default:
		return nil
	}
	c.EnableColor()
	return c
}
