package descriptor

import (
	"strings"
	"time"

	"github.com/goodsign/monday"
)

const (
	dateLayout    = "2006-01-02"
	rfc3339Offset = "2006-01-02T15:04:05-07:00"
)

// ParseDate parses a YYYY-MM-DD date at midnight in loc.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(dateLayout, strings.TrimSpace(value), loc)
}

// RFC3339 renders t with a numeric UTC offset, never the "Z" shorthand.
func RFC3339(t time.Time) string {
	return t.Format(rfc3339Offset)
}

// strftimeLayouts maps strftime directives onto Go layout fragments.
var strftimeLayouts = map[byte]string{
	'Y': "2006",
	'y': "06",
	'm': "01",
	'd': "02",
	'e': "_2",
	'H': "15",
	'I': "03",
	'M': "04",
	'S': "05",
	'p': "PM",
	'b': "Jan",
	'h': "Jan",
	'B': "January",
	'a': "Mon",
	'A': "Monday",
	'j': "002",
	'Z': "MST",
	'z': "-0700",
}

// localizedDirectives produce month or weekday names.
var localizedDirectives = map[byte]bool{
	'b': true, 'h': true, 'B': true, 'a': true, 'A': true, 'p': true,
}

// FormatStrftime renders t using a strftime style format. Names are
// translated through monday when locale is set. Unknown directives are
// emitted unchanged and literal text is never reinterpreted as a layout.
func FormatStrftime(t time.Time, format, locale string) string {
	var builder strings.Builder
	builder.Grow(len(format) + 16)
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' || i == len(format)-1 {
			builder.WriteByte(c)
			continue
		}
		i++
		directive := format[i]
		switch directive {
		case '%':
			builder.WriteByte('%')
			continue
		case 'n':
			builder.WriteByte('\n')
			continue
		case 't':
			builder.WriteByte('\t')
			continue
		case 'u':
			weekday := int(t.Weekday())
			if weekday == 0 {
				weekday = 7
			}
			builder.WriteByte(byte('0' + weekday))
			continue
		case 'w':
			builder.WriteByte(byte('0' + int(t.Weekday())))
			continue
		}
		layout, ok := strftimeLayouts[directive]
		if !ok {
			builder.WriteByte('%')
			builder.WriteByte(directive)
			continue
		}
		if locale != "" && localizedDirectives[directive] {
			builder.WriteString(monday.Format(t, layout, monday.Locale(locale)))
			continue
		}
		builder.WriteString(t.Format(layout))
	}
	return builder.String()
}
