package logger

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const (
	colorReset = "\x1b[0m"
	colorBold  = "\x1b[1m"
)

// palette holds the ANSI colors of one theme
type palette struct {
	time      string
	component string
	key       string
	path      string
	number    string
	warn      string
	warnBg    string
	err       string
	errBg     string
}

var themes = map[string]palette{
	// Everforest Dark: natural greens
	"everforest": {
		time:      "\x1b[38;5;107m",
		component: "\x1b[38;5;208m",
		key:       "\x1b[38;5;65m",
		path:      "\x1b[38;5;109m",
		number:    "\x1b[38;5;108m",
		warn:      "\x1b[38;5;179m",
		warnBg:    "\x1b[48;5;58m",
		err:       "\x1b[38;5;167m",
		errBg:     "\x1b[48;5;52m",
	},
	// Gruvbox Dark: warm and muted
	"gruvbox": {
		time:      "\x1b[38;5;108m",
		component: "\x1b[38;5;214m",
		key:       "\x1b[38;5;246m",
		path:      "\x1b[38;5;109m",
		number:    "\x1b[38;5;175m",
		warn:      "\x1b[38;5;214m",
		warnBg:    "\x1b[48;5;58m",
		err:       "\x1b[38;5;167m",
		errBg:     "\x1b[48;5;88m",
	},
}

var currentTheme = "everforest"

// SetTheme configures the color scheme for console output.
// Unknown names are ignored.
func SetTheme(theme string) {
	if _, ok := themes[theme]; ok {
		currentTheme = theme
	}
}

// HasTheme reports whether theme names a known color scheme
func HasTheme(theme string) bool {
	_, ok := themes[theme]
	return ok
}

func colors() palette {
	return themes[currentTheme]
}

// minimalEncoder is a compact console encoder.
// Format: "13:04:35  integration  Translated sources  collected=2 produced=2"
//
// Fields added through With() land in the embedded map encoder and are
// rendered together with per-entry fields.
type minimalEncoder struct {
	*zapcore.MapObjectEncoder
}

func newMinimalEncoder() *minimalEncoder {
	return &minimalEncoder{MapObjectEncoder: zapcore.NewMapObjectEncoder()}
}

func (enc *minimalEncoder) Clone() zapcore.Encoder {
	clone := zapcore.NewMapObjectEncoder()
	for k, v := range enc.Fields {
		clone.Fields[k] = v
	}
	return &minimalEncoder{MapObjectEncoder: clone}
}

func (enc *minimalEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	c := colors()
	final := buffer.NewPool().Get()

	final.AppendString(c.time)
	final.AppendString(ent.Time.Format("15:04:05"))
	final.AppendString(colorReset)

	if label := levelLabel(ent.Level, c); label != "" {
		final.AppendString("  ")
		final.AppendString(label)
	}

	if ent.LoggerName != "" {
		final.AppendString("  ")
		final.AppendString(c.component)
		final.AppendString(ent.LoggerName)
		final.AppendString(colorReset)
	}

	final.AppendString("  ")
	final.AppendString(ent.Message)

	merged := zapcore.NewMapObjectEncoder()
	for k, v := range enc.Fields {
		merged.Fields[k] = v
	}
	for _, f := range fields {
		f.AddTo(merged)
	}
	if rendered := renderFields(merged.Fields, c); rendered != "" {
		final.AppendString("  ")
		final.AppendString(rendered)
	}

	final.AppendString("\n")
	return final, nil
}

// levelLabel returns a highlighted label for WARN and above; info and debug stay unlabeled
func levelLabel(level zapcore.Level, c palette) string {
	switch {
	case level == zapcore.WarnLevel:
		return colorBold + c.warnBg + c.warn + "WARN" + colorReset
	case level >= zapcore.ErrorLevel:
		return colorBold + c.errBg + c.err + level.CapitalString() + colorReset
	default:
		return ""
	}
}

// renderFields prints every field as key=value in key order.
// The verbose error rendering (stack traces) is left to JSON output.
func renderFields(fields map[string]interface{}, c palette) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if strings.HasSuffix(k, "Verbose") {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, c.key+k+"="+colorReset+colorValue(fields[k], c))
	}
	return strings.Join(parts, " ")
}

func colorValue(v interface{}, c palette) string {
	switch val := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return c.number + fmt.Sprint(val) + colorReset
	case string:
		if strings.ContainsRune(val, '/') {
			return c.path + val + colorReset
		}
		return val
	default:
		return fmt.Sprint(val)
	}
}
