package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const (
	colorReset = "\x1b[0m"
	colorBold  = "\x1b[1m"
)

type palette struct {
	fg       string
	time     string
	name     string
	key      string
	number   string
	warn     string
	warnBg   string
	err      string
	errBg    string
	namedAlt string
}

// Everforest Dark
var everforest = palette{
	fg:       "\x1b[38;5;223m",
	time:     "\x1b[38;5;107m",
	name:     "\x1b[38;5;108m",
	namedAlt: "\x1b[38;5;208m",
	key:      "\x1b[38;5;65m",
	number:   "\x1b[38;5;108m",
	warn:     "\x1b[38;5;179m",
	warnBg:   "\x1b[48;5;58m",
	err:      "\x1b[38;5;167m",
	errBg:    "\x1b[48;5;52m",
}

// Gruvbox Dark
var gruvbox = palette{
	fg:       "\x1b[38;5;223m",
	time:     "\x1b[38;5;108m",
	name:     "\x1b[38;5;208m",
	namedAlt: "\x1b[38;5;214m",
	key:      "\x1b[38;5;109m",
	number:   "\x1b[38;5;175m",
	warn:     "\x1b[38;5;214m",
	warnBg:   "\x1b[48;5;58m",
	err:      "\x1b[38;5;167m",
	errBg:    "\x1b[48;5;88m",
}

var currentTheme = "everforest"

// SetTheme configures the color scheme for console log output.
// Unknown themes are ignored.
func SetTheme(theme string) {
	if theme == "everforest" || theme == "gruvbox" {
		currentTheme = theme
	}
}

func colors() palette {
	if currentTheme == "gruvbox" {
		return gruvbox
	}
	return everforest
}

// colorComponent picks a stable color per logger name
func colorComponent(name string) string {
	hash := 0
	for _, c := range name {
		hash += int(c)
	}
	if hash%2 == 0 {
		return colors().name
	}
	return colors().namedAlt
}

// minimalEncoder implements a compact console encoder with theme support
// Format: "13:04:35  t.engine  Package written  package=com.acme path=out/com/acme/package.pl"
type minimalEncoder struct {
	zapcore.Encoder
	pool buffer.Pool
}

func newMinimalEncoder() *minimalEncoder {
	return &minimalEncoder{
		Encoder: zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		pool:    buffer.NewPool(),
	}
}

func (enc *minimalEncoder) Clone() zapcore.Encoder {
	return &minimalEncoder{
		Encoder: enc.Encoder.Clone(),
		pool:    enc.pool,
	}
}

func (enc *minimalEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	c := colors()
	final := enc.pool.Get()

	final.AppendString(c.time)
	final.AppendString(ent.Time.Format("15:04:05"))
	final.AppendString(colorReset)

	if ent.Level != zapcore.InfoLevel {
		final.AppendString("  ")
		final.AppendString(levelColorString(ent.Level))
	}

	if ent.LoggerName != "" {
		final.AppendString("  ")
		final.AppendString(colorComponent(ent.LoggerName))
		final.AppendString(abbreviateName(ent.LoggerName))
		final.AppendString(colorReset)
	}

	final.AppendString("  ")
	final.AppendString(c.fg)
	final.AppendString(ent.Message)
	final.AppendString(colorReset)

	if rendered := renderFields(fields); rendered != "" {
		final.AppendString("  ")
		final.AppendString(rendered)
	}

	final.AppendString("\n")
	return final, nil
}

// levelColorString returns bold + colored + background for non-info levels
func levelColorString(level zapcore.Level) string {
	c := colors()
	switch level {
	case zapcore.DebugLevel:
		return c.key + "DEBUG" + colorReset
	case zapcore.WarnLevel:
		return colorBold + c.warnBg + c.warn + "WARN" + colorReset
	default:
		return colorBold + c.errBg + c.err + level.CapitalString() + colorReset
	}
}

// abbreviateName shortens component names: traverse.engine -> t.engine
func abbreviateName(name string) string {
	parts := strings.Split(name, ".")
	if len(parts) > 1 && parts[0] != "" {
		return string(parts[0][0]) + "." + strings.Join(parts[1:], ".")
	}
	return name
}

// renderFields writes every field as key=value in the order given.
// Values are serialized through a map encoder so no field type is dropped.
func renderFields(fields []zapcore.Field) string {
	if len(fields) == 0 {
		return ""
	}
	c := colors()
	menc := zapcore.NewMapObjectEncoder()
	var keys []string
	for _, f := range fields {
		if f.Type == zapcore.SkipType {
			continue
		}
		if _, seen := menc.Fields[f.Key]; !seen {
			keys = append(keys, f.Key)
		}
		f.AddTo(menc)
	}

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v, ok := menc.Fields[k]
		if !ok {
			continue
		}
		var val string
		switch tv := v.(type) {
		case string:
			val = c.fg + tv + colorReset
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
			val = c.number + fmt.Sprint(tv) + colorReset
		default:
			val = c.fg + fmt.Sprintf("%v", tv) + colorReset
		}
		parts = append(parts, c.key+k+"="+colorReset+val)
	}
	return strings.Join(parts, " ")
}
