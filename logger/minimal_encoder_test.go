package logger

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(str string) string {
	return ansiRegex.ReplaceAllString(str, "")
}

// The console encoder must never silently drop fields.
func TestMinimalEncoderKeepsAllFields(t *testing.T) {
	encoder := newMinimalEncoder()
	entry := zapcore.Entry{
		Level:      zapcore.InfoLevel,
		Time:       time.Date(2026, 1, 2, 13, 4, 35, 0, time.UTC),
		LoggerName: "integration",
		Message:    "Translated sources",
	}

	buf, err := encoder.EncodeEntry(entry, []zapcore.Field{
		zap.Int(FieldCollected, 2),
		zap.Int(FieldProduced, 3),
		zap.String(FieldOutputDir, "/proj/target/generated-sources/jabsc"),
		zap.Bool("dry_run", false),
		zap.Strings("files", []string{"foo.abs", "bar.abs"}),
	})
	require.NoError(t, err)

	out := stripANSI(buf.String())
	assert.Contains(t, out, "13:04:35")
	assert.Contains(t, out, "integration")
	assert.Contains(t, out, "Translated sources")
	assert.Contains(t, out, "collected=2")
	assert.Contains(t, out, "produced=3")
	assert.Contains(t, out, "output_dir=/proj/target/generated-sources/jabsc")
	assert.Contains(t, out, "dry_run=false")
	assert.Contains(t, out, "files=")
}

func TestMinimalEncoderRendersWithFields(t *testing.T) {
	encoder := newMinimalEncoder()
	encoder.AddString(FieldInvocationID, "inv-1")

	clone := encoder.Clone()
	buf, err := clone.EncodeEntry(zapcore.Entry{Level: zapcore.InfoLevel, Time: time.Now(), Message: "hello"}, nil)
	require.NoError(t, err)

	assert.Contains(t, stripANSI(buf.String()), "invocation_id=inv-1")
}

func TestMinimalEncoderLevelLabels(t *testing.T) {
	encoder := newMinimalEncoder()

	warn, err := encoder.EncodeEntry(zapcore.Entry{Level: zapcore.WarnLevel, Time: time.Now(), Message: "w"}, nil)
	require.NoError(t, err)
	assert.Contains(t, stripANSI(warn.String()), "WARN")

	info, err := encoder.EncodeEntry(zapcore.Entry{Level: zapcore.InfoLevel, Time: time.Now(), Message: "i"}, nil)
	require.NoError(t, err)
	assert.NotContains(t, stripANSI(info.String()), "INFO")
}

func TestMinimalEncoderSkipsVerboseErrors(t *testing.T) {
	encoder := newMinimalEncoder()
	buf, err := encoder.EncodeEntry(
		zapcore.Entry{Level: zapcore.ErrorLevel, Time: time.Now(), Message: "failed"},
		[]zapcore.Field{zap.Error(errors.New("boom"))},
	)
	require.NoError(t, err)

	out := stripANSI(buf.String())
	assert.Contains(t, out, "error=boom")
	assert.NotContains(t, out, "errorVerbose")
}

func TestSetThemeIgnoresUnknown(t *testing.T) {
	defer SetTheme("everforest")

	SetTheme("gruvbox")
	assert.Equal(t, "gruvbox", currentTheme)
	SetTheme("solarized")
	assert.Equal(t, "gruvbox", currentTheme)
}

func TestFromContext(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	base := zap.New(core).Sugar()

	ctx := WithInvocationID(context.Background(), "inv-42")
	ctx = WithComponent(ctx, "watch")
	FromContext(ctx, base).Infow("run")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "inv-42", fields[FieldInvocationID])
	assert.Equal(t, "watch", fields[FieldComponent])
}
