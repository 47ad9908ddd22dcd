package log

import (
	"errors"
	stdlog "log"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved(level Level) (*Logger, *observer.ObservedLogs) {
	atom := zap.NewAtomicLevelAt(toZapLevel(level))
	core, logs := observer.New(atom)
	return &Logger{zapLogger: zap.New(core), level: atom}, logs
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"":        LevelInfo,
		"warning": LevelWarn,
		" error ": LevelError,
		"fatal":   LevelFatal,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestLoggerFields(t *testing.T) {
	logger, logs := newObserved(LevelDebug)

	logger.With(String("component", "test")).Info("nudge applied",
		Vec3("delta", mgl64.Vec3{0.01, -0.02, 0}),
		Uint64("tick", 7),
		Duration("interval", time.Second/60),
		Error(errors.New("boom")),
	)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "nudge applied", entry.Message)

	ctx := entry.ContextMap()
	assert.Equal(t, "test", ctx["component"])
	assert.Equal(t, uint64(7), ctx["tick"])
	assert.Equal(t, []interface{}{0.01, -0.02, 0.0}, ctx["delta"])
	assert.Equal(t, "boom", ctx["error"])
}

func TestLoggerLevelSharedWithChildren(t *testing.T) {
	logger, logs := newObserved(LevelInfo)
	child := logger.Named("perturb")

	child.Debug("hidden")
	assert.Equal(t, 0, logs.Len())
	assert.False(t, child.Enabled(LevelDebug))

	logger.SetLevel(LevelDebug)
	assert.True(t, child.Enabled(LevelDebug))
	assert.Equal(t, LevelDebug, child.GetLevel())

	child.Debug("visible")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "perturb", logs.All()[0].LoggerName)
}

func TestNewRejectsUnknownEncoding(t *testing.T) {
	_, err := New(Config{Level: LevelInfo, Encoding: "xml"})
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	logger := NewNop()
	logger.Info("discarded")
	assert.NotPanics(t, func() { _ = logger.Sync() })
}

func TestZapRedirectsStandardLog(t *testing.T) {
	l, logs := newObserved(LevelInfo)
	restore := zap.RedirectStdLog(l.Zap())
	defer restore()

	stdlog.Print("http: TLS handshake error")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "http: TLS handshake error", logs.All()[0].Message)
}
