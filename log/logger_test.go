package log

import (
	"bytes"
	"testing"

	"github.com/kataras/golog"
	"github.com/stretchr/testify/assert"
)

func TestStdLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, LevelWarn)

	logger.Debug("debug message")
	logger.Info("info message")
	assert.Empty(t, buf.String())

	logger.Warn("warn message")
	logger.Error("error message")

	out := buf.String()
	assert.Contains(t, out, "[WARN] warn message")
	assert.Contains(t, out, "[ERROR] error message")
	assert.NotContains(t, out, "info message")
}

func TestStdLogger_Formatting(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, LevelDebug)

	logger.Info("retry %d of %d", 2, 10)
	assert.Contains(t, buf.String(), "retry 2 of 10")
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "NONE", LevelNone.String())
}

func TestSetDefault(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	nop := &NopLogger{}
	SetDefault(nop)
	assert.Same(t, Logger(nop), Default())
}

func TestGologLogger(t *testing.T) {
	glogger := golog.New()
	logger := NewGologLogger(glogger)

	assert.Equal(t, LevelInfo, logger.GetLevel())

	logger.SetLevel(LevelError)
	assert.Equal(t, LevelError, logger.GetLevel())

	// Should not panic at any level
	logger.SetLevel(LevelDebug)
	logger.Debug("debug: %s", "x")
	logger.Info("info: %d", 1)
	logger.Warn("warn")
	logger.Error("error")
}
