package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	log := New("test-package")

	assert.NotNil(t, log)
}

func TestContextWithTraceID(t *testing.T) {
	ctx := context.Background()
	traceID := "test-trace-123"

	ctx = ContextWithTraceID(ctx, traceID)

	assert.Equal(t, traceID, TraceIDFromContext(ctx))
}

func TestTraceIDFromContext_Missing(t *testing.T) {
	assert.Equal(t, "", TraceIDFromContext(context.Background()))
}

func TestLogger_ErrorMethods(t *testing.T) {
	log := New("test")

	err := log.Error("test error")
	assert.Error(t, err)

	original := errors.New("original")
	returned := log.Err("context", original)
	assert.ErrorIs(t, returned, original)

	msgErr := log.ErrMsg("plain message")
	assert.EqualError(t, msgErr, "plain message")
}

func TestLogger_Chaining(t *testing.T) {
	log := New("test")

	assert.NotNil(t, log.With("key", "value"))
	assert.NotNil(t, log.File("test.go"))
	assert.NotNil(t, log.Function("testFunc"))
	assert.NotNil(t, log.WithTraceID("trace-123"))
}

func TestNewWithConfig_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithConfig(Config{
		Name:   "configured",
		Format: FormatJSON,
		Level:  slog.LevelInfo,
		Writer: &buf,
	})

	log.Info("hello", "answer", 42)

	out := buf.String()
	assert.True(t, strings.Contains(out, `"package":"configured"`), out)
	assert.True(t, strings.Contains(out, `"answer":42`), out)
}

func TestNewWithContext_CarriesTraceID(t *testing.T) {
	ctx := ContextWithTraceID(context.Background(), "abc-123")

	log := NewWithContext(ctx, "test")

	assert.NotNil(t, log)
}
