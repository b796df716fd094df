package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext_ReturnsAttachedLogger(t *testing.T) {
	var buf bytes.Buffer
	l := &Logger{zerolog.New(&buf).With().Str("trace_id", "abc").Logger()}

	ctx := l.WithContext(context.Background())
	FromContext(ctx).Info().Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "abc", entry["trace_id"])
	assert.Equal(t, "hello", entry["message"])
}

func TestFromContext_WithoutLoggerIsUsable(t *testing.T) {
	l := FromContext(context.Background())
	require.NotNil(t, l)
	assert.NotPanics(t, func() { l.Info().Msg("dropped") })
}

func TestGetChildLogger_DoesNotLeakFieldsToParent(t *testing.T) {
	var buf bytes.Buffer
	parent := &Logger{zerolog.New(&buf)}

	child := parent.GetChildLogger()
	child.UpdateContext(func(c zerolog.Context) zerolog.Context {
		return c.Str("trace_id", "child")
	})

	parent.Info().Msg("parent")
	assert.NotContains(t, buf.String(), "child")
}
