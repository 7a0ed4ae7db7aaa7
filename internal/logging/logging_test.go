package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "info")

	ctx := IntoContext(context.Background(), l.With("request_id", "r1"))
	FromContext(ctx).Info("hello")

	require.Contains(t, buf.String(), `"request_id":"r1"`)
	require.Contains(t, buf.String(), `"msg":"hello"`)
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	require.Equal(t, slog.Default(), FromContext(context.Background()))
}

func TestLevelParsing(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "warn")

	l.Info("quiet")
	require.Empty(t, buf.String())

	l.Warn("loud")
	require.Contains(t, buf.String(), `"msg":"loud"`)
}
