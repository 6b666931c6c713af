package logger

import (
	"bytes"
	"context"
	"testing"

	charmlog "github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"debug", "info", "warn", "error", "disabled"} {
		l, err := ParseLevel(s)
		require.NoError(t, err)
		assert.Equal(t, LogLevel(s), l)
	}
	l, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, InfoLevel, l)
	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestToCharmlogLevel(t *testing.T) {
	assert.Equal(t, charmlog.DebugLevel, DebugLevel.ToCharmlogLevel())
	assert.Equal(t, charmlog.InfoLevel, InfoLevel.ToCharmlogLevel())
	assert.Equal(t, charmlog.WarnLevel, WarnLevel.ToCharmlogLevel())
	assert.Equal(t, charmlog.ErrorLevel, ErrorLevel.ToCharmlogLevel())
	assert.Equal(t, charmlog.InfoLevel, LogLevel("unknown").ToCharmlogLevel())
}

func TestNewLogger(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(&Config{Level: WarnLevel, Output: &buf})
		l.Info("hidden")
		l.Warn("shown", "entity", "author")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
		assert.Contains(t, buf.String(), "entity=author")
	})
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(&Config{Level: InfoLevel, Output: &buf, JSON: true})
		l.With("component", "generate").Info("done")
		assert.Contains(t, buf.String(), `"msg":"done"`)
		assert.Contains(t, buf.String(), `"component":"generate"`)
	})
	t.Run("disabled", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(&Config{Level: DisabledLevel, Output: &buf})
		l.Error("nothing")
		assert.Empty(t, buf.String())
	})
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&Config{Level: InfoLevel, Output: &buf})
	ctx := ContextWithLogger(context.Background(), l)
	assert.Equal(t, l, FromContext(ctx))
	assert.NotNil(t, FromContext(context.Background()))

	prev := Default()
	t.Cleanup(func() { SetDefault(prev) })
	SetDefault(l)
	FromContext(context.Background()).Info("via default")
	assert.Contains(t, buf.String(), "via default")
}
