package telemetry

import (
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWithoutDSN(t *testing.T) {
	require.NoError(t, Init(Options{}))
	assert.False(t, enabled)
	Close()
}

func TestScrubEvent(t *testing.T) {
	// Arrange
	event := &sentry.Event{
		Message:   "call to bot123:secret failed",
		Exception: []sentry.Exception{{Value: "Post https://api.telegram.org/bot123:secret/sendMessage: timeout"}},
		Extra:     map[string]any{"key": "sk-live", "n": 3},
	}

	// Act
	got := scrubEvent(event, scrubber([]string{"123:secret", "sk-live", ""}))

	// Assert
	assert.Equal(t, "call to bot[redacted] failed", got.Message)
	assert.NotContains(t, got.Exception[0].Value, "123:secret")
	assert.Equal(t, "[redacted]", got.Extra["key"])
	assert.Equal(t, 3, got.Extra["n"])
}
