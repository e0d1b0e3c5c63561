package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerIsCachedPerComponent(t *testing.T) {
	first := NewLogger("test-component")
	second := NewLogger("test-component")

	require.NotNil(t, first)
	assert.Same(t, first, second)
	assert.Equal(t, "test-component", first.Data["component"])
}

func TestConfigureSwitchesFormatAndLevel(t *testing.T) {
	t.Setenv("NAVGEN_LOG_LEVEL", "")

	var buf bytes.Buffer
	SetOutput(&buf)
	Configure(Config{Level: "debug", Format: "json"})
	t.Cleanup(func() {
		Configure(Config{})
	})

	NewLogger("markdown").WithField("page", "index.html").Debug("parsed page")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "markdown", line["component"])
	assert.Equal(t, "index.html", line["page"])
	assert.Equal(t, "debug", line["level"])
}

func TestEnvironmentOverridesConfiguredLevel(t *testing.T) {
	t.Setenv("NAVGEN_LOG_LEVEL", "error")

	var buf bytes.Buffer
	SetOutput(&buf)
	Configure(Config{Level: "debug"})
	t.Cleanup(func() {
		Configure(Config{})
	})

	logger := NewLogger("env-level")
	logger.Info("hidden")
	assert.Empty(t, buf.String())

	logger.Error("shown")
	assert.Contains(t, buf.String(), "shown")
}
