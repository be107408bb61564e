package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetup_DefaultLevelIsWarn(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Config{Output: &buf})

	logger.Debug("debug line")
	logger.Info("info line")
	logger.Warn("warn line")

	out := buf.String()
	assert.NotContains(t, out, "debug line")
	assert.NotContains(t, out, "info line")
	assert.Contains(t, out, "warn line")
}

func TestSetup_VerboseEnablesDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Config{Verbose: true, Output: &buf})

	logger.Debug("api request")
	assert.Contains(t, buf.String(), "api request")
}

func TestSetup_RedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Config{Verbose: true, Output: &buf})

	logger.Debug("request", "token", "super-secret", "url", "/servers")

	out := buf.String()
	assert.NotContains(t, out, "super-secret")
	assert.Contains(t, out, "<redacted>")
	assert.Contains(t, out, "/servers")
}
