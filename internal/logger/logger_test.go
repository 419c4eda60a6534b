package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func resetLogger() {
	SetVerbose(false)
	SetOutput(os.Stderr)
}

func TestDebugRespectsVerbose(t *testing.T) {
	defer resetLogger()
	var buf bytes.Buffer
	SetOutput(&buf)

	Debug("hidden %s", "message")
	assert.Empty(t, buf.String())

	SetVerbose(true)
	Debug("visible %s", "message")
	assert.Contains(t, buf.String(), "[DEBUG] visible message")
}

func TestInfoRespectsVerbose(t *testing.T) {
	defer resetLogger()
	var buf bytes.Buffer
	SetOutput(&buf)

	Info("quiet")
	assert.Empty(t, buf.String())

	SetVerbose(true)
	Info("loud")
	assert.Contains(t, buf.String(), "[INFO] loud")
}

func TestWarnAlwaysPrints(t *testing.T) {
	defer resetLogger()
	var buf bytes.Buffer
	SetOutput(&buf)

	Warn("degraded: %s", "no embeddings")
	assert.Contains(t, buf.String(), "[WARN] degraded: no embeddings")
}

func TestSection(t *testing.T) {
	defer resetLogger()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Section("Indexing")
	assert.Contains(t, buf.String(), "=== Indexing ===")
}

func TestIsVerbose(t *testing.T) {
	defer resetLogger()
	SetVerbose(true)
	assert.True(t, IsVerbose())
	SetVerbose(false)
	assert.False(t, IsVerbose())
}
