package logging_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrshanahan/notes-web/internal/logging"
)

func TestSetupRejectsUnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	_, err := logging.Setup(&buf, "loud", false)
	assert.Error(t, err)
}

func TestSetupJSONHandler(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.Setup(&buf, "info", false)
	require.NoError(t, err)

	logger.Info("hello", "key", "value")
	out := buf.String()
	assert.Contains(t, out, `"msg":"hello"`)
	assert.Contains(t, out, `"key":"value"`)
}

func TestSetupLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.Setup(&buf, "warn", false)
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept")
	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "kept")
}
