package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel("WARNING"))
	assert.Equal(t, LevelError, ParseLevel(" error "))
	assert.Equal(t, LevelInfo, ParseLevel("info"))
	assert.Equal(t, LevelInfo, ParseLevel("gibberish"))
	assert.Equal(t, LevelInfo, ParseLevel(""))
}

func TestWriterForwardsLines(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LevelInfo)

	w := NewWriter(logger, "alembic")
	n, err := w.Write([]byte("INFO  [alembic.runtime.migration] Running upgrade\npartial"))
	require.NoError(t, err)
	assert.Equal(t, 57, n)

	out := buf.String()
	assert.Contains(t, out, "Running upgrade")
	assert.Contains(t, out, "alembic")
}

func TestWriterIgnoresBlankLines(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LevelInfo)

	w := NewWriter(logger, "tool")
	_, err := w.Write([]byte("\n\r\n\n"))
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestNewLoggerNilWriterDefaultsToStderr(t *testing.T) {
	assert.NotNil(t, NewLogger(nil, LevelInfo))
}
