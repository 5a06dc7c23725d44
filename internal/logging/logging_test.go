package logging

import (
	"bytes"
	"testing"

	gojson "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "debug", Encoding: "json"}, &buf)
	require.NoError(t, err)

	logger.Debug("object pool capacity increased", zap.Int("object_count", 4))

	var entry map[string]any
	require.NoError(t, gojson.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "object pool capacity increased", entry["message"])
	assert.Equal(t, float64(4), entry["object_count"])
	assert.Contains(t, entry, "timestamp")
}

func TestNewLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Default(), &buf)
	require.NoError(t, err)

	logger.Debug("hidden")
	assert.Empty(t, buf.String())

	logger.Info("shown")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "info")
}

func TestNewEmptyConfig(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{}, &buf)
	require.NoError(t, err)
	logger.Info("ok")
	assert.Contains(t, buf.String(), "ok")
}

func TestNewInvalid(t *testing.T) {
	_, err := New(Config{Level: "loud"}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "invalid log level")

	_, err = New(Config{Encoding: "xml"}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "invalid log encoding")
}
