package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_Fields(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	var buf bytes.Buffer
	log := NewWithWriter("info", &buf).With("component", "test")

	log.Debug("hidden")
	log.Info("record saved", map[string]interface{}{
		"category": "M",
		"id":       "42",
	})

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "record saved", entry["message"])
	assert.Equal(t, "M", entry["category"])
	assert.Equal(t, "test", entry["component"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "plaka-takip", entry["service"])
}

func TestAddFields_TypedValues(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	var buf bytes.Buffer
	NewWithWriter("debug", &buf).Error("sms failed", map[string]interface{}{
		"error":   errors.New("gateway down"),
		"elapsed": 1500 * time.Millisecond,
		"count":   3,
	})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "gateway down", entry["error"])
	assert.Equal(t, float64(1500), entry["elapsed"])
	assert.Equal(t, float64(3), entry["count"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, parseLevel("WARNING"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("unknown"))
	assert.Equal(t, zerolog.Disabled, parseLevel("off"))
}
