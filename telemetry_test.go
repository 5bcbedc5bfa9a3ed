package main

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelemetryAppendsEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "telemetry.ndjson")
	logger := newTelemetryLogger(path)
	require.NotNil(t, logger)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	logger.now = func() time.Time { return fixed }

	logger.Emit("filings", "search", map[string]string{"query": "apple"})
	logger.Emit("filings", "", nil)
	logger.Emit("landscape", "reset", nil)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var events []telemetryEvent
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var ev telemetryEvent
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &ev))
		events = append(events, ev)
	}
	require.Len(t, events, 2)
	assert.Equal(t, "search", events[0].Event)
	assert.Equal(t, "apple", events[0].Fields["query"])
	assert.Equal(t, fixed, events[0].Timestamp)
	assert.Nil(t, events[1].Fields)
	assert.Equal(t, events[0].SessionID, events[1].SessionID)
	assert.NotEmpty(t, events[0].SessionID)
}

func TestNilTelemetryIsNoop(t *testing.T) {
	var logger *telemetryLogger
	assert.NotPanics(t, func() { logger.Emit("filings", "search", nil) })
	assert.Nil(t, newTelemetryLogger(""))
}
