package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewFileWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "secdeck.log")
	log, err := NewFile(path, false)
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("scan complete", zap.String("scan_id", "s1"))
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "scan complete", entry["message"])
	assert.Equal(t, "s1", entry["scan_id"])
	assert.Contains(t, entry, "timestamp")
}

func TestNewFileWithoutPathIsNop(t *testing.T) {
	log, err := NewFile("", true)
	require.NoError(t, err)
	assert.NotNil(t, log)
	log.Info("dropped")
}
