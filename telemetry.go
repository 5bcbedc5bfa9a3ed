package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// telemetryEvent is one NDJSON line; cmd/eventsummary reads the same shape.
type telemetryEvent struct {
	SessionID string            `json:"session_id"`
	Timestamp time.Time         `json:"timestamp"`
	Tool      string            `json:"tool"`
	Event     string            `json:"event"`
	Fields    map[string]string `json:"fields,omitempty"`
}

type telemetryLogger struct {
	path      string
	sessionID string
	mu        sync.Mutex
	now       func() time.Time
}

func newTelemetryLogger(path string) *telemetryLogger {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	return &telemetryLogger{
		path:      path,
		sessionID: uuid.NewString(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func telemetryPath(configDir string) string {
	return filepath.Join(configDir, "telemetry.ndjson")
}

// Emit appends the event. Failures are dropped; telemetry never blocks the UI.
func (t *telemetryLogger) Emit(tool, event string, fields map[string]string) {
	if t == nil || strings.TrimSpace(event) == "" {
		return
	}
	rec := telemetryEvent{
		SessionID: t.sessionID,
		Timestamp: t.now(),
		Tool:      tool,
		Event:     event,
	}
	if len(fields) > 0 {
		rec.Fields = fields
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return
	}
	data = append(data, '\n')

	t.mu.Lock()
	defer t.mu.Unlock()
	f, err := os.OpenFile(t.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = f.Write(data)
}
