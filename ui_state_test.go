package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUIConfigRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "secdeck")
	cfg, path := loadUIConfig(dir)
	assert.Equal(t, &uiConfig{}, cfg)
	assert.Equal(t, filepath.Join(dir, "ui.yaml"), path)

	cfg.Theme = "dark"
	cfg.LastTool = "value-chain"
	cfg.SingleSheet = true
	cfg.OpenCommand = "xdg-open {path}"
	require.NoError(t, saveUIConfig(cfg, path))

	loaded, _ := loadUIConfig(dir)
	assert.Equal(t, cfg, loaded)
}

func TestUIConfigIgnoresBrokenFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ui.yaml"), []byte("theme: [oops"), 0o644))
	cfg, _ := loadUIConfig(dir)
	assert.Equal(t, &uiConfig{}, cfg)
}
