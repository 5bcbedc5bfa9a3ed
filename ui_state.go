package main

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type uiConfig struct {
	Theme       string `yaml:"theme,omitempty"`
	LastTool    string `yaml:"last_tool,omitempty"`
	SingleSheet bool   `yaml:"single_sheet,omitempty"`
	// OpenCommand runs after each download, e.g. `xdg-open {path}`.
	OpenCommand string `yaml:"open_command,omitempty"`
}

// loadUIConfig never fails: a missing or broken file yields defaults.
func loadUIConfig(configDir string) (*uiConfig, string) {
	path := filepath.Join(configDir, "ui.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return &uiConfig{}, path
	}
	var cfg uiConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return &uiConfig{}, path
	}
	return &cfg, path
}

func saveUIConfig(cfg *uiConfig, path string) error {
	if cfg == nil {
		cfg = &uiConfig{}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
