// Package config resolves runtime settings from an optional .env file and the
// process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultBaseURL  = "http://localhost:5050"
	DefaultMockAddr = ":5050"
)

type Config struct {
	BaseURL         string
	DownloadDir     string
	RequestTimeout  time.Duration
	GenerateTimeout time.Duration
	CacheTTL        time.Duration
	LogFile         string
	Debug           bool
	BrandColors     string
	HistoryDB       string
	MockAddr        string
	// ConfigDir holds ui.yaml, the history database and logs by default.
	ConfigDir string
}

// Load reads envFiles (".env" when none are given) without overriding
// variables already set, then builds the Config. Missing env files are fine.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}
	return FromEnv()
}

// FromEnv builds the Config from the environment alone.
func FromEnv() (Config, error) {
	cfg := Config{
		BaseURL:     strings.TrimRight(env("SECDECK_BASE_URL", DefaultBaseURL), "/"),
		ConfigDir:   ConfigDir(),
		BrandColors: os.Getenv("SECDECK_BRAND_COLORS"),
		MockAddr:    env("SECDECK_MOCK_ADDR", DefaultMockAddr),
	}
	cfg.DownloadDir = expandHome(env("SECDECK_DOWNLOAD_DIR", defaultDownloadDir()))
	cfg.LogFile = expandHome(env("SECDECK_LOG_FILE", filepath.Join(cfg.ConfigDir, "secdeck.log")))
	cfg.HistoryDB = expandHome(env("SECDECK_HISTORY_DB", filepath.Join(cfg.ConfigDir, "history.db")))

	var err error
	if cfg.RequestTimeout, err = duration("SECDECK_REQUEST_TIMEOUT", 30*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.GenerateTimeout, err = duration("SECDECK_GENERATE_TIMEOUT", 5*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.CacheTTL, err = duration("SECDECK_CACHE_TTL", 5*time.Minute); err != nil {
		return Config{}, err
	}
	if raw := strings.TrimSpace(os.Getenv("SECDECK_DEBUG")); raw != "" {
		if cfg.Debug, err = strconv.ParseBool(raw); err != nil {
			return Config{}, fmt.Errorf("SECDECK_DEBUG: %w", err)
		}
	}
	return cfg, nil
}

// ConfigDir is the per-user secdeck directory.
func ConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "secdeck")
}

func env(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func duration(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be positive, got %s", key, raw)
	}
	return d, nil
}

func defaultDownloadDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Downloads")
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
