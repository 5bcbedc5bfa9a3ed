package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/bekirdag/secdeck/internal/brand"
	"github.com/bekirdag/secdeck/internal/config"
	"github.com/bekirdag/secdeck/internal/history"
	"github.com/bekirdag/secdeck/internal/logging"
	"github.com/bekirdag/secdeck/internal/secapi"
	"github.com/bekirdag/secdeck/internal/workflow"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// historyKeep bounds the artifact history kept between runs.
const historyKeep = 500

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	theme := flag.String("theme", "", "Markdown rendering theme: auto, light, or dark")
	toolName := flag.String("tool", "", "Tool to open: filings, landscape or value-chain")
	baseURL := flag.String("base-url", "", "Document service base URL (overrides SECDECK_BASE_URL)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if strings.TrimSpace(*baseURL) != "" {
		cfg.BaseURL = strings.TrimRight(strings.TrimSpace(*baseURL), "/")
	}

	log, err := logging.NewFile(cfg.LogFile, cfg.Debug)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ui, uiPath := loadUIConfig(cfg.ConfigDir)
	themeValue := ui.Theme
	if *theme != "" {
		themeValue = *theme
	}
	tool, _ := toolFromString(ui.LastTool)
	if *toolName != "" {
		var ok bool
		if tool, ok = toolFromString(*toolName); !ok {
			return fmt.Errorf("unknown tool %q", *toolName)
		}
	}

	brands := brand.Default()
	if cfg.BrandColors != "" {
		if brands, err = brand.Load(cfg.BrandColors); err != nil {
			return err
		}
	}

	store, err := history.Open(cfg.HistoryDB)
	if err != nil {
		log.Warn("history disabled", zap.String("path", cfg.HistoryDB), zap.Error(err))
		store = nil
	} else if pruned, err := store.Prune(historyKeep); err != nil {
		log.Warn("history prune failed", zap.Error(err))
	} else if pruned > 0 {
		log.Info("history pruned", zap.Int64("removed", pruned))
	}
	defer store.Close()

	client := secapi.New(cfg.BaseURL,
		secapi.WithLogger(log.Named("api")),
		secapi.WithCache(cfg.CacheTTL),
	)

	log.Info("starting",
		zap.String("base_url", cfg.BaseURL),
		zap.String("download_dir", cfg.DownloadDir),
		zap.String("tool", string(tool)),
	)

	m := newModel(deps{
		api:       client,
		brands:    brands,
		saver:     workflow.DirSaver{Dir: cfg.DownloadDir},
		history:   store,
		telemetry: newTelemetryLogger(telemetryPath(cfg.ConfigDir)),
		log:       log,
		ui:        ui,
		uiPath:    uiPath,
		opts: workflow.Options{
			RequestTimeout:  cfg.RequestTimeout,
			GenerateTimeout: cfg.GenerateTimeout,
		},
		baseURL: client.BaseURL(),
		tool:    tool,
		theme:   markdownThemeFromString(themeValue),
	})

	_, err = tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	).Run()
	return err
}
