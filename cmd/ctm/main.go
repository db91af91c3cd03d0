package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/tgienger/ctm/internal/api"
	"github.com/tgienger/ctm/internal/clock"
	"github.com/tgienger/ctm/internal/config"
	"github.com/tgienger/ctm/internal/duedate"
	"github.com/tgienger/ctm/internal/store"
	"github.com/tgienger/ctm/internal/ui"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("ctm %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	configPath := flag.String("config", "", "path to a YAML or TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// The terminal belongs to the TUI, so logs go to a file
	logger, err := newFileLogger(cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	calc, err := duedate.NewCalculator(cfg.DisplayTimezone, clock.Real{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading timezone: %v\n", err)
		os.Exit(1)
	}

	client := api.New(cfg.ServerURL,
		api.WithTimeout(cfg.Timeout),
		api.WithLogger(logger.Named("api")),
	)
	s := store.New(client,
		store.WithInputLocation(cfg.InputLoc),
		store.WithLogger(logger.Named("store")),
	)
	defer s.Close()

	logger.Info("starting ctm",
		zap.String("version", version),
		zap.String("server_url", cfg.ServerURL),
		zap.String("display_timezone", cfg.DisplayTimezone),
	)

	// Create and run the application
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app := ui.NewApp(ctx, s, calc)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		logger.Error("application exited with error", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error running application: %v\n", err)
		os.Exit(1)
	}
}

func newFileLogger(path string) (*zap.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	zcfg := zap.NewProductionConfig()
	zcfg.OutputPaths = []string{path}
	zcfg.ErrorOutputPaths = []string{path}
	return zcfg.Build()
}
