package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/tgienger/ctm/internal/config"
	"github.com/tgienger/ctm/internal/db"
	"github.com/tgienger/ctm/internal/server"
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
		fmt.Printf("ctmd %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	configPath := flag.String("config", "", "path to a YAML or TOML config file")
	seed := flag.Bool("seed", false, "insert demo tasks when the store is empty")
	memory := flag.Bool("memory", false, "keep tasks in memory instead of a database")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(logger)
	defer func() {
		if err := logger.Sync(); err != nil {
			zap.L().Debug("failed to sync logger", zap.Error(err))
		}
	}()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	var repo server.Repository
	if *memory {
		repo = db.NewMemoryRepo()
		logger.Info("using in-memory repository")
	} else {
		if cfg.DBDriver == db.DriverSQLite {
			if err := os.MkdirAll(filepath.Dir(cfg.DBDSN), 0755); err != nil {
				logger.Fatal("failed to create data directory", zap.Error(err))
			}
		}
		database, err := db.Open(cfg.DBDriver, cfg.DBDSN)
		if err != nil {
			logger.Fatal("failed to open database", zap.String("driver", cfg.DBDriver), zap.Error(err))
		}
		defer func() {
			if err := database.Close(); err != nil {
				logger.Warn("failed to close database", zap.Error(err))
			}
		}()
		repo = database
		logger.Info("using database", zap.String("driver", cfg.DBDriver))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *seed || cfg.Seed {
		if err := server.Seed(ctx, repo, time.Now(), logger); err != nil {
			logger.Fatal("failed to seed tasks", zap.Error(err))
		}
	}

	router := server.NewRouter(repo, logger)
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.WithCORS(router, cfg.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("starting server", zap.String("addr", cfg.ListenAddr), zap.String("version", version))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("could not start server", zap.Error(err))
	}
	logger.Info("server stopped")
}
