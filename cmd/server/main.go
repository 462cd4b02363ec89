package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/yegors/fms/internal/api"
	"github.com/yegors/fms/internal/config"
	"github.com/yegors/fms/internal/fms"
	"github.com/yegors/fms/internal/geo"
	"github.com/yegors/fms/internal/storage/sqlite"
	"github.com/yegors/fms/internal/websocket"
	"github.com/yegors/fms/pkg/logger"
)

var (
	// Version is injected at build time
	Version = "dev"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (optional - will search in configs/ and root directory)")
	flag.Parse()

	cfg, err := config.LoadWithFallback(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting FMS planning server",
		logger.String("version", Version),
		logger.String("config_path", *configPath))

	magvar := geo.NewMagVarModel(cfg.WMMEpochTime())
	flightSystem := fms.New(magvar, log)

	// Load navigation data: a previous SQLite dump restores without
	// reparsing, then any configured source files merge on top
	// (first-in wins on collisions).
	var store *sqlite.NavDataStorage
	if cfg.Storage.SQLitePath != "" {
		store, err = sqlite.NewNavDataStorage(cfg.Storage.SQLitePath, log)
		if err != nil {
			log.Error("Failed to open navigation data storage", logger.Error(err))
			os.Exit(1)
		}
		defer store.Close()

		if db, err := store.Load(); err != nil {
			log.Warn("Failed to load stored navigation data", logger.Error(err))
		} else if !db.IsEmpty() {
			flightSystem.ND().Merge(db)
			log.Info("Restored navigation data from storage",
				logger.Int("fixes", len(db.Fixes())))
		}
	}

	for _, path := range cfg.Data.Arinc424Paths {
		if err := readNavData(flightSystem, path, fms.FormatARINC424); err != nil {
			log.Error("Failed to read ARINC 424 file", logger.String("path", path), logger.Error(err))
			os.Exit(1)
		}
	}
	for _, path := range cfg.Data.OpenAirPaths {
		if err := readNavData(flightSystem, path, fms.FormatOpenAir); err != nil {
			log.Error("Failed to read OpenAir file", logger.String("path", path), logger.Error(err))
			os.Exit(1)
		}
	}

	if store != nil && !flightSystem.ND().IsEmpty() {
		if err := store.Save(flightSystem.ND()); err != nil {
			log.Warn("Failed to persist navigation data", logger.Error(err))
		}
	}

	profiles := loadAircraftProfiles(cfg.Planning.AircraftDir, log)

	wsServer := websocket.NewServer(log)
	go wsServer.Run()

	router := api.NewRouter(flightSystem, profiles, cfg, log, wsServer)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router.Routes(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSecs) * time.Second,
	}

	go func() {
		log.Info("HTTP server listening", logger.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server failed", logger.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Shutdown failed", logger.Error(err))
	}
}

// readNavData feeds one navigation data file to the FMS. The parsers consume
// in-memory strings; the file read happens here at the binary boundary.
func readNavData(f *fms.FMS, path string, format fms.InputFormat) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return f.NDRead(string(data), format)
}

// loadAircraftProfiles reads every TOML profile in the directory, keyed by
// registration. A missing directory simply yields no profiles.
func loadAircraftProfiles(dir string, log *logger.Logger) map[string]*config.AircraftProfile {
	profiles := make(map[string]*config.AircraftProfile)
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Warn("No aircraft profiles loaded", logger.String("dir", dir), logger.Error(err))
		return profiles
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".toml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		p, err := config.LoadAircraftProfile(path)
		if err != nil {
			log.Warn("Skipping aircraft profile", logger.String("path", path), logger.Error(err))
			continue
		}
		profiles[p.Registration] = p
		log.Info("Loaded aircraft profile", logger.String("registration", p.Registration))
	}
	return profiles
}
