// Package config loads the planning server configuration and the aircraft
// profile files, both TOML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the main application configuration with all sections.
type Config struct {
	Server   ServerConfig   `toml:"server"`   // HTTP server settings
	Logging  LoggingConfig  `toml:"logging"`  // Application logging settings
	Storage  StorageConfig  `toml:"storage"`  // Navigation data persistence settings
	Data     DataConfig     `toml:"data"`     // Navigation data input settings
	Planning PlanningConfig `toml:"planning"` // Flight planning defaults
}

// ServerConfig contains HTTP server configuration settings.
type ServerConfig struct {
	Port               int      `toml:"port"`                  // HTTP port for the server
	Host               string   `toml:"host"`                  // Host address to bind to (e.g., 127.0.0.1 for localhost only)
	CORSAllowedOrigins []string `toml:"cors_allowed_origins"`  // Origins allowed for CORS requests (["*"] for all)
	ReadTimeoutSecs    int      `toml:"read_timeout_seconds"`  // Maximum duration for reading the entire request
	WriteTimeoutSecs   int      `toml:"write_timeout_seconds"` // Maximum duration for writing the response
	IdleTimeoutSecs    int      `toml:"idle_timeout_seconds"`  // Keep-alive idle timeout
}

// LoggingConfig contains application logging configuration.
type LoggingConfig struct {
	Level  string `toml:"level"`  // Log level: "debug", "info", "warn", or "error"
	Format string `toml:"format"` // Log format: "json" (structured) or "console" (human-readable)
}

// StorageConfig contains navigation data persistence configuration.
type StorageConfig struct {
	SQLitePath string `toml:"sqlite_path"` // Path of the SQLite navigation data dump ("" disables persistence)
}

// DataConfig names the navigation data inputs loaded at startup.
type DataConfig struct {
	Arinc424Paths []string `toml:"arinc424_paths"` // ARINC 424 files merged into the navigation database
	OpenAirPaths  []string `toml:"openair_paths"`  // OpenAir airspace files merged into the navigation database
	WMMEpoch      string   `toml:"wmm_epoch"`      // Date (YYYY-MM-DD) the World Magnetic Model is evaluated at
}

// PlanningConfig carries the flight planning defaults applied when a request
// leaves them out.
type PlanningConfig struct {
	TaxiFuelLiters    float64 `toml:"taxi_fuel_liters"`    // Default taxi fuel in liters
	ReserveMinutes    int     `toml:"reserve_minutes"`     // Default reserve duration in minutes
	PrinterLineLength int     `toml:"printer_line_length"` // Column width of the plan text rendering
	AircraftDir       string  `toml:"aircraft_dir"`        // Directory of aircraft profile TOML files
}

// DefaultConfig returns the configuration used when no file is found.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:               8080,
			Host:               "127.0.0.1",
			CORSAllowedOrigins: []string{"*"},
			ReadTimeoutSecs:    30,
			WriteTimeoutSecs:   30,
			IdleTimeoutSecs:    60,
		},
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Planning: PlanningConfig{
			TaxiFuelLiters:    10,
			ReserveMinutes:    30,
			PrinterLineLength: 40,
			AircraftDir:       "aircraft",
		},
		Data: DataConfig{WMMEpoch: time.Now().Format("2006-01-02")},
	}
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadWithFallback loads the configuration from path if given, otherwise
// searches configs/fms.toml and fms.toml, and falls back to the defaults.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	for _, candidate := range []string{filepath.Join("configs", "fms.toml"), "fms.toml"} {
		if _, err := os.Stat(candidate); err == nil {
			return Load(candidate)
		}
	}
	return DefaultConfig(), nil
}

// Validate checks the configuration for values the server cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.Logging.Level)
	}
	if c.Data.WMMEpoch != "" {
		if _, err := time.Parse("2006-01-02", c.Data.WMMEpoch); err != nil {
			return fmt.Errorf("invalid wmm_epoch %q: %w", c.Data.WMMEpoch, err)
		}
	}
	if c.Planning.TaxiFuelLiters < 0 {
		return fmt.Errorf("taxi fuel must not be negative")
	}
	if c.Planning.ReserveMinutes < 0 {
		return fmt.Errorf("reserve minutes must not be negative")
	}
	return nil
}

// WMMEpochTime returns the parsed WMM epoch, defaulting to now.
func (c *Config) WMMEpochTime() time.Time {
	if t, err := time.Parse("2006-01-02", c.Data.WMMEpoch); err == nil {
		return t
	}
	return time.Now()
}
