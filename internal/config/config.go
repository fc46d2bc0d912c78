// Package config provides configuration management for identitymap.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/goccy/go-json"
)

const (
	// DefaultWorkerPort is the default HTTP port for the worker service.
	DefaultWorkerPort = 37411
	// DefaultMaxConns is the default SQLite connection pool size.
	DefaultMaxConns = 4
	// DefaultRankLimit is the default number of ranked participants returned.
	DefaultRankLimit = 20
	// DefaultSearchLimit is the default number of free-text search hits.
	DefaultSearchLimit = 20

	dataDirName  = ".identitymap"
	settingsFile = "settings.json"
	dbFile       = "identitymap.db"
	catalogFile  = "catalog.yaml"
)

// Config holds runtime configuration for the worker.
// Settings come from ~/.identitymap/settings.json, overridden by environment
// variables of the same name.
type Config struct {
	WorkerPort  int    `json:"IDENTITYMAP_WORKER_PORT"`
	MaxConns    int    `json:"IDENTITYMAP_MAX_CONNS"`
	RankLimit   int    `json:"IDENTITYMAP_RANK_LIMIT"`
	SearchLimit int    `json:"IDENTITYMAP_SEARCH_LIMIT"`
	DBPath      string `json:"IDENTITYMAP_DB_PATH"`
	CatalogPath string `json:"IDENTITYMAP_CATALOG_PATH"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		WorkerPort:  DefaultWorkerPort,
		MaxConns:    DefaultMaxConns,
		RankLimit:   DefaultRankLimit,
		SearchLimit: DefaultSearchLimit,
		DBPath:      DBPath(),
		CatalogPath: CatalogPath(),
	}
}

// DataDir returns the identitymap data directory (~/.identitymap).
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, dataDirName)
}

// DBPath returns the SQLite database path.
func DBPath() string {
	return filepath.Join(DataDir(), dbFile)
}

// SettingsPath returns the settings file path.
func SettingsPath() string {
	return filepath.Join(DataDir(), settingsFile)
}

// CatalogPath returns the suggested-tag catalog path.
func CatalogPath() string {
	return filepath.Join(DataDir(), catalogFile)
}

// EnsureDataDir creates the data directory if it does not exist.
func EnsureDataDir() error {
	return os.MkdirAll(DataDir(), 0o750)
}

// EnsureSettings writes a default settings file if none exists.
func EnsureSettings() error {
	path := SettingsPath()
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	data, err := json.MarshalIndent(Default(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal default settings: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// EnsureAll creates the data directory and settings file.
func EnsureAll() error {
	if err := EnsureDataDir(); err != nil {
		return err
	}
	return EnsureSettings()
}

// Load reads settings.json and applies environment overrides. A missing or
// malformed settings file yields defaults, not an error.
func Load() (*Config, error) {
	cfg := Default()

	if data, err := os.ReadFile(SettingsPath()); err == nil {
		// Unmarshal over defaults so absent keys keep their default value.
		// Malformed JSON falls back to pure defaults.
		loaded := Default()
		if jsonErr := json.Unmarshal(data, loaded); jsonErr == nil {
			cfg = loaded
		}
	}

	applyEnvOverrides(cfg)
	normalize(cfg)
	return cfg, nil
}

var (
	cached   *Config
	cachedMu sync.Mutex
)

// Get returns the cached configuration, loading it on first use.
func Get() *Config {
	cachedMu.Lock()
	defer cachedMu.Unlock()
	if cached == nil {
		cached, _ = Load()
	}
	return cached
}

// Reset clears the cached configuration. Intended for tests.
func Reset() {
	cachedMu.Lock()
	defer cachedMu.Unlock()
	cached = nil
}

func applyEnvOverrides(cfg *Config) {
	if v, ok := envInt("IDENTITYMAP_WORKER_PORT"); ok {
		cfg.WorkerPort = v
	}
	if v, ok := envInt("IDENTITYMAP_MAX_CONNS"); ok {
		cfg.MaxConns = v
	}
	if v, ok := envInt("IDENTITYMAP_RANK_LIMIT"); ok {
		cfg.RankLimit = v
	}
	if v, ok := envInt("IDENTITYMAP_SEARCH_LIMIT"); ok {
		cfg.SearchLimit = v
	}
	if v := os.Getenv("IDENTITYMAP_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("IDENTITYMAP_CATALOG_PATH"); v != "" {
		cfg.CatalogPath = v
	}
}

func envInt(name string) (int, bool) {
	raw := os.Getenv(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func normalize(cfg *Config) {
	if cfg.WorkerPort <= 0 {
		cfg.WorkerPort = DefaultWorkerPort
	}
	if cfg.MaxConns <= 0 {
		cfg.MaxConns = DefaultMaxConns
	}
	if cfg.RankLimit <= 0 {
		cfg.RankLimit = DefaultRankLimit
	}
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = DefaultSearchLimit
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DBPath()
	}
	if cfg.CatalogPath == "" {
		cfg.CatalogPath = CatalogPath()
	}
}
