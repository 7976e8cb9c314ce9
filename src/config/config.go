// SPDX-License-Identifier: MIT

// Package config is the layered configuration loader: defaults →
// TOML file → SEESEA_-prefixed environment variables → CLI flags,
// backed by go-toml/v2 and server.toml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	ProjectOrg = "apimgr"
	ProjectName = "seesea"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config holds the whole application's configuration.
type Config struct {
	General GeneralConfig `toml:"general"`
	Server ServerConfig `toml:"server"`
	Search SearchConfig `toml:"search"`
	Cache CacheConfig `toml:"cache"`
	Privacy PrivacyConfig `toml:"privacy"`
	Engines map[string]EngineEntry `toml:"engines"`
}

// GeneralConfig holds process-wide settings.
type GeneralConfig struct {
	Mode string `toml:"mode"` // "production" or "development"
	DataDir string `toml:"data_dir"`
	LogDir string `toml:"log_dir"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Address string `toml:"address"`
	Port int `toml:"port"`
	ReadTimeout time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
	RateLimit bool `toml:"rate_limit"`

	Logs LogsConfig `toml:"logs"`
}

// LogsConfig configures the four named log streams (ambient logging stack).
type LogsConfig struct {
	Level string `toml:"level"`
	Server StreamSpec `toml:"server"`
	Access StreamSpec `toml:"access"`
	Security StreamSpec `toml:"security"`
	Audit StreamSpec `toml:"audit"`
}

// StreamSpec configures one rotating log stream.
type StreamSpec struct {
	Enabled bool `toml:"enabled"`
	Filename string `toml:"filename"`
	Rotate string `toml:"rotate"` // e.g. "daily,50MB"
	Compress bool `toml:"compress"`
	Keep int `toml:"keep"`
}

// SearchConfig holds search-orchestration defaults.
type SearchConfig struct {
	MaxConcurrentEngines int `toml:"max_concurrent_engines"`
	GlobalDeadline time.Duration `toml:"global_deadline"`
	DefaultPageSize int `toml:"default_page_size"`
}

// CacheConfig holds the embedded KV store's settings.
type CacheConfig struct {
	DBPath string `toml:"db_path"`
	Mode string `toml:"mode"` // "low_latency" or "high_throughput"
	TTL time.Duration `toml:"ttl"`
	AllowStale bool `toml:"allow_stale"`
	RedisAddr string `toml:"redis_addr"` // optional shared tier; empty disables it
}

// PrivacyConfig holds the Privacy Manager's settings.
type PrivacyConfig struct {
	UAStrategy string `toml:"ua_strategy"` // fixed, realistic, random, custom
	CustomUA string `toml:"custom_ua"`
	FakeHeaders bool `toml:"fake_headers"`
	FakeReferer bool `toml:"fake_referer"`
	Fingerprint string `toml:"fingerprint"` // none, basic, advanced, full
	DoHEnabled bool `toml:"doh_enabled"`
	DoHServers []string `toml:"doh_servers"`
	FallbackToSystem bool `toml:"fallback_to_system"`
	GeoIPDBPath string `toml:"geoip_db_path"`

	Tor TorConfig `toml:"tor"`
}

// TorConfig configures outbound Tor circuit use.
type TorConfig struct {
	Enabled bool `toml:"enabled"`
	SOCKSAddr string `toml:"socks_addr"`
	Embedded bool `toml:"embedded"`
	DataDir string `toml:"data_dir"`
}

// EngineEntry is the per-engine [engines.<name>] override block.
type EngineEntry struct {
	Disabled bool `toml:"disabled"`
	Shortcut string `toml:"shortcut"`
	Timeout string `toml:"timeout"`
}

// Default returns the built-in configuration before any file/env/flag
// overrides are applied.
func Default() *Config {
	return &Config{
		General: GeneralConfig{Mode: "production"},
		Server: ServerConfig{
			Address: "0.0.0.0",
			Port: 8090,
			ReadTimeout: 30 * time.Second,
			WriteTimeout: 30 * time.Second,
			RateLimit: true,
			Logs: LogsConfig{
				Level: "info",
				Server: StreamSpec{Rotate: "daily,50MB", Keep: 7},
				Access: StreamSpec{Rotate: "daily,50MB", Keep: 7},
				Security: StreamSpec{Rotate: "daily,50MB", Keep: 30},
				Audit: StreamSpec{Rotate: "daily,50MB", Keep: 90},
			},
		},
		Search: SearchConfig{
			MaxConcurrentEngines: 20,
			GlobalDeadline: 30 * time.Second,
			DefaultPageSize: 20,
		},
		Cache: CacheConfig{
			Mode: "high_throughput",
			TTL: 15 * time.Minute,
			AllowStale: true,
		},
		Privacy: PrivacyConfig{
			UAStrategy: "realistic",
			FakeHeaders: true,
			Fingerprint: "advanced",
			FallbackToSystem: true,
			DoHServers: []string{"https://cloudflare-dns.com/dns-query", "https://dns.google/resolve"},
		},
		Engines: map[string]EngineEntry{},
	}
}

// Paths resolves the on-disk locations configuration is read from and
// data/logs are written to, rooted at configDir/dataDir when given.
type Paths struct {
	Config string
	Data string
	Log string
}

// ResolvePaths resolves the default config/data/log layout under this
// project's own org/name.
func ResolvePaths(configDir, dataDir string) Paths {
	if configDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			configDir = filepath.Join(home, ".config", ProjectName)
		} else {
			configDir = filepath.Join(".", ProjectName)
		}
	}
	if dataDir == "" {
		dataDir = filepath.Join(configDir, "data")
	}
	return Paths{Config: configDir, Data: dataDir, Log: filepath.Join(dataDir, "logs")}
}

// Load resolves the full layered configuration: defaults, then an optional
// server.toml in configDir, then SEESEA_-prefixed environment variables.
// A missing config file is not an error, defaults are written out so a
// later edit has something to start from.
func Load(configDir, dataDir string) (*Config, string, error) {
	paths := ResolvePaths(configDir, dataDir)
	for _, dir := range []string{paths.Config, paths.Data, paths.Log} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, "", fmt.Errorf("create config directory %s: %w", dir, err)
		}
	}

	cfg := Default()
	cfg.General.DataDir = paths.Data
	cfg.General.LogDir = paths.Log

	configPath := filepath.Join(paths.Config, "server.toml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := Save(cfg, configPath); err != nil {
			return nil, "", fmt.Errorf("write default config: %w", err)
		}
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, "", fmt.Errorf("read config %s: %w", configPath, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, "", fmt.Errorf("parse config %s: %w", configPath, err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, configPath, nil
}

// Save writes cfg to path in TOML form.
func Save(cfg *Config, path string) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	header := "# SeeSea configuration\n# Generated on first run; edit freely, comments are not preserved on rewrite.\n\n"
	return os.WriteFile(path, append([]byte(header), data...), 0o644)
}

// applyEnvOverrides applies SEESEA_-prefixed environment variables, the
// middle tier of the defaults → file → env → CLI merge order.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SEESEA_SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("SEESEA_SERVER_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("SEESEA_CACHE_DB_PATH"); v != "" {
		cfg.Cache.DBPath = v
	}
	if v := os.Getenv("SEESEA_CACHE_REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("SEESEA_PRIVACY_UA_STRATEGY"); v != "" {
		cfg.Privacy.UAStrategy = v
	}
	if v := os.Getenv("SEESEA_PRIVACY_TOR_ENABLED"); v != "" {
		cfg.Privacy.Tor.Enabled = ParseBool(v)
	}
	if v := os.Getenv("SEESEA_PRIVACY_TOR_SOCKS_ADDR"); v != "" {
		cfg.Privacy.Tor.SOCKSAddr = v
	}
	if v := os.Getenv("SEESEA_LOG_LEVEL"); v != "" {
		cfg.Server.Logs.Level = v
	}
}
