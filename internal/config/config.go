// Package config loads the seamcarver configuration file.
//
// The file is TOML and lives at $XDG_CONFIG_HOME/seamcarver/config.toml
// (falling back to ~/.config/seamcarver/config.toml). Every key is optional;
// missing keys keep the values from [Default]. Command-line flags override
// the file.
//
//	[carve]
//	direction = "alternating"
//	seed = 42
//	jobs = 4
//
//	[play]
//	interval = "40ms"
//	view = "color"
//
//	[cache]
//	backend = "redis"
//	ttl = "168h"
//
//	[cache.redis]
//	addr = "localhost:6379"
//
//	[server]
//	addr = ":8080"
//
//	[server.mongo]
//	uri = "mongodb://localhost:27017"
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/seamcarver/pkg/carve"
)

// AppName names the config and cache directories.
const AppName = "seamcarver"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

var backends = []string{BackendFile, BackendRedis, BackendNone}

// Duration is a time.Duration written as a string ("40ms", "24h") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config is the full configuration file.
type Config struct {
	Carve  CarveConfig  `toml:"carve"`
	Play   PlayConfig   `toml:"play"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// CarveConfig holds defaults for the carve command.
type CarveConfig struct {
	Direction string `toml:"direction"`
	Seed      uint64 `toml:"seed"`
	// Jobs bounds how many images are carved concurrently.
	Jobs   int    `toml:"jobs"`
	Format string `toml:"format,omitempty"`
}

// PlayConfig holds defaults for the interactive player.
type PlayConfig struct {
	Interval Duration `toml:"interval"`
	View     string   `toml:"view"`
}

// CacheConfig selects and configures the result cache.
type CacheConfig struct {
	Backend string      `toml:"backend"`
	Dir     string      `toml:"dir,omitempty"`
	TTL     Duration    `toml:"ttl"`
	Redis   RedisConfig `toml:"redis"`
}

// RedisConfig configures the Redis cache backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password,omitempty"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// ServerConfig configures `seamcarver serve`.
type ServerConfig struct {
	Addr           string      `toml:"addr"`
	MaxUploadBytes int64       `toml:"max_upload_bytes"`
	Timeout        Duration    `toml:"timeout"`
	Mongo          MongoConfig `toml:"mongo"`
}

// MongoConfig configures the MongoDB job store. An empty URI keeps jobs in memory.
type MongoConfig struct {
	URI      string `toml:"uri,omitempty"`
	Database string `toml:"database"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Carve: CarveConfig{
			Direction: carve.DirectionVertical.String(),
			Seed:      carve.DefaultSeed,
			Jobs:      4,
		},
		Play: PlayConfig{
			Interval: Duration{40 * time.Millisecond},
			View:     carve.ViewColor.String(),
		},
		Cache: CacheConfig{
			Backend: BackendFile,
			TTL:     Duration{7 * 24 * time.Hour},
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: AppName + ":",
			},
		},
		Server: ServerConfig{
			Addr:           ":8080",
			MaxUploadBytes: 32 << 20,
			Timeout:        Duration{2 * time.Minute},
			Mongo:          MongoConfig{Database: AppName},
		},
	}
}

// Path returns the default config file location.
func Path() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// CacheDir returns the file cache directory: the configured one, or
// $XDG_CACHE_HOME/seamcarver (~/.cache/seamcarver).
func (c Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}

// Load reads the config at path on top of [Default]. An empty path loads
// the default location, where a missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, cfg.Validate()
}

// Decode reads a config from r on top of [Default].
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Validate checks values that the TOML types cannot.
func (c Config) Validate() error {
	if _, err := carve.ParseDirection(c.Carve.Direction); err != nil {
		return fmt.Errorf("carve.direction: %w", err)
	}
	if c.Carve.Jobs < 1 {
		return fmt.Errorf("carve.jobs must be at least 1, got %d", c.Carve.Jobs)
	}
	if c.Play.Interval.Duration <= 0 {
		return fmt.Errorf("play.interval must be positive, got %s", c.Play.Interval)
	}
	if v := c.Play.View; v != carve.ViewColor.String() && v != carve.ViewEnergy.String() {
		return fmt.Errorf("play.view must be %q or %q, got %q", carve.ViewColor, carve.ViewEnergy, v)
	}
	if !slices.Contains(backends, c.Cache.Backend) {
		return fmt.Errorf("cache.backend must be one of %s, got %q", strings.Join(backends, ", "), c.Cache.Backend)
	}
	if c.Cache.Backend == BackendRedis && c.Cache.Redis.Addr == "" {
		return fmt.Errorf("cache.redis.addr is required for the redis backend")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive")
	}
	return nil
}

// Encode writes cfg as TOML.
func Encode(w io.Writer, cfg Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}

// Write saves cfg to path, creating parent directories. It refuses to
// overwrite an existing file unless force is set.
func Write(path string, cfg Config, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config %s already exists", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, cfg); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
