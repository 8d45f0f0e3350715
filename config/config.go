// Package config loads settings from defaults, an optional YAML file and PHOTOS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config holds every runtime setting of the catalog tools.
type Config struct {
	// DataDir is the base directory for default snapshot and stock locations.
	DataDir string `yaml:"data_dir"`
	// Store selects the snapshot driver: file, sqlite or badger.
	Store string `yaml:"store"`
	// Snapshot is the file, database or directory the store uses.
	// Empty means a driver-specific default inside DataDir.
	Snapshot string `yaml:"snapshot"`
	StockDir string `yaml:"stock_dir"`

	// AutoCreateUsers makes login create unknown accounts instead of rejecting them.
	AutoCreateUsers bool `yaml:"auto_create_users"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	ThumbCacheSize int           `yaml:"thumb_cache"`
	ThumbTTL       time.Duration `yaml:"thumb_ttl"`

	// Timezone is the IANA zone used to cut days for date search. "Local" uses the host zone.
	Timezone string `yaml:"timezone"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		DataDir:        "data",
		Store:          "file",
		LogLevel:       "info",
		LogFormat:      "console",
		ThumbCacheSize: 64,
		ThumbTTL:       10 * time.Minute,
		Timezone:       "Local",
	}
}

// Load builds the configuration. Values from the YAML file at path (skipped when empty)
// override the defaults, and PHOTOS_* environment variables override both.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.fillDerived()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv copies variables from a .env file into the environment without overriding
// ones already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.DataDir = getEnvDefault("PHOTOS_DATA_DIR", c.DataDir)
	c.Store = getEnvDefault("PHOTOS_STORE", c.Store)
	c.Snapshot = getEnvDefault("PHOTOS_SNAPSHOT", c.Snapshot)
	c.StockDir = getEnvDefault("PHOTOS_STOCK_DIR", c.StockDir)
	c.LogLevel = getEnvDefault("PHOTOS_LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnvDefault("PHOTOS_LOG_FORMAT", c.LogFormat)
	c.Timezone = getEnvDefault("PHOTOS_TIMEZONE", c.Timezone)

	var err error
	if c.AutoCreateUsers, err = getEnvBool("PHOTOS_AUTO_CREATE_USERS", c.AutoCreateUsers); err != nil {
		return fmt.Errorf("PHOTOS_AUTO_CREATE_USERS: %w", err)
	}
	if c.ThumbCacheSize, err = getEnvInt("PHOTOS_THUMB_CACHE", c.ThumbCacheSize); err != nil {
		return fmt.Errorf("PHOTOS_THUMB_CACHE: %w", err)
	}
	if c.ThumbTTL, err = getEnvDuration("PHOTOS_THUMB_TTL", c.ThumbTTL); err != nil {
		return fmt.Errorf("PHOTOS_THUMB_TTL: %w", err)
	}
	return nil
}

func (c *Config) fillDerived() {
	c.Store = strings.ToLower(strings.TrimSpace(c.Store))
	if c.Snapshot == "" {
		switch c.Store {
		case "sqlite":
			c.Snapshot = filepath.Join(c.DataDir, "photos.db")
		case "badger":
			c.Snapshot = filepath.Join(c.DataDir, "badger")
		default:
			c.Snapshot = filepath.Join(c.DataDir, "users.json")
		}
	}
	if c.StockDir == "" {
		c.StockDir = filepath.Join(c.DataDir, "stock")
	}
}

// Validate rejects settings the tools cannot run with.
func (c *Config) Validate() error {
	var errs []error
	switch c.Store {
	case "file", "sqlite", "badger":
	default:
		errs = append(errs, fmt.Errorf("store: unknown driver %q, want file, sqlite or badger", c.Store))
	}
	if c.Snapshot == "" {
		errs = append(errs, errors.New("snapshot: path is empty"))
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("log_format: %q, want console or json", c.LogFormat))
	}
	if c.ThumbCacheSize <= 0 {
		errs = append(errs, fmt.Errorf("thumb_cache: must be positive, got %d", c.ThumbCacheSize))
	}
	if c.ThumbTTL < 0 {
		errs = append(errs, fmt.Errorf("thumb_ttl: must not be negative, got %s", c.ThumbTTL))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone: %w", err)
	}
	return loc, nil
}

// NewLogger builds a zap logger writing to stderr at the configured level and format.
func NewLogger(c *Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}

	var zc zap.Config
	if c.LogFormat == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.DisableStacktrace = true
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc.Build()
}

func getEnvDefault(key, defaultVal string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("invalid boolean %q", val)
	}
	return b, nil
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", val)
	}
	return n, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q (use Go format: 30s, 10m, 1h)", val)
	}
	return d, nil
}
