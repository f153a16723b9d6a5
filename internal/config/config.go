// Package config loads bot settings from a .env file, an optional YAML file
// and the process environment, in increasing order of precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Defaults.
const (
	DefaultDriver         = DriverSQLite
	DefaultSQLitePath     = "./trades.db"
	DefaultFontPath       = "./fonts/Inter-Regular.ttf"
	DefaultMetricsAddr    = ":9090"
	DefaultLogLevel       = "INFO"
	DefaultLogFormat      = "text"
	DefaultHandlerTimeout = 10 * time.Second
)

var (
	ErrMissingToken       = errors.New("discord token is required (DISCORD_TOKEN or TOKEN)")
	ErrUnknownDriver      = errors.New("unknown store driver")
	ErrMissingPostgresDSN = errors.New("postgres driver requires POSTGRES_DSN")
)

// Config holds all runtime settings.
type Config struct {
	DiscordToken   string        `yaml:"discord_token"`
	GuildID        string        `yaml:"guild_id"`
	StoreDriver    string        `yaml:"store_driver"`
	SQLitePath     string        `yaml:"sqlite_path"`
	PostgresDSN    string        `yaml:"postgres_dsn"`
	ClickhouseDSN  string        `yaml:"clickhouse_dsn"`
	FontPath       string        `yaml:"font_path"`
	MetricsAddr    string        `yaml:"metrics_addr"`
	LogLevel       string        `yaml:"log_level"`
	LogFormat      string        `yaml:"log_format"`
	HandlerTimeout time.Duration `yaml:"handler_timeout"`
}

// Default returns a Config with every default applied.
func Default() *Config {
	return &Config{
		StoreDriver:    DefaultDriver,
		SQLitePath:     DefaultSQLitePath,
		FontPath:       DefaultFontPath,
		MetricsAddr:    DefaultMetricsAddr,
		LogLevel:       DefaultLogLevel,
		LogFormat:      DefaultLogFormat,
		HandlerTimeout: DefaultHandlerTimeout,
	}
}

// Load builds the configuration. A missing .env is ignored; path, when
// non-empty, must name a readable YAML file. Variables already set in the
// environment are never replaced by .env values.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.DiscordToken, "TOKEN")
	setString(&c.DiscordToken, "DISCORD_TOKEN")
	setString(&c.GuildID, "GUILD_ID")
	setString(&c.StoreDriver, "STORE_DRIVER")
	setString(&c.SQLitePath, "SQLITE_PATH")
	setString(&c.PostgresDSN, "POSTGRES_DSN")
	setString(&c.ClickhouseDSN, "CLICKHOUSE_DSN")
	setString(&c.FontPath, "FONT_PATH")
	setString(&c.MetricsAddr, "METRICS_ADDR")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.LogFormat, "LOG_FORMAT")

	if v := os.Getenv("HANDLER_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("HANDLER_TIMEOUT: %w", err)
		}
		c.HandlerTimeout = d
	}
	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

// Validate checks the settings needed to run the bot.
func (c *Config) Validate() error {
	if c.DiscordToken == "" {
		return ErrMissingToken
	}
	return c.ValidateStore()
}

// ValidateStore checks only the storage settings, for commands that do not
// connect to Discord.
func (c *Config) ValidateStore() error {
	switch c.StoreDriver {
	case DriverSQLite, DriverMemory:
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return ErrMissingPostgresDSN
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.StoreDriver)
	}
	return nil
}
