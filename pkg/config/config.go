// Package config loads the application configuration from the environment and
// an optional JSON config file.
package config

import (
	"encoding/json"
	"fmt"

	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds the application configuration. Environment variables carry the
// same names as the koanf tags; a config file, when given, is loaded first and
// the environment overrides it.
type Config struct {
	// ReaderPlugin is the name of the reader plugin to use.
	ReaderPlugin string `koanf:"MOMO_READER"`

	// WriterPlugin is the name of the writer plugin to use.
	WriterPlugin string `koanf:"MOMO_WRITER"`

	// ReaderConfig is the JSON configuration for the reader plugin.
	ReaderConfig json.RawMessage `koanf:"MOMO_READER_CONFIG"`

	// WriterConfig is the JSON configuration for the writer plugin.
	WriterConfig json.RawMessage `koanf:"MOMO_WRITER_CONFIG"`

	// Store selects the relational store backing the HTTP API
	// ("sqlite" or "postgres").
	Store string `koanf:"MOMO_STORE"`

	HTTP     HTTPConfig
	Postgres PostgresConfig
	SQLite   SQLiteConfig
}

// HTTPConfig holds the query API listener configuration.
type HTTPConfig struct {
	Addr string `koanf:"MOMO_HTTP_ADDR"`
}

// PostgresConfig holds PostgreSQL connection configuration.
type PostgresConfig struct {
	Host     string `koanf:"MOMO_POSTGRES_HOST"`
	Port     int    `koanf:"MOMO_POSTGRES_PORT"`
	Database string `koanf:"MOMO_POSTGRES_DB"`
	User     string `koanf:"MOMO_POSTGRES_USER"`
	Password string `koanf:"MOMO_POSTGRES_PASSWORD"`
	SSLMode  string `koanf:"MOMO_POSTGRES_SSLMODE"`
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `koanf:"MOMO_SQLITE_PATH"`
}

// Load reads configuration from the optional JSON file at path, then from the
// environment, and applies defaults for anything still unset.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), kjson.Parser()); err != nil {
			return Config{}, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", nil), nil); err != nil {
		return Config{}, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.ReaderPlugin == "" {
		c.ReaderPlugin = "smsxml"
	}
	if c.WriterPlugin == "" {
		c.WriterPlugin = "sqlite"
	}
	if c.Store == "" {
		c.Store = "sqlite"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.SQLite.Path == "" {
		c.SQLite.Path = "momo_transactions.db"
	}
}
