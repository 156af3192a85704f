// Package config loads the daemon configuration from a YAML file and
// ROSTER_* environment variables.
package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/rosterdev/roster-store/internal/vault"
)

// Config is the root daemon configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
	Schema SchemaConfig `yaml:"schema"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig holds the listener settings for both surfaces.
type ServerConfig struct {
	HTTPPort   string `yaml:"http_port"   env:"ROSTER_HTTP_PORT"   env-default:"7402"`
	TCPPort    string `yaml:"tcp_port"    env:"ROSTER_TCP_PORT"    env-default:"7401"`
	DisableTLS bool   `yaml:"disable_tls" env:"ROSTER_DISABLE_TLS" env-default:"false"`
}

// StoreConfig holds persistence settings.
type StoreConfig struct {
	DataDir string `yaml:"data_dir" env:"ROSTER_DATA_DIR" env-default:"./data"`
	// ImportDir, when set, is a legacy data directory whose buckets are
	// copied into the live store at startup.
	ImportDir string `yaml:"import_dir" env:"ROSTER_IMPORT_DIR"`
	// MasterKey, when set, must be exactly 32 bytes and enables at-rest
	// encryption of credential passwords.
	MasterKey string `yaml:"master_key" env:"ROSTER_MASTER_KEY"`
}

// SchemaConfig points at the registration form configuration.
// An empty path means the embedded default schema.
type SchemaConfig struct {
	Path string `yaml:"path" env:"ROSTER_SCHEMA_PATH"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"ROSTER_LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"ROSTER_LOG_FORMAT" env-default:"text"`
}

// Load reads configuration with priority ENV > YAML > defaults.
// The YAML path comes from CONFIG_PATH (fallback "./config.yaml"); when the
// file is absent and CONFIG_PATH was not set explicitly, configuration is
// loaded from ENV and defaults only.
func Load() (*Config, error) {
	var cfg Config

	path := os.Getenv("CONFIG_PATH")
	explicitPath := path != ""
	if !explicitPath {
		path = "./config.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// Validate rejects configurations the daemon cannot start with.
func (c *Config) Validate() error {
	if _, err := vault.ParseKey(c.Store.MasterKey); err != nil {
		return err
	}
	if c.Store.DataDir == "" {
		return fmt.Errorf("store.data_dir must not be empty")
	}
	return nil
}
