// Package config loads samplefeed settings from flags, environment and an
// optional configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Name is used for the config file name and the environment prefix.
const Name = "samplefeed"

// Job sources.
const (
	SourceREST     = "rest"
	SourcePostgres = "postgres"
)

type SupabaseConfig struct {
	URL string `mapstructure:"url"`
	Key string `mapstructure:"key"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // trace|debug|info|warn|error
	Format string `mapstructure:"format"` // json|console
}

type ServerConfig struct {
	Addr  string `mapstructure:"addr"`
	Token string `mapstructure:"token"`
}

type Config struct {
	Source         string         `mapstructure:"source"`
	Supabase       SupabaseConfig `mapstructure:"supabase"`
	Database       DatabaseConfig `mapstructure:"database"`
	RequestTimeout time.Duration  `mapstructure:"request_timeout"`
	Log            LogConfig      `mapstructure:"log"`
	Server         ServerConfig   `mapstructure:"server"`
}

// SetDefaults registers the default value of every key on vip.
func SetDefaults(vip *viper.Viper) {
	vip.SetDefault("source", SourceREST)
	vip.SetDefault("supabase.url", "")
	vip.SetDefault("supabase.key", "")
	vip.SetDefault("database.url", "")
	vip.SetDefault("request_timeout", time.Duration(0))
	vip.SetDefault("log.level", "info")
	vip.SetDefault("log.format", "json")
	vip.SetDefault("server.addr", ":8080")
	vip.SetDefault("server.token", "")
}

// Init points vip at the configuration file and the environment. A missing
// configuration file is not an error.
func Init(cmd *cobra.Command, vip *viper.Viper) error {
	if v, err := cmd.Flags().GetString("config"); err == nil && v != "" {
		vip.SetConfigFile(v)
	} else {
		vip.SetConfigName(Name)
		vip.AddConfigPath(".")
		vip.AddConfigPath("/etc/" + Name)

		if binPath, err := os.Executable(); err != nil {
			log.Warn().Err(err).Msg("Failed to get current executable path, not adding it as a config dir")
		} else {
			vip.AddConfigPath(filepath.Dir(binPath))
		}
	}
	if err := vip.ReadInConfig(); err != nil {
		var e viper.ConfigFileNotFoundError
		if !errors.As(err, &e) {
			return fmt.Errorf("invalid configuration file: %w", err)
		}
		log.Debug().Msg("No configuration file, using defaults, environment and flags")
	} else {
		log.Debug().Str("file", vip.ConfigFileUsed()).Msg("Using configuration file")
	}

	vip.SetEnvPrefix(Name)
	vip.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vip.AutomaticEnv()
	return nil
}

// Load unmarshals vip into a Config and validates it.
func Load(vip *viper.Viper) (Config, error) {
	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode configuration: %w", err)
	}
	cfg.Source = strings.ToLower(strings.TrimSpace(cfg.Source))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the selected job source has its settings.
func (c Config) Validate() error {
	switch c.Source {
	case SourceREST:
		if c.Supabase.URL == "" {
			return errors.New("supabase.url is required")
		}
		if c.Supabase.Key == "" {
			return errors.New("supabase.key is required")
		}
	case SourcePostgres:
		if c.Database.URL == "" {
			return errors.New("database.url is required")
		}
	default:
		return fmt.Errorf("unknown source %q (want %s or %s)", c.Source, SourceREST, SourcePostgres)
	}
	if c.RequestTimeout < 0 {
		return errors.New("request_timeout must not be negative")
	}
	return nil
}
