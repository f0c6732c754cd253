package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/modseven/dispatch"
	"github.com/modseven/dispatch/logger"
	"github.com/modseven/dispatch/util"
)

// File is the on-disk configuration for a dispatch-based application.
type File struct {
	// Logging configures the structured logger.
	Logging logger.Config `yaml:"logging" mapstructure:"logging"`
	// Client configures the dispatch client: expose, driver, follow,
	// strict_redirect, max_callback_depth, follow_headers.
	Client dispatch.Config `yaml:"client" mapstructure:"client"`
}

// LoaderConfig controls where configuration is read from.
type LoaderConfig struct {
	// ConfigFile is an explicit config file path. When empty, standard
	// locations are searched.
	ConfigFile string
	// EnvFile is an explicit .env file path. When empty, ./.env is used if
	// present.
	EnvFile string
	// EnvPrefix is the environment variable prefix. Defaults to DISPATCH.
	EnvPrefix string
}

// configSearchPaths are the default config file locations, tried in order.
var configSearchPaths = []string{
	"./config.yml",
	"./config.yaml",
	"./config/config.yml",
	"./config/config.yaml",
}

// Load reads, defaults, and validates configuration.
func Load(opts LoaderConfig) (*File, error) {
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix(util.Coalesce(opts.EnvPrefix, "DISPATCH"))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configFile := opts.ConfigFile
	if configFile == "" {
		configFile = findConfigFile()
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", configFile, err)
		}
	}

	bindKeys(v)

	cfg := &File{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	cfg.Logging.ApplyDefaults()
	cfg.Client.ApplyDefaults()

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	if err := cfg.Logging.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Client.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// loadEnvFile loads the explicit env file, or ./.env when present.
func loadEnvFile(path string) error {
	if path == "" {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: load env file %s: %w", path, err)
	}
	return nil
}

// findConfigFile returns the first existing default config file, or "".
func findConfigFile() string {
	for _, path := range configSearchPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// bindKeys registers every known key so AutomaticEnv resolves them even
// when no config file sets them.
func bindKeys(v *viper.Viper) {
	for _, key := range []string{
		"logging.level", "logging.format", "logging.output",
		"logging.no_color", "logging.timestamp", "logging.caller",
		"client.expose", "client.driver", "client.follow",
		"client.follow_headers", "client.strict_redirect",
		"client.max_callback_depth",
	} {
		_ = v.BindEnv(key)
	}
}
