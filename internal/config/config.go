// Package config handles configuration loading for wondash.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	API   APIConfig   `mapstructure:"api"   yaml:"api"`
	Cache CacheConfig `mapstructure:"cache" yaml:"cache"`
	Keys  KeysConfig  `mapstructure:"keys"  yaml:"keys"`
	News  NewsConfig  `mapstructure:"news"  yaml:"news"`
}

// APIConfig holds HTTP server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// Addr returns the host:port listen address.
func (a APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// CacheConfig holds the flat-file cache settings. TTLs are in seconds.
type CacheConfig struct {
	File        string `mapstructure:"file"         yaml:"file"`
	RealtimeTTL int    `mapstructure:"realtime_ttl" yaml:"realtime_ttl"`
	CandleTTL   int    `mapstructure:"candle_ttl"   yaml:"candle_ttl"`
}

// KeysConfig holds the provider API key pools. Alpha Vantage and
// goldapi.io rotate through several keys to stretch free-tier quotas;
// Twelve Data uses a single key.
type KeysConfig struct {
	AlphaVantage []string `mapstructure:"alphavantage" yaml:"alphavantage"`
	GoldAPI      []string `mapstructure:"goldapi"      yaml:"goldapi"`
	TwelveData   string   `mapstructure:"twelvedata"   yaml:"twelvedata"`
}

// NewsConfig holds the RSS feed list for the news panel.
type NewsConfig struct {
	Feeds []NewsFeed `mapstructure:"feeds" yaml:"feeds"`
}

// NewsFeed is one configured RSS source.
type NewsFeed struct {
	Name string `mapstructure:"name" yaml:"name"`
	URL  string `mapstructure:"url"  yaml:"url"`
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.wondash/config.yaml (home directory)
//  3. /etc/wondash/config.yaml (system)
//
// Environment variables override config file values.
// Format: WONDASH_<SECTION>_<KEY>, e.g., WONDASH_KEYS_TWELVEDATA
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".wondash"))
	v.AddConfigPath("/etc/wondash")

	v.SetEnvPrefix("WONDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found — fine, use defaults + env vars.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("WONDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 3001)
	v.SetDefault("api.cors_origins", []string{"*"})

	v.SetDefault("cache.file", "cache.json")
	v.SetDefault("cache.realtime_ttl", 300)  // 5 minutes
	v.SetDefault("cache.candle_ttl", 86400)  // 24 hours
}

// overrideFromEnv explicitly reads sensitive keys from environment
// variables. Key pools are comma-separated.
func overrideFromEnv(cfg *Config) {
	if keys := os.Getenv("WONDASH_KEYS_ALPHAVANTAGE"); keys != "" {
		cfg.Keys.AlphaVantage = splitKeys(keys)
	}
	if keys := os.Getenv("WONDASH_KEYS_GOLDAPI"); keys != "" {
		cfg.Keys.GoldAPI = splitKeys(keys)
	}
	if key := os.Getenv("WONDASH_KEYS_TWELVEDATA"); key != "" {
		cfg.Keys.TwelveData = key
	}
}

func splitKeys(s string) []string {
	parts := strings.Split(s, ",")
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			keys = append(keys, trimmed)
		}
	}
	return keys
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
