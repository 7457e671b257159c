// Package config provides configuration loading and validation for the
// wireweb authority, cache, content, and client binaries.
//
// Configuration is loaded with the following priority (highest to lowest):
//  1. Command-line flags (not handled here, see cmd/*/main.go)
//  2. Environment variables (WIREWEB_* prefix)
//  3. YAML config file (if specified with --config)
//  4. Hardcoded defaults
//
// Environment variables are mapped from WIREWEB_CATEGORY_SETTING format,
// e.g., WIREWEB_AUTHORITY_PORT maps to authority.port in YAML.
//
// All configuration is validated during Load() to ensure correctness early.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// initConfig sets up the config loader with defaults, env binding, and config file.
func initConfig(configPath string) (*viper.Viper, error) {
	v := viper.New()

	setDefaults(v)

	// Environment variable binding
	// Uses WIREWEB_ prefix: WIREWEB_AUTHORITY_PORT -> authority.port
	v.SetEnvPrefix("WIREWEB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return v, nil
}

// setDefaults configures every section's default values, including the
// listen ports: authority 6202, cache 6203, content 6204.
func setDefaults(v *viper.Viper) {
	v.SetDefault("version.major", 1)
	v.SetDefault("version.minor", 0)
	v.SetDefault("version.patch", 0)

	v.SetDefault("authority.host", "0.0.0.0")
	v.SetDefault("authority.port", 6202)
	v.SetDefault("authority.db", "authority.db")

	v.SetDefault("cache.host", "0.0.0.0")
	v.SetDefault("cache.port", 6203)
	v.SetDefault("cache.db", "cache.db")

	v.SetDefault("content.host", "0.0.0.0")
	v.SetDefault("content.port", 6204)
	v.SetDefault("content.root", "content")
	v.SetDefault("content.stacks_file", "")
	v.SetDefault("content.stacks", []string{})

	v.SetDefault("client.db", "client.db")
	v.SetDefault("client.dns_addr", "127.0.0.1:6202")
	v.SetDefault("client.cacher_addr", "127.0.0.1:6203")
	v.SetDefault("client.integrity_check", false)
	v.SetDefault("client.stacks", []string{"MRKDN"})

	v.SetDefault("logging.level", "INFO")
	v.SetDefault("logging.structured", false)
	v.SetDefault("logging.structured_format", "json")
	v.SetDefault("logging.include_pid", false)
	v.SetDefault("logging.extra_fields", map[string]string{})

	// Default to disabled and bound to localhost for safety.
	v.SetDefault("api.enabled", false)
	v.SetDefault("api.host", "127.0.0.1")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.api_key", "")
}

// loadFromSource loads configuration from file and environment.
func loadFromSource(configPath string) (*Config, error) {
	v, err := initConfig(configPath)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}

	loadVersionConfig(v, cfg)
	loadAuthorityConfig(v, cfg)
	loadCacheConfig(v, cfg)
	loadContentConfig(v, cfg)
	loadClientConfig(v, cfg)
	loadLoggingConfig(v, cfg)
	loadAPIConfig(v, cfg)

	if err := normalizeConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadVersionConfig(v *viper.Viper, cfg *Config) {
	cfg.Version.Major = uint32(v.GetUint("version.major"))
	cfg.Version.Minor = uint32(v.GetUint("version.minor"))
	cfg.Version.Patch = uint32(v.GetUint("version.patch"))
}

func loadAuthorityConfig(v *viper.Viper, cfg *Config) {
	cfg.Authority.Host = v.GetString("authority.host")
	cfg.Authority.Port = v.GetInt("authority.port")
	cfg.Authority.DB = v.GetString("authority.db")
}

func loadCacheConfig(v *viper.Viper, cfg *Config) {
	cfg.Cache.Host = v.GetString("cache.host")
	cfg.Cache.Port = v.GetInt("cache.port")
	cfg.Cache.DB = v.GetString("cache.db")
}

func loadContentConfig(v *viper.Viper, cfg *Config) {
	cfg.Content.Host = v.GetString("content.host")
	cfg.Content.Port = v.GetInt("content.port")
	cfg.Content.Root = v.GetString("content.root")
	cfg.Content.StacksFile = v.GetString("content.stacks_file")
	cfg.Content.Stacks = getStringSliceOrSplit(v, "content.stacks")
}

func loadClientConfig(v *viper.Viper, cfg *Config) {
	cfg.Client.DB = v.GetString("client.db")
	cfg.Client.DNSAddr = v.GetString("client.dns_addr")
	cfg.Client.CacherAddr = v.GetString("client.cacher_addr")
	cfg.Client.IntegrityCheck = v.GetBool("client.integrity_check")
	cfg.Client.Stacks = getStringSliceOrSplit(v, "client.stacks")
}

func loadLoggingConfig(v *viper.Viper, cfg *Config) {
	cfg.Logging.Level = strings.ToUpper(v.GetString("logging.level"))
	cfg.Logging.Structured = v.GetBool("logging.structured")
	cfg.Logging.StructuredFormat = v.GetString("logging.structured_format")
	cfg.Logging.IncludePID = v.GetBool("logging.include_pid")
	cfg.Logging.ExtraFields = v.GetStringMapString("logging.extra_fields")
}

func loadAPIConfig(v *viper.Viper, cfg *Config) {
	cfg.API.Enabled = v.GetBool("api.enabled")
	cfg.API.Host = v.GetString("api.host")
	cfg.API.Port = v.GetInt("api.port")
	cfg.API.APIKey = v.GetString("api.api_key")
}

// getStringSliceOrSplit handles both slice and comma-separated string values.
func getStringSliceOrSplit(v *viper.Viper, key string) []string {
	if slice := v.GetStringSlice(key); len(slice) > 0 {
		result := make([]string, 0, len(slice))
		for _, s := range slice {
			s = strings.TrimSpace(s)
			if s != "" {
				result = append(result, s)
			}
		}
		return result
	}
	if s := v.GetString(key); s != "" {
		parts := strings.Split(s, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				result = append(result, p)
			}
		}
		return result
	}
	return nil
}

// normalizeConfig validates and normalizes the configuration.
func normalizeConfig(cfg *Config) error {
	for _, p := range []int{cfg.Authority.Port, cfg.Cache.Port, cfg.Content.Port} {
		if p <= 0 || p > 65535 {
			return errors.New("server port must be 1..65535")
		}
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "INFO"
	}
	if cfg.Logging.StructuredFormat == "" {
		cfg.Logging.StructuredFormat = "json"
	}
	if cfg.Logging.ExtraFields == nil {
		cfg.Logging.ExtraFields = map[string]string{}
	}

	if cfg.API.Host == "" {
		cfg.API.Host = "127.0.0.1"
	}
	if cfg.API.Enabled {
		if cfg.API.Port <= 0 || cfg.API.Port > 65535 {
			return errors.New("api.port must be 1..65535")
		}
	}

	if len(cfg.Client.Stacks) == 0 {
		cfg.Client.Stacks = []string{"MRKDN"}
	}

	return nil
}
