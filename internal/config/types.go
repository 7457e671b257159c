// Package config provides configuration loading for wireweb using Viper.
// Configuration is loaded from YAML files with automatic environment
// variable binding.
//
// Environment variables use the WIREWEB_ prefix and underscore-separated
// keys:
//   - WIREWEB_AUTHORITY_PORT -> authority.port
//   - WIREWEB_CACHE_DB -> cache.db
//   - WIREWEB_CLIENT_INTEGRITY_CHECK -> client.integrity_check
package config

import (
	"os"
	"strings"
)

// VersionConfig is the protocol version this binary transmits and
// compares incoming requests against. It is a deliberate runtime
// configuration value, not build metadata: it has no relation to any
// module or package version.
type VersionConfig struct {
	Major uint32 `yaml:"major" mapstructure:"major" json:"major"`
	Minor uint32 `yaml:"minor" mapstructure:"minor" json:"minor"`
	Patch uint32 `yaml:"patch" mapstructure:"patch" json:"patch"`
}

// AuthorityConfig controls an authority server.
type AuthorityConfig struct {
	Host string `yaml:"host" mapstructure:"host" json:"host"`
	Port int    `yaml:"port" mapstructure:"port" json:"port"`
	DB   string `yaml:"db"   mapstructure:"db"   json:"db"`
}

// CacheConfig controls a cache server.
type CacheConfig struct {
	Host string `yaml:"host" mapstructure:"host" json:"host"`
	Port int    `yaml:"port" mapstructure:"port" json:"port"`
	DB   string `yaml:"db"   mapstructure:"db"   json:"db"`
}

// ContentConfig controls a content server.
type ContentConfig struct {
	Host       string   `yaml:"host"        mapstructure:"host"        json:"host"`
	Port       int      `yaml:"port"        mapstructure:"port"        json:"port"`
	Root       string   `yaml:"root"        mapstructure:"root"        json:"root"`
	StacksFile string   `yaml:"stacks_file" mapstructure:"stacks_file" json:"stacks_file,omitempty"`
	Stacks     []string `yaml:"stacks"      mapstructure:"stacks"      json:"stacks,omitempty"`
}

// ClientConfig controls the coordinator-driving client.
type ClientConfig struct {
	DB             string   `yaml:"db"              mapstructure:"db"              json:"db"`
	DNSAddr        string   `yaml:"dns_addr"        mapstructure:"dns_addr"        json:"dns_addr"`
	CacherAddr     string   `yaml:"cacher_addr"     mapstructure:"cacher_addr"     json:"cacher_addr"`
	IntegrityCheck bool     `yaml:"integrity_check" mapstructure:"integrity_check" json:"integrity_check"`
	Stacks         []string `yaml:"stacks"          mapstructure:"stacks"          json:"stacks,omitempty"`
}

// LoggingConfig contains logging settings, mirroring the knob set of
// internal/logging.Config.
type LoggingConfig struct {
	Level            string            `yaml:"level"             mapstructure:"level"             json:"level"`
	Structured       bool              `yaml:"structured"        mapstructure:"structured"        json:"structured"`
	StructuredFormat string            `yaml:"structured_format" mapstructure:"structured_format" json:"structured_format"`
	IncludePID       bool              `yaml:"include_pid"       mapstructure:"include_pid"       json:"include_pid"`
	ExtraFields      map[string]string `yaml:"extra_fields"      mapstructure:"extra_fields"      json:"extra_fields,omitempty"`
}

// APIConfig contains the admin REST API's settings.
//
// Note: APIKey is intentionally treated as a secret and should not be
// returned by API endpoints.
type APIConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Host    string `yaml:"host"    mapstructure:"host"`
	Port    int    `yaml:"port"    mapstructure:"port"`
	APIKey  string `yaml:"api_key" mapstructure:"api_key"`
}

// Config is the root configuration structure shared by every wireweb
// binary; each binary only reads the sections relevant to it.
type Config struct {
	Version   VersionConfig   `yaml:"version"   mapstructure:"version"`
	Authority AuthorityConfig `yaml:"authority" mapstructure:"authority"`
	Cache     CacheConfig     `yaml:"cache"     mapstructure:"cache"`
	Content   ContentConfig   `yaml:"content"   mapstructure:"content"`
	Client    ClientConfig    `yaml:"client"    mapstructure:"client"`
	Logging   LoggingConfig   `yaml:"logging"   mapstructure:"logging"`
	API       APIConfig       `yaml:"api"       mapstructure:"api"`
}

// ResolveConfigPath determines the config file path from flag or
// environment.
func ResolveConfigPath(flagValue string) string {
	if strings.TrimSpace(flagValue) != "" {
		return flagValue
	}
	if v := strings.TrimSpace(os.Getenv("WIREWEB_CONFIG")); v != "" {
		return v
	}
	return ""
}

// Load loads configuration from a YAML file with environment variable
// overrides. This is the main entry point for loading configuration.
//
// Configuration priority (highest to lowest):
//  1. Environment variables (WIREWEB_*)
//  2. Config file values
//  3. Default values
func Load(path string) (*Config, error) {
	return loadFromSource(path)
}
