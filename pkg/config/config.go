// Package config loads, validates, and materializes the process
// configuration: the boot-time values the VFS core consumes (root code
// location, origin, mount table, initial ingest list) plus the ambient
// concerns around them (logging, storage backend selection, fetch tuning).
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete process configuration.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (PROMPTVFS_*)
//  2. Configuration file (YAML)
//  3. Default values
//
// Storage Configuration Pattern:
// Each store implementation defines its own option set. The Storage section
// carries a Type selector plus one map per implementation; only the map
// matching the selected type is decoded (see factories.go).
type Config struct {
	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Origin is the raw security principal this process runs as. Empty
	// means the root code location doubles as the origin. Normalization
	// happens once, at build time; nothing after boot can change it.
	Origin string `mapstructure:"origin" yaml:"origin"`

	// Storage selects and configures the backing store shared by the
	// memory, sys, and proc drivers.
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`

	// Vault configures the ciphertext-only sub-namespace.
	Vault VaultConfig `mapstructure:"vault" yaml:"vault"`

	// Code configures path resolution and fetching for the code driver.
	Code CodeConfig `mapstructure:"code" yaml:"code"`

	// Boot lists work performed once at startup.
	Boot BootConfig `mapstructure:"boot" yaml:"boot"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output.
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive).
	Level string `mapstructure:"level" yaml:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`

	// Format specifies the log output format: text or json.
	Format string `mapstructure:"format" yaml:"format" validate:"required,oneof=text json"`

	// Output specifies where logs are written: stdout, stderr, or a path.
	Output string `mapstructure:"output" yaml:"output" validate:"required"`
}

// StorageConfig selects the backing store implementation.
type StorageConfig struct {
	// Type specifies which store implementation to use.
	// Valid values: memory, badger.
	Type string `mapstructure:"type" yaml:"type" validate:"required,oneof=memory badger"`

	// Memory contains memory-store options. Only used when Type = "memory".
	Memory map[string]any `mapstructure:"memory" yaml:"memory"`

	// Badger contains BadgerDB options. Only used when Type = "badger".
	Badger map[string]any `mapstructure:"badger" yaml:"badger"`
}

// VaultConfig configures the ciphertext-only vault namespace.
type VaultConfig struct {
	// Marker is the ciphertext marker prefix required on every vault
	// value. The VFS never inspects the payload beyond this prefix.
	Marker string `mapstructure:"marker" yaml:"marker" validate:"required"`
}

// CodeConfig configures the code driver.
type CodeConfig struct {
	// RootLocation is the default base location: paths no mount entry
	// claims resolve against it. Must be an https or file URL.
	RootLocation string `mapstructure:"root_location" yaml:"root_location" validate:"required"`

	// Mounts maps logical path prefixes to base locations, each an https
	// or file URL. Longest prefix wins at resolution time.
	Mounts map[string]string `mapstructure:"mounts" yaml:"mounts"`

	// Fetch tunes the fetch pipeline.
	Fetch FetchConfig `mapstructure:"fetch" yaml:"fetch"`
}

// FetchConfig tunes code fetching.
type FetchConfig struct {
	// Timeout bounds each remote fetch.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"gte=0"`

	// CacheTTL enables caching of fetched content. Zero disables it.
	CacheTTL time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl" validate:"gte=0"`

	// RatePerSecond throttles remote fetches. Zero means unthrottled.
	RatePerSecond float64 `mapstructure:"rate_per_second" yaml:"rate_per_second" validate:"gte=0"`
}

// BootConfig lists startup work.
type BootConfig struct {
	// Ingest is the ordered list of logical paths ingested before the
	// first caller-issued operation.
	Ingest []string `mapstructure:"ingest" yaml:"ingest"`
}

// Load reads configuration from the given file path (missing file is fine:
// defaults plus environment take over), applies environment overrides and
// defaults, and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("PROMPTVFS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Viper only consults the environment for keys it already knows about,
	// so bind the scalar keys explicitly.
	for _, key := range []string{
		"logging.level", "logging.format", "logging.output",
		"origin",
		"storage.type",
		"vault.marker",
		"code.root_location",
		"code.fetch.timeout", "code.fetch.cache_ttl", "code.fetch.rate_per_second",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if _, statErr := os.Stat(path); statErr == nil {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
			// Missing file: proceed on defaults and environment.
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
