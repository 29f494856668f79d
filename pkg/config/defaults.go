package config

import (
	"strings"

	"github.com/ShipFail/promptware-sub001/pkg/driver/code"
	"github.com/ShipFail/promptware-sub001/pkg/driver/memory"
)

// Default values applied when the config file and environment are silent.
const (
	DefaultLogLevel  = "INFO"
	DefaultLogFormat = "text"
	DefaultLogOutput = "stdout"

	DefaultStorageType = "memory"
)

// ApplyDefaults fills unset fields in place. Called by Load before
// validation, so validation always sees a fully-populated config.
func ApplyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	cfg.Logging.Level = strings.ToUpper(cfg.Logging.Level)
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = DefaultLogOutput
	}

	if cfg.Storage.Type == "" {
		cfg.Storage.Type = DefaultStorageType
	}

	if cfg.Vault.Marker == "" {
		cfg.Vault.Marker = memory.DefaultMarker
	}

	if cfg.Code.Fetch.Timeout == 0 {
		cfg.Code.Fetch.Timeout = code.DefaultFetchTimeout
	}
	if cfg.Code.Fetch.CacheTTL < 0 {
		cfg.Code.Fetch.CacheTTL = 0
	}
}
