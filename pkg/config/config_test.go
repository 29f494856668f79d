package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoad_DefaultsApplied(t *testing.T) {
	path := writeConfig(t, `
code:
  root_location: "https://host/base/"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default output 'stdout', got %q", cfg.Logging.Output)
	}
	if cfg.Storage.Type != "memory" {
		t.Errorf("Expected default storage type 'memory', got %q", cfg.Storage.Type)
	}
	if cfg.Vault.Marker != "pwenc:" {
		t.Errorf("Expected default vault marker 'pwenc:', got %q", cfg.Vault.Marker)
	}
	if cfg.Code.Fetch.Timeout != 5*time.Second {
		t.Errorf("Expected default fetch timeout 5s, got %v", cfg.Code.Fetch.Timeout)
	}
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: "debug"
  format: "json"

origin: "shell-agent"

storage:
  type: "badger"
  badger:
    path: "/var/lib/promptvfs"

vault:
  marker: "sealed:"

code:
  root_location: "https://host/base/"
  mounts:
    /extra/: "https://other/"
  fetch:
    timeout: 2s
    cache_ttl: 30s
    rate_per_second: 4

boot:
  ingest:
    - "boot/kernel.md"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected normalized level 'DEBUG', got %q", cfg.Logging.Level)
	}
	if cfg.Origin != "shell-agent" {
		t.Errorf("Expected origin 'shell-agent', got %q", cfg.Origin)
	}
	if cfg.Storage.Badger["path"] != "/var/lib/promptvfs" {
		t.Errorf("Unexpected badger path: %v", cfg.Storage.Badger["path"])
	}
	if cfg.Code.Mounts["/extra/"] != "https://other/" {
		t.Errorf("Unexpected mounts: %v", cfg.Code.Mounts)
	}
	if cfg.Code.Fetch.RatePerSecond != 4 {
		t.Errorf("Expected rate 4, got %v", cfg.Code.Fetch.RatePerSecond)
	}
	if len(cfg.Boot.Ingest) != 1 || cfg.Boot.Ingest[0] != "boot/kernel.md" {
		t.Errorf("Unexpected boot ingest list: %v", cfg.Boot.Ingest)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent.yaml")

	// Root location has no default and is required, so supply it via env.
	t.Setenv("PROMPTVFS_CODE_ROOT_LOCATION", "https://host/base/")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Expected no error with missing config file, got: %v", err)
	}
	if cfg.Code.RootLocation != "https://host/base/" {
		t.Errorf("Expected env override for root location, got %q", cfg.Code.RootLocation)
	}
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *Config)
	}{
		{
			name:   "missing_root_location",
			mutate: func(cfg *Config) { cfg.Code.RootLocation = "" },
		},
		{
			name:   "bad_storage_type",
			mutate: func(cfg *Config) { cfg.Storage.Type = "etcd" },
		},
		{
			name:   "bad_log_level",
			mutate: func(cfg *Config) { cfg.Logging.Level = "TRACE" },
		},
		{
			name:   "http_root_scheme",
			mutate: func(cfg *Config) { cfg.Code.RootLocation = "http://host/" },
		},
		{
			name: "bad_mount_scheme",
			mutate: func(cfg *Config) {
				cfg.Code.Mounts = map[string]string{"/x/": "ftp://host/"}
			},
		},
		{
			name: "slash_mount_duplicates_root",
			mutate: func(cfg *Config) {
				cfg.Code.Mounts = map[string]string{"/": "https://host/base/"}
			},
		},
		{
			name: "invalid_boot_ingest_path",
			mutate: func(cfg *Config) {
				cfg.Boot.Ingest = []string{"ok.md", ""}
			},
		},
		{
			name:   "unusable_origin",
			mutate: func(cfg *Config) { cfg.Origin = "!!!" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Code: CodeConfig{RootLocation: "https://host/base/"},
			}
			ApplyDefaults(cfg)
			tt.mutate(cfg)

			if err := Validate(cfg); err == nil {
				t.Errorf("Expected validation error, got nil")
			}
		})
	}
}
