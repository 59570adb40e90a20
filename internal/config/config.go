// Package config loads Levin's TOML configuration file with Viper, the
// same way the rest of this codebase's ancestry loads its YAML config —
// typed struct, mapstructure tags, SetDefault calls for every field, and a
// tolerant reader that ignores keys it doesn't recognise.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config is Levin's full, immutable-per-run (but reloadable) configuration.
type Config struct {
	WatchDirectory string `mapstructure:"watch_directory"`
	DataDirectory  string `mapstructure:"data_directory"`
	StateDirectory string `mapstructure:"state_directory"`

	MinFreeBytes      uint64  `mapstructure:"min_free_bytes"`
	MinFreePercentage float64 `mapstructure:"min_free_percentage"`
	MaxStorageBytes   uint64  `mapstructure:"max_storage_bytes"`

	RunOnBattery  bool `mapstructure:"run_on_battery"`
	RunOnCellular bool `mapstructure:"run_on_cellular"`

	DiskCheckIntervalSecs int `mapstructure:"disk_check_interval_secs"`

	MaxDownloadKbps int64 `mapstructure:"max_download_kbps"`
	MaxUploadKbps   int64 `mapstructure:"max_upload_kbps"`

	StunServer string `mapstructure:"stun_server"`
	Port       int    `mapstructure:"port"`

	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`

	MetricsListen string `mapstructure:"metrics_listen"`
}

// DefaultPath resolves the config file location the way
// default_config_path() does in the original daemon: an explicit
// XDG_CONFIG_HOME, falling back to ~/.config, falling back to /etc.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "levin", "levin.toml")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "levin", "levin.toml")
	}
	return "/etc/levin/levin.toml"
}

// Load reads the TOML file at path (DefaultPath() if empty), applying
// defaults for every field first. A missing file is not an error — the
// defaults alone make a usable config, matching the original's behaviour
// of starting from built-in defaults and overlaying whatever the file
// provides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	home, _ := os.UserHomeDir()
	v.SetDefault("watch_directory", filepath.Join(home, ".config", "levin", "torrents"))
	v.SetDefault("data_directory", filepath.Join(home, ".cache", "levin", "data"))
	v.SetDefault("state_directory", filepath.Join(home, ".local", "state", "levin"))
	v.SetDefault("min_free_bytes", uint64(1<<30))
	v.SetDefault("min_free_percentage", 0.05)
	v.SetDefault("max_storage_bytes", uint64(50)<<30)
	v.SetDefault("run_on_battery", false)
	v.SetDefault("run_on_cellular", false)
	v.SetDefault("disk_check_interval_secs", 60)
	v.SetDefault("max_download_kbps", int64(0))
	v.SetDefault("max_upload_kbps", int64(0))
	v.SetDefault("stun_server", "stun.l.google.com:19302")
	v.SetDefault("port", 6881)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("metrics_listen", "")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.DiskCheckIntervalSecs < 1 {
		cfg.DiskCheckIntervalSecs = 1
	}
	return &cfg, nil
}
