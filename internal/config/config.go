// Package config loads the recstore configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Record  RecordConfig  `mapstructure:"record" yaml:"record"`
}

type StorageConfig struct {
	// Mount is the OS directory where the flash medium is mounted. The
	// recording directory lives beneath it.
	Mount string `mapstructure:"mount" yaml:"mount"`
}

type ServerConfig struct {
	Port string `mapstructure:"port" yaml:"port"`
}

type RecordConfig struct {
	// MaxFrameLen caps the number of samples accepted per input line.
	MaxFrameLen int `mapstructure:"max_frame_len" yaml:"max_frame_len"`
}

var defaultConfig = Config{
	Storage: StorageConfig{
		Mount: filepath.Join(os.Getenv("HOME"), ".local", "share", "recstore"),
	},
	Server: ServerConfig{
		Port: "8077",
	},
	Record: RecordConfig{
		MaxFrameLen: 255,
	},
}

// DefaultPath is where Load looks when no --config flag is given.
func DefaultPath() string {
	return os.ExpandEnv("$HOME/.config/recstore.yaml")
}

// Load reads the YAML config file at path, falling back to defaults for
// anything unset. A missing file is not an error when it is the default
// path; an explicitly requested file must exist.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("storage.mount", defaultConfig.Storage.Mount)
	v.SetDefault("server.port", defaultConfig.Server.Port)
	v.SetDefault("record.max_frame_len", defaultConfig.Record.MaxFrameLen)

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		// The default path may simply not exist yet; an explicit one must.
		if explicit || !os.IsNotExist(err) {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file %s: %w", path, err)
	}

	cfg.Storage.Mount = expandPath(cfg.Storage.Mount)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Storage.Mount == "" {
		return fmt.Errorf("storage.mount must not be empty")
	}
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("server.port must be numeric, got %q", c.Server.Port)
	}
	if c.Record.MaxFrameLen < 1 || c.Record.MaxFrameLen > 255 {
		return fmt.Errorf("record.max_frame_len must be in [1,255], got %d", c.Record.MaxFrameLen)
	}
	return nil
}

// expandPath expands a leading tilde to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
