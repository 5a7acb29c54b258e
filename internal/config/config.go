// Package config handles fbxtool configuration loading and management.
package config

import "time"

// Config holds all tool settings.
type Config struct {
	Loader  LoaderConfig  `yaml:"loader" toml:"loader"`
	Export  ExportConfig  `yaml:"export" toml:"export"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// LoaderConfig holds FBX loading settings.
type LoaderConfig struct {
	NameEncoding string        `yaml:"name_encoding" toml:"name_encoding"` // Code page of legacy object names
	ResourceDir  string        `yaml:"resource_dir" toml:"resource_dir"`   // Texture base directory; empty means next to the input
	FetchTimeout time.Duration `yaml:"fetch_timeout" toml:"fetch_timeout"`
	MaxFetchMB   int           `yaml:"max_fetch_mb" toml:"max_fetch_mb"`
}

// ExportConfig holds glTF export settings.
type ExportConfig struct {
	Binary            bool `yaml:"binary" toml:"binary"`
	IncludeSkins      bool `yaml:"include_skins" toml:"include_skins"`
	IncludeAnimations bool `yaml:"include_animations" toml:"include_animations"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Loader: LoaderConfig{
			NameEncoding: "utf-8",
			FetchTimeout: 30 * time.Second,
			MaxFetchMB:   512,
		},
		Export: ExportConfig{
			Binary:            true,
			IncludeSkins:      true,
			IncludeAnimations: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
