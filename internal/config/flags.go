package config

import "flag"

var (
	flagConfig      = flag.String("config", "", "Path to config file (.yaml or .toml)")
	flagDebug       = flag.Bool("debug", false, "Enable debug logging")
	flagEncoding    = flag.String("encoding", "", "Code page of legacy object names")
	flagResourceDir = flag.String("resource-dir", "", "Base directory for texture files")
	flagBinary      = flag.Bool("binary", false, "Export .glb instead of .gltf")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagEncoding != "" {
		cfg.Loader.NameEncoding = *flagEncoding
	}
	if *flagResourceDir != "" {
		cfg.Loader.ResourceDir = *flagResourceDir
	}
	if *flagBinary {
		cfg.Export.Binary = true
	}
}
