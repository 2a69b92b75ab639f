// Package config loads host-level tuning for the VM — collector
// behavior and stack limits — the same way chazu-maggie and its pack
// siblings keep runtime knobs in a TOML document decoded with
// github.com/BurntSushi/toml rather than flags or environment variables.
package config

import "github.com/BurntSushi/toml"

// Config tunes the collector and the call stack. None of these values
// change language semantics; they exist so a host embedding the VM can
// trade memory for collection frequency, or force collection on every
// allocation for GC-bug hunting, without recompiling.
type Config struct {
	GCGrowthFactor      float64 `toml:"gc_growth_factor"`
	StressGC            bool    `toml:"stress_gc"`
	FramesMax           int     `toml:"frames_max"`
	InitialGCThreshold  int     `toml:"initial_gc_threshold"`
}

// Default returns the settings the VM uses when no config file is given.
func Default() *Config {
	return &Config{
		GCGrowthFactor:     2.0,
		StressGC:           false,
		FramesMax:          64,
		InitialGCThreshold: 1024,
	}
}

// Load decodes a TOML document at path over the default configuration,
// so a file only needs to set the fields it wants to override.
func Load(path string) (*Config, error) {
	cfg := Default()
	_, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}
