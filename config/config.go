// Package config loads the optional flowtop config file. File values seed
// the flag defaults; flags always win. Nothing here is ever written back.
package config

import (
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds user-configurable defaults.
type Config struct {
	IntervalSec  float64 `yaml:"interval_sec"`
	Top          int     `yaml:"top"`
	Group        string  `yaml:"group"`
	ThresholdKBs float64 `yaml:"threshold_kbs"`
	BG           string  `yaml:"bg"`
	Source       string  `yaml:"source"`
	PruneAfter   int     `yaml:"prune_after"`
	HistorySize  int     `yaml:"history_size"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		IntervalSec:  3.0,
		Top:          20,
		Group:        "process",
		ThresholdKBs: 500.0,
		BG:           "black",
		Source:       "nettop",
		PruneAfter:   5,
		HistorySize:  120,
	}
}

// Path returns ~/.config/flowtop/config.yaml (or XDG_CONFIG_HOME).
// Returns empty string if home directory cannot be determined.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "" // refuse to fall back to /tmp (security risk)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "flowtop", "config.yaml")
}

// Load reads the config file, layering set fields over the defaults.
// A missing file is normal; a broken one keeps the defaults with a
// warning, never a startup failure.
func Load() Config {
	cfg := Default()
	p := Path()
	if p == "" {
		return cfg
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return cfg
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Printf("flowtop: warning: config parse error: %v", err)
		return Default()
	}
	cfg.sanitize()
	return cfg
}

// sanitize clamps out-of-range file values back to their defaults so a
// bad config degrades one field at a time.
func (c *Config) sanitize() {
	def := Default()
	if c.IntervalSec <= 0 {
		warn("interval_sec", c.IntervalSec, def.IntervalSec)
		c.IntervalSec = def.IntervalSec
	}
	if c.Top <= 0 {
		warn("top", c.Top, def.Top)
		c.Top = def.Top
	}
	if c.Group != "process" && c.Group != "remote" {
		warn("group", c.Group, def.Group)
		c.Group = def.Group
	}
	if c.ThresholdKBs < 0 {
		warn("threshold_kbs", c.ThresholdKBs, def.ThresholdKBs)
		c.ThresholdKBs = def.ThresholdKBs
	}
	switch c.BG {
	case "black", "trueblack", "default":
	default:
		warn("bg", c.BG, def.BG)
		c.BG = def.BG
	}
	if c.Source == "" {
		c.Source = def.Source
	}
	if c.PruneAfter <= 0 {
		c.PruneAfter = def.PruneAfter
	}
	if c.HistorySize < 10 {
		c.HistorySize = def.HistorySize
	}
}

func warn(field string, got, using any) {
	log.Printf("flowtop: warning: config %s=%v out of range, using %v", field, got, using)
}
