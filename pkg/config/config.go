// Package config loads uploader settings from an optional YAML file and
// merges command-line overrides on top.
package config

import (
	"os"
	"time"

	"golang.org/x/xerrors"
	"gopkg.in/yaml.v3"
)

type Config struct {
	URL          string   `yaml:"url"`
	Repository   string   `yaml:"repository"`
	Dir          string   `yaml:"dir"`
	Username     string   `yaml:"username"`
	Password     string   `yaml:"password"`
	Limit        int64    `yaml:"limit"`
	DrainTimeout Duration `yaml:"drain_timeout"`
	LogFile      string   `yaml:"log_file"`
}

// Duration accepts human-readable values like "30s" in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return xerrors.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Load reads the YAML file at path. An empty path yields the zero Config.
func Load(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, xerrors.Errorf("unable to read config %s: %w", path, err)
	}

	var cfg Config
	if err = yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, xerrors.Errorf("unable to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Merge overlays non-zero fields of o onto c. Flags are merged last so they
// win over file values.
func (c *Config) Merge(o Config) {
	if o.URL != "" {
		c.URL = o.URL
	}
	if o.Repository != "" {
		c.Repository = o.Repository
	}
	if o.Dir != "" {
		c.Dir = o.Dir
	}
	if o.Username != "" {
		c.Username = o.Username
	}
	if o.Password != "" {
		c.Password = o.Password
	}
	if o.Limit != 0 {
		c.Limit = o.Limit
	}
	if o.DrainTimeout != 0 {
		c.DrainTimeout = o.DrainTimeout
	}
	if o.LogFile != "" {
		c.LogFile = o.LogFile
	}
}
