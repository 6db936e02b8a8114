package entity

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	defaultRuntimeName = "entity"
	defaultObserver    = "noop"
)

// Config holds runtime initialization parameters.
type Config struct {
	Name     string   `json:"name,omitempty" yaml:"name,omitempty" toml:"name"`
	Observer string   `json:"observer,omitempty" yaml:"observer,omitempty" toml:"observer"`
	Plugins  []string `json:"plugins,omitempty" yaml:"plugins,omitempty" toml:"plugins"`
}

// DefaultConfig returns a runtime named "entity" with the noop observer
// and no plugins.
func DefaultConfig() Config {
	return Config{
		Name:     defaultRuntimeName,
		Observer: defaultObserver,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Name != "" {
		c.Name = source.Name
	}
	if source.Observer != "" {
		c.Observer = source.Observer
	}
	if len(source.Plugins) > 0 {
		c.Plugins = append([]string(nil), source.Plugins...)
	}
}

// LoadConfig reads a JSON, YAML or TOML file (chosen by extension), merges
// it over the defaults, and returns the result.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".json":
		err = json.Unmarshal(data, &loaded)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &loaded)
	case ".toml":
		_, err = toml.Decode(string(data), &loaded)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
