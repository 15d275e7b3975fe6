package timestats

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// ConfigFileName is the per-project config file auto-detected in the
// working directory.
const ConfigFileName = ".timestats.yaml"

// Config holds the file- and env-configurable Profiler settings.
// EnableSet tracks whether enable was explicitly present, so a file
// that omits it does not force the default over an env override.
type Config struct {
	Enable      bool              `yaml:"enable"`
	ColorSchema map[string]string `yaml:"color_schema"`

	EnableSet bool `yaml:"-"`
}

// LoadConfig reads a YAML config file and applies env overrides
// (TIMESTATS_ENABLE). The env var wins over the file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user's config file
	if err != nil {
		return nil, err
	}
	cfg, err := parseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	cfg.applyEnv()
	return cfg, nil
}

// DetectConfig looks for ConfigFileName in the current working
// directory and loads it when present. With no file it returns a
// config carrying only env overrides.
func DetectConfig() (*Config, error) {
	cwd, err := os.Getwd()
	if err == nil {
		path := filepath.Join(cwd, ConfigFileName)
		if _, statErr := os.Stat(path); statErr == nil {
			return LoadConfig(path)
		}
	}
	cfg := &Config{Enable: true}
	cfg.applyEnv()
	return cfg, nil
}

func parseConfig(data []byte) (*Config, error) {
	cfg := Config{Enable: true}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Parse into a map to detect which fields were explicitly set and
	// to reject a non-mapping color_schema with a clear message.
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if _, ok := raw["enable"]; ok {
		cfg.EnableSet = true
	}
	if schema, ok := raw["color_schema"]; ok {
		if _, isMap := schema.(map[string]any); !isMap {
			return nil, fmt.Errorf("color_schema must be a mapping of second thresholds to colors, got %T", schema)
		}
	}
	return &cfg, nil
}

// applyEnv applies environment variable overrides to the config.
func (c *Config) applyEnv() {
	if v := os.Getenv("TIMESTATS_ENABLE"); v != "" {
		c.Enable = v == "true" || v == "1"
		c.EnableSet = true
	}
}

// Schema converts the configured color_schema mapping into a
// ColorSchema, or the default table when none was configured.
func (c *Config) Schema() (ColorSchema, error) {
	if len(c.ColorSchema) == 0 {
		return DefaultColorSchema(), nil
	}
	schema := make(ColorSchema, len(c.ColorSchema))
	for threshold, color := range c.ColorSchema {
		secs, err := strconv.ParseFloat(threshold, 64)
		if err != nil {
			return nil, fmt.Errorf("color_schema threshold %q is not a second count", threshold)
		}
		schema[secs] = lipgloss.Color(color)
	}
	return schema, nil
}

// ProfilerOptions converts the config into construction options for
// New.
func (c *Config) ProfilerOptions() ([]ProfilerOption, error) {
	schema, err := c.Schema()
	if err != nil {
		return nil, err
	}
	return []ProfilerOption{
		WithEnabled(c.Enable),
		WithColorSchema(schema),
	}, nil
}
