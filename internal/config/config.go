// Package config loads the engine configuration: safe-zone rules, matching
// vocabulary and template definitions. The document is YAML and is treated
// as immutable once loaded.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fpang/kidvid-composer/internal/compose"
	"github.com/fpang/kidvid-composer/internal/safezone"
	"github.com/fpang/kidvid-composer/internal/template"
)

// Config is the engine configuration document.
type Config struct {
	Version   int                   `yaml:"version"`
	SafeZones []safezone.Rule       `yaml:"safe_zones"`
	Keywords  compose.Keywords      `yaml:"keywords"`
	Templates []template.Definition `yaml:"templates"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Version:   1,
		SafeZones: safezone.DefaultRuleList(),
		Keywords:  compose.DefaultKeywords(),
		Templates: template.BuiltinDefinitions(),
	}
}

// Load reads the YAML configuration from disk if it exists, otherwise returns
// the default configuration.
func Load(path string) (Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(contents)
}

// Parse decodes a YAML document and fills omitted sections from the defaults.
func Parse(contents []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults ensures sections fall back to the built-in values when the
// YAML omits them.
func (c *Config) ApplyDefaults() {
	defaults := Default()

	if c.Version == 0 {
		c.Version = defaults.Version
	}
	if len(c.SafeZones) == 0 {
		c.SafeZones = defaults.SafeZones
	}
	c.Keywords = c.Keywords.Merge(defaults.Keywords)
	if len(c.Templates) == 0 {
		c.Templates = defaults.Templates
	}
}

// Marshal renders the configuration as YAML.
func (c Config) Marshal() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return out, nil
}

// Engine is the immutable runtime form of a Config.
type Engine struct {
	Rules    *safezone.Rules
	Keywords compose.Keywords
	Registry *template.Registry
}

// Engine builds the runtime tables and validates every template against the
// safe-zone rules.
func (c Config) Engine() (*Engine, error) {
	rules := safezone.NewRules(c.SafeZones)
	registry, err := template.NewRegistry(c.Templates...)
	if err != nil {
		return nil, fmt.Errorf("build template registry: %w", err)
	}
	if err := registry.Validate(rules); err != nil {
		return nil, err
	}
	return &Engine{Rules: rules, Keywords: c.Keywords, Registry: registry}, nil
}

// Resolver returns a resolver over the engine's tables.
func (e *Engine) Resolver(opts ...compose.Option) *compose.Resolver {
	return compose.NewResolver(e.Rules, e.Keywords, e.Registry, opts...)
}
