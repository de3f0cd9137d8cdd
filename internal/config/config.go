// Package config provides loading of the optional .schemadoc.yaml file
// that tunes output layout and the advisory validation heuristics.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tordrt/schemadoc/internal/generator"
	"github.com/tordrt/schemadoc/internal/validator"
)

// DefaultFilename is the config file looked up next to the input when no
// explicit path is given.
const DefaultFilename = ".schemadoc.yaml"

// Config is the root configuration structure.
type Config struct {
	Format     generator.Config `yaml:"format"`
	Validation Validation       `yaml:"validation"`
}

// Validation tunes the advisory checks. None of these settings can turn a
// warning into an error.
type Validation struct {
	TypeVocabulary    []string            `yaml:"type_vocabulary"`
	Patterns          []validator.Pattern `yaml:"patterns"`
	MinFields         int                 `yaml:"min_fields"`
	MaxJSONProperties int                 `yaml:"max_json_properties"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Format: generator.DefaultConfig(),
		Validation: Validation{
			TypeVocabulary:    validator.DefaultTypeVocabulary(),
			Patterns:          validator.DefaultPatterns(),
			MinFields:         2,
			MaxJSONProperties: 5,
		},
	}
}

// Load reads and parses a config file. Fields left unset fall back to the
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads the given path, or the default filename in the
// current directory, falling back to defaults when no file exists.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		path = DefaultFilename
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return Default(), nil
		}
	}
	return Load(path)
}

// ValidatorOptions converts the validation section into validator options.
func (c *Config) ValidatorOptions() validator.Options {
	return validator.Options{
		TypeVocabulary:    c.Validation.TypeVocabulary,
		Patterns:          c.Validation.Patterns,
		MinFields:         c.Validation.MinFields,
		MaxJSONProperties: c.Validation.MaxJSONProperties,
	}
}
