package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	lverrors "github.com/AndreyAkinshin/lvunit/internal/errors"
	"github.com/AndreyAkinshin/lvunit/internal/schema"
)

// EnvConfig names the environment variable that selects a configuration file
// when --config is not given.
const EnvConfig = "LVUNIT_CONFIG"

// FileNames lists the configuration file names searched for, in order.
var FileNames = []string{"lvunit.json", "lvunit.yaml", "lvunit.yml"}

// ErrNotFound is returned by Find when no configuration file exists.
var ErrNotFound = errors.New("no lvunit configuration file found")

// Find returns the first of FileNames present in dir.
func Find(dir string) (string, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", ErrNotFound
}

// Load reads, schema-validates and parses a configuration file.
// Files ending in .yaml or .yml are parsed as YAML; anything else as JSON.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, configError(path, "failed to read config file", err)
	}

	cfg, err := Parse(data, isYAML(path))
	if err != nil {
		return nil, configError(path, "invalid config file", err)
	}
	return cfg, nil
}

// Parse schema-validates and decodes a configuration document.
func Parse(data []byte, asYAML bool) (*Config, error) {
	var cfg Config

	if asYAML {
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
		if doc == nil {
			doc = map[string]any{}
		}
		normalized, err := schema.Normalize(doc)
		if err != nil {
			return nil, err
		}
		if err := schema.ValidateDocument(normalized); err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to decode YAML: %w", err)
		}
		return &cfg, nil
	}

	if err := schema.ValidateConfig(data); err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}
	return &cfg, nil
}

// LoadWithDefaults reads a config file and applies default values.
func LoadWithDefaults(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)
	return cfg, nil
}

// LoadAndValidate reads a config file, applies defaults, validates, and returns warnings.
// An empty path yields the default configuration.
func LoadAndValidate(path string) (*Config, []string, error) {
	if path == "" {
		return Default(), nil, nil
	}

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		return nil, nil, err
	}

	warnings, err := Validate(cfg)
	if err != nil {
		return nil, warnings, configError(path, "invalid config file", err)
	}

	return cfg, warnings, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func configError(path, message string, cause error) *lverrors.Error {
	return &lverrors.Error{
		Kind:    lverrors.KindConfig,
		Message: fmt.Sprintf("%s %s", message, path),
		Cause:   cause,
	}
}
