package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	foundation "git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
)

// Load returns the compiled-in defaults overlaid with the YAML file at configPath.
// An empty configPath returns the defaults unchanged.
func Load(configPath string) (*Config, error) {
	cfg := Default()
	if configPath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, foundation.WrapError(err, foundation.CategoryConfig, "failed to read config file").
			Fatal().
			WithContext("file", configPath).
			Build()
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, foundation.WrapError(err, foundation.CategoryConfig, "failed to unmarshal config").
			Fatal().
			WithContext("file", configPath).
			Build()
	}
	return cfg, nil
}

// Init writes the default configuration to configPath.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return foundation.ConfigError(fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", configPath)).Build()
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return foundation.WrapError(err, foundation.CategoryFileSystem, "failed to write config file").
			WithContext("file", configPath).
			Build()
	}
	return nil
}
