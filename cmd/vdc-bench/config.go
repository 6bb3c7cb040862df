package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vdcsim/vdc-go/pkg/uut"
	"github.com/vdcsim/vdc-go/pkg/vdc"
	"gopkg.in/yaml.v3"
)

// benchConfig is the optional YAML bench configuration.
type benchConfig struct {
	// Profile replaces vdc.DefaultProfile for every instance.
	Profile *vdc.ModelProfile `yaml:"profile"`

	// Loads are named load models available to all scripts and the shell.
	Loads map[string]uut.Spec `yaml:"loads"`
}

// loadConfig reads a bench configuration. An empty path yields the
// defaults. Unknown keys are rejected so typos do not go unnoticed.
func loadConfig(path string) (*benchConfig, error) {
	if path == "" {
		return &benchConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg benchConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if cfg.Profile != nil {
		if err := cfg.Profile.Validate(); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}
	if _, err := uut.BuildAll(cfg.Loads); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

// profile returns the configured model profile or the default.
func (c *benchConfig) profile() vdc.ModelProfile {
	if c.Profile != nil {
		return *c.Profile
	}
	return vdc.DefaultProfile
}

// loads builds the configured load models. loadConfig has already
// validated them.
func (c *benchConfig) loads() map[string]vdc.LoadModel {
	m, err := uut.BuildAll(c.Loads)
	if err != nil {
		panic(err)
	}
	return m
}
