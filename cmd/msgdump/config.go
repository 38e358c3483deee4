package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// config is the optional --config file. Flags given on the command line
// take precedence.
type config struct {
	Types     []string `yaml:"types"`
	Protocols []string `yaml:"protocols"`
	Format    string   `yaml:"format"`
	Names     bool     `yaml:"names"`
}

func loadConfig(path string) (*config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}
