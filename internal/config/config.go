package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

const (
	// DefaultPrompt is printed before every read.
	DefaultPrompt = "$ "
	// DefaultMaxLineLen is the longest accepted input line in bytes.
	DefaultMaxLineLen = 512
)

type Config struct {
	Prompt     string `yaml:"prompt"`
	MaxLineLen int    `yaml:"max_line_length"`
}

// Default returns the built-in configuration used when no config file
// is present.
func Default() *Config {
	return &Config{
		Prompt:     DefaultPrompt,
		MaxLineLen: DefaultMaxLineLen,
	}
}

// Load reads the YAML config at file, filling in defaults for any
// omitted field. A missing file is not an error: the shell takes no
// arguments or environment, so the defaults must always work.
func Load(file string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if cfg.Prompt == "" {
		cfg.Prompt = DefaultPrompt
	}
	if cfg.MaxLineLen <= 0 {
		cfg.MaxLineLen = DefaultMaxLineLen
	}

	return cfg, nil
}
