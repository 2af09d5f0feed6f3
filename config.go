// config.go: Engine configuration.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptodev

import (
	"os"

	clog "github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

// Engine configuration defaults
const (
	DefaultLanes               = 1
	DefaultQueueDepth          = 2048
	DefaultSessionlessPoolSize = 128
	MaxLanes                   = 1024
)

// Config parameterises an Engine. Zero values take the defaults above.
type Config struct {
	Name                string `yaml:"name" json:"name"`
	Lanes               int    `yaml:"lanes" json:"lanes"`
	QueueDepth          int    `yaml:"queue_depth" json:"queue_depth"`
	SessionlessPoolSize int    `yaml:"sessionless_pool_size" json:"sessionless_pool_size"`
	LegacyProvider      bool   `yaml:"legacy_provider" json:"legacy_provider"`
	LogLevel            string `yaml:"log_level" json:"log_level"`
}

// DefaultConfig returns a single-lane configuration without the legacy provider.
func DefaultConfig() Config {
	return Config{
		Name:                "cryptodev",
		Lanes:               DefaultLanes,
		QueueDepth:          DefaultQueueDepth,
		SessionlessPoolSize: DefaultSessionlessPoolSize,
	}
}

// withDefaults fills zero fields.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Name == "" {
		c.Name = d.Name
	}
	if c.Lanes == 0 {
		c.Lanes = d.Lanes
	}
	if c.QueueDepth == 0 {
		c.QueueDepth = d.QueueDepth
	}
	if c.SessionlessPoolSize == 0 {
		c.SessionlessPoolSize = d.SessionlessPoolSize
	}
	return c
}

// Validate checks the configuration after defaults are applied.
func (c Config) Validate() error {
	c = c.withDefaults()
	if c.Lanes < 0 || c.Lanes > MaxLanes {
		return newError(ErrInvalidConfig, ErrCodeConfig, "lanes must be between 1 and %d, got %d", MaxLanes, c.Lanes)
	}
	if c.QueueDepth < 0 {
		return newError(ErrInvalidConfig, ErrCodeConfig, "queue depth must be positive, got %d", c.QueueDepth)
	}
	if c.SessionlessPoolSize < 0 {
		return newError(ErrInvalidConfig, ErrCodeConfig, "sessionless pool size must be positive, got %d", c.SessionlessPoolSize)
	}
	if c.LogLevel != "" {
		if _, err := clog.ParseLevel(c.LogLevel); err != nil {
			return wrapError(ErrInvalidConfig, err, ErrCodeConfig, "invalid log level")
		}
	}
	return nil
}

// ParseConfig decodes a YAML document into a validated configuration.
func ParseConfig(data []byte) (Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, wrapError(ErrInvalidConfig, err, ErrCodeConfig, "cannot parse configuration")
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c.withDefaults(), nil
}

// LoadConfig reads and parses a YAML configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is operator supplied
	if err != nil {
		return Config{}, wrapError(ErrInvalidConfig, err, ErrCodeConfig, "cannot read configuration")
	}
	return ParseConfig(data)
}
