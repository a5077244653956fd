// Package config provides configuration management for the csvlite CLI.
// Values layer as: defaults < config file < environment < flags.
package config

import "fmt"

// Config holds all CLI configuration options.
type Config struct {
	Table         string `koanf:"table"`
	Delimiter     string `koanf:"delimiter"`
	BatchSize     int    `koanf:"batch_size"`
	InferTypes    bool   `koanf:"infer_types"`
	SkipMalformed bool   `koanf:"skip_malformed"`
	Verbose       bool   `koanf:"verbose"`
}

// Default configuration values.
const (
	DefaultTable     = "data"
	DefaultDelimiter = ","
	DefaultBatchSize = 1000
)

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Table == "" {
		return fmt.Errorf("table name must not be empty")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive, got %d", c.BatchSize)
	}
	if _, err := c.DelimiterRune(); err != nil {
		return err
	}
	return nil
}

// DelimiterRune returns the delimiter as a rune. Named escapes for the
// common cases are accepted so shells don't have to pass literal tabs.
func (c *Config) DelimiterRune() (rune, error) {
	switch c.Delimiter {
	case "":
		return ',', nil
	case `\t`, "tab":
		return '\t', nil
	}
	runes := []rune(c.Delimiter)
	if len(runes) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", c.Delimiter)
	}
	return runes[0], nil
}
