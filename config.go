package locator

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the YAML-loadable bootstrap configuration for a Resolver or
// Publisher: default relay set, timeouts, and gossip behavior. Options
// overrides values supplied programmatically; Config exists for the
// common case of a static deployment-level relay list.
type Config struct {
	BootstrapRelays []string      `yaml:"bootstrap_relays"`
	Timeout         time.Duration `yaml:"timeout"`
	PublishTimeout  time.Duration `yaml:"publish_timeout"`
	Gossip          bool          `yaml:"gossip"`
	Strict          bool          `yaml:"strict"`
	QueryLimit      int           `yaml:"query_limit"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps"`
	RateLimitBurst  int           `yaml:"rate_limit_burst"`
}

// DefaultConfig mirrors the original reference implementation's defaults:
// a 10-second per-resolve timeout, a 5-second per-publish timeout, and a
// 50-event query limit per relay.
func DefaultConfig() Config {
	return Config{
		BootstrapRelays: nil,
		Timeout:         10 * time.Second,
		PublishTimeout:  5 * time.Second,
		Gossip:          false,
		Strict:          false,
		QueryLimit:      50,
		RateLimitRPS:    20,
		RateLimitBurst:  40,
	}
}

// LoadConfig reads a YAML document at path into DefaultConfig's base,
// letting the file override only the fields it sets.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &ArgumentError{Field: "path", Err: err}
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, &ArgumentError{Field: "path", Err: err}
	}
	return cfg, nil
}
