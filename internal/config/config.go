// Package config loads the gateway's YAML configuration, writing a default
// file on first run.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/wxgate/wxgate/internal/alert"
)

const (
	DefaultAddress    = "0.0.0.0"
	DefaultPort       = 8080
	DefaultTTLSeconds = 300
)

// Server holds the listen address and the full-access API key. Every API
// request carries a bearer token, so the key is required to start.
type Server struct {
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`
	Key     string `yaml:"key"`
}

// Cache controls forecast staleness.
type Cache struct {
	TTLSeconds int `yaml:"ttl_seconds"`
}

// HWO holds hazard-outlook parsing options.
type HWO struct {
	// IgnoreText suppresses bulletins that carry this phrase in both the
	// day-one and extended sections, typically "no hazardous weather".
	IgnoreText string `yaml:"ignore_text"`
}

// WatchedLocation is a location the background warmer keeps resolved and
// cached. Office, when set, pins the location's hazard-outlook office; the
// warmer keeps that office's metadata cached alongside the forecast.
type WatchedLocation struct {
	Lat    float64 `yaml:"lat"`
	Lon    float64 `yaml:"lon"`
	Office string  `yaml:"office,omitempty"`
}

// Config is the full configuration tree.
type Config struct {
	Server    Server            `yaml:"server"`
	Cache     Cache             `yaml:"cache"`
	HWO       HWO               `yaml:"hwo"`
	Locations []WatchedLocation `yaml:"locations"`

	// Tokens maps additional bearer tokens to their granted roles
	// ("read", "alert", "admin"). The server key implicitly has them all.
	Tokens map[string][]string `yaml:"tokens,omitempty"`

	Alerts alert.RuleSet `yaml:"alerts,omitempty"`
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "wxgate.yml"
	}
	return filepath.Join(home, ".config", "wxgate.yml")
}

func defaults() *Config {
	return &Config{
		Server: Server{Address: DefaultAddress, Port: DefaultPort},
		Cache:  Cache{TTLSeconds: DefaultTTLSeconds},
	}
}

// Load reads the configuration file at path, or DefaultPath when path is
// empty. A missing file is written out with defaults so the operator has a
// template to fill in; the returned config then still lacks a server key and
// will fail Validate.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg := defaults()
		if err := writeDefault(path, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes configuration bytes and fills in defaults for absent server
// and cache settings.
func Parse(data []byte) (*Config, error) {
	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = DefaultAddress
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultPort
	}
	if cfg.Cache.TTLSeconds == 0 {
		cfg.Cache.TTLSeconds = DefaultTTLSeconds
	}
	if err := cfg.Alerts.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings a running server cannot do without.
func (c *Config) Validate() error {
	if c.Server.Key == "" {
		return fmt.Errorf("config: server key is required")
	}
	return nil
}

// RolesFor returns the roles granted to a bearer token, or false when the
// token is not recognized. The server key carries every role.
func (c *Config) RolesFor(token string) ([]string, bool) {
	if token != "" && token == c.Server.Key {
		return []string{"read", "alert", "admin"}, true
	}
	roles, ok := c.Tokens[token]
	return roles, ok
}

func writeDefault(path string, cfg *Config) error {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode default config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	return nil
}
