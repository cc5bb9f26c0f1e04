package config

import (
	"fmt"
	"time"
)

// Config holds runtime settings for the companion CLI.
type Config struct {
	ServerEndpointAddr  string
	OnlineCheckInterval time.Duration
	// BaseURL is the site that hosts the checkout page.
	BaseURL      string
	DatabasePath string
	OpenBrowser  bool
	LogLevel     string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.OnlineCheckInterval = 3 * time.Second
	c.BaseURL = "http://localhost:3000"
	c.DatabasePath = "companion.db"
	c.OpenBrowser = true
	c.LogLevel = "info"
}

// LoadConfig applies defaults, then CLIPBOARD_* environment variables, then
// the JSON file, then command-line flags. Later sources win. Invalid input
// panics.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	if err := cfg.validate(); err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) validate() error {
	if c.OnlineCheckInterval <= 0 {
		return fmt.Errorf("online check interval must be positive, got %s", c.OnlineCheckInterval)
	}
	return nil
}
