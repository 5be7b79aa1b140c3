// Package config assembles runtime settings for the surveydesk CLI from
// defaults, an optional JSON file, and command-line flags — later sources
// take precedence over earlier ones.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the surveydesk CLI.
//
// Fields:
//   - APIBaseURL: base URL of the backend API.
//   - TokenFile: path of the persisted bearer token slot.
//   - StorageBucket: default bucket for file operations.
//   - RequestTimeout: transport-level timeout for backend calls.
//   - OnlineCheckInterval: how often the client probes backend reachability.
type Config struct {
	APIBaseURL          string
	TokenFile           string
	StorageBucket       string
	RequestTimeout      time.Duration
	OnlineCheckInterval time.Duration
}

// LoadDefaults populates c with sensible defaults. The token file lives
// under the user config dir when one can be resolved, else under the
// working directory.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8000"
	c.TokenFile = defaultTokenFile()
	c.StorageBucket = "survey-uploads"
	c.RequestTimeout = 15 * time.Second
	c.OnlineCheckInterval = 30 * time.Second
}

func defaultTokenFile() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "surveydesk", "token")
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present).
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
