// Package config provides configuration for the file client.
//
// Configuration is an explicit value threaded through every client; there is
// no package-level lookup, so multiple clients with different credentials can
// coexist in one process.
package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultBaseURL is the production generative-language API endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com"

// Config holds client configuration
type Config struct {
	// APIKey authenticates API requests (sent as the "key" query parameter)
	APIKey string

	// BaseURL overrides the API endpoint, mainly for tests against local servers
	BaseURL string
}

// Load reads configuration from the environment. A .env file in the working
// directory is honored when present but is not required.
func Load() (*Config, error) {
	_ = godotenv.Load() // ignore error if .env file doesn't exist

	cfg := &Config{
		APIKey:  os.Getenv("GEMINI_API_KEY"),
		BaseURL: os.Getenv("GEMINI_BASE_URL"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields and fills in defaults.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("config: API key is required")
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	return nil
}
