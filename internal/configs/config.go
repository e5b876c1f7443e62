package configs

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	// DefaultAPIURL is the base URL of the hosting service API.
	DefaultAPIURL = "https://asap-static.site"

	// DefaultHostingDomain is the parent domain every site is served under.
	DefaultHostingDomain = "asap-static.site"

	// DefaultTimeout bounds a single HTTP request, including the upload body.
	DefaultTimeout = 60 * time.Second

	// DefaultRetryMax is the number of retries after a connection-level failure.
	DefaultRetryMax = 2
)

type Config struct {
	APIURL        string   `toml:"api_url"`
	HostingDomain string   `toml:"hosting_domain"`
	Timeout       string   `toml:"timeout"`
	RetryMax      *int     `toml:"retry_max"`
	Exclude       []string `toml:"exclude"`

	// UnknownKeys lists keys in the file that were not recognised.
	UnknownKeys []string `toml:"-"`
}

// Defaults returns the configuration used when no config file exists.
func Defaults() *Config {
	retryMax := DefaultRetryMax
	return &Config{
		APIURL:        DefaultAPIURL,
		HostingDomain: DefaultHostingDomain,
		Timeout:       DefaultTimeout.String(),
		RetryMax:      &retryMax,
	}
}

// LoadConfig loads the user configuration, filling unset keys with defaults
// and applying environment overrides.
func LoadConfig() (*Config, error) {
	config := Defaults()

	if _, err := os.Stat(UserAsapSettings.ConfigPath); err == nil {
		fileConfig := &Config{}
		unknown, err := LoadTOML(UserAsapSettings.ConfigPath, fileConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", UserAsapSettings.ConfigPath, err)
		}
		config.merge(fileConfig)
		config.UnknownKeys = unknown
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to stat config %s: %w", UserAsapSettings.ConfigPath, err)
	}

	if v := os.Getenv("ASAP_API_URL"); v != "" {
		config.APIURL = v
	}
	if v := os.Getenv("ASAP_HOSTING_DOMAIN"); v != "" {
		config.HostingDomain = v
	}

	config.APIURL = strings.TrimRight(config.APIURL, "/")

	if _, err := config.HTTPTimeout(); err != nil {
		return nil, err
	}

	return config, nil
}

// SaveConfig writes the configuration to the user config file.
func SaveConfig(config *Config) error {
	if err := SaveTOML(UserAsapSettings.ConfigPath, config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// HTTPTimeout parses the timeout setting.
func (c *Config) HTTPTimeout() (time.Duration, error) {
	if c.Timeout == "" {
		return DefaultTimeout, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q in config: %w", c.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid timeout %q in config: must be positive", c.Timeout)
	}
	return d, nil
}

// Retries returns the configured retry count, never negative.
func (c *Config) Retries() int {
	if c.RetryMax == nil || *c.RetryMax < 0 {
		return 0
	}
	return *c.RetryMax
}

func (c *Config) merge(other *Config) {
	if other.APIURL != "" {
		c.APIURL = other.APIURL
	}
	if other.HostingDomain != "" {
		c.HostingDomain = other.HostingDomain
	}
	if other.Timeout != "" {
		c.Timeout = other.Timeout
	}
	if other.RetryMax != nil {
		c.RetryMax = other.RetryMax
	}
	if len(other.Exclude) > 0 {
		c.Exclude = other.Exclude
	}
}
