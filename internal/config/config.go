package config

import (
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

type Config struct {
	APIURL         string `yaml:"api_url"`
	WebURL         string `yaml:"web_url"`
	PageSize       int    `yaml:"page_size,omitempty"`
	CacheTTL       string `yaml:"cache_ttl,omitempty"`
	SearchDebounce string `yaml:"search_debounce,omitempty"`
	RequestTimeout string `yaml:"request_timeout,omitempty"`
	SlowNotice     string `yaml:"slow_notice,omitempty"`
	DefaultSort    string `yaml:"default_sort,omitempty"`
}

// ResolvedAPIURL returns the API base, letting the env var override the
// config file (useful against a staging backend).
func (c *Config) ResolvedAPIURL() string {
	if v := os.Getenv("JOBCRAP_API_URL"); v != "" {
		return v
	}
	return c.APIURL
}

// GetPageSize returns the per-page story count, defaulting to 10.
func (c *Config) GetPageSize() int {
	if c.PageSize <= 0 {
		return 10
	}
	return c.PageSize
}

func (c *Config) CacheTTLDuration() time.Duration {
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil || d <= 0 {
		return 5 * time.Minute
	}
	return d
}

func (c *Config) SearchDebounceDuration() time.Duration {
	d, err := time.ParseDuration(c.SearchDebounce)
	if err != nil || d <= 0 {
		return 500 * time.Millisecond
	}
	return d
}

func (c *Config) RequestTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil || d <= 0 {
		return 15 * time.Second
	}
	return d
}

func (c *Config) SlowNoticeDuration() time.Duration {
	d, err := time.ParseDuration(c.SlowNotice)
	if err != nil || d <= 0 {
		return 3 * time.Second
	}
	return d
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "jobcrap", "config.yaml")
}

func CachePath() string {
	return filepath.Join(xdg.CacheHome, "jobcrap", "jobcrap.db")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

func Load(path string) (*Config, error) {
	defaults, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Write defaults to config path on first run
			if err := writeDefaults(path); err != nil {
				// Non-fatal: just use embedded defaults
				return defaults, nil
			}
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

func validate(cfg *Config) error {
	for _, field := range []struct{ name, value string }{
		{"api_url", cfg.APIURL},
		{"web_url", cfg.WebURL},
	} {
		if field.value == "" {
			return fmt.Errorf("%s is required", field.name)
		}
		u, err := url.Parse(field.value)
		if err != nil {
			return fmt.Errorf("%s: invalid url: %w", field.name, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("%s: scheme must be http or https, got %q", field.name, u.Scheme)
		}
	}

	validSorts := map[string]bool{
		"": true, "recent": true, "top": true, "trending": true,
		"discussed": true, "controversial": true,
	}
	if !validSorts[cfg.DefaultSort] {
		return fmt.Errorf("default_sort: unknown sort mode %q", cfg.DefaultSort)
	}

	// Zero means unset; GetPageSize falls back to the default.
	if cfg.PageSize != 0 && (cfg.PageSize < 1 || cfg.PageSize > 100) {
		return fmt.Errorf("page_size must be between 1 and 100, got %d", cfg.PageSize)
	}
	return nil
}
