package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/borrowreport/internal/borrowing"
)

// Config holds everything the report needs from its environment. It is
// built once at startup and passed to the components that need it.
type Config struct {
	APIURL       string
	APIToken     string
	ImageBaseURL string
	Timeout      time.Duration
	Timezone     string
	ChromeBin    string
}

// FromEnv reads configuration from environment variables. Call
// godotenv.Load first to pick up a .env file.
func FromEnv() Config {
	timeout, err := time.ParseDuration(getEnv("LIBRARY_API_TIMEOUT", "30s"))
	if err != nil {
		timeout = 30 * time.Second
	}

	return Config{
		APIURL:       strings.TrimSpace(os.Getenv("LIBRARY_API_URL")),
		APIToken:     os.Getenv("LIBRARY_API_TOKEN"),
		ImageBaseURL: strings.TrimSpace(os.Getenv("LIBRARY_IMAGE_BASE_URL")),
		Timeout:      timeout,
		Timezone:     getEnv("REPORT_TIMEZONE", "Local"),
		ChromeBin:    os.Getenv("CHROME_BIN"),
	}
}

// Validate checks that the API can be reached with this configuration
func (c Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("LIBRARY_API_URL (or --api-url) is required")
	}
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid API URL: %q", c.APIURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

// Location resolves the report timezone
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// NormalizeOptions builds the record normalizer settings. Image paths
// resolve against ImageBaseURL, falling back to the API URL.
func (c Config) NormalizeOptions() (borrowing.Options, error) {
	loc, err := c.Location()
	if err != nil {
		return borrowing.Options{}, err
	}
	opts := borrowing.Options{Location: loc}

	base := c.ImageBaseURL
	if base == "" {
		base = c.APIURL
	}
	if base != "" {
		u, err := url.Parse(base)
		if err != nil {
			return borrowing.Options{}, fmt.Errorf("invalid image base URL %q: %w", base, err)
		}
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		opts.ImageBaseURL = u
	}
	return opts, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
