package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the export tool configuration.
type Config struct {
	// Catalog site.
	BaseURL          string
	StartPath        string
	DepartmentTitle  string
	ExcludedPrograms []string
	LocaleMarkerDE   string
	LocaleMarkerEN   string

	// Books metadata API.
	BooksAPIURL  string
	APIKey       string
	ResolveDelay time.Duration
	CacheSize    int

	// Run parameters.
	Semester    string
	OutputDir   string
	PageDelay   time.Duration
	Timeout     time.Duration
	UserAgent   string
	MetricsAddr string
	Verbose     bool
}

// DefaultConfig returns the defaults matching the production catalog.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:          "https://www.tucan.tu-darmstadt.de",
		StartPath:        "/scripts/mgrqcgi?APPNAME=CampusNet&PRGNAME=EXTERNALPAGES&ARGUMENTS=-N1,-N,-Awelcome",
		DepartmentTitle:  "FB20 - Informatik",
		ExcludedPrograms: []string{"Computational Engineering"},
		LocaleMarkerDE:   "-N000000000000001",
		LocaleMarkerEN:   "-N000000000000002",
		BooksAPIURL:      "https://www.googleapis.com",
		ResolveDelay:     200 * time.Millisecond,
		CacheSize:        512,
		PageDelay:        100 * time.Millisecond,
		Timeout:          30 * time.Second,
		UserAgent:        "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36",
		Verbose:          false,
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}
	parsedURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("base URL must include a host")
	}
	if c.StartPath == "" {
		return fmt.Errorf("start path cannot be empty")
	}
	if c.DepartmentTitle == "" {
		return fmt.Errorf("department title cannot be empty")
	}
	if c.LocaleMarkerDE == "" || c.LocaleMarkerEN == "" {
		return fmt.Errorf("locale markers cannot be empty")
	}
	if c.BooksAPIURL == "" {
		return fmt.Errorf("books API URL cannot be empty")
	}
	if apiURL, err := url.Parse(c.BooksAPIURL); err != nil || apiURL.Host == "" {
		return fmt.Errorf("books API URL must include a host")
	}
	if c.APIKey == "" {
		return fmt.Errorf("API key cannot be empty")
	}
	if c.Semester == "" {
		return fmt.Errorf("semester cannot be empty")
	}
	if strings.ContainsAny(c.Semester, `/\`) {
		return fmt.Errorf("semester %q cannot contain path separators", c.Semester)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output directory cannot be empty")
	}
	if c.PageDelay < 0 {
		return fmt.Errorf("page delay cannot be negative")
	}
	if c.ResolveDelay < 0 {
		return fmt.Errorf("resolve delay cannot be negative")
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("cache size must be positive")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	return nil
}

// StartURL is the absolute URL of the catalog entry page.
func (c *Config) StartURL() string {
	return c.BaseURL + c.StartPath
}

// EnvString reads an environment variable, reporting whether it was set.
func EnvString(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// EnvInt reads an integer environment variable.
func EnvInt(key string) (int, bool, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return 0, false, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("parse %s: %w", key, err)
	}
	return value, true, nil
}
