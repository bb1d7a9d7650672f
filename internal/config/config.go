package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	BlobBackendFS     = "fs"
	BlobBackendGithub = "github"
)

// Config holds the process settings read from the environment.
type Config struct {
	HTTPPort  string
	LogLevel  string
	LogFormat string
	SiteURL   string

	BlobBackend string
	BlobRoot    string

	GithubOwner string
	GithubRepo  string
	GithubRef   string
	GithubToken string

	ImageLookupTimeout     time.Duration
	ImageCacheTTL          time.Duration
	ImageLookupConcurrency int
}

// Load reads the configuration from environment variables, applying defaults.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
		SiteURL:     getEnv("SITE_URL", ""),
		BlobBackend: getEnv("BLOB_BACKEND", BlobBackendFS),
		BlobRoot:    getEnv("BLOB_ROOT", "./articles"),
		GithubOwner: getEnv("GITHUB_OWNER", ""),
		GithubRepo:  getEnv("GITHUB_REPO", ""),
		GithubRef:   getEnv("GITHUB_REF", "main"),
		GithubToken: getEnv("GITHUB_TOKEN", ""),
	}

	var err error
	if cfg.ImageLookupTimeout, err = getDuration("IMAGE_LOOKUP_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.ImageCacheTTL, err = getDuration("IMAGE_CACHE_TTL", 0); err != nil {
		return nil, err
	}
	if cfg.ImageLookupConcurrency, err = getInt("IMAGE_LOOKUP_CONCURRENCY", 8); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.BlobBackend {
	case BlobBackendFS:
	case BlobBackendGithub:
		if c.GithubOwner == "" || c.GithubRepo == "" {
			return fmt.Errorf("GITHUB_OWNER and GITHUB_REPO are required when BLOB_BACKEND=%s", BlobBackendGithub)
		}
	default:
		return fmt.Errorf("unknown BLOB_BACKEND %q", c.BlobBackend)
	}

	if c.ImageLookupTimeout < 0 || c.ImageCacheTTL < 0 {
		return fmt.Errorf("image durations cannot be negative")
	}
	if c.ImageLookupConcurrency < 1 {
		return fmt.Errorf("IMAGE_LOOKUP_CONCURRENCY must be at least 1")
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}

	return nil
}

// ConfigureLogging sets the global zerolog level and output format.
func (c *Config) ConfigureLogging() {
	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if strings.EqualFold(c.LogFormat, "console") {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}
