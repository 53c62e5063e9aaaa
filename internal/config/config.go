// Package config loads application configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

const (
	defaultAddr    = "127.0.0.1:8080"
	defaultBaseURL = "http://127.0.0.1:8080"
)

// ErrMissingCredentials is returned when SPOTIFY_ID or SPOTIFY_SECRET is not set.
var ErrMissingCredentials = errors.New("missing SPOTIFY_ID or SPOTIFY_SECRET environment variable")

// Config holds the application configuration.
type Config struct {
	Addr         string
	BaseURL      string
	ClientID     string
	ClientSecret string
	DatabaseURL  string // optional; enables Postgres sessions and play history
	RedisURL     string // optional; enables Redis sessions
	LogLevel     log.Level
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if present.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	clientID := strings.TrimSpace(os.Getenv("SPOTIFY_ID"))
	clientSecret := strings.TrimSpace(os.Getenv("SPOTIFY_SECRET"))
	if clientID == "" || clientSecret == "" {
		return nil, ErrMissingCredentials
	}

	addr := strings.TrimSpace(os.Getenv("ADDR"))
	if addr == "" {
		addr = defaultAddr
	}

	baseURL := strings.TrimSpace(os.Getenv("BASE_URL"))
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	level := log.InfoLevel
	if raw := strings.TrimSpace(os.Getenv("LOG_LEVEL")); raw != "" {
		parsed, err := log.ParseLevel(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing LOG_LEVEL: %w", err)
		}
		level = parsed
	}

	return &Config{
		Addr:         addr,
		BaseURL:      baseURL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		DatabaseURL:  strings.TrimSpace(os.Getenv("DATABASE_URL")),
		RedisURL:     strings.TrimSpace(os.Getenv("REDIS_URL")),
		LogLevel:     level,
	}, nil
}

// RedirectURL returns the OAuth callback URL derived from the base URL.
// It must match the redirect URI registered with the Spotify app.
func (c *Config) RedirectURL() string {
	return c.BaseURL + "/callback"
}
