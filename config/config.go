// Package config loads the settings of the posts demo from the environment.
package config

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	EnvBaseURL   = "POSTSDEMO_BASE_URL"
	EnvAuthToken = "POSTSDEMO_AUTH_TOKEN"
	EnvTimeout   = "POSTSDEMO_TIMEOUT"
	EnvHeaders   = "POSTSDEMO_HEADERS"
	EnvListen    = "POSTSDEMO_LISTEN"
	EnvLogLevel  = "POSTSDEMO_LOG_LEVEL"
	EnvLogJSON   = "POSTSDEMO_LOG_JSON"
)

// Config holds all application configuration
type Config struct {
	// Client configures the posts API client
	Client ClientConfig

	// Server configures the UI server
	Server ServerConfig

	// Log configures logging
	Log LogConfig
}

type ClientConfig struct {
	// BaseURL is the root of the posts API
	BaseURL string

	// AuthToken is sent as the Authorization header unless a request sets
	// its own
	AuthToken string

	// Timeout bounds each request
	Timeout time.Duration

	// Headers are sent with every request that does not set them itself
	Headers http.Header
}

type ServerConfig struct {
	// Listen is the address the UI listens on
	Listen string
}

type LogConfig struct {
	Level logrus.Level
	JSON  bool
}

// LoadFromEnv loads configuration from environment variables, using defaults
// for anything that is not set.
func LoadFromEnv() (*Config, error) {
	var errs []error

	timeout, err := getEnvAsDurationOrDefault(EnvTimeout, 10*time.Second)
	errs = append(errs, err)

	level, err := logrus.ParseLevel(getEnvOrDefault(EnvLogLevel, "info"))
	if err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", EnvLogLevel, err))
	}

	logJSON, err := getEnvAsBoolOrDefault(EnvLogJSON, false)
	errs = append(errs, err)

	headers, err := getEnvAsHeaders(EnvHeaders)
	errs = append(errs, err)

	cfg := &Config{
		Client: ClientConfig{
			BaseURL:   getEnvOrDefault(EnvBaseURL, "https://jsonplaceholder.typicode.com"),
			AuthToken: getEnvOrDefault(EnvAuthToken, "AUTH_TOKEN"),
			Timeout:   timeout,
			Headers:   headers,
		},
		Server: ServerConfig{
			Listen: getEnvOrDefault(EnvListen, "127.0.0.1:8080"),
		},
		Log: LogConfig{
			Level: level,
			JSON:  logJSON,
		},
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

// getEnvAsHeaders parses a list of headers such as
// "X-Client: demo; Accept-Language: en". An unset variable gives nil.
func getEnvAsHeaders(key string) (http.Header, error) {
	value := os.Getenv(key)
	if value == "" {
		return nil, nil
	}
	h := http.Header{}
	for _, field := range strings.Split(value, ";") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		name, v, ok := strings.Cut(field, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" || strings.ContainsAny(name, " \t") {
			return nil, fmt.Errorf("%s: malformed header %q, want \"Name: value\"", key, field)
		}
		h.Add(name, strings.TrimSpace(v))
	}
	return h, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	u, err := url.Parse(c.Client.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base URL %q must be http or https", c.Client.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("base URL %q has no host", c.Client.BaseURL)
	}

	if c.Client.AuthToken == "" {
		return errors.New("auth token cannot be empty")
	}

	if c.Client.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}

	if c.Server.Listen == "" {
		return errors.New("listen address cannot be empty")
	}

	return nil
}
