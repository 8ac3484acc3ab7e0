// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/blip/lib/secret"
)

// Environment represents the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Transport kinds.
const (
	TransportHTTP   = "http"
	TransportSocket = "socket"
)

// DefaultURL is the BLiP HTTP API endpoint.
const DefaultURL = "https://http.msging.net"

// Config is the blip client configuration.
type Config struct {
	Environment Environment `yaml:"environment"`

	Transport TransportConfig `yaml:"transport"`

	// Domains maps extension names (bucket, broadcast, contacts...) to the
	// domain of their postmaster. Missing entries use the extension's
	// built-in destination.
	Domains map[string]string `yaml:"domains"`

	Metrics MetricsConfig `yaml:"metrics"`

	Log LogConfig `yaml:"log"`

	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	Transport *TransportConfig  `yaml:"transport,omitempty"`
	Domains   map[string]string `yaml:"domains,omitempty"`
	Metrics   *MetricsConfig    `yaml:"metrics,omitempty"`
	Log       *LogConfig        `yaml:"log,omitempty"`
}

// TransportConfig selects and configures the envelope sender.
type TransportConfig struct {
	// Kind is "http" (BLiP HTTP API) or "socket" (local gateway).
	Kind string `yaml:"kind"`

	// URL is the HTTP API base URL.
	URL string `yaml:"url"`

	// SocketPath is the gateway unix socket.
	SocketPath string `yaml:"socket_path"`

	// Timeout bounds one request. Zero means no client-side timeout
	// beyond the caller's context.
	Timeout time.Duration `yaml:"timeout"`

	// RateLimit is the sustained request rate per second. Zero disables
	// limiting.
	RateLimit float64 `yaml:"rate_limit"`

	// RateBurst is the limiter bucket size. Defaults to 1 when RateLimit
	// is set.
	RateBurst int `yaml:"rate_burst"`

	// AuthorizationKeyFile holds the key when BLIP_AUTHORIZATION_KEY is
	// unset.
	AuthorizationKeyFile string `yaml:"authorization_key_file"`
}

// MetricsConfig toggles prometheus and tracing instrumentation.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LogConfig configures the slog handler built by the CLI.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`

	// Format is text or json.
	Format string `yaml:"format"`
}

// Credentials are read from the process environment, never from the
// configuration file.
type Credentials struct {
	AuthorizationKey string `env:"BLIP_AUTHORIZATION_KEY"`
}

// Default returns the base configuration the file is merged into.
func Default() *Config {
	return &Config{
		Environment: Development,
		Transport: TransportConfig{
			Kind:       TransportHTTP,
			URL:        DefaultURL,
			SocketPath: "/run/blip/gateway.sock",
			Timeout:    30 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from the BLIP_CONFIG environment variable.
func Load() (*Config, error) {
	configPath := os.Getenv("BLIP_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("BLIP_CONFIG environment variable not set; " +
			"set it to the path of your blip.yaml config file, or use --config flag")
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from path, applies the matching
// environment overrides and expands variables.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		data = jsonc.ToJSON(data)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
		// Production defaults: structured logs at warn.
		if overrides == nil {
			overrides = &ConfigOverrides{
				Log: &LogConfig{Level: "warn", Format: "json"},
			}
		}
	}

	if overrides == nil {
		return
	}

	if transport := overrides.Transport; transport != nil {
		if transport.Kind != "" {
			c.Transport.Kind = transport.Kind
		}
		if transport.URL != "" {
			c.Transport.URL = transport.URL
		}
		if transport.SocketPath != "" {
			c.Transport.SocketPath = transport.SocketPath
		}
		if transport.Timeout != 0 {
			c.Transport.Timeout = transport.Timeout
		}
		if transport.RateLimit != 0 {
			c.Transport.RateLimit = transport.RateLimit
		}
		if transport.RateBurst != 0 {
			c.Transport.RateBurst = transport.RateBurst
		}
		if transport.AuthorizationKeyFile != "" {
			c.Transport.AuthorizationKeyFile = transport.AuthorizationKeyFile
		}
	}

	if len(overrides.Domains) > 0 {
		if c.Domains == nil {
			c.Domains = make(map[string]string, len(overrides.Domains))
		}
		for name, domain := range overrides.Domains {
			c.Domains[name] = domain
		}
	}

	// Enabled is a bool, so an override section always applies it.
	if overrides.Metrics != nil {
		c.Metrics.Enabled = overrides.Metrics.Enabled
	}

	if overrides.Log != nil {
		if overrides.Log.Level != "" {
			c.Log.Level = overrides.Log.Level
		}
		if overrides.Log.Format != "" {
			c.Log.Format = overrides.Log.Format
		}
	}
}

func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.Transport.URL = expandVars(c.Transport.URL, vars)
	c.Transport.SocketPath = expandVars(c.Transport.SocketPath, vars)
	c.Transport.AuthorizationKeyFile = expandVars(c.Transport.AuthorizationKeyFile, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default}. Provided vars win over
// the process environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration and reports every problem found.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	switch c.Transport.Kind {
	case TransportHTTP:
		parsed, err := url.Parse(c.Transport.URL)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			errs = append(errs, fmt.Errorf("transport.url must be an http(s) URL, got %q", c.Transport.URL))
		}
	case TransportSocket:
		if c.Transport.SocketPath == "" {
			errs = append(errs, fmt.Errorf("transport.socket_path is required for socket transport"))
		}
	default:
		errs = append(errs, fmt.Errorf("transport.kind must be one of: [%s %s], got %q",
			TransportHTTP, TransportSocket, c.Transport.Kind))
	}

	if c.Transport.Timeout < 0 {
		errs = append(errs, fmt.Errorf("transport.timeout must not be negative"))
	}
	if c.Transport.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("transport.rate_limit must not be negative"))
	}
	if c.Transport.RateBurst < 0 {
		errs = append(errs, fmt.Errorf("transport.rate_burst must not be negative"))
	}

	names := make([]string, 0, len(c.Domains))
	for name := range c.Domains {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		domain := c.Domains[name]
		if domain == "" || strings.ContainsAny(domain, "@/ ") {
			errs = append(errs, fmt.Errorf("domains.%s: invalid domain %q", name, domain))
		}
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format must be one of: [text json], got %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// SlogLevel parses Level. Empty means info.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	if l.Level == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// Burst returns the limiter bucket size, at least 1.
func (t TransportConfig) Burst() int {
	if t.RateBurst < 1 {
		return 1
	}
	return t.RateBurst
}

// Domain returns the configured domain for an extension, or "".
func (c *Config) Domain(extension string) string {
	return c.Domains[extension]
}

// LoadCredentials parses Credentials from the process environment.
func LoadCredentials() (Credentials, error) {
	var credentials Credentials
	if err := env.Parse(&credentials); err != nil {
		return Credentials{}, fmt.Errorf("parse env: %w", err)
	}
	return credentials, nil
}

// AuthorizationKey returns the HTTP API key in protected memory. The
// environment variable wins over the key file.
func (c *Config) AuthorizationKey() (*secret.Buffer, error) {
	credentials, err := LoadCredentials()
	if err != nil {
		return nil, err
	}
	if credentials.AuthorizationKey != "" {
		return secret.NewFromBytes([]byte(credentials.AuthorizationKey))
	}
	if c.Transport.AuthorizationKeyFile == "" {
		return nil, fmt.Errorf("no authorization key: set BLIP_AUTHORIZATION_KEY or transport.authorization_key_file")
	}
	return secret.ReadFile(c.Transport.AuthorizationKeyFile)
}
