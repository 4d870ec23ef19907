// Package config provides YAML configuration parsing for the pin binary.
//
// The file describes one watched target, the checks applied to it, and the
// optional status API and notification channels:
//
//	url: https://api.example.com/health
//	interval: 5s
//	text: Awesome
//	max_duration: 500ms
//	validators:
//	  - json:status
//	  - header:Content-Type=application/json
//	  - { type: status_range, min: 200, max: 299 }
//	server:
//	  port: 8080
//	notify:
//	  transitions_only: true
//	  nats: { url: "nats://127.0.0.1:4222", prefix: pin }
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/jpalmerr/pin"
)

// Config is the root configuration structure for pin.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// URL is the monitored endpoint.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	URL string `yaml:"url"`

	// Interval is the time between checks. Defaults to 15s.
	Interval Duration `yaml:"interval"`

	// Timeout is the per-request timeout of the HTTP driver. Defaults to 10s.
	Timeout Duration `yaml:"timeout"`

	// Text is a fragment the response body must contain.
	Text string `yaml:"text"`

	// MaxDuration is the slowest acceptable response. Zero disables the check.
	MaxDuration Duration `yaml:"max_duration"`

	// Immediate runs the first check at start instead of after one interval.
	Immediate bool `yaml:"immediate"`

	// SkipOverlap drops a tick while the previous check is still in flight.
	SkipOverlap bool `yaml:"skip_overlap"`

	// Headers are sent with every request. Values support env substitution.
	Headers map[string]string `yaml:"headers"`

	// Validators are appended after the built-in checks.
	Validators []ValidatorConfig `yaml:"validators"`

	Log    LogConfig    `yaml:"log"`
	Server ServerConfig `yaml:"server"`
	Notify NotifyConfig `yaml:"notify"`
}

// LogConfig controls the binary's logger.
type LogConfig struct {
	Dir    string `yaml:"dir"`
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ServerConfig enables the status API when Port is non-zero.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// NotifyConfig lists the channels that receive up/down events.
type NotifyConfig struct {
	// TransitionsOnly forwards an event only when the status changes.
	TransitionsOnly bool `yaml:"transitions_only"`

	NATS  *NATSConfig  `yaml:"nats"`
	Slack *SlackConfig `yaml:"slack"`
}

// NATSConfig publishes events to "<prefix>.up" and "<prefix>.down".
type NATSConfig struct {
	URL    string `yaml:"url"`
	Prefix string `yaml:"prefix"`
}

// SlackConfig posts events to an incoming webhook.
type SlackConfig struct {
	Webhook string `yaml:"webhook"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		varName := submatches[1]
		hasDefault := submatches[2] != ""

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return submatches[3]
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in the URL, header values and the Slack
// webhook. Interval defaults to 15s and Timeout to 10s. Every validation
// problem is reported; the returned error combines them.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.Interval == 0 {
		cfg.Interval = Duration(pin.DefaultInterval)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = Duration(pin.DefaultTimeout)
	}
	if cfg.Notify.NATS != nil && cfg.Notify.NATS.Prefix == "" {
		cfg.Notify.NATS.Prefix = "pin"
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) expandAndValidate() error {
	var errs error

	if c.URL == "" {
		errs = multierr.Append(errs, errors.New("url is required"))
	} else if expanded, err := expandEnvVars(c.URL); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("url: %w", err))
	} else {
		c.URL = expanded
		errs = multierr.Append(errs, validateURL(c.URL))
	}

	for k, v := range c.Headers {
		if k == "" {
			errs = multierr.Append(errs, errors.New("headers: empty header name"))
			continue
		}
		expanded, err := expandEnvVars(v)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("headers[%s]: %w", k, err))
			continue
		}
		c.Headers[k] = expanded
	}

	if c.Interval.Duration() <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("interval must be positive, got %s", c.Interval.Duration()))
	}
	if c.Timeout.Duration() <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout.Duration()))
	}
	if c.MaxDuration.Duration() < 0 {
		errs = multierr.Append(errs, fmt.Errorf("max_duration cannot be negative, got %s", c.MaxDuration.Duration()))
	}

	for i := range c.Validators {
		if err := c.Validators[i].validate(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("validators[%d]: %w", i, err))
		}
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = multierr.Append(errs, fmt.Errorf("server.port must be between 0 and 65535, got %d", c.Server.Port))
	}

	if n := c.Notify.NATS; n != nil && n.URL == "" {
		errs = multierr.Append(errs, errors.New("notify.nats: url is required"))
	}
	if s := c.Notify.Slack; s != nil {
		expanded, err := expandEnvVars(s.Webhook)
		switch {
		case err != nil:
			errs = multierr.Append(errs, fmt.Errorf("notify.slack.webhook: %w", err))
		case expanded == "":
			errs = multierr.Append(errs, errors.New("notify.slack: webhook is required"))
		default:
			s.Webhook = expanded
		}
	}

	return errs
}

func validateURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return errors.New("url must include a host")
	}
	return nil
}
