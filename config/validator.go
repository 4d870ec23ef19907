package config

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Validator types accepted in the validators list.
const (
	ValidatorJSON        = "json"
	ValidatorRegex       = "regex"
	ValidatorContains    = "contains"
	ValidatorHeader      = "header"
	ValidatorStatusRange = "status_range"
)

// ValidatorConfig describes one custom validator.
//
// It supports two formats in YAML:
//
// Shorthand string:
//
//	- json:data.health.status
//	- regex:ok|healthy
//	- contains:all systems operational
//	- header:Content-Type=application/json
//	- status_range:200-299
//
// Structured object:
//
//	- type: json
//	  path: status
//	  values: [ok, degraded]
type ValidatorConfig struct {
	Type    string
	Path    string
	Values  []string
	Pattern string
	Text    string
	Key     string
	Value   string
	Min     int
	Max     int
}

// UnmarshalYAML implements yaml.Unmarshaler for ValidatorConfig.
func (v *ValidatorConfig) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		return v.parseShorthand(s)
	case yaml.MappingNode:
		// temporary struct to avoid infinite recursion
		var raw struct {
			Type    string   `yaml:"type"`
			Path    string   `yaml:"path"`
			Values  []string `yaml:"values"`
			Pattern string   `yaml:"pattern"`
			Text    string   `yaml:"text"`
			Key     string   `yaml:"key"`
			Value   string   `yaml:"value"`
			Min     int      `yaml:"min"`
			Max     int      `yaml:"max"`
		}
		if err := node.Decode(&raw); err != nil {
			return err
		}
		*v = ValidatorConfig(raw)
		return nil
	default:
		return fmt.Errorf("validator must be a string or object, got %v", node.Kind)
	}
}

// parseShorthand parses "type:argument" validator syntax.
func (v *ValidatorConfig) parseShorthand(s string) error {
	s = strings.TrimSpace(s)
	idx := strings.Index(s, ":")
	if idx == -1 {
		return fmt.Errorf("unknown validator %q (expected 'type:argument')", s)
	}
	v.Type = s[:idx]
	arg := s[idx+1:]

	switch v.Type {
	case ValidatorJSON:
		v.Path = arg
	case ValidatorRegex:
		v.Pattern = arg
	case ValidatorContains:
		v.Text = arg
	case ValidatorHeader:
		key, value, _ := strings.Cut(arg, "=")
		v.Key = strings.TrimSpace(key)
		v.Value = strings.TrimSpace(value)
	case ValidatorStatusRange:
		lo, hi, ok := strings.Cut(arg, "-")
		if !ok {
			return fmt.Errorf("status_range %q must look like 200-299", arg)
		}
		low, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return fmt.Errorf("status_range %q: %w", arg, err)
		}
		high, err := strconv.Atoi(strings.TrimSpace(hi))
		if err != nil {
			return fmt.Errorf("status_range %q: %w", arg, err)
		}
		v.Min, v.Max = low, high
	default:
		return fmt.Errorf("unknown validator type %q", v.Type)
	}
	return nil
}

func (v *ValidatorConfig) validate() error {
	switch v.Type {
	case ValidatorJSON:
		if v.Path == "" {
			return errors.New("validator type 'json' requires a path")
		}
	case ValidatorRegex:
		if v.Pattern == "" {
			return errors.New("validator type 'regex' requires a pattern")
		}
		if _, err := regexp.Compile(v.Pattern); err != nil {
			return fmt.Errorf("invalid regex %q: %w", v.Pattern, err)
		}
	case ValidatorContains:
		if v.Text == "" {
			return errors.New("validator type 'contains' requires text")
		}
	case ValidatorHeader:
		if v.Key == "" {
			return errors.New("validator type 'header' requires a key")
		}
	case ValidatorStatusRange:
		if v.Min < 100 || v.Max > 599 || v.Min > v.Max {
			return fmt.Errorf("status_range %d-%d must satisfy 100 <= min <= max <= 599", v.Min, v.Max)
		}
	case "":
		return errors.New("validator type is required")
	default:
		return fmt.Errorf("unknown validator type %q", v.Type)
	}
	return nil
}
