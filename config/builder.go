package config

import (
	"fmt"
	"sort"

	"github.com/jpalmerr/pin"
)

// BuildOptions converts parsed configuration into SDK options for [pin.New].
func BuildOptions(cfg *Config) ([]pin.Option, error) {
	opts := []pin.Option{
		pin.WithInterval(cfg.Interval.Duration()),
		pin.WithTimeout(cfg.Timeout.Duration()),
	}

	if cfg.Text != "" {
		opts = append(opts, pin.WithText(cfg.Text))
	}
	if cfg.MaxDuration != 0 {
		opts = append(opts, pin.WithMaxDuration(cfg.MaxDuration.Duration()))
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, pin.WithHeaders(mapToKeyValuePairs(cfg.Headers)...))
	}
	if cfg.Immediate {
		opts = append(opts, pin.WithImmediateCheck())
	}
	if cfg.SkipOverlap {
		opts = append(opts, pin.WithSkipOverlap())
	}

	if len(cfg.Validators) > 0 {
		validators := make([]pin.Validator, 0, len(cfg.Validators))
		for i, vc := range cfg.Validators {
			v, err := BuildValidator(vc)
			if err != nil {
				return nil, fmt.Errorf("validators[%d]: %w", i, err)
			}
			validators = append(validators, v)
		}
		opts = append(opts, pin.WithValidators(validators...))
	}

	return opts, nil
}

// BuildMonitor creates a [pin.Monitor] for cfg.URL configured from cfg.
// Extra options are applied after the configured ones.
func BuildMonitor(cfg *Config, extra ...pin.Option) (*pin.Monitor, error) {
	opts, err := BuildOptions(cfg)
	if err != nil {
		return nil, err
	}
	return pin.New(cfg.URL, append(opts, extra...)...)
}

// BuildValidator converts one ValidatorConfig into a [pin.Validator].
func BuildValidator(vc ValidatorConfig) (pin.Validator, error) {
	if err := vc.validate(); err != nil {
		return nil, err
	}

	switch vc.Type {
	case ValidatorJSON:
		return pin.JSONFieldValidator(vc.Path, vc.Values...), nil
	case ValidatorRegex:
		return pin.RegexValidator(vc.Pattern)
	case ValidatorContains:
		return pin.ContainsFoldValidator(vc.Text), nil
	case ValidatorHeader:
		return pin.HeaderValidator(vc.Key, vc.Value), nil
	case ValidatorStatusRange:
		return pin.StatusRangeValidator(vc.Min, vc.Max), nil
	default:
		return nil, fmt.Errorf("unknown validator type %q", vc.Type)
	}
}

// mapToKeyValuePairs converts a map to a sorted slice of key-value pairs.
func mapToKeyValuePairs(m map[string]string) []string {
	// sort keys for deterministic ordering
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(m)*2)
	for _, k := range keys {
		pairs = append(pairs, k, m[k])
	}
	return pairs
}
