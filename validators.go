package pin

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// Validator is a pure predicate over the outcome of a check.
//
// A check is "up" only when every registered validator returns true.
// Validators must not retain o or s and should not block; they run inside
// the driver's completion callback.
//
// # Panic Safety
//
// Validators are called within a panic recovery boundary. A validator that
// panics counts as a failed validation; the panic is logged with a
// correlation ID and the monitor keeps running.
type Validator func(o Outcome, s Settings) bool

// successCodes is the set of status codes the built-in [StatusValidator]
// accepts.
var successCodes = map[int]bool{
	200: true,
	201: true,
	202: true,
	204: true,
	302: true,
	304: true,
}

// SuccessCodes returns the status codes accepted by [StatusValidator]:
// 200, 201, 202, 204, 302 and 304.
func SuccessCodes() []int {
	return []int{200, 201, 202, 204, 302, 304}
}

// IsSuccessCode reports whether code is in the success set.
func IsSuccessCode(code int) bool {
	return successCodes[code]
}

// ErrorValidator passes when the driver reported no error.
var ErrorValidator Validator = func(o Outcome, _ Settings) bool {
	return o.Err == nil
}

// StatusValidator passes when a response exists and its status code is one
// of [SuccessCodes]. A missing response fails.
var StatusValidator Validator = func(o Outcome, _ Settings) bool {
	if o.Response == nil {
		return false
	}
	return IsSuccessCode(o.Response.StatusCode)
}

// TextValidator passes when no text is configured, or when the body contains
// the configured text. Matching is case-sensitive.
var TextValidator Validator = func(o Outcome, s Settings) bool {
	if !s.HasText {
		return true
	}
	return strings.Contains(o.Body, s.Text)
}

// DurationValidator passes when no maximum duration is configured, or when
// the check took no longer than the maximum.
var DurationValidator Validator = func(o Outcome, s Settings) bool {
	if !s.HasMaxDuration {
		return true
	}
	return o.Info.Duration <= s.MaxDuration
}

// BuiltinValidators returns the validators every [Monitor] starts with, in
// evaluation order: [ErrorValidator], [StatusValidator], [TextValidator],
// [DurationValidator].
func BuiltinValidators() []Validator {
	return []Validator{ErrorValidator, StatusValidator, TextValidator, DurationValidator}
}

// upValues are the field values JSONFieldValidator accepts by default.
var upValues = []string{"ok", "healthy", "up", "active", "running", "pass", "passed", "true", "green", "operational"}

// JSONFieldValidator returns a [Validator] that parses the body as JSON,
// extracts the field at path (dot notation) and compares it, case-insensitively,
// against the accepted values.
//
// If no accepted values are given, common health check conventions are used:
// "ok", "healthy", "up", "active", "running", "pass", "passed", "true",
// "green", "operational".
//
// The validator fails if the body is not JSON or the field does not exist.
// Boolean and numeric values are converted: true/1 → "true", false/0 → "false".
//
// Example:
//
//	// For response: {"data": {"status": "healthy"}}
//	m.Register(pin.JSONFieldValidator("data.status"))
func JSONFieldValidator(path string, accepted ...string) Validator {
	parts := strings.Split(path, ".")
	if len(accepted) == 0 {
		accepted = upValues
	}
	want := make(map[string]bool, len(accepted))
	for _, a := range accepted {
		want[strings.ToLower(a)] = true
	}

	return func(o Outcome, _ Settings) bool {
		var data interface{}
		if err := json.Unmarshal([]byte(o.Body), &data); err != nil {
			return false
		}

		value := extractJSONPath(data, parts)
		if value == "" {
			return false
		}
		return want[strings.ToLower(value)]
	}
}

// extractJSONPath walks a JSON structure using dot notation parts.
func extractJSONPath(data interface{}, parts []string) string {
	current := data

	for _, part := range parts {
		obj, ok := current.(map[string]interface{})
		if !ok {
			return ""
		}
		current, ok = obj[part]
		if !ok {
			return ""
		}
	}

	switch v := current.(type) {
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	case float64:
		if v == 0 {
			return "false"
		}
		if v == 1 {
			return "true"
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// RegexValidator returns a [Validator] that passes when the body matches the
// regular expression pattern.
//
// Returns an error if the pattern is invalid.
//
// Example:
//
//	v, err := pin.RegexValidator(`"status":\s*"(ok|healthy)"`)
func RegexValidator(pattern string) (Validator, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return func(o Outcome, _ Settings) bool {
		return re.MatchString(o.Body)
	}, nil
}

// MustRegexValidator is like [RegexValidator] but panics if the pattern
// is invalid.
//
// Use this for compile-time constant patterns where you want to fail fast
// on invalid regex. For runtime patterns, use [RegexValidator] instead.
func MustRegexValidator(pattern string) Validator {
	v, err := RegexValidator(pattern)
	if err != nil {
		panic("pin: invalid regex pattern: " + err.Error())
	}
	return v
}

// ContainsFoldValidator returns a [Validator] that passes when the body
// contains text, ignoring case. Use [Monitor.Text] for case-sensitive matching.
func ContainsFoldValidator(text string) Validator {
	lower := strings.ToLower(text)
	return func(o Outcome, _ Settings) bool {
		return strings.Contains(strings.ToLower(o.Body), lower)
	}
}

// HeaderValidator returns a [Validator] that passes when the response carries
// header key. If value is non-empty the header value must also equal it
// exactly. A missing response fails.
func HeaderValidator(key, value string) Validator {
	return func(o Outcome, _ Settings) bool {
		if o.Response == nil || o.Response.Header == nil {
			return false
		}
		got := o.Response.Header.Values(key)
		if len(got) == 0 {
			return false
		}
		if value == "" {
			return true
		}
		for _, g := range got {
			if g == value {
				return true
			}
		}
		return false
	}
}

// StatusRangeValidator returns a [Validator] that passes when a response
// exists and its status code lies in [min, max], inclusive.
//
// Note that the built-in [StatusValidator] still applies; a range is an
// additional constraint, not a replacement for the success set.
func StatusRangeValidator(min, max int) Validator {
	return func(o Outcome, _ Settings) bool {
		if o.Response == nil {
			return false
		}
		code := o.Response.StatusCode
		return code >= min && code <= max
	}
}

// All returns a [Validator] that passes when every given validator passes.
// An empty All passes. Nil validators are skipped.
func All(validators ...Validator) Validator {
	return func(o Outcome, s Settings) bool {
		for _, v := range validators {
			if v != nil && !v(o, s) {
				return false
			}
		}
		return true
	}
}

// Any returns a [Validator] that passes when at least one given validator
// passes. An empty Any fails. Nil validators are skipped.
//
// Example:
//
//	// accept either a JSON status field or a plain-text "OK"
//	m.Register(pin.Any(
//	    pin.JSONFieldValidator("status"),
//	    pin.ContainsFoldValidator("ok"),
//	))
func Any(validators ...Validator) Validator {
	return func(o Outcome, s Settings) bool {
		for _, v := range validators {
			if v != nil && v(o, s) {
				return true
			}
		}
		return false
	}
}

// Not returns a [Validator] that inverts v.
func Not(v Validator) Validator {
	return func(o Outcome, s Settings) bool {
		return !v(o, s)
	}
}
