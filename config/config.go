// Package config provides YAML parsing for pingwatch configuration
// documents.
//
// A document is the serialized form of one configuration snapshot: the
// complete set of endpoints to probe, plus watcher-level settings. The same
// format is accepted by every configuration source (file, HTTP poll,
// websocket, push).
//
// Example document:
//
//	verbosity: error
//	default_timeout: 5s
//
//	paths:
//	  - method: GET
//	    path: https://api.example.com/health
//	    interval_minutes: 1
//	    headers:
//	      Authorization: Bearer ${API_TOKEN}
//	  - method: POST
//	    path: https://example.com/ping
//	    interval_minutes: 0.5
//
// Parsing reports only structural problems (bad YAML, unknown verbosity,
// unset environment variables). Entry-level validity is deliberately not
// checked here: a malformed entry is carried through and dropped by the
// core validator, so one bad entry degrades gracefully instead of failing
// the whole document.
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pingwatch/pingwatch"
)

const defaultTimeout = 10 * time.Second

// Document is the root configuration document.
//
// It maps directly to the YAML structure. Use [Load] or [Parse] to create
// a Document from YAML.
type Document struct {
	// Verbosity controls the default log sink: all, error, or none.
	// Defaults to all.
	Verbosity string `yaml:"verbosity"`

	// DefaultTimeout is the per-probe HTTP timeout.
	// Accepts duration strings like "10s", "1m", "500ms". Defaults to 10s.
	DefaultTimeout Duration `yaml:"default_timeout"`

	// Paths defines the endpoints to probe.
	Paths []PathConfig `yaml:"paths"`
}

// PathConfig defines a single endpoint to probe.
//
// Fields mirror pingwatch.PingPath. No validity rules are enforced at
// parse time; see the package comment.
type PathConfig struct {
	// Method is the HTTP method: GET, POST, PUT, or DELETE.
	Method string `yaml:"method"`

	// Path is the target URL.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	Path string `yaml:"path"`

	// IntervalMinutes is the polling interval in minutes. Fractional
	// values are allowed.
	IntervalMinutes float64 `yaml:"interval_minutes"`

	// Headers are custom HTTP headers sent with each probe.
	// Values support environment variable substitution.
	Headers map[string]string `yaml:"headers"`
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
		// already have an error, skip processing
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
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

// Load reads and parses a YAML configuration document from a file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in Path and header values. Defaults
// are applied for Verbosity (all) and DefaultTimeout (10s). An empty paths
// list is valid and means "probe nothing".
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if doc.Verbosity == "" {
		doc.Verbosity = pingwatch.VerbosityAll.String()
	}
	if _, err := pingwatch.ParseVerbosity(doc.Verbosity); err != nil {
		return nil, err
	}

	if doc.DefaultTimeout == 0 {
		doc.DefaultTimeout = Duration(defaultTimeout)
	}
	if doc.DefaultTimeout.Duration() < 0 {
		return nil, fmt.Errorf("default_timeout cannot be negative, got %s", doc.DefaultTimeout.Duration())
	}

	for i := range doc.Paths {
		p := &doc.Paths[i]

		expanded, err := expandEnvVars(p.Path)
		if err != nil {
			return nil, fmt.Errorf("paths[%d]: path: %w", i, err)
		}
		p.Path = expanded

		for k, v := range p.Headers {
			expanded, err := expandEnvVars(v)
			if err != nil {
				return nil, fmt.Errorf("paths[%d]: headers[%s]: %w", i, k, err)
			}
			p.Headers[k] = expanded
		}
	}

	return &doc, nil
}
