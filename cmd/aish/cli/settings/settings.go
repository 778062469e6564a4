// Package settings loads and persists aish configuration.
//
// Settings live in a single JSON file under the user config directory
// (~/.config/aish/settings.json on Linux). Unknown keys are rejected so a
// typo in the file surfaces immediately instead of silently using a
// default. After the file is read, environment variables with the AISH_
// prefix override individual fields (AISH_ENDPOINT, AISH_LOG_LEVEL, ...).
package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "aish"

// Default values applied when the settings file is absent or partial.
const (
	DefaultTranslateTimeout = 10 * time.Second
	DefaultCacheTTL         = 5 * time.Minute
	DefaultCategory         = "simple"
)

// Settings is the full configuration surface of the wrapper.
type Settings struct {
	// Shell is the login shell to wrap. Empty means resolve from $SHELL.
	Shell string `json:"shell,omitempty" envconfig:"SHELL_OVERRIDE"`

	// Endpoint is the base URL of the translation service. Empty disables
	// translation regardless of TranslateEnabled.
	Endpoint string `json:"endpoint,omitempty" envconfig:"ENDPOINT"`

	// TranslateEnabled toggles natural-language translation. Nil means
	// enabled when an endpoint is configured.
	TranslateEnabled *bool `json:"translate_enabled,omitempty" envconfig:"TRANSLATE_ENABLED"`

	// TranslateTimeoutMS bounds each translation call in milliseconds.
	TranslateTimeoutMS int `json:"translate_timeout_ms,omitempty" envconfig:"TRANSLATE_TIMEOUT_MS"`

	// CacheTTLMS is how long identical translation requests are served
	// from cache, in milliseconds.
	CacheTTLMS int `json:"cache_ttl_ms,omitempty" envconfig:"CACHE_TTL_MS"`

	// DefaultCategory is the execution category used for run-once
	// dispatch when the user declines to persist an assignment.
	DefaultCategory string `json:"default_category,omitempty" envconfig:"DEFAULT_CATEGORY"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty" envconfig:"LOG_LEVEL"`
}

// TranslationEnabled reports whether translation should run.
func (s *Settings) TranslationEnabled() bool {
	if s.Endpoint == "" {
		return false
	}
	if s.TranslateEnabled == nil {
		return true
	}
	return *s.TranslateEnabled
}

// TranslateTimeout returns the bound for one translation call.
func (s *Settings) TranslateTimeout() time.Duration {
	if s.TranslateTimeoutMS <= 0 {
		return DefaultTranslateTimeout
	}
	return time.Duration(s.TranslateTimeoutMS) * time.Millisecond
}

// CacheTTL returns the suggestion cache lifetime.
func (s *Settings) CacheTTL() time.Duration {
	if s.CacheTTLMS <= 0 {
		return DefaultCacheTTL
	}
	return time.Duration(s.CacheTTLMS) * time.Millisecond
}

// Dir returns the aish config directory.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config directory: %w", err)
	}
	return filepath.Join(base, "aish"), nil
}

// Path returns the settings file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "settings.json"), nil
}

// Load reads the settings file (if present), applies defaults, then applies
// AISH_* environment overrides. A missing file is not an error; a malformed
// file or unknown key is.
func Load() (*Settings, error) {
	var s Settings

	path, err := Path()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path) //nolint:gosec // fixed path under user config dir
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// No file yet: defaults + env only.
	case err != nil:
		return nil, fmt.Errorf("read settings: %w", err)
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&s); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if s.DefaultCategory == "" {
		s.DefaultCategory = DefaultCategory
	}
	if s.LogLevel == "" {
		s.LogLevel = "info"
	}

	if err := envconfig.Process(EnvPrefix, &s); err != nil {
		return nil, fmt.Errorf("apply environment overrides: %w", err)
	}
	return &s, nil
}

// Save writes the settings file atomically (temp file + rename).
func Save(s *Settings) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	data = append(data, '\n')

	path := filepath.Join(dir, "settings.json")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename settings file: %w", err)
	}
	return nil
}
