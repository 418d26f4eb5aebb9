package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config is the content of a getnode config file. Zero values mean the
// field was not set.
type Config struct {
	// Mirror is the base URL of the distribution mirror.
	Mirror string
	// CacheDir is the root below which releases are installed as
	// <version>/<platform>/<arch>.
	CacheDir string
	// Retries is the number of retries per request.
	Retries *int
	// Timeout bounds a single request.
	Timeout time.Duration
	// Progress enables download progress logging.
	Progress *bool
	// Keyring is the path to an OpenPGP keyring used to verify
	// SHASUMS256.txt signatures.
	Keyring string
}

// Validate checks field values.
func (c *Config) Validate() error {
	if c.Mirror != "" {
		if err := validateMirror(c.Mirror); err != nil {
			return &ValidationError{Field: luaFieldMirror, Message: err.Error()}
		}
	}

	if c.Retries != nil && (*c.Retries < 0 || *c.Retries > MaxRetries) {
		return &ValidationError{
			Field:   luaFieldRetries,
			Message: fmt.Sprintf("must be between 0 and %d, got %d", MaxRetries, *c.Retries),
		}
	}

	if c.Timeout < 0 {
		return &ValidationError{Field: luaFieldTimeout, Message: "must be positive"}
	}

	for field, path := range map[string]string{luaFieldCacheDir: c.CacheDir, luaFieldKeyring: c.Keyring} {
		if strings.ContainsRune(path, 0) {
			return &ValidationError{Field: field, Message: "path contains a NUL byte"}
		}
	}

	return nil
}

// ValidationError represents a config validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return "config validation failed for " + e.Field + ": " + e.Message
	}
	return "config validation failed: " + e.Message
}

// validateMirror accepts absolute http(s) URLs.
func validateMirror(mirror string) error {
	u, err := url.Parse(mirror)
	if err != nil {
		return fmt.Errorf("invalid mirror URL: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("mirror URL must use https:// or http:// scheme (got: %q)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("mirror URL has no host: %s", mirror)
	}
	return nil
}
