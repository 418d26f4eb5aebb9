package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultPath returns the per-user config file path,
// $XDG_CONFIG_HOME/getnode/config.lua on Linux.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine config directory: %w", err)
	}
	return filepath.Join(dir, ConfigDirName, ConfigFileName), nil
}

// Locate picks the config file: explicit (a flag), then $GETNODE_CONFIG,
// then DefaultPath. required is false only for the default path, which may
// be absent.
func Locate(explicit string) (path string, required bool, err error) {
	if explicit != "" {
		return explicit, true, nil
	}
	if env := strings.TrimSpace(os.Getenv(EnvConfigPath)); env != "" {
		return env, true, nil
	}
	path, err = DefaultPath()
	return path, false, err
}

// Load locates and parses the config file. It returns the path that was
// used, or "" when no file was loaded.
func (p *Parser) Load(ctx context.Context, explicit string) (*Config, string, error) {
	path, required, err := Locate(explicit)
	if err != nil {
		if required {
			return nil, "", err
		}
		p.logger.Debug("no config directory", "error", err)
		return &Config{}, "", nil
	}

	path, err = ExpandPath(path)
	if err != nil {
		return nil, "", err
	}

	cfg, err := p.ParseFile(ctx, path)
	if err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			p.logger.Debug("no config file", "path", path)
			return &Config{}, "", nil
		}
		return nil, path, err
	}

	p.logger.Debug("loaded config", "path", path)
	return cfg, path, nil
}

// ExpandPath expands a leading "~/" to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
