// Package testutil provides utilities for testing getnode in isolation.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// MirrorEnvVars are the environment variables that select a mirror.
var MirrorEnvVars = []string{"NODE_MIRROR", "NVM_NODEJS_ORG_MIRROR", "N_NODE_MIRROR", "NODIST_NODE_MIRROR"}

// SetupTestEnv creates isolated config and cache directories for a test and
// points the XDG variables at them. Mirror variables are cleared so tests
// never reach the real mirror by accident.
//
// The directories are removed by t.TempDir(), so callers don't need to
// clean up. It returns the temp root.
func SetupTestEnv(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()

	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(tmpDir, "cache"))
	t.Setenv("GETNODE_CONFIG", "")
	for _, name := range MirrorEnvVars {
		t.Setenv(name, "")
	}

	for _, dir := range []string{"config", "cache"} {
		if err := os.MkdirAll(filepath.Join(tmpDir, dir), 0o750); err != nil {
			t.Fatalf("failed to create test directory %s: %v", dir, err)
		}
	}

	return tmpDir
}
