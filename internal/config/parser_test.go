package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ZebulonRouseFrantzich/getnode/internal/platform"
)

// mockDetector is a test implementation of platform.Detector.
type mockDetector struct {
	info *platform.Info
	err  error
}

func (m *mockDetector) Detect(ctx context.Context) (*platform.Info, error) {
	return m.info, m.err
}

func TestParser_ParseString_Full(t *testing.T) {
	luaCode := `
		getnode = {
			mirror = "https://mirror.example/dist/",
			cache_dir = "~/.cache/node",
			retries = 5,
			timeout = "2m",
			progress = true,
			keyring = "/etc/getnode/keys.gpg",
		}
	`

	config, err := NewParser(nil).ParseString(context.Background(), luaCode)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}

	if config.Mirror != "https://mirror.example/dist/" {
		t.Errorf("Mirror = %q", config.Mirror)
	}
	if config.CacheDir != "~/.cache/node" {
		t.Errorf("CacheDir = %q", config.CacheDir)
	}
	if config.Retries == nil || *config.Retries != 5 {
		t.Errorf("Retries = %v, want 5", config.Retries)
	}
	if config.Timeout != 2*time.Minute {
		t.Errorf("Timeout = %v, want 2m", config.Timeout)
	}
	if config.Progress == nil || !*config.Progress {
		t.Errorf("Progress = %v, want true", config.Progress)
	}
	if config.Keyring != "/etc/getnode/keys.gpg" {
		t.Errorf("Keyring = %q", config.Keyring)
	}
}

func TestParser_ParseString_Empty(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{"no table", `-- nothing configured`},
		{"empty table", `getnode = {}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := NewParser(nil).ParseString(context.Background(), tt.code)
			if err != nil {
				t.Fatalf("ParseString() error = %v", err)
			}
			if *config != (Config{}) {
				t.Errorf("ParseString() = %+v, want empty config", config)
			}
		})
	}
}

func TestParser_ParseString_TimeoutSeconds(t *testing.T) {
	config, err := NewParser(nil).ParseString(context.Background(), `getnode = { timeout = 90 }`)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	if config.Timeout != 90*time.Second {
		t.Errorf("Timeout = %v, want 90s", config.Timeout)
	}
}

func TestParser_ParseString_Platform(t *testing.T) {
	luaCode := `
		getnode = {
			mirror = platform.when(platform.is_linux, "https://linux.example/dist"),
			progress = platform.distro ~= nil and platform.distro.family == "debian",
		}
	`

	tests := []struct {
		name         string
		info         *platform.Info
		wantMirror   string
		wantProgress bool
	}{
		{
			name:         "linux debian",
			info:         &platform.Info{OS: "linux", Arch: "amd64", Distro: "ubuntu", Family: platform.FamilyDebian},
			wantMirror:   "https://linux.example/dist",
			wantProgress: true,
		},
		{
			name: "macos",
			info: &platform.Info{OS: "darwin", Arch: "arm64"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewParser(&mockDetector{info: tt.info})
			config, err := parser.ParseString(context.Background(), luaCode)
			if err != nil {
				t.Fatalf("ParseString() error = %v", err)
			}
			if config.Mirror != tt.wantMirror {
				t.Errorf("Mirror = %q, want %q", config.Mirror, tt.wantMirror)
			}
			if config.Progress == nil || *config.Progress != tt.wantProgress {
				t.Errorf("Progress = %v, want %v", config.Progress, tt.wantProgress)
			}
		})
	}
}

func TestParser_ParseString_DetectorError(t *testing.T) {
	parser := NewParser(&mockDetector{err: errors.New("no /etc/os-release")})
	_, err := parser.ParseString(context.Background(), `getnode = {}`)
	if err == nil || !strings.Contains(err.Error(), "platform detection failed") {
		t.Fatalf("ParseString() error = %v, want platform detection failure", err)
	}
}

func TestParser_ParseString_Errors(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
	}{
		{"syntax error", `getnode = {`, "Lua error"},
		{"runtime error", `error("boom")`, "boom"},
		{"not a table", `getnode = "fast"`, "invalid 'getnode' table"},
		{"mirror type", `getnode = { mirror = 42 }`, "invalid value for mirror"},
		{"mirror scheme", `getnode = { mirror = "ftp://mirror.example/dist" }`, "scheme"},
		{"mirror host", `getnode = { mirror = "https:///dist" }`, "no host"},
		{"retries fraction", `getnode = { retries = 1.5 }`, "invalid value for retries"},
		{"retries range", `getnode = { retries = 50 }`, "between 0 and 10"},
		{"negative retries", `getnode = { retries = -1 }`, "between 0 and 10"},
		{"timeout string", `getnode = { timeout = "soon" }`, "invalid value for timeout"},
		{"negative timeout", `getnode = { timeout = -5 }`, "must be positive"},
		{"progress type", `getnode = { progress = "yes" }`, "invalid value for progress"},
		{"platform read-only", `platform = nil; getnode = {}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewParser(&mockDetector{info: &platform.Info{OS: "linux", Arch: "amd64"}})
			_, err := parser.ParseString(context.Background(), tt.code)
			if tt.wantMsg == "" {
				// Replacing the global is allowed, only the table is protected.
				if err != nil {
					t.Fatalf("ParseString() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("ParseString() expected error containing %q", tt.wantMsg)
			}
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Errorf("error type = %T, want *ParseError", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %v, want message containing %q", err, tt.wantMsg)
			}
		})
	}
}

func TestParser_ParseString_PlatformTableProtected(t *testing.T) {
	parser := NewParser(&mockDetector{info: &platform.Info{OS: "linux", Arch: "amd64"}})
	_, err := parser.ParseString(context.Background(), `platform.is_linux = false`)
	if err == nil || !strings.Contains(err.Error(), "read-only") {
		t.Fatalf("ParseString() error = %v, want read-only error", err)
	}
}

func TestParser_ParseString_Timeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewParser(nil).ParseString(ctx, `while true do end`)
	if err == nil {
		t.Fatal("ParseString() expected timeout error")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want context.DeadlineExceeded", err)
	}
}

func TestParser_ParseFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "config.lua")
	if err := os.WriteFile(path, []byte(`getnode = { retries = 2 }`), 0o644); err != nil {
		t.Fatal(err)
	}
	config, err := NewParser(nil).ParseFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if config.Retries == nil || *config.Retries != 2 {
		t.Errorf("Retries = %v, want 2", config.Retries)
	}

	big := filepath.Join(dir, "big.lua")
	if err := os.WriteFile(big, []byte("-- "+strings.Repeat("x", MaxConfigSize)), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewParser(nil).ParseFile(context.Background(), big); err == nil ||
		!strings.Contains(err.Error(), "too large") {
		t.Errorf("ParseFile() error = %v, want too large", err)
	}

	if _, err := NewParser(nil).ParseFile(context.Background(), filepath.Join(dir, "missing.lua")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ParseFile() error = %v, want os.ErrNotExist", err)
	}
}

func TestFormatError(t *testing.T) {
	err := &ParseError{
		Message: "Lua error",
		Detail:  "<string>:1: boom\nstack traceback:\n\t[G]: in function 'error'",
	}

	if got := FormatError(err, false); got != "Lua error: <string>:1: boom" {
		t.Errorf("FormatError(verbose=false) = %q", got)
	}
	if got := FormatError(err, true); !strings.Contains(got, "stack traceback") {
		t.Errorf("FormatError(verbose=true) = %q, want details", got)
	}
	if got := FormatError(errors.New("plain"), false); got != "plain" {
		t.Errorf("FormatError(plain) = %q", got)
	}
}
