package install

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/opencontainers/go-digest"
	"golang.org/x/mod/semver"
)

// DefaultMirror is the official Node.js distribution server, used when a
// request names no mirror.
const DefaultMirror = "https://nodejs.org/dist"

// FetchOptions configures the network fetch collaborator.
type FetchOptions struct {
	// Mirror is the base URL of the distribution mirror. Empty means
	// DefaultMirror.
	Mirror string
}

// Request describes one acquisition. It is not modified by the installer.
type Request struct {
	Version  string // "18.0.0" or "v18.0.0"
	Arch     string // distribution arch name, e.g. "x64"
	Platform string // distribution platform name, e.g. "linux"
	Output   string // final artifact path
	Fetch    FetchOptions
}

// ChecksumSource resolves the expected digest of a download. It is called
// once the download has been fully consumed.
type ChecksumSource func(ctx context.Context) (digest.Digest, error)

// Download is an in-flight response from a Fetcher.
type Download struct {
	Body     io.ReadCloser
	Size     int64 // -1 when unknown
	Checksum ChecksumSource
}

// Fetcher retrieves archives from a mirror.
//
// Implementations should wrap ErrNotFound when the mirror has no such file
// and ErrConnectivity when the mirror cannot be reached.
type Fetcher interface {
	Fetch(ctx context.Context, version, filename string, opts FetchOptions) (*Download, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, version, filename string, opts FetchOptions) (*Download, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, version, filename string, opts FetchOptions) (*Download, error) {
	return f(ctx, version, filename, opts)
}

// Result contains information about a completed acquisition.
type Result struct {
	Path string
	// Installed is false when the artifact was already present, either
	// before the call or because a concurrent acquisition promoted first.
	Installed bool
	// Attempt identifies the staging attempt in logs. Empty when the
	// pre-check short-circuited.
	Attempt  string
	Duration time.Duration
}

// normalize validates r and returns a copy with a canonical version and an
// absolute output path.
func (r Request) normalize() (Request, error) {
	version := strings.TrimPrefix(strings.TrimSpace(r.Version), "v")
	if version == "" {
		return r, fmt.Errorf("version is required")
	}
	if v := "v" + version; !semver.IsValid(v) || semver.Canonical(v) != v {
		return r, fmt.Errorf("invalid version %q: expected MAJOR.MINOR.PATCH", r.Version)
	}
	r.Version = version

	for _, f := range []struct{ name, value string }{{"arch", r.Arch}, {"platform", r.Platform}} {
		if f.value == "" {
			return r, fmt.Errorf("%s is required", f.name)
		}
		if strings.ContainsAny(f.value, `/\`) || f.value == "." || f.value == ".." {
			return r, fmt.Errorf("invalid %s %q", f.name, f.value)
		}
	}

	if r.Output == "" {
		return r, fmt.Errorf("output path is required")
	}
	output, err := filepath.Abs(r.Output)
	if err != nil {
		return r, fmt.Errorf("resolve output path: %w", err)
	}
	r.Output = output

	if r.Fetch.Mirror = strings.TrimSpace(r.Fetch.Mirror); r.Fetch.Mirror == "" {
		r.Fetch.Mirror = DefaultMirror
	}

	return r, nil
}

// archiveName returns the distribution file name for r, relative to the
// version directory of the mirror.
func archiveName(r Request) string {
	if r.Platform == "win" {
		return fmt.Sprintf("win-%s/node.exe", r.Arch)
	}
	return fmt.Sprintf("node-v%s-%s-%s.tar.gz", r.Version, r.Platform, r.Arch)
}
