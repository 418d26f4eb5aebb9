package install

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/opencontainers/go-digest"

	"github.com/ZebulonRouseFrantzich/getnode/internal/extract"
	"github.com/ZebulonRouseFrantzich/getnode/internal/testutil"
)

// fakeFetcher serves one archive from memory.
type fakeFetcher struct {
	archive []byte
	// checksum overrides the digest reported for the archive.
	checksum    digest.Digest
	checksumErr error
	noChecksum  bool
	err         error

	calls      atomic.Int32
	lastFile   atomic.Value
	lastMirror atomic.Value
}

func newFakeFetcher(archive []byte) *fakeFetcher {
	return &fakeFetcher{archive: archive}
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string, filename string, opts FetchOptions) (*Download, error) {
	f.calls.Add(1)
	f.lastFile.Store(filename)
	f.lastMirror.Store(opts.Mirror)
	if f.err != nil {
		return nil, f.err
	}

	dl := &Download{
		Body: io.NopCloser(bytes.NewReader(f.archive)),
		Size: int64(len(f.archive)),
	}
	if !f.noChecksum {
		dl.Checksum = func(context.Context) (digest.Digest, error) {
			if f.checksumErr != nil {
				return "", f.checksumErr
			}
			if f.checksum != "" {
				return f.checksum, nil
			}
			return digest.SHA256.FromBytes(f.archive), nil
		}
	}
	return dl, nil
}

// countingFS records successful moves.
type countingFS struct {
	OSFS
	moves atomic.Int32
}

func (c *countingFS) Move(src, dst string) error {
	if err := c.OSFS.Move(src, dst); err != nil {
		return err
	}
	c.moves.Add(1)
	return nil
}

// failingRemoveFS cannot remove staging areas.
type failingRemoveFS struct {
	OSFS
}

func (failingRemoveFS) RemoveAll(string) error {
	return errors.New("device busy")
}

// barrierExtractor holds every extraction until all participants have
// finished extracting, so concurrent attempts promote at the same time.
type barrierExtractor struct {
	inner extract.Extractor
	wg    *sync.WaitGroup
}

func (b barrierExtractor) Extract(ctx context.Context, r io.Reader, dest string) error {
	err := b.inner.Extract(ctx, r, dest)
	b.wg.Done()
	b.wg.Wait()
	return err
}

// crashingExtractor writes part of the artifact and then fails.
type crashingExtractor struct{}

func (crashingExtractor) Extract(_ context.Context, _ io.Reader, dest string) error {
	bin := filepath.Join(dest, "node-v18.0.0-linux-x64", "bin")
	if err := os.MkdirAll(bin, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(bin, "node"), []byte("half"), 0o755); err != nil {
		return err
	}
	return errors.New("simulated crash")
}

func linuxRequest(t *testing.T, output string) Request {
	t.Helper()
	return Request{
		Version:  "18.0.0",
		Arch:     "x64",
		Platform: "linux",
		Output:   output,
		Fetch:    FetchOptions{Mirror: "https://nodejs.org/dist"},
	}
}

func linuxArchive(t *testing.T) []byte {
	t.Helper()
	return testutil.NodeArchive(t, "18.0.0", "linux", "x64")
}

func newTestInstaller(t *testing.T, fetcher Fetcher, opts ...Option) (*Installer, string) {
	t.Helper()

	tempDir := t.TempDir()
	installer, err := New(fetcher, append([]Option{WithTempDir(tempDir)}, opts...)...)
	if err != nil {
		t.Fatalf("failed to create installer: %v", err)
	}
	return installer, tempDir
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
