package testutil

import (
	"archive/tar"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
)

// Entry is one member of a test tarball.
type Entry struct {
	Name     string
	Content  string
	Typeflag byte // defaults to tar.TypeReg
	Linkname string
	Mode     int64 // defaults to 0644
}

// TarGz builds a gzip compressed tarball in memory.
func TarGz(t *testing.T, entries []Entry) []byte {
	t.Helper()

	var buf bytes.Buffer
	gzipWriter := gzip.NewWriter(&buf)
	tarWriter := tar.NewWriter(gzipWriter)

	for _, e := range entries {
		header := &tar.Header{
			Name:     e.Name,
			Typeflag: e.Typeflag,
			Linkname: e.Linkname,
			Mode:     e.Mode,
		}
		if header.Typeflag == 0 {
			header.Typeflag = tar.TypeReg
		}
		if header.Mode == 0 {
			header.Mode = 0o644
		}
		if header.Typeflag == tar.TypeReg {
			header.Size = int64(len(e.Content))
		}

		if err := tarWriter.WriteHeader(header); err != nil {
			t.Fatalf("failed to write header for %s: %v", e.Name, err)
		}
		if header.Typeflag == tar.TypeReg {
			if _, err := tarWriter.Write([]byte(e.Content)); err != nil {
				t.Fatalf("failed to write content for %s: %v", e.Name, err)
			}
		}
	}

	if err := tarWriter.Close(); err != nil {
		t.Fatalf("failed to close tar writer: %v", err)
	}
	if err := gzipWriter.Close(); err != nil {
		t.Fatalf("failed to close gzip writer: %v", err)
	}
	return buf.Bytes()
}

// NodeArchiveName returns the tarball name of a Node.js distribution.
func NodeArchiveName(version, platform, arch string) string {
	return fmt.Sprintf("node-v%s-%s-%s.tar.gz", version, platform, arch)
}

// NodeArchive builds a small tarball laid out like a Node.js distribution,
// with a single top-level directory.
func NodeArchive(t *testing.T, version, platform, arch string) []byte {
	t.Helper()

	root := strings.TrimSuffix(NodeArchiveName(version, platform, arch), ".tar.gz") + "/"
	return TarGz(t, []Entry{
		{Name: root, Typeflag: tar.TypeDir, Mode: 0o755},
		{Name: root + "bin/", Typeflag: tar.TypeDir, Mode: 0o755},
		{Name: root + "bin/node", Content: "#!/bin/sh\necho v" + version + "\n", Mode: 0o755},
		{Name: root + "lib/node_modules/npm/bin/npm-cli.js", Content: "// npm"},
		{Name: root + "bin/npm", Typeflag: tar.TypeSymlink, Linkname: "../lib/node_modules/npm/bin/npm-cli.js"},
		{Name: root + "README.md", Content: "Node.js " + version},
	})
}

// SHA256 returns the hex encoded sha256 of data.
func SHA256(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Checksums renders a SHASUMS256.txt file for files.
func Checksums(files map[string][]byte) string {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "%s  %s\n", SHA256(files[name]), name)
	}
	return b.String()
}
