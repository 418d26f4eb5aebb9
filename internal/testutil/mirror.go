package testutil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// Mirror is an in-memory distribution mirror served over HTTP.
type Mirror struct {
	Server *httptest.Server

	mu       sync.Mutex
	files    map[string][]byte
	requests map[string]int
}

// NewMirror starts a mirror serving files, keyed by path below the mirror
// root (for example "v18.0.0/SHASUMS256.txt"). The server is closed when the
// test ends.
func NewMirror(t *testing.T, files map[string][]byte) *Mirror {
	t.Helper()

	m := &Mirror{
		files:    files,
		requests: make(map[string]int),
	}
	m.Server = httptest.NewServer(http.HandlerFunc(m.serve))
	t.Cleanup(m.Server.Close)
	return m
}

// URL returns the mirror base URL.
func (m *Mirror) URL() string {
	return m.Server.URL
}

// Requests returns how many times path was requested.
func (m *Mirror) Requests(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[path]
}

// TotalRequests returns the number of requests served.
func (m *Mirror) TotalRequests() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.requests {
		total += n
	}
	return total
}

func (m *Mirror) serve(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/")

	m.mu.Lock()
	m.requests[path]++
	data, ok := m.files[path]
	m.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(data)
}

// NodeRelease returns mirror files for one Node.js release: the tarball and a
// matching SHASUMS256.txt.
func NodeRelease(t *testing.T, version, platform, arch string) map[string][]byte {
	t.Helper()

	name := NodeArchiveName(version, platform, arch)
	archive := NodeArchive(t, version, platform, arch)
	return map[string][]byte{
		"v" + version + "/" + name:        archive,
		"v" + version + "/SHASUMS256.txt": []byte(Checksums(map[string][]byte{name: archive})),
	}
}
