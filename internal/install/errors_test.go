package install

import (
	"errors"
	"fmt"
	"net"
	"testing"

	. "github.com/onsi/gomega"
)

func TestClassifyDownloadError(t *testing.T) {
	req := Request{
		Version:  "18.0.0",
		Arch:     "arm64",
		Platform: "darwin",
		Fetch:    FetchOptions{Mirror: "https://mirror.example/dist"},
	}

	tests := []struct {
		name     string
		err      error
		wantKind Kind
		wantMsg  string
	}{
		{
			name:     "dns_error",
			err:      &net.DNSError{Err: "no such host", Name: "mirror.example"},
			wantKind: KindConnectivity,
			wantMsg:  "could not connect to https://mirror.example/dist",
		},
		{
			name:     "dial_error",
			err:      &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")},
			wantKind: KindConnectivity,
			wantMsg:  "could not connect to https://mirror.example/dist",
		},
		{
			name:     "resolver_message",
			err:      errors.New("getaddrinfo ENOTFOUND mirror.example"),
			wantKind: KindConnectivity,
			wantMsg:  "could not connect to",
		},
		{
			name:     "sentinel_connectivity",
			err:      fmt.Errorf("fetch: %w", ErrConnectivity),
			wantKind: KindConnectivity,
			wantMsg:  "could not connect to",
		},
		{
			name:     "sentinel_not_found",
			err:      fmt.Errorf("fetch: %w", ErrNotFound),
			wantKind: KindNotFound,
			wantMsg:  "no Node.js binaries available for 18.0.0 on darwin arm64",
		},
		{
			name:     "status_message",
			err:      errors.New("unexpected status 404 Not Found"),
			wantKind: KindNotFound,
			wantMsg:  "no Node.js binaries available for 18.0.0 on darwin arm64",
		},
		{
			name:     "other",
			err:      errors.New("connection reset by peer"),
			wantKind: KindDownload,
			wantMsg:  "could not download Node.js 18.0.0: connection reset by peer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)

			err := classifyDownloadError(req, tt.err)
			g.Expect(err.Kind).To(Equal(tt.wantKind))
			g.Expect(err.Error()).To(ContainSubstring(tt.wantMsg))
			g.Expect(errors.Is(err, tt.err)).To(BeTrue())
			g.Expect(errors.Is(err, kindSentinels[tt.wantKind])).To(BeTrue())
		})
	}
}

func TestAcquisitionErrorIs(t *testing.T) {
	g := NewWithT(t)

	err := newError(KindIntegrity, Request{Version: "20.1.0"}, errors.New("checksum mismatch"))
	g.Expect(errors.Is(err, ErrIntegrity)).To(BeTrue())
	g.Expect(errors.Is(err, ErrDownload)).To(BeFalse())
	g.Expect(err.Error()).To(Equal("could not verify Node.js 20.1.0: checksum mismatch"))
	g.Expect(KindIntegrity.String()).To(Equal(ErrIntegrity.Error()))
	g.Expect(Kind(99).String()).To(Equal("unknown"))
}

func TestConnectivityWithoutMirror(t *testing.T) {
	g := NewWithT(t)

	err := newError(KindConnectivity, Request{}, nil)
	g.Expect(err.Error()).To(Equal("could not connect to the mirror"))
}
