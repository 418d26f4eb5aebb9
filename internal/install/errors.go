package install

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

var (
	// ErrConnectivity indicates the mirror could not be reached.
	ErrConnectivity = errors.New("mirror unreachable")
	// ErrNotFound indicates the mirror has no binary for the request.
	ErrNotFound = errors.New("binary not found")
	// ErrDownload indicates any other download or extraction failure.
	ErrDownload = errors.New("download failed")
	// ErrIntegrity indicates the downloaded bytes failed checksum verification.
	ErrIntegrity = errors.New("integrity check failed")
	// ErrInvariant indicates the staging area ended up in an impossible state.
	ErrInvariant = errors.New("invariant violation")
	// ErrInstall indicates a local filesystem failure while installing.
	ErrInstall = errors.New("install failed")
	// ErrCleanup indicates the staging area could not be removed.
	ErrCleanup = errors.New("cleanup failed")
	// ErrInvalidRequest indicates the request itself is malformed.
	ErrInvalidRequest = errors.New("invalid request")
)

// Kind classifies an AcquisitionError.
type Kind int

const (
	KindDownload Kind = iota
	KindConnectivity
	KindNotFound
	KindIntegrity
	KindInvariant
	KindInstall
	KindCleanup
	KindInvalidRequest
)

var kindSentinels = map[Kind]error{
	KindDownload:       ErrDownload,
	KindConnectivity:   ErrConnectivity,
	KindNotFound:       ErrNotFound,
	KindIntegrity:      ErrIntegrity,
	KindInvariant:      ErrInvariant,
	KindInstall:        ErrInstall,
	KindCleanup:        ErrCleanup,
	KindInvalidRequest: ErrInvalidRequest,
}

// String returns the sentinel message of the kind.
func (k Kind) String() string {
	if err, ok := kindSentinels[k]; ok {
		return err.Error()
	}
	return "unknown"
}

// AcquisitionError is returned by Installer for every failed acquisition.
type AcquisitionError struct {
	Kind     Kind
	Version  string
	Platform string
	Arch     string
	Mirror   string
	Err      error
}

func (e *AcquisitionError) Error() string {
	var msg string
	switch e.Kind {
	case KindConnectivity:
		mirror := e.Mirror
		if mirror == "" {
			mirror = "the mirror"
		}
		msg = fmt.Sprintf("could not connect to %s", mirror)
	case KindNotFound:
		msg = fmt.Sprintf("no Node.js binaries available for %s on %s %s", e.Version, e.Platform, e.Arch)
	case KindDownload:
		msg = fmt.Sprintf("could not download Node.js %s", e.Version)
	case KindIntegrity:
		msg = fmt.Sprintf("could not verify Node.js %s", e.Version)
	case KindInvariant:
		msg = fmt.Sprintf("unexpected archive layout for Node.js %s", e.Version)
	case KindInstall:
		msg = fmt.Sprintf("could not install Node.js %s", e.Version)
	case KindCleanup:
		msg = "could not clean up staging area"
	case KindInvalidRequest:
		msg = "invalid request"
	default:
		msg = "acquisition failed"
	}
	if e.Err == nil {
		return msg
	}
	return msg + ": " + e.Err.Error()
}

// Unwrap returns the underlying cause.
func (e *AcquisitionError) Unwrap() error { return e.Err }

// Is matches the sentinel of the error's kind.
func (e *AcquisitionError) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

func newError(kind Kind, req Request, err error) *AcquisitionError {
	return &AcquisitionError{
		Kind:     kind,
		Version:  req.Version,
		Platform: req.Platform,
		Arch:     req.Arch,
		Mirror:   req.Fetch.Mirror,
		Err:      err,
	}
}

// classifyDownloadError turns a fetch or extraction failure into an
// AcquisitionError. Collaborators that do not wrap the sentinels are
// recognised by the messages of resolver and HTTP status failures.
func classifyDownloadError(req Request, err error) *AcquisitionError {
	switch {
	case isConnectivity(err):
		return newError(KindConnectivity, req, err)
	case isNotFound(err):
		return newError(KindNotFound, req, err)
	default:
		return newError(KindDownload, req, err)
	}
}

func isConnectivity(err error) bool {
	if errors.Is(err, ErrConnectivity) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "no such host") || strings.Contains(msg, "getaddrinfo")
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || strings.Contains(err.Error(), "404")
}
