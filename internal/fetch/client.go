package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
	"github.com/hashicorp/go-retryablehttp"

	"github.com/ZebulonRouseFrantzich/getnode/internal/install"
	"github.com/ZebulonRouseFrantzich/getnode/internal/logging"
)

const (
	// DefaultTimeout is the default HTTP request timeout, body included.
	DefaultTimeout = 5 * time.Minute
	// DefaultRetries is the default number of retries per request.
	DefaultRetries = 3
	// DefaultUserAgent is the User-Agent header sent with requests.
	DefaultUserAgent = "getnode/1.0"

	// ChecksumFile lists the sha256 of every file of a release.
	ChecksumFile = "SHASUMS256.txt"
	// SignatureFile is the detached signature of ChecksumFile.
	SignatureFile = ChecksumFile + ".sig"

	maxChecksumFileSize = 1 << 20
)

// ErrTooLarge indicates a response exceeded the configured size limit.
var ErrTooLarge = errors.New("download exceeds size limit")

// StatusError is returned for non-200 responses.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Unwrap returns install.ErrNotFound for 404 responses.
func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return install.ErrNotFound
	}
	return nil
}

// Client fetches distribution files over HTTP.
type Client struct {
	http            *retryablehttp.Client
	userAgent       string
	maxDownloadSize int64
	keyring         openpgp.EntityList
	logger          logging.Logger
	progress        bool
}

// Option configures a Client.
type Option func(*Client)

// WithRetries sets how many times a failed request is retried.
func WithRetries(n int) Option {
	return func(c *Client) { c.http.RetryMax = n }
}

// WithRetryWait sets the backoff bounds between retries.
func WithRetryWait(minWait, maxWait time.Duration) Option {
	return func(c *Client) {
		c.http.RetryWaitMin = minWait
		c.http.RetryWaitMax = maxWait
	}
}

// WithTimeout sets the timeout of a single request, including reading the
// response body.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.HTTPClient.Timeout = d }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithMaxDownloadSize limits the size of a downloaded archive. Zero means
// no limit.
func WithMaxDownloadSize(n int64) Option {
	return func(c *Client) { c.maxDownloadSize = n }
}

// WithKeyring enables signature verification of the checksum file.
func WithKeyring(keyring openpgp.EntityList) Option {
	return func(c *Client) { c.keyring = keyring }
}

// WithLogger sets the logger used for retries and progress.
func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.logger = logging.OrNoop(l) }
}

// WithProgress enables periodic progress logging while downloading.
func WithProgress(enabled bool) Option {
	return func(c *Client) { c.progress = enabled }
}

// New creates a Client.
func New(opts ...Option) *Client {
	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = DefaultRetries
	httpClient.RetryWaitMin = time.Second
	httpClient.RetryWaitMax = 30 * time.Second
	httpClient.HTTPClient.Timeout = DefaultTimeout
	// Return the last response or error as is, so callers can classify it.
	httpClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	c := &Client{
		http:      httpClient,
		userAgent: DefaultUserAgent,
		logger:    logging.Noop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http.Logger = c.logger

	return c
}

// ArtifactURL returns the URL of filename in the version directory of mirror.
func ArtifactURL(mirror, version, filename string) (string, error) {
	if mirror == "" {
		mirror = DefaultMirror
	}
	u, err := url.JoinPath(mirror, "v"+strings.TrimPrefix(version, "v"), filename)
	if err != nil {
		return "", fmt.Errorf("invalid mirror %q: %w", mirror, err)
	}
	return u, nil
}

// Fetch starts downloading filename of release version. The returned body
// must be closed by the caller.
func (c *Client) Fetch(ctx context.Context, version, filename string, opts install.FetchOptions) (*install.Download, error) {
	fileURL, err := ArtifactURL(opts.Mirror, version, filename)
	if err != nil {
		return nil, err
	}

	resp, err := c.get(ctx, fileURL)
	if err != nil {
		return nil, err
	}

	if c.maxDownloadSize > 0 && resp.ContentLength > c.maxDownloadSize {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s is %d bytes, limit is %d bytes",
			ErrTooLarge, filename, resp.ContentLength, c.maxDownloadSize)
	}

	c.logger.Debug("downloading", "url", fileURL, "size", resp.ContentLength)

	var body io.ReadCloser = resp.Body
	if c.maxDownloadSize > 0 {
		// Headers can lie, so the limit is enforced on the bytes read.
		body = &sizeGuard{rc: body, max: c.maxDownloadSize}
	}
	if c.progress {
		body = newProgressReader(body, resp.ContentLength, filename, c.logger)
	}

	return &install.Download{
		Body:     body,
		Size:     resp.ContentLength,
		Checksum: c.checksumSource(opts.Mirror, version, filename),
	}, nil
}

// get performs a GET request and returns the response of a 200 reply.
func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		if isDialError(err) {
			return nil, fmt.Errorf("%w: %w", install.ErrConnectivity, err)
		}
		return nil, fmt.Errorf("GET %s: %w", rawURL, err)
	}

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	return resp, nil
}

// getSmall downloads a small file into memory.
func (c *Client) getSmall(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := c.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxChecksumFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rawURL, err)
	}
	if len(data) > maxChecksumFileSize {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", ErrTooLarge, rawURL, maxChecksumFileSize)
	}
	return data, nil
}

func isDialError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

// sizeGuard fails reads once more than max bytes were read.
type sizeGuard struct {
	rc   io.ReadCloser
	max  int64
	read int64
}

func (s *sizeGuard) Read(p []byte) (int, error) {
	n, err := s.rc.Read(p)
	s.read += int64(n)
	if s.read > s.max {
		allowed := n - int(s.read-s.max)
		if allowed < 0 {
			allowed = 0
		}
		return allowed, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, s.max)
	}
	return n, err
}

func (s *sizeGuard) Close() error {
	return s.rc.Close()
}
