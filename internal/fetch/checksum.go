package fetch

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/opencontainers/go-digest"

	"github.com/ZebulonRouseFrantzich/getnode/internal/install"
)

// ErrChecksumNotFound indicates the checksum file has no line for a file.
var ErrChecksumNotFound = errors.New("checksum not found")

// checksumSource resolves the digest of filename from the release's
// checksum file once the caller asks for it.
func (c *Client) checksumSource(mirror, version, filename string) install.ChecksumSource {
	return func(ctx context.Context) (digest.Digest, error) {
		sumsURL, err := ArtifactURL(mirror, version, ChecksumFile)
		if err != nil {
			return "", err
		}
		sums, err := c.getSmall(ctx, sumsURL)
		if err != nil {
			return "", fmt.Errorf("fetch %s: %w", ChecksumFile, err)
		}

		if len(c.keyring) > 0 {
			sigURL, err := ArtifactURL(mirror, version, SignatureFile)
			if err != nil {
				return "", err
			}
			sig, err := c.getSmall(ctx, sigURL)
			if err != nil {
				return "", fmt.Errorf("fetch %s: %w", SignatureFile, err)
			}
			if err := VerifySignature(c.keyring, sums, sig); err != nil {
				return "", err
			}
			c.logger.Debug("checksum file signature verified", "url", sumsURL)
		}

		sum, err := FindChecksum(bytes.NewReader(sums), filename)
		if err != nil {
			return "", err
		}

		d := digest.NewDigestFromEncoded(digest.SHA256, strings.ToLower(sum))
		if err := d.Validate(); err != nil {
			return "", fmt.Errorf("invalid checksum for %s: %w", filename, err)
		}
		return d, nil
	}
}

// FindChecksum finds the checksum of filename in a checksum file.
// Format: "abc123def456  node-v18.0.0-linux-x64.tar.gz"
//
// Names must match exactly: a release lists "node.exe" once per
// architecture directory ("win-x64/node.exe", "win-x86/node.exe").
func FindChecksum(r io.Reader, filename string) (string, error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) < 2 {
			continue
		}

		// Binary mode entries are prefixed with '*'.
		if strings.TrimPrefix(parts[1], "*") == filename {
			return parts[0], nil
		}
	}

	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("scan checksum file: %w", err)
	}

	return "", fmt.Errorf("%w for %s", ErrChecksumNotFound, filename)
}
