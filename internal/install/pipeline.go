package install

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/opencontainers/go-digest"
	"golang.org/x/sync/errgroup"

	"github.com/ZebulonRouseFrantzich/getnode/internal/extract"
	"github.com/ZebulonRouseFrantzich/getnode/internal/integrity"
)

var errNoChecksumSource = errors.New("mirror provided no checksum source")

// runPipeline streams the archive for req into staging. The returned error
// covers fetching, decompression and extraction; the checksum outcome is
// returned separately as a verdict for the caller to raise later.
func (i *Installer) runPipeline(ctx context.Context, req Request, staging string) (integrity.Verdict, error) {
	filename := archiveName(req)
	extractor, err := i.extractorFor(filename)
	if err != nil {
		return integrity.Verdict{}, err
	}

	dl, err := i.fetcher.Fetch(ctx, req.Version, filename, req.Fetch)
	if err != nil {
		return integrity.Verdict{}, err
	}
	defer dl.Body.Close()

	checker := integrity.NewChecker(digest.SHA256)
	if err := stream(ctx, dl.Body, checker, extractor, staging); err != nil {
		return integrity.Verdict{}, err
	}

	i.logger.Debug("archive extracted", "file", filename, "bytes", checker.Size(), "digest", checker.Digest())

	if dl.Checksum == nil {
		return checker.Verify("", errNoChecksumSource), nil
	}
	expected, srcErr := dl.Checksum(ctx)
	return checker.Verify(expected, srcErr), nil
}

// stream connects the network stage to the extraction stage through a
// synchronous pipe, so neither runs ahead of the other. A failure in either
// stage closes the pipe with that error, which stops the other one.
//
// The error of the stage that failed first is returned: a network failure
// surfaces in the extractor as a read error wrapping it, while an extractor
// failure makes the network stage fail on the closed pipe or body.
func stream(ctx context.Context, body io.ReadCloser, checker *integrity.Checker, extractor extract.Extractor, dest string) error {
	pr, pw := io.Pipe()
	g, gctx := errgroup.WithContext(ctx)

	var netErr, extractErr error

	g.Go(func() error {
		if _, err := io.Copy(pw, checker.Reader(body)); err != nil {
			netErr = fmt.Errorf("read response body: %w", err)
		}
		pw.CloseWithError(netErr)
		return netErr
	})

	g.Go(func() error {
		err := extractor.Extract(gctx, pr, dest)
		if err == nil {
			// Trailing archive padding still counts towards the digest.
			_, err = io.Copy(io.Discard, pr)
		}
		if err != nil {
			extractErr = fmt.Errorf("extract archive: %w", err)
			pr.CloseWithError(extractErr)
			body.Close()
		}
		return extractErr
	})

	_ = g.Wait()

	switch {
	case netErr != nil && (extractErr == nil || errors.Is(extractErr, netErr)):
		return netErr
	case extractErr != nil:
		return extractErr
	default:
		return nil
	}
}
