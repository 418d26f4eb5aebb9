package install

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ZebulonRouseFrantzich/getnode/internal/extract"
	"github.com/ZebulonRouseFrantzich/getnode/internal/logging"
)

// StagingPrefix namespaces staging directories in the temp area.
const StagingPrefix = "getnode"

// Installer orchestrates existence checks, staging, the fetch and extract
// pipeline, checksum enforcement and promotion.
type Installer struct {
	fetcher      Fetcher
	fs           FS
	logger       logging.Logger
	tempDir      string
	maxSize      int64
	extractorFor func(filename string) (extract.Extractor, error)
}

// Option configures an Installer.
type Option func(*Installer)

// WithFS overrides the filesystem collaborator.
func WithFS(fs FS) Option {
	return func(i *Installer) { i.fs = fs }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l logging.Logger) Option {
	return func(i *Installer) { i.logger = logging.OrNoop(l) }
}

// WithTempDir sets where staging directories are created. The default is
// the system temp directory, so abandoned attempts are reclaimed by the
// usual temp cleanup.
func WithTempDir(dir string) Option {
	return func(i *Installer) { i.tempDir = dir }
}

// WithMaxExtractSize limits the number of extracted bytes per acquisition.
func WithMaxExtractSize(n int64) Option {
	return func(i *Installer) { i.maxSize = n }
}

// WithExtractorFunc overrides how an extractor is picked for an archive.
func WithExtractorFunc(fn func(filename string) (extract.Extractor, error)) Option {
	return func(i *Installer) { i.extractorFor = fn }
}

// New creates an Installer that downloads through fetcher.
func New(fetcher Fetcher, opts ...Option) (*Installer, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}

	i := &Installer{
		fetcher: fetcher,
		fs:      OSFS{},
		logger:  logging.Noop(),
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.extractorFor == nil {
		i.extractorFor = func(filename string) (extract.Extractor, error) {
			return extract.ForArchive(filename, i.maxSize)
		}
	}

	return i, nil
}

// Acquire installs the artifact described by req and returns its path.
// If the output path already exists, it is returned without any download.
func (i *Installer) Acquire(ctx context.Context, req Request) (string, error) {
	result, err := i.AcquireResult(ctx, req)
	if err != nil {
		return "", err
	}
	return result.Path, nil
}

// AcquireResult is Acquire with details about what happened.
func (i *Installer) AcquireResult(ctx context.Context, req Request) (*Result, error) {
	startTime := time.Now()

	req, err := req.normalize()
	if err != nil {
		return nil, newError(KindInvalidRequest, req, err)
	}

	present, err := Exists(i.fs, req.Output)
	if err != nil {
		return nil, newError(KindInstall, req, fmt.Errorf("check output: %w", err))
	}
	if present {
		i.logger.Debug("already installed", "path", req.Output)
		return &Result{Path: req.Output, Duration: time.Since(startTime)}, nil
	}

	attempt := uuid.NewString()
	installed, err := i.install(ctx, req, attempt)
	if err != nil {
		return nil, err
	}

	return &Result{
		Path:      req.Output,
		Installed: installed,
		Attempt:   attempt,
		Duration:  time.Since(startTime),
	}, nil
}

// install runs one staged attempt. The staging directory is removed on
// every return path.
func (i *Installer) install(ctx context.Context, req Request, attempt string) (installed bool, err error) {
	pattern := fmt.Sprintf("%s-%s-%s-*", StagingPrefix, req.Version, req.Arch)
	staging, err := i.fs.MkdirTemp(i.tempDir, pattern)
	if err != nil {
		return false, newError(KindInstall, req, fmt.Errorf("create staging area: %w", err))
	}
	i.logger.Debug("staging", "attempt", attempt, "dir", staging, "version", req.Version,
		"platform", req.Platform, "arch", req.Arch)

	defer func() {
		cleanupErr := i.fs.RemoveAll(staging)
		if cleanupErr == nil {
			return
		}
		if err != nil {
			i.logger.Warn("failed to remove staging area", "attempt", attempt, "dir", staging, "error", cleanupErr)
			return
		}
		err = newError(KindCleanup, req, fmt.Errorf("remove %s: %w", staging, cleanupErr))
	}()

	verdict, err := i.runPipeline(ctx, req, staging)
	if err != nil {
		return false, classifyDownloadError(req, err)
	}

	// Checksum problems only matter once everything else worked.
	if verr := verdict.Err(); verr != nil {
		return false, newError(KindIntegrity, req, verr)
	}

	return i.promote(req, staging, attempt)
}

// promote moves the single staged entry to the output path, unless a
// concurrent acquisition got there first.
func (i *Installer) promote(req Request, staging, attempt string) (bool, error) {
	present, err := Exists(i.fs, req.Output)
	if err != nil {
		return false, newError(KindInstall, req, fmt.Errorf("check output: %w", err))
	}
	if present {
		i.logger.Info("another acquisition installed first", "attempt", attempt, "path", req.Output)
		return false, nil
	}

	names, err := i.fs.ReadDir(staging)
	if err != nil {
		return false, newError(KindInstall, req, fmt.Errorf("read staging area: %w", err))
	}
	if len(names) != 1 {
		return false, newError(KindInvariant, req,
			fmt.Errorf("expected exactly one top-level entry in archive, found %d %v", len(names), names))
	}

	if err := i.fs.Move(filepath.Join(staging, names[0]), req.Output); err != nil {
		// Lost the race between the re-check and the move.
		if present, statErr := Exists(i.fs, req.Output); statErr == nil && present {
			i.logger.Info("another acquisition installed first", "attempt", attempt, "path", req.Output)
			return false, nil
		}
		return false, newError(KindInstall, req, fmt.Errorf("move to %s: %w", req.Output, err))
	}

	i.logger.Info("installed", "attempt", attempt, "version", req.Version, "path", req.Output)
	return true, nil
}
