package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

var (
	// ErrUnsupportedArchive indicates no extractor handles the archive name.
	ErrUnsupportedArchive = errors.New("unsupported archive format")

	// ErrIllegalPath indicates an archive entry would be written outside dest.
	ErrIllegalPath = errors.New("illegal file path in archive")

	// ErrTooLarge indicates the extracted content exceeds the configured limit.
	ErrTooLarge = errors.New("extracted content exceeds size limit")
)

// Extractor consumes an archive stream and produces files below dest.
type Extractor interface {
	Extract(ctx context.Context, r io.Reader, dest string) error
}

// ForArchive returns the extractor for an archive file name. maxSize limits
// the number of extracted bytes; zero or less means no limit.
func ForArchive(name string, maxSize int64) (Extractor, error) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return &TarGz{MaxSize: maxSize}, nil
	case strings.HasSuffix(lower, ".exe"):
		return &Raw{Name: path.Base(name), MaxSize: maxSize}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedArchive, name)
	}
}

// contextReader fails reads once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *contextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}
