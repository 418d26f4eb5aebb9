package extract

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Raw writes the stream as a single executable file named Name below dest.
type Raw struct {
	Name string
	// MaxSize limits the file size. Zero or less means no limit.
	MaxSize int64
}

// Extract copies r to dest/Name with executable permissions.
func (e *Raw) Extract(ctx context.Context, r io.Reader, dest string) error {
	if !filepath.IsLocal(e.Name) || e.Name == "." {
		return fmt.Errorf("%w: %s", ErrIllegalPath, e.Name)
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}

	target := filepath.Join(dest, e.Name)
	outFile, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o755)
	if err != nil {
		return fmt.Errorf("create file %s: %w", target, err)
	}

	var src io.Reader = &contextReader{ctx: ctx, r: r}
	if e.MaxSize > 0 {
		src = io.LimitReader(src, e.MaxSize+1)
	}

	n, err := io.Copy(outFile, src)
	if err != nil {
		outFile.Close()
		return fmt.Errorf("write file %s: %w", target, err)
	}
	if e.MaxSize > 0 && n > e.MaxSize {
		outFile.Close()
		return fmt.Errorf("%w: %d bytes", ErrTooLarge, e.MaxSize)
	}

	if err := outFile.Close(); err != nil {
		return fmt.Errorf("close file %s: %w", target, err)
	}
	return nil
}
