package extract

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/klauspost/compress/gzip"
)

// TarGz extracts gzip compressed tarballs.
type TarGz struct {
	// MaxSize limits the total size of extracted regular files. Zero or
	// less means no limit.
	MaxSize int64
}

// Extract decompresses r and unpacks the tarball below dest.
func (e *TarGz) Extract(ctx context.Context, r io.Reader, dest string) error {
	gzipReader, err := gzip.NewReader(&contextReader{ctx: ctx, r: r})
	if err != nil {
		return fmt.Errorf("create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	return untar(ctx, tar.NewReader(gzipReader), dest, e.MaxSize)
}

func untar(ctx context.Context, tarReader *tar.Reader, dest string, maxSize int64) error {
	dest = filepath.Clean(dest)
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}

	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		header, err := tarReader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read tar header: %w", err)
		}

		if !filepath.IsLocal(header.Name) {
			return fmt.Errorf("%w: %s", ErrIllegalPath, header.Name)
		}
		target, err := securejoin.SecureJoin(dest, header.Name)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", header.Name, err)
		}
		if target == dest {
			continue
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create directory %s: %w", target, err)
			}

		case tar.TypeReg:
			if maxSize > 0 && written+header.Size > maxSize {
				return fmt.Errorf("%w: %d bytes", ErrTooLarge, maxSize)
			}
			if err := writeFile(target, tarReader, header); err != nil {
				return err
			}
			written += header.Size

		case tar.TypeSymlink:
			if !linkInside(dest, filepath.Dir(target), header.Linkname) {
				return fmt.Errorf("%w: symlink %s -> %s", ErrIllegalPath, header.Name, header.Linkname)
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("create parent dir for %s: %w", target, err)
			}
			if err := os.Symlink(header.Linkname, target); err != nil {
				return fmt.Errorf("create symlink %s: %w", target, err)
			}

		case tar.TypeLink:
			if !filepath.IsLocal(header.Linkname) {
				return fmt.Errorf("%w: hard link %s -> %s", ErrIllegalPath, header.Name, header.Linkname)
			}
			source, err := securejoin.SecureJoin(dest, header.Linkname)
			if err != nil {
				return fmt.Errorf("resolve %s: %w", header.Linkname, err)
			}
			if err := os.Link(source, target); err != nil {
				return fmt.Errorf("create hard link %s: %w", target, err)
			}

		default:
			// Skip other types (char devices, block devices, fifos, etc.)
			continue
		}
	}
}

func writeFile(target string, r io.Reader, header *tar.Header) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create parent dir for %s: %w", target, err)
	}

	outFile, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, header.FileInfo().Mode().Perm())
	if err != nil {
		return fmt.Errorf("create file %s: %w", target, err)
	}

	if _, err := io.CopyN(outFile, r, header.Size); err != nil {
		outFile.Close()
		return fmt.Errorf("write file %s: %w", target, err)
	}

	if err := outFile.Close(); err != nil {
		return fmt.Errorf("close file %s: %w", target, err)
	}
	return nil
}

// linkInside reports whether a symlink in dir pointing at linkname stays
// within root.
func linkInside(root, dir, linkname string) bool {
	if filepath.IsAbs(linkname) {
		return false
	}
	resolved := filepath.Join(dir, linkname)
	rel, err := filepath.Rel(root, resolved)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
