// Package integrity computes digests of a byte stream while it flows through
// the acquisition pipeline and turns the comparison with the expected digest
// into a deferred verdict.
//
// The verdict is data, not a failure: callers decide when to raise it. The
// installer raises it only after the download and extraction both succeeded,
// so connectivity and not-found errors take precedence over a mismatch.
package integrity

import (
	"errors"
	"fmt"
	"io"

	"github.com/opencontainers/go-digest"
)

var (
	// ErrMismatch indicates the computed digest does not match the expected one.
	ErrMismatch = errors.New("checksum mismatch")

	// ErrUnverifiable indicates the expected digest could not be obtained or used.
	ErrUnverifiable = errors.New("checksum cannot be verified")
)

// MismatchError provides details about a digest mismatch.
// It wraps ErrMismatch so callers can use errors.Is for classification.
type MismatchError struct {
	Expected digest.Digest
	Actual   digest.Digest
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch\nexpected: %s\nactual:   %s", e.Expected, e.Actual)
}

// Unwrap returns ErrMismatch.
func (e *MismatchError) Unwrap() error { return ErrMismatch }

// UnverifiableError reports why the expected digest could not be obtained.
// It matches ErrUnverifiable only: sentinels in Cause, such as a not-found
// from the checksum file request, do not leak into the classification of
// the download itself.
type UnverifiableError struct {
	Cause error
}

func (e *UnverifiableError) Error() string {
	return fmt.Sprintf("%s: %v", ErrUnverifiable, e.Cause)
}

// Unwrap returns ErrUnverifiable.
func (e *UnverifiableError) Unwrap() error { return ErrUnverifiable }

// Verdict is the outcome of an integrity check: either no discrepancy or a
// pending error to be raised by the caller.
type Verdict struct {
	err error
}

// OK reports whether the check found no discrepancy.
func (v Verdict) OK() bool { return v.err == nil }

// Err returns the pending error, or nil.
func (v Verdict) Err() error { return v.err }

// Pending returns a verdict carrying err. A nil err yields an OK verdict.
func Pending(err error) Verdict { return Verdict{err: err} }

// Checker hashes bytes incrementally. It never buffers the payload.
type Checker struct {
	digester digest.Digester
	size     int64
}

// NewChecker creates a checker for alg, falling back to the canonical
// algorithm when alg is empty or unavailable.
func NewChecker(alg digest.Algorithm) *Checker {
	if alg == "" || !alg.Available() {
		alg = digest.Canonical
	}
	return &Checker{digester: alg.Digester()}
}

// Reader returns a reader that feeds every byte read from r into the checker.
func (c *Checker) Reader(r io.Reader) io.Reader {
	return io.TeeReader(r, c)
}

// Write implements io.Writer so the checker can sit in an io.MultiWriter.
func (c *Checker) Write(p []byte) (int, error) {
	n, err := c.digester.Hash().Write(p)
	c.size += int64(n)
	return n, err
}

// Size returns the number of bytes hashed so far.
func (c *Checker) Size() int64 { return c.size }

// Digest returns the digest of the bytes hashed so far.
func (c *Checker) Digest() digest.Digest { return c.digester.Digest() }

// Verify compares the computed digest with expected. srcErr is the error, if
// any, encountered while obtaining expected; it becomes an unverifiable verdict.
// Verify must be called after the stream has been fully consumed.
func (c *Checker) Verify(expected digest.Digest, srcErr error) Verdict {
	if srcErr != nil {
		return Pending(&UnverifiableError{Cause: srcErr})
	}
	if err := expected.Validate(); err != nil {
		return Pending(fmt.Errorf("%w: invalid expected digest %q: %w", ErrUnverifiable, expected, err))
	}

	actual := c.Digest()
	if expected.Algorithm() != actual.Algorithm() {
		return Pending(fmt.Errorf("%w: expected %s digest, computed %s",
			ErrUnverifiable, expected.Algorithm(), actual.Algorithm()))
	}
	if expected != actual {
		return Pending(&MismatchError{Expected: expected, Actual: actual})
	}
	return Verdict{}
}

// Verify drains r and returns the verdict against expected. The returned
// error reports a read failure only; a mismatch is carried by the verdict.
func Verify(r io.Reader, expected digest.Digest) (Verdict, error) {
	c := NewChecker(expected.Algorithm())
	if _, err := io.Copy(c, r); err != nil {
		return Verdict{}, fmt.Errorf("read stream: %w", err)
	}
	return c.Verify(expected, nil), nil
}
