// Package install acquires one Node.js runtime distribution and installs it
// atomically at an output path.
//
// # Acquisition
//
// An acquisition fetches the archive for a {version, platform, arch} triple,
// streams it through an integrity checker and an extractor into a private
// staging directory under the temp area, and then promotes the single
// extracted entry to the output path with one rename:
//
//	caller -> existence pre-check -> staging -> fetch | gunzip | untar
//	       -> deferred checksum verdict -> existence re-check -> move
//	       -> staging cleanup
//
// # Idempotence and races
//
// The mere existence of the output path means the artifact is installed.
// The path is checked before any network activity and again right before
// promotion. Concurrent acquisitions of the same output do not coordinate
// through locks: each stages in isolation, and whichever reaches the
// promotion first wins. The others discard their staging directory and
// return the winner's path.
//
// # Errors
//
// Every failure is an *AcquisitionError. Use errors.Is with ErrConnectivity,
// ErrNotFound, ErrIntegrity, ErrInvariant, ErrCleanup or ErrInvalidRequest
// to classify it. A checksum problem is only reported once the download and
// extraction succeeded, so wrong-version and network problems take
// precedence over it.
package install
