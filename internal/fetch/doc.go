// Package fetch downloads Node.js distribution files from a mirror.
//
// A Client implements install.Fetcher. Archive bodies are streamed, never
// buffered. The expected digest is resolved lazily from the release's
// SHASUMS256.txt, optionally after checking its detached OpenPGP signature
// against a user supplied keyring.
//
// Requests are retried with exponential backoff on connection errors and 5xx
// responses. A 404 response is reported as a StatusError wrapping
// install.ErrNotFound; unreachable mirrors wrap install.ErrConnectivity.
package fetch
