// Package extract turns a compressed archive stream into a directory tree.
//
// Extractors are stateless stream stages: they read from an io.Reader until
// the archive ends and write below a destination directory. They know
// nothing about the network or about where the extracted tree ends up.
//
// # Formats
//
//   - TarGz: gzip compressed tarball (*.tar.gz, *.tgz)
//   - Raw: the stream is the artifact itself, such as a single executable
//
// # Safety
//
// Every entry path is validated to be local and joined to the destination
// with securejoin, so symlinks created earlier in the archive cannot be used
// to escape it. Symlink and hard link targets must resolve inside the
// destination as well.
package extract
