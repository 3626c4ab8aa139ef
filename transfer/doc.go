// Package transfer provides storage-backend adapters for moving files
// between the local filesystem and remote storage with progress reporting.
//
// Two backends are implemented: S3-compatible object storage (S3Backend)
// and SFTP servers (SFTPBackend). Both expose the same shape of
// operation: resolve a connection, optionally stat the source for a
// progress total, stream the bytes through a Tracker, and release the
// connection on every exit path.
//
// Backends are capabilities supplied at configuration time. Code that
// dispatches on URL scheme should report ErrNoBackend when no backend is
// configured for a scheme rather than failing mid-transfer.
package transfer
