package transfer

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
)

// Options configures a single upload or download.
type Options struct {
	// ShowProgress enables the textual progress line. When enabled the
	// backend stats the source first to learn the total size.
	ShowProgress bool

	// ProgressOut is where progress is rendered. Nil means stderr.
	ProgressOut io.Writer

	// ContentType overrides content-type detection on upload.
	ContentType string
}

// SchemeOf returns the URL scheme of rawURL, or an empty string for a
// plain path. Used by callers dispatching transfers to backends.
func SchemeOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Scheme
}

// validateLocalFile checks that path names an existing regular file.
// Backends call this before opening any connection.
func validateLocalFile(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %q does not exist or is not readable", ErrInvalidInput, path)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %q is not a regular file", ErrInvalidInput, path)
	}
	return info, nil
}

// ensureLocalDir creates the parent directory of path if needed.
func ensureLocalDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return nil
}
