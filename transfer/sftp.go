package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

const sftpDefaultPort = "22"

// SFTPBackend transfers files to and from SFTP servers. URLs must use
// the sftp scheme (sftp://host/path). Connections are scoped to one
// operation: dialed immediately before the transfer and closed on every
// exit path.
type SFTPBackend struct {
	username        string
	password        string
	hostKeyCallback ssh.HostKeyCallback
}

// SFTPOption configures an SFTPBackend.
type SFTPOption func(*SFTPBackend)

// WithHostKeyCallback sets the host key verification policy. The
// default accepts any host key.
func WithHostKeyCallback(cb ssh.HostKeyCallback) SFTPOption {
	return func(b *SFTPBackend) {
		b.hostKeyCallback = cb
	}
}

// NewSFTPBackend returns a backend authenticating with the given
// username and password.
func NewSFTPBackend(username, password string, opts ...SFTPOption) *SFTPBackend {
	b := &SFTPBackend{
		username:        username,
		password:        password,
		hostKeyCallback: ssh.InsecureIgnoreHostKey(), //#nosec G106 -- verification is opt-in via WithHostKeyCallback
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// UploadFile uploads srcPath into the directory named by rawURL,
// creating missing remote directories, and returns the canonical URL of
// the uploaded file with a percent-encoded path. The remote file keeps
// the local modification time.
func (b *SFTPBackend) UploadFile(ctx context.Context, rawURL, srcPath string, opts Options) (string, error) {
	parsed, err := parseSFTPURL(rawURL)
	if err != nil {
		return "", err
	}

	info, err := validateLocalFile(srcPath)
	if err != nil {
		return "", err
	}

	conn, client, err := b.connect(ctx, parsed)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = client.Close()
		_ = conn.Close()
	}()

	remoteDir := parsed.Path
	if err := client.MkdirAll(remoteDir); err != nil {
		return "", fmt.Errorf("create remote directory %q: %w", remoteDir, err)
	}

	remotePath := path.Join(remoteDir, filepath.Base(srcPath))

	local, err := os.Open(srcPath) //#nosec G304 -- srcPath is user-provided input
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = local.Close() }()

	remote, err := client.Create(remotePath)
	if err != nil {
		return "", fmt.Errorf("create remote file %q: %w", remotePath, err)
	}

	var reader io.Reader = local
	var tracker *Tracker
	if opts.ShowProgress {
		tracker = NewTracker("Uploading "+filepath.Base(srcPath), info.Size(), opts.ProgressOut)
		reader = tracker.NewProxyReader(reader)
	}

	_, copyErr := io.Copy(remote, reader)
	closeErr := remote.Close()
	if tracker != nil {
		tracker.Finish()
	}
	if copyErr != nil {
		return "", fmt.Errorf("write remote file: %w", copyErr)
	}
	if closeErr != nil {
		return "", fmt.Errorf("close remote file: %w", closeErr)
	}

	if err := client.Chtimes(remotePath, info.ModTime(), info.ModTime()); err != nil {
		return "", fmt.Errorf("preserve modification time: %w", err)
	}

	result := url.URL{
		Scheme: "sftp",
		Host:   parsed.Host,
		Path:   remotePath,
	}
	return result.String(), nil
}

// DownloadFile downloads the file named by rawURL to destPath and
// returns the local path. An empty destPath means the current
// directory; a destPath naming an existing directory receives the file
// under its remote base name. Missing local directories are created and
// the remote modification time is preserved.
func (b *SFTPBackend) DownloadFile(ctx context.Context, rawURL, destPath string, opts Options) (string, error) {
	parsed, err := parseSFTPURL(rawURL)
	if err != nil {
		return "", err
	}
	remotePath := parsed.Path

	destPath, err = resolveLocalDest(destPath, remotePath)
	if err != nil {
		return "", err
	}
	if err := ensureLocalDir(destPath); err != nil {
		return "", err
	}

	conn, client, err := b.connect(ctx, parsed)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = client.Close()
		_ = conn.Close()
	}()

	stat, err := client.Stat(remotePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", &KeyError{Container: parsed.Host, Key: remotePath}
		}
		return "", fmt.Errorf("stat remote file %q: %w", remotePath, err)
	}

	remote, err := client.Open(remotePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", &KeyError{Container: parsed.Host, Key: remotePath}
		}
		return "", fmt.Errorf("open remote file %q: %w", remotePath, err)
	}
	defer func() { _ = remote.Close() }()

	local, err := os.Create(destPath) //#nosec G304 -- destPath is user-provided input
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}

	var reader io.Reader = remote
	var tracker *Tracker
	if opts.ShowProgress {
		tracker = NewTracker("Downloading "+filepath.Base(destPath), stat.Size(), opts.ProgressOut)
		reader = tracker.NewProxyReader(reader)
	}

	_, copyErr := io.Copy(local, reader)
	closeErr := local.Close()
	if tracker != nil {
		tracker.Finish()
	}
	if copyErr != nil {
		return "", fmt.Errorf("write file: %w", copyErr)
	}
	if closeErr != nil {
		return "", fmt.Errorf("close file: %w", closeErr)
	}

	if err := os.Chtimes(destPath, stat.ModTime(), stat.ModTime()); err != nil {
		return "", fmt.Errorf("preserve modification time: %w", err)
	}

	return destPath, nil
}

// connect dials the SSH connection and opens an SFTP session on it.
func (b *SFTPBackend) connect(ctx context.Context, parsed *url.URL) (*ssh.Client, *sftp.Client, error) {
	host := parsed.Host
	if parsed.Port() == "" {
		host = net.JoinHostPort(parsed.Hostname(), sftpDefaultPort)
	}

	sshCfg := &ssh.ClientConfig{
		User:            b.username,
		Auth:            []ssh.AuthMethod{ssh.Password(b.password)},
		HostKeyCallback: b.hostKeyCallback,
	}

	dialer := net.Dialer{}
	netConn, err := dialer.DialContext(ctx, "tcp", host)
	if err != nil {
		return nil, nil, fmt.Errorf("dial %q: %w", host, err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(netConn, host, sshCfg)
	if err != nil {
		_ = netConn.Close()
		return nil, nil, fmt.Errorf("ssh handshake with %q: %w", host, err)
	}
	conn := ssh.NewClient(sshConn, chans, reqs)

	client, err := sftp.NewClient(conn)
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open sftp session: %w", err)
	}

	return conn, client, nil
}

// parseSFTPURL parses rawURL and rejects anything that is not an sftp
// URL with a host and path.
func parseSFTPURL(rawURL string) (*url.URL, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if parsed.Scheme != "sftp" {
		return nil, fmt.Errorf("%w: %q (only sftp:// URLs are supported)", ErrScheme, rawURL)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("%w: missing host in %q", ErrInvalidInput, rawURL)
	}
	return parsed, nil
}

// resolveLocalDest picks the local file path for a download.
func resolveLocalDest(destPath, remotePath string) (string, error) {
	if destPath == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve working directory: %w", err)
		}
		destPath = wd
	}
	if info, err := os.Stat(destPath); err == nil && info.IsDir() {
		destPath = filepath.Join(destPath, path.Base(remotePath))
	}
	return destPath, nil
}
