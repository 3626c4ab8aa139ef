package main

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	tarn "github.com/tarnplatform/tarn-go"
	"github.com/tarnplatform/tarn-go/transfer"

	"github.com/spf13/cobra"
)

var downloadNoProgress bool

var downloadCmd = &cobra.Command{
	Use:   "download <remote-url> [local-path]",
	Short: "Download a file from storage",
	Long: `Download a file from S3-compatible object storage or an SFTP server.

The remote URL selects the backend:
  s3://bucket/key        S3-compatible object storage
  sftp://host/path/file  SFTP server

When local-path is omitted the file lands in the current directory under
its remote base name. Missing local directories are created.

Examples:
  tarn-cli download s3://my-bucket/datasets/data.csv ./data.csv
  tarn-cli download sftp://sftp.example.org/outgoing/data.csv`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().BoolVar(&downloadNoProgress, "no-progress", false, "disable the progress display")
	registerStorageFlags(downloadCmd)
}

func runDownload(_ *cobra.Command, args []string) error {
	remoteURL := args[0]
	localPath := ""
	if len(args) > 1 {
		localPath = args[1]
	}

	ctx := context.Background()
	opts := transfer.Options{
		ShowProgress: !downloadNoProgress && !quiet,
	}

	var dest string
	var err error
	switch scheme := transfer.SchemeOf(remoteURL); scheme {
	case "s3":
		var bucket, key string
		bucket, key, err = parseS3URL(remoteURL)
		if err != nil {
			break
		}
		if localPath == "" {
			localPath = path.Base(key)
		} else if info, statErr := os.Stat(localPath); statErr == nil && info.IsDir() {
			localPath = filepath.Join(localPath, path.Base(key))
		}
		var backend *transfer.S3Backend
		backend, err = newS3Backend(ctx)
		if err != nil {
			break
		}
		dest, err = backend.DownloadFile(ctx, bucket, key, localPath, opts)
	case "sftp":
		var backend *transfer.SFTPBackend
		backend, err = newSFTPBackend()
		if err != nil {
			break
		}
		dest, err = backend.DownloadFile(ctx, remoteURL, localPath, opts)
	default:
		err = fmt.Errorf("%w for scheme %q", transfer.ErrNoBackend, scheme)
	}

	formatter := getFormatter()
	if err != nil {
		_ = formatter.FormatError(os.Stderr, err)
		return err
	}

	size := int64(0)
	if info, statErr := os.Stat(dest); statErr == nil {
		size = info.Size()
	}
	return formatter.FormatTransfer(os.Stdout, &tarn.TransferSummary{
		Direction: "download",
		Source:    strings.TrimSuffix(remoteURL, "/"),
		Target:    dest,
		Size:      size,
	})
}
