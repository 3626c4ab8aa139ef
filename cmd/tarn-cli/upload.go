package main

import (
	"context"
	"fmt"
	"os"

	tarn "github.com/tarnplatform/tarn-go"
	"github.com/tarnplatform/tarn-go/transfer"

	"github.com/spf13/cobra"
)

var (
	uploadContentType string
	uploadNoProgress  bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload <local-path> <remote-url>",
	Short: "Upload a file to storage",
	Long: `Upload a local file to S3-compatible object storage or an SFTP server.

The remote URL selects the backend:
  s3://bucket/key        S3-compatible object storage
  sftp://host/dir        SFTP server (file is placed inside dir)

Examples:
  tarn-cli upload ./data.csv s3://my-bucket/datasets/data.csv
  tarn-cli upload ./data.csv sftp://sftp.example.org/incoming
  tarn-cli upload --content-type text/csv ./data s3://my-bucket/data`,
	Args: cobra.ExactArgs(2),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVar(&uploadContentType, "content-type", "", "override content-type detection")
	uploadCmd.Flags().BoolVar(&uploadNoProgress, "no-progress", false, "disable the progress display")
	registerStorageFlags(uploadCmd)
}

func runUpload(_ *cobra.Command, args []string) error {
	localPath := args[0]
	remoteURL := args[1]

	ctx := context.Background()
	opts := transfer.Options{
		ShowProgress: !uploadNoProgress && !quiet,
		ContentType:  uploadContentType,
	}

	var target string
	var err error
	switch scheme := transfer.SchemeOf(remoteURL); scheme {
	case "s3":
		var bucket, key string
		bucket, key, err = parseS3URL(remoteURL)
		if err != nil {
			break
		}
		var backend *transfer.S3Backend
		backend, err = newS3Backend(ctx)
		if err != nil {
			break
		}
		_, err = backend.UploadFile(ctx, bucket, key, localPath, opts)
		target = remoteURL
	case "sftp":
		var backend *transfer.SFTPBackend
		backend, err = newSFTPBackend()
		if err != nil {
			break
		}
		target, err = backend.UploadFile(ctx, remoteURL, localPath, opts)
	default:
		err = fmt.Errorf("%w for scheme %q", transfer.ErrNoBackend, scheme)
	}

	formatter := getFormatter()
	if err != nil {
		_ = formatter.FormatError(os.Stderr, err)
		return err
	}

	size := int64(0)
	if info, statErr := os.Stat(localPath); statErr == nil {
		size = info.Size()
	}
	return formatter.FormatTransfer(os.Stdout, &tarn.TransferSummary{
		Direction: "upload",
		Source:    localPath,
		Target:    target,
		Size:      size,
	})
}
