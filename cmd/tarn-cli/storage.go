package main

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	tarn "github.com/tarnplatform/tarn-go"
	"github.com/tarnplatform/tarn-go/transfer"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var (
	awsProfile   string
	s3Endpoint   string
	sftpUser     string
	sftpPassword string
)

// registerStorageFlags adds the backend-credential flags shared by
// upload and download.
func registerStorageFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&awsProfile, "aws-profile", "", "named AWS credential profile for s3:// transfers")
	cmd.Flags().StringVar(&s3Endpoint, "s3-endpoint", "", "custom S3-compatible endpoint URL")
	cmd.Flags().StringVar(&sftpUser, "sftp-user", "", "username for sftp:// transfers (prompted if missing)")
	cmd.Flags().StringVar(&sftpPassword, "sftp-password", "", "password for sftp:// transfers (prompted if missing)")
}

// parseS3URL splits s3://bucket/key into its parts.
func parseS3URL(rawURL string) (bucket, key string, err error) {
	u, parseErr := url.Parse(rawURL)
	if parseErr != nil {
		return "", "", fmt.Errorf("invalid URL %q: %w", rawURL, parseErr)
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid s3 URL %q: want s3://bucket/key", rawURL)
	}
	return bucket, key, nil
}

// newS3Backend builds the S3 backend from flags and the active profile.
func newS3Backend(ctx context.Context) (*transfer.S3Backend, error) {
	profileName := awsProfile
	if profileName == "" {
		if p, err := loadProfile(); err == nil && p != nil {
			profileName = p.AWSProfile
		}
	}

	var opts []transfer.S3Option
	if profileName != "" {
		opts = append(opts, transfer.WithProfile(profileName))
	}
	if s3Endpoint != "" {
		opts = append(opts, transfer.WithEndpoint(s3Endpoint))
	}
	return transfer.NewS3Backend(ctx, opts...)
}

// newSFTPBackend builds the SFTP backend from flags and the active
// profile, prompting for missing credentials.
func newSFTPBackend() (*transfer.SFTPBackend, error) {
	username := sftpUser
	password := sftpPassword

	var p *tarn.Profile
	if prof, err := loadProfile(); err == nil {
		p = prof
	}
	if username == "" && p != nil {
		username = p.SFTPUsername
	}
	if password == "" && p != nil {
		password = p.SFTPPassword
	}

	if username == "" {
		prompt := promptui.Prompt{Label: "SFTP Username"}
		value, err := prompt.Run()
		if err != nil {
			return nil, handlePromptError(err)
		}
		username = value
	}
	if password == "" {
		prompt := promptui.Prompt{Label: "SFTP Password", Mask: '*'}
		value, err := prompt.Run()
		if err != nil {
			return nil, handlePromptError(err)
		}
		password = value
	}

	return transfer.NewSFTPBackend(username, password), nil
}
