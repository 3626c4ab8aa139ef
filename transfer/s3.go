package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/gabriel-vasile/mimetype"
)

// s3API is the narrow slice of the AWS SDK S3 client the backend uses.
// Keeping it an interface lets tests substitute a mock.
type s3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// S3Backend transfers files to and from S3-compatible object storage.
// It is safe for concurrent use; each operation is independent.
type S3Backend struct {
	api s3API
}

// S3Option configures the backend's connection resolution.
type S3Option func(*s3Config)

type s3Config struct {
	profile  string
	region   string
	endpoint string
}

// WithProfile selects a named credential profile from the shared AWS
// config instead of the default credential chain.
func WithProfile(name string) S3Option {
	return func(c *s3Config) {
		c.profile = name
	}
}

// WithRegion sets the region explicitly.
func WithRegion(region string) S3Option {
	return func(c *s3Config) {
		c.region = region
	}
}

// WithEndpoint points the backend at an S3-compatible endpoint other
// than AWS, such as a MinIO deployment.
func WithEndpoint(endpoint string) S3Option {
	return func(c *s3Config) {
		c.endpoint = endpoint
	}
}

// NewS3Backend resolves credentials and returns a ready backend.
func NewS3Backend(ctx context.Context, opts ...S3Option) (*S3Backend, error) {
	cfg := &s3Config{}
	for _, opt := range opts {
		opt(cfg)
	}

	var loadOpts []func(*config.LoadOptions) error
	if cfg.profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(cfg.profile))
	}
	if cfg.region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.region))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.endpoint)
			o.UsePathStyle = true
		})
	}

	return &S3Backend{api: s3.NewFromConfig(awsCfg, s3Opts...)}, nil
}

// NewS3BackendWithAPI wraps an existing API implementation.
// This is primarily used for testing with mocked clients.
func NewS3BackendWithAPI(api s3API) *S3Backend {
	return &S3Backend{api: api}
}

// DownloadFile downloads bucket/key to destPath and returns destPath.
// With progress enabled it issues a HeadObject first so the progress
// line has a total. A missing key is reported as a KeyError wrapping
// ErrNotFound; every other backend error propagates unchanged.
func (b *S3Backend) DownloadFile(ctx context.Context, bucket, key, destPath string, opts Options) (string, error) {
	var tracker *Tracker
	if opts.ShowProgress {
		head, err := b.api.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return "", b.mapError(bucket, key, err)
		}
		tracker = NewTracker("Downloading "+filepath.Base(destPath), aws.ToInt64(head.ContentLength), opts.ProgressOut)
	}

	obj, err := b.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", b.mapError(bucket, key, err)
	}
	defer func() { _ = obj.Body.Close() }()

	if err := ensureLocalDir(destPath); err != nil {
		return "", err
	}

	file, err := os.Create(destPath) //#nosec G304 -- destPath is user-provided input
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}

	var body io.Reader = obj.Body
	if tracker != nil {
		body = tracker.NewProxyReader(body)
	}

	_, copyErr := io.Copy(file, body)
	closeErr := file.Close()
	if tracker != nil {
		tracker.Finish()
	}
	if copyErr != nil {
		return "", fmt.Errorf("write file: %w", copyErr)
	}
	if closeErr != nil {
		return "", fmt.Errorf("close file: %w", closeErr)
	}

	return destPath, nil
}

// UploadFile uploads srcPath to bucket/key and returns the key. The
// source must be an existing regular file; that is checked before any
// network activity. Single- versus multi-part transfer is the SDK's
// decision, not made here.
func (b *S3Backend) UploadFile(ctx context.Context, bucket, key, srcPath string, opts Options) (string, error) {
	info, err := validateLocalFile(srcPath)
	if err != nil {
		return "", err
	}

	contentType := opts.ContentType
	if contentType == "" {
		contentType = detectContentType(srcPath)
	}

	file, err := os.Open(srcPath) //#nosec G304 -- srcPath is user-provided input
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var body io.Reader = file
	var tracker *Tracker
	if opts.ShowProgress {
		tracker = NewTracker("Uploading "+filepath.Base(srcPath), info.Size(), opts.ProgressOut)
		body = tracker.NewProxyReader(body)
	}

	_, err = b.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(contentType),
	})
	if tracker != nil {
		tracker.Finish()
	}
	if err != nil {
		return "", b.mapError(bucket, key, err)
	}

	return key, nil
}

// mapError translates a missing-key failure into a KeyError and leaves
// everything else untouched.
func (b *S3Backend) mapError(bucket, key string, err error) error {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return &KeyError{Container: bucket, Key: key}
	}

	// HeadObject reports missing keys as a bare 404 without a typed
	// NoSuchKey error.
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound" {
		return &KeyError{Container: bucket, Key: key}
	}
	var respErr interface{ HTTPStatusCode() int }
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound {
		return &KeyError{Container: bucket, Key: key}
	}

	return err
}

// detectContentType sniffs the file's MIME type, falling back to a
// generic binary type.
func detectContentType(path string) string {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return "application/octet-stream"
	}
	return mtype.String()
}
