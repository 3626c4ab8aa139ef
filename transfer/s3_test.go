package transfer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockS3 records calls and serves canned responses.
type mockS3 struct {
	getInput  *s3.GetObjectInput
	getOutput *s3.GetObjectOutput
	getErr    error

	putInput *s3.PutObjectInput
	putBody  []byte
	putErr   error

	headInput  *s3.HeadObjectInput
	headOutput *s3.HeadObjectOutput
	headErr    error

	calls int
}

func (m *mockS3) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.calls++
	m.getInput = params
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.getOutput, nil
}

func (m *mockS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	m.calls++
	m.putInput = params
	if m.putErr != nil {
		return nil, m.putErr
	}
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	m.putBody = body
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3) HeadObject(_ context.Context, params *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	m.calls++
	m.headInput = params
	if m.headErr != nil {
		return nil, m.headErr
	}
	return m.headOutput, nil
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestS3Backend_UploadFile(t *testing.T) {
	t.Run("uploads and reports key", func(t *testing.T) {
		mock := &mockS3{}
		backend := NewS3BackendWithAPI(mock)

		src := writeTempFile(t, "report.csv", "a,b\n1,2\n")
		key, err := backend.UploadFile(context.Background(), "bucket", "data/report.csv", src, Options{})
		require.NoError(t, err)

		assert.Equal(t, "data/report.csv", key)
		require.NotNil(t, mock.putInput)
		assert.Equal(t, "bucket", aws.ToString(mock.putInput.Bucket))
		assert.Equal(t, "data/report.csv", aws.ToString(mock.putInput.Key))
		assert.Equal(t, int64(8), aws.ToInt64(mock.putInput.ContentLength))
		assert.Equal(t, "a,b\n1,2\n", string(mock.putBody))
	})

	t.Run("explicit content type wins over detection", func(t *testing.T) {
		mock := &mockS3{}
		backend := NewS3BackendWithAPI(mock)

		src := writeTempFile(t, "blob", "payload")
		_, err := backend.UploadFile(context.Background(), "bucket", "blob", src, Options{
			ContentType: "application/x-custom",
		})
		require.NoError(t, err)
		assert.Equal(t, "application/x-custom", aws.ToString(mock.putInput.ContentType))
	})

	t.Run("missing local file fails before any call", func(t *testing.T) {
		mock := &mockS3{}
		backend := NewS3BackendWithAPI(mock)

		_, err := backend.UploadFile(context.Background(), "bucket", "key", "/nonexistent/file.txt", Options{})
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Zero(t, mock.calls)
	})

	t.Run("directory source fails before any call", func(t *testing.T) {
		mock := &mockS3{}
		backend := NewS3BackendWithAPI(mock)

		_, err := backend.UploadFile(context.Background(), "bucket", "key", t.TempDir(), Options{})
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Zero(t, mock.calls)
	})
}

func TestS3Backend_DownloadFile(t *testing.T) {
	t.Run("writes object to destination", func(t *testing.T) {
		mock := &mockS3{
			getOutput: &s3.GetObjectOutput{
				Body:          io.NopCloser(bytes.NewReader([]byte("object content"))),
				ContentLength: aws.Int64(14),
			},
		}
		backend := NewS3BackendWithAPI(mock)

		dest := filepath.Join(t.TempDir(), "nested", "out.bin")
		got, err := backend.DownloadFile(context.Background(), "bucket", "data/out.bin", dest, Options{})
		require.NoError(t, err)
		assert.Equal(t, dest, got)

		content, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.Equal(t, "object content", string(content))

		assert.Equal(t, "bucket", aws.ToString(mock.getInput.Bucket))
		assert.Equal(t, "data/out.bin", aws.ToString(mock.getInput.Key))
	})

	t.Run("missing key surfaces as KeyError", func(t *testing.T) {
		mock := &mockS3{getErr: &types.NoSuchKey{}}
		backend := NewS3BackendWithAPI(mock)

		dest := filepath.Join(t.TempDir(), "out.bin")
		_, err := backend.DownloadFile(context.Background(), "bucket", "missing/key", dest, Options{})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNotFound)

		var keyErr *KeyError
		require.ErrorAs(t, err, &keyErr)
		assert.Equal(t, "bucket", keyErr.Container)
		assert.Equal(t, "missing/key", keyErr.Key)
	})

	t.Run("head 404 with progress maps to KeyError", func(t *testing.T) {
		mock := &mockS3{
			headErr: &smithy.GenericAPIError{Code: "NotFound", Message: "Not Found"},
		}
		backend := NewS3BackendWithAPI(mock)

		dest := filepath.Join(t.TempDir(), "out.bin")
		_, err := backend.DownloadFile(context.Background(), "bucket", "missing/key", dest, Options{
			ShowProgress: true,
			ProgressOut:  io.Discard,
		})
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Nil(t, mock.getInput)
	})

	t.Run("other errors propagate unchanged", func(t *testing.T) {
		boom := errors.New("throttled")
		mock := &mockS3{getErr: boom}
		backend := NewS3BackendWithAPI(mock)

		dest := filepath.Join(t.TempDir(), "out.bin")
		_, err := backend.DownloadFile(context.Background(), "bucket", "key", dest, Options{})
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, ErrNotFound)
	})
}
