package tarn_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	tarn "github.com/tarnplatform/tarn-go"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// copyServer records every page body posted to /filehandles/copy and
// replies with canned results.
type copyServer struct {
	t        *testing.T
	requests []map[string]any
	respond  func(page int, body map[string]any) any
}

func (s *copyServer) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(s.t, http.MethodPost, r.Method)
		assert.Equal(s.t, "/filehandles/copy", r.URL.Path)
		assert.Equal(s.t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(s.t, json.NewDecoder(r.Body).Decode(&body))
		page := len(s.requests)
		s.requests = append(s.requests, body)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(s.respond(page, body))
	}
}

func newCopyClient(t *testing.T, srv *httptest.Server) *tarn.Client {
	t.Helper()
	client, err := tarn.New(&tarn.Config{Endpoint: srv.URL, AuthToken: "token"})
	require.NoError(t, err)
	return client
}

func strPtr(s string) *string { return &s }

func TestCopyFileHandles_Validation(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	client := newCopyClient(t, srv)

	t.Run("mismatched required lists", func(t *testing.T) {
		_, err := client.CopyFileHandles(context.Background(),
			[]string{"test"}, nil, []string{"123"}, nil)
		require.ErrorIs(t, err, tarn.ErrInvalidInput)
	})

	t.Run("empty required lists", func(t *testing.T) {
		_, err := client.CopyFileHandles(context.Background(), nil, nil, nil, nil)
		require.ErrorIs(t, err, tarn.ErrInvalidInput)
	})

	t.Run("mismatched optional lists", func(t *testing.T) {
		_, err := client.CopyFileHandles(context.Background(),
			[]string{"test1", "test2"},
			[]string{"FileEntity", "FileEntity"},
			[]string{"123", "456"},
			&tarn.CopyOptions{
				ContentTypes: []*string{strPtr("too"), strPtr("many"), strPtr("args")},
				FileNames:    []*string{strPtr("too_few_args")},
			})
		require.ErrorIs(t, err, tarn.ErrInvalidInput)
	})

	// Validation failures must never reach the network.
	assert.Zero(t, calls)
}

func TestCopyFileHandles_SingleBatch(t *testing.T) {
	results := []map[string]any{
		{
			"newFileHandle": map[string]any{
				"id":          "999",
				"fileName":    "Name1.txt",
				"contentType": "text/plain",
				"contentSize": float64(16),
				"etag":        "etag1",
			},
			"originalFileHandleId": "123",
		},
		{
			"newFileHandle": map[string]any{
				"id":          "1000",
				"fileName":    "test",
				"contentType": "text/plain",
				"contentSize": float64(5),
				"etag":        "etag2",
			},
			"originalFileHandleId": "456",
		},
	}
	srv := &copyServer{t: t, respond: func(int, map[string]any) any {
		return map[string]any{"copyResults": results}
	}}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()
	client := newCopyClient(t, ts)

	got, err := client.CopyFileHandles(context.Background(),
		[]string{"123", "456"},
		[]string{"FileEntity", "FileEntity"},
		[]string{"321", "645"},
		&tarn.CopyOptions{
			ContentTypes: []*string{nil, strPtr("text/plain")},
			FileNames:    []*string{nil, strPtr("test")},
		})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Len(t, srv.requests, 1)

	// Exact wire shape: both override keys present, null when absent.
	expectedBody := map[string]any{
		"copyRequests": []any{
			map[string]any{
				"originalFile": map[string]any{
					"fileHandleId":        "123",
					"associateObjectId":   "321",
					"associateObjectType": "FileEntity",
				},
				"newContentType": nil,
				"newFileName":    nil,
			},
			map[string]any{
				"originalFile": map[string]any{
					"fileHandleId":        "456",
					"associateObjectId":   "645",
					"associateObjectType": "FileEntity",
				},
				"newContentType": "text/plain",
				"newFileName":    "test",
			},
		},
	}
	assert.Equal(t, expectedBody, srv.requests[0])

	assert.Equal(t, "123", got[0].OriginalFileHandleID)
	require.NotNil(t, got[0].NewFileHandle)
	assert.Equal(t, "999", got[0].NewFileHandle.ID)
	assert.False(t, got[0].Failed())
	assert.Equal(t, "456", got[1].OriginalFileHandleID)
	require.NotNil(t, got[1].NewFileHandle)
	assert.Equal(t, "1000", got[1].NewFileHandle.ID)
}

func TestCopyFileHandles_MultipleBatches(t *testing.T) {
	const n = 102

	fileHandleIDs := make([]string, n)
	objectTypes := make([]string, n)
	objectIDs := make([]string, n)
	contentTypes := make([]*string, n)
	fileNames := make([]*string, n)
	for i := range fileHandleIDs {
		fileHandleIDs[i] = strconv.Itoa(i)
		objectTypes[i] = "FileEntity"
		objectIDs[i] = strconv.Itoa(i)
		contentTypes[i] = strPtr("text/plain")
		fileNames[i] = strPtr("test" + strconv.Itoa(i))
	}

	srv := &copyServer{t: t, respond: func(_ int, body map[string]any) any {
		// Echo back one result per submitted request, in order.
		reqs := body["copyRequests"].([]any)
		results := make([]map[string]any, len(reqs))
		for i, raw := range reqs {
			original := raw.(map[string]any)["originalFile"].(map[string]any)
			results[i] = map[string]any{
				"newFileHandle":        map[string]any{"id": "copy"},
				"originalFileHandleId": original["fileHandleId"],
			}
		}
		return map[string]any{"copyResults": results}
	}}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()
	client := newCopyClient(t, ts)

	got, err := client.CopyFileHandles(context.Background(),
		fileHandleIDs, objectTypes, objectIDs,
		&tarn.CopyOptions{ContentTypes: contentTypes, FileNames: fileNames})
	require.NoError(t, err)

	// ceil(102/100) pages: 100 items then 2.
	require.Len(t, srv.requests, 2)
	assert.Len(t, srv.requests[0]["copyRequests"], 100)
	assert.Len(t, srv.requests[1]["copyRequests"], 2)

	// Concatenated results mirror input order.
	require.Len(t, got, n)
	for i := range got {
		assert.Equal(t, fileHandleIDs[i], got[i].OriginalFileHandleID)
	}
}

func TestCopyFileHandles_MixedResults(t *testing.T) {
	srv := &copyServer{t: t, respond: func(int, map[string]any) any {
		return map[string]any{"copyResults": []map[string]any{
			{
				"newFileHandle":        map[string]any{"id": "1", "fileName": "Name1.txt"},
				"originalFileHandleId": "789",
			},
			{
				"failureCode":          "UNAUTHORIZED",
				"originalFileHandleId": "NotAccessibleFile",
			},
		}}
	}}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()
	client := newCopyClient(t, ts)

	got, err := client.CopyFileHandles(context.Background(),
		[]string{"789", "NotAccessibleFile"},
		[]string{"FileEntity", "FileEntity"},
		[]string{"0987", "2352"},
		&tarn.CopyOptions{
			ContentTypes: []*string{nil, strPtr("text/plain")},
			FileNames:    []*string{nil, strPtr("testName")},
		})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.False(t, got[0].Failed())
	assert.True(t, got[1].Failed())
	assert.Equal(t, "UNAUTHORIZED", got[1].FailureCode)
	assert.Nil(t, got[1].NewFileHandle)
	assert.Equal(t, "NotAccessibleFile", got[1].OriginalFileHandleID)
}

func TestCopyFileHandles_TransportErrorAborts(t *testing.T) {
	const n = 102
	fileHandleIDs := make([]string, n)
	objectTypes := make([]string, n)
	objectIDs := make([]string, n)
	for i := range fileHandleIDs {
		fileHandleIDs[i] = strconv.Itoa(i)
		objectTypes[i] = "FileEntity"
		objectIDs[i] = strconv.Itoa(i)
	}

	pages := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages++
		if pages > 1 {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = fmt.Fprint(w, `{"reason":"boom"}`)
			return
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		reqs := body["copyRequests"].([]any)
		results := make([]map[string]any, len(reqs))
		for i := range reqs {
			results[i] = map[string]any{
				"newFileHandle":        map[string]any{"id": "copy"},
				"originalFileHandleId": strconv.Itoa(i),
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"copyResults": results})
	}))
	defer ts.Close()
	client := newCopyClient(t, ts)

	_, err := client.CopyFileHandles(context.Background(), fileHandleIDs, objectTypes, objectIDs, nil)
	require.Error(t, err)
	// First page was submitted and applied before the failure.
	assert.Equal(t, 2, pages)

	var apiErr *tarn.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
}
