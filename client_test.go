package tarn_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	tarn "github.com/tarnplatform/tarn-go"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		client, err := tarn.New(&tarn.Config{
			Endpoint:  "https://api.tarn.example.org",
			AuthToken: "token",
		})
		require.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("nil config", func(t *testing.T) {
		_, err := tarn.New(nil)
		require.ErrorIs(t, err, tarn.ErrConfigRequired)
	})

	t.Run("missing endpoint", func(t *testing.T) {
		_, err := tarn.New(&tarn.Config{AuthToken: "token"})
		require.ErrorIs(t, err, tarn.ErrEndpointRequired)
	})

	t.Run("with timeout option", func(t *testing.T) {
		client, err := tarn.New(
			&tarn.Config{Endpoint: "https://api.tarn.example.org"},
			tarn.WithTimeout(5*time.Second),
		)
		require.NoError(t, err)
		assert.NotNil(t, client)
	})
}

func TestClient_Post(t *testing.T) {
	t.Run("sends auth and request id headers", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
			assert.NotEmpty(t, r.Header.Get("X-Request-Id"))
			assert.Equal(t, "/things", r.URL.Path)

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "value", body["field"])

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"ok":true}`))
		}))
		defer srv.Close()

		client, err := tarn.New(&tarn.Config{Endpoint: srv.URL, AuthToken: "secret"})
		require.NoError(t, err)

		var out struct {
			OK bool `json:"ok"`
		}
		err = client.Post(context.Background(), "/things", map[string]string{"field": "value"}, &out)
		require.NoError(t, err)
		assert.True(t, out.OK)
	})

	t.Run("trailing endpoint slash and missing path slash", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/things", r.URL.Path)
			_, _ = w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		client, err := tarn.New(&tarn.Config{Endpoint: srv.URL + "/"})
		require.NoError(t, err)
		require.NoError(t, client.Post(context.Background(), "things", nil, nil))
	})

	t.Run("404 surfaces as ErrNotFound", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"reason":"no such entity"}`))
		}))
		defer srv.Close()

		client, err := tarn.New(&tarn.Config{Endpoint: srv.URL})
		require.NoError(t, err)

		err = client.Post(context.Background(), "/things", nil, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, tarn.ErrNotFound)

		var apiErr *tarn.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
		assert.Contains(t, apiErr.Body, "no such entity")
	})

	t.Run("401 surfaces as ErrUnauthorized", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		client, err := tarn.New(&tarn.Config{Endpoint: srv.URL})
		require.NoError(t, err)

		err = client.Post(context.Background(), "/things", nil, nil)
		assert.ErrorIs(t, err, tarn.ErrUnauthorized)
	})

	t.Run("transport error propagates", func(t *testing.T) {
		client, err := tarn.New(&tarn.Config{Endpoint: "http://127.0.0.1:1"},
			tarn.WithTimeout(100*time.Millisecond))
		require.NoError(t, err)

		err = client.Post(context.Background(), "/things", nil, nil)
		require.Error(t, err)

		// Not an HTTP-level error, the request never got a response.
		var apiErr *tarn.APIError
		assert.False(t, errors.As(err, &apiErr))
	})
}
