package upc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	t.Run("Requires a base URL", func(t *testing.T) {
		_, err := NewClient(Config{})
		assert.Error(t, err)
	})

	t.Run("Defaults the timeout", func(t *testing.T) {
		client, err := NewClient(Config{BaseURL: "https://upc.example.com/lookup"})
		require.NoError(t, err)
		assert.Equal(t, 10*time.Second, client.httpClient.Timeout)
	})
}

func TestClient_Lookup(t *testing.T) {
	ctx := context.Background()

	t.Run("Successful lookup with rate-limit headers", func(t *testing.T) {
		var gotQuery string
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query().Get("upc")
			w.Header().Set("X-RateLimit-Limit", "100")
			w.Header().Set("X-RateLimit-Remaining", "99")
			w.Header().Set("X-RateLimit-Reset", "1735689600")
			w.Write([]byte(`{
				"code": "OK",
				"total": 1,
				"items": [{"ean": "0812066021500", "title": "Rittenhouse Rye", "brand": "Rittenhouse"}]
			}`))
		}))
		defer upstream.Close()

		client, err := NewClient(Config{BaseURL: upstream.URL})
		require.NoError(t, err)

		result, rateLimit, err := client.Lookup(ctx, "812066021500")

		require.NoError(t, err)
		assert.Equal(t, "812066021500", gotQuery)
		require.Len(t, result.Items, 1)
		assert.Equal(t, "Rittenhouse Rye", result.Items[0].Title)
		assert.Equal(t, "100", rateLimit.Limit)
		assert.Equal(t, "99", rateLimit.Remaining)
		assert.Equal(t, "1735689600", rateLimit.Reset)
	})

	t.Run("Zero items", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"code": "OK", "total": 0, "items": []}`))
		}))
		defer upstream.Close()

		client, err := NewClient(Config{BaseURL: upstream.URL})
		require.NoError(t, err)

		_, rateLimit, err := client.Lookup(ctx, "000000000000")
		assert.ErrorIs(t, err, ErrNoItems)
		assert.NotNil(t, rateLimit)
	})

	t.Run("Upstream error status", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"message": "exceeded"}`))
		}))
		defer upstream.Close()

		client, err := NewClient(Config{BaseURL: upstream.URL})
		require.NoError(t, err)

		_, rateLimit, err := client.Lookup(ctx, "812066021500")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "429")
		assert.Equal(t, "0", rateLimit.Remaining)
	})

	t.Run("Malformed body", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`))
		}))
		defer upstream.Close()

		client, err := NewClient(Config{BaseURL: upstream.URL})
		require.NoError(t, err)

		_, _, err = client.Lookup(ctx, "812066021500")
		assert.Error(t, err)
	})

	t.Run("Context cancellation", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer upstream.Close()

		client, err := NewClient(Config{BaseURL: upstream.URL})
		require.NoError(t, err)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, _, err = client.Lookup(cancelled, "812066021500")
		assert.Error(t, err)
	})
}
