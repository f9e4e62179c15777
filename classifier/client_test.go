package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *recordingObserver) ObserveRequest(outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func newTestClient(t *testing.T, url string, opts ...Option) *Client {
	t.Helper()
	c, err := New(Config{Endpoint: url, APIKey: "test-api-key", Timeout: 2 * time.Second}, opts...)
	require.NoError(t, err)
	return c
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(Config{Endpoint: "http://localhost"})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestClassifySendsBatchPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-api-key", r.Header.Get("X-API-Key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body batchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "1c", body.Source)
		require.Len(t, body.Data, 2)
		assert.Equal(t, requestItem{Title: "Редуктор jcb js160", Day: "2026-01-22"}, body.Data[0])
		assert.Equal(t, "Каток опорный", body.Data[1].Title)

		_, _ = w.Write([]byte(`{"processed_data":[{"title":"Редуктор jcb js160","marka":"jcb","model":"JS 160",
			"catalog_number":20925,"group0":"гидравлический компонент","group1":"редуктор","group2":"!","group3":null}]}`))
	}))
	defer server.Close()

	obs := &recordingObserver{}
	c := newTestClient(t, server.URL, WithObserver(obs))

	got, err := c.Classify(context.Background(), []string{"Редуктор jcb js160", "Каток опорный"}, "2026-01-22")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "jcb", string(got[0].Marka))
	assert.Equal(t, "20925", string(got[0].CatalogNumber))
	assert.Equal(t, "!", string(got[0].Group2))
	assert.Empty(t, string(got[0].Group3))
	assert.Equal(t, []string{"200"}, obs.outcomes)
}

func TestClassifyMissingListIsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	got, err := newTestClient(t, server.URL).Classify(context.Background(), []string{"x"}, "2026-01-22")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestClassifyStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{"unauthorized", http.StatusUnauthorized, "Unauthorized", func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrUnauthorized)
		}},
		{"rate limited", http.StatusTooManyRequests, "", func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrRateLimited)
		}},
		{"server error", http.StatusBadGateway, "upstream", func(t *testing.T, err error) {
			var se *StatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, http.StatusBadGateway, se.Code)
			assert.True(t, se.Retryable())
		}},
		{"client error", http.StatusBadRequest, "bad request", func(t *testing.T, err error) {
			var se *StatusError
			require.ErrorAs(t, err, &se)
			assert.False(t, se.Retryable())
			assert.Equal(t, "bad request", se.Body)
		}},
		{"malformed body", http.StatusOK, "<html>oops</html>", func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrMalformedResponse)
		}},
		{"wrong json shape", http.StatusOK, `[1,2,3]`, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrMalformedResponse)
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			_, err := newTestClient(t, server.URL).Classify(context.Background(), []string{"x"}, "2026-01-22")
			require.Error(t, err)
			tc.check(t, err)
		})
	}
}

func TestClassifyTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	obs := &recordingObserver{}
	c := newTestClient(t, server.URL,
		WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}),
		WithObserver(obs))

	_, err := c.Classify(context.Background(), []string{"x"}, "2026-01-22")
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, []string{"timeout"}, obs.outcomes)
}

func TestClassifyCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"processed_data":[]}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(t, server.URL).Classify(ctx, []string{"x"}, "2026-01-22")
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrTimeout)
}

func TestClassifyConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestClient(t, url).Classify(context.Background(), []string{"x"}, "2026-01-22")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrTimeout))
	assert.Contains(t, err.Error(), "classifier: transport")
}
