package sources

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Value string `json:"value"`
}

func TestGetJSONDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/things", r.URL.Path)
		assert.Equal(t, "x", r.URL.Query().Get("q"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Write([]byte(`{"value":"ok"}`))
	}))
	defer srv.Close()

	c := NewClient("news", srv.URL+"/", time.Second, 0)
	var out payload
	require.NoError(t, c.GetJSON(context.Background(), "/things", url.Values{"q": {"x"}}, &out))
	assert.Equal(t, "ok", out.Value)
}

func TestGetJSONNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient("movie", srv.URL, time.Second, 0)
	err := c.GetJSON(context.Background(), "/", nil, &payload{})

	var ue *UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "movie", ue.Source)
	assert.Equal(t, http.StatusBadGateway, ue.Status)
	assert.Equal(t, "movie upstream: HTTP 502", err.Error())
}

func TestGetJSONMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	c := NewClient("news", srv.URL, time.Second, 0)
	err := c.GetJSON(context.Background(), "/", nil, &payload{})
	assert.True(t, IsUpstream(err))
}

func TestGetJSONTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient("news", srv.URL, time.Second, 0)
	err := c.GetJSON(context.Background(), "/", nil, &payload{})
	assert.True(t, IsUpstream(err))
}

func TestGetJSONSendsHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		w.Write([]byte(`{"value":"ok"}`))
	}))
	defer srv.Close()

	c := NewClient("news", srv.URL, time.Second, 0).SetHeader("X-Api-Key", "secret")
	require.NoError(t, c.GetJSON(context.Background(), "/", nil, &payload{}))
}

func TestGetJSONTransportErrorHidesQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient("movie", srv.URL, time.Second, 0)
	err := c.GetJSON(context.Background(), "/movie/popular", url.Values{"api_key": {"secret"}}, &payload{})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret")
	assert.Contains(t, err.Error(), "/movie/popular")
}

func TestGetJSONCancelledContext(t *testing.T) {
	c := NewClient("news", "http://127.0.0.1:1", time.Second, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.GetJSON(ctx, "/", nil, &payload{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestBlankQuery(t *testing.T) {
	assert.True(t, BlankQuery(""))
	assert.True(t, BlankQuery("   \t\n"))
	assert.False(t, BlankQuery(" mars "))
}
