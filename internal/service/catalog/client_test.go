package catalog

import (
	"context"
	stdErrors "errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kapu/poketeam-kakao-bot/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.Client(), srv.URL+"/api/v2/", zap.NewNop())
	client.sleep = func(context.Context, time.Duration) error { return nil }
	return client, &hits
}

func TestDoRequestSuccess(t *testing.T) {
	client, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/pokemon", r.URL.Path)
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"count":1}`))
	})

	body, err := client.DoRequest(context.Background(), "/pokemon", url.Values{"limit": {"20"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":1}`, string(body))
	assert.EqualValues(t, 1, *hits)
}

func TestDoRequestNotFound(t *testing.T) {
	client, hits := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.NotFound(w, nil)
	})

	_, err := client.DoRequest(context.Background(), "pokemon/missingno", nil)
	var notFound *errors.NotFoundError
	require.True(t, stdErrors.As(err, &notFound))
	assert.Equal(t, "pokemon/missingno", notFound.Key)
	assert.EqualValues(t, 1, *hits)
}

func TestDoRequestClientErrorIsNotRetried(t *testing.T) {
	client, hits := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := client.DoRequest(context.Background(), "pokemon/x", nil)
	var apiErr *errors.APIError
	require.True(t, stdErrors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.EqualValues(t, 1, *hits)
}

func TestDoRequestServerErrorRetriesThenOpensCircuit(t *testing.T) {
	client, hits := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.DoRequest(context.Background(), "pokemon/pikachu", nil)
	var apiErr *errors.APIError
	require.True(t, stdErrors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.EqualValues(t, 3, *hits)
	assert.True(t, client.IsCircuitOpen())

	_, err = client.DoRequest(context.Background(), "pokemon/pikachu", nil)
	require.True(t, stdErrors.As(err, &apiErr))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.EqualValues(t, 3, *hits, "open circuit must not reach the server")
}

func TestDoRequestAbsoluteURL(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/evolution-chain/10/", r.URL.Path)
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := client.DoRequest(context.Background(), client.baseURL+"/evolution-chain/10/", nil)
	require.NoError(t, err)
}
